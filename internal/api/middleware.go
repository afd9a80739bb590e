package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/fmuoria/resume-shortlister/internal/ingestion"
	"github.com/fmuoria/resume-shortlister/internal/logger"
)

const (
	headerRequestID = "X-Request-ID"
	headerSessionID = "X-Session-ID"
	headerUserID    = "X-User-ID"

	defaultOwner = "anonymous"
)

type contextKey string

const (
	sessionKey contextKey = "session"
	ownerKey   contextKey = "owner"
)

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.New().String()
		ctx := logger.WithRequestID(r.Context(), requestID)

		w.Header().Set(headerRequestID, requestID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// loggingMiddleware logs each request with its status and duration
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rw, r)

		attrs := []any{
			"method", r.Method,
			"path", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", time.Since(start).Milliseconds(),
			"remote_addr", r.RemoteAddr,
		}

		switch {
		case rw.statusCode >= 500:
			slog.ErrorContext(r.Context(), "Request failed with server error", attrs...)
		case rw.statusCode >= 400:
			slog.WarnContext(r.Context(), "Request failed with client error", attrs...)
		default:
			slog.InfoContext(r.Context(), "Request completed", attrs...)
		}
	})
}

func recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				slog.ErrorContext(r.Context(), "Panic recovered", "error", fmt.Sprint(err), "path", r.URL.Path)
				respondError(w, r, errInternalServer(""))
			}
		}()

		next.ServeHTTP(w, r)
	})
}

// sessionMiddleware resolves the caller's session and owner. A request
// without a session gets a new one, returned in X-Session-ID.
func sessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session := r.Header.Get(headerSessionID)
		if session == "" {
			session = uuid.NewString()
		} else if !ingestion.ValidSession(session) {
			respondError(w, r, errBadRequest("X-Session-ID must be 1-64 letters, digits, '-' or '_'"))
			return
		}
		w.Header().Set(headerSessionID, session)

		owner := r.Header.Get(headerUserID)
		if owner == "" {
			owner = defaultOwner
		}

		ctx := context.WithValue(r.Context(), sessionKey, session)
		ctx = context.WithValue(ctx, ownerKey, owner)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func sessionFrom(ctx context.Context) string {
	s, _ := ctx.Value(sessionKey).(string)
	return s
}

func ownerFrom(ctx context.Context) string {
	if o, ok := ctx.Value(ownerKey).(string); ok {
		return o
	}
	return defaultOwner
}
