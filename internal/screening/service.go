// Package screening runs shortlisting on behalf of sessions: it resolves the
// criteria to use, normalizes the submitted records, runs the engine and keeps
// the session's latest criteria and report.
package screening

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fmuoria/resume-shortlister/internal/ingestion"
	"github.com/fmuoria/resume-shortlister/internal/models"
	"github.com/fmuoria/resume-shortlister/internal/shortlist"
	"github.com/fmuoria/resume-shortlister/internal/store"
)

var (
	// ErrNoCriteria is returned when a run has no criteria to use
	ErrNoCriteria = errors.New("no criteria submitted for this session")
	// ErrNoReport is returned when a session has not run a shortlist yet
	ErrNoReport = errors.New("no shortlist has been run for this session")
)

// ProgressCallback is called to report progress during a run
type ProgressCallback func(current, total int, message string)

// Service coordinates shortlisting runs for sessions
type Service struct {
	engine     *shortlist.Engine
	kv         store.KV
	history    store.CriteriaHistory
	uploads    *ingestion.FileHandler
	sessionTTL time.Duration
	now        func() time.Time

	mu         sync.RWMutex
	progressCb ProgressCallback
}

// NewService creates a screening service. Session values expire after
// sessionTTL; zero keeps them until overwritten.
func NewService(engine *shortlist.Engine, kv store.KV, history store.CriteriaHistory, uploads *ingestion.FileHandler, sessionTTL time.Duration) *Service {
	return &Service{
		engine:     engine,
		kv:         kv,
		history:    history,
		uploads:    uploads,
		sessionTTL: sessionTTL,
		now:        time.Now,
	}
}

// SetProgressCallback sets the progress callback function
func (s *Service) SetProgressCallback(cb ProgressCallback) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.progressCb = cb
}

func (s *Service) reportProgress(current, total int, message string) {
	s.mu.RLock()
	cb := s.progressCb
	s.mu.RUnlock()

	if cb != nil {
		cb(current, total, message)
	}
}

func criteriaKey(session string) string { return "session:" + session + ":criteria" }
func reportKey(session string) string   { return "session:" + session + ":report" }

// SubmitCriteria validates a criteria form, records it in the owner's history
// and makes it the session's current criteria.
func (s *Service) SubmitCriteria(ctx context.Context, session, owner string, in models.CriteriaInput) (store.SavedCriteria, error) {
	criteria, err := models.NewJobCriteria(in)
	if err != nil {
		return store.SavedCriteria{}, err
	}

	saved, err := s.history.Save(ctx, owner, criteria)
	if err != nil {
		return store.SavedCriteria{}, fmt.Errorf("failed to save criteria: %w", err)
	}
	if err := s.UseCriteria(ctx, session, criteria); err != nil {
		return store.SavedCriteria{}, err
	}

	slog.InfoContext(ctx, "Criteria submitted",
		"session", session,
		"owner", owner,
		"criteria_id", saved.ID.String(),
		"required_skills", criteria.RequiredSkills.Len(),
	)
	return saved, nil
}

// UseCriteria makes criteria the session's current criteria
func (s *Service) UseCriteria(ctx context.Context, session string, criteria models.JobCriteria) error {
	data, err := json.Marshal(criteria)
	if err != nil {
		return fmt.Errorf("failed to encode criteria: %w", err)
	}
	if err := s.kv.Set(ctx, criteriaKey(session), data, s.sessionTTL); err != nil {
		return fmt.Errorf("failed to store session criteria: %w", err)
	}
	return nil
}

// CriteriaHistory lists the owner's saved criteria, newest first
func (s *Service) CriteriaHistory(ctx context.Context, owner string, limit int) ([]store.SavedCriteria, error) {
	entries, err := s.history.List(ctx, owner, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list criteria history: %w", err)
	}
	return entries, nil
}

// ResolveCriteria returns the saved criteria with the given ID, or the
// session's current criteria when id is empty. A saved entry that is picked
// becomes the session's current criteria.
func (s *Service) ResolveCriteria(ctx context.Context, session, owner, id string) (models.JobCriteria, error) {
	if id != "" {
		parsed, err := uuid.Parse(id)
		if err != nil {
			return models.JobCriteria{}, fmt.Errorf("criteria %q: %w", id, store.ErrNotFound)
		}
		saved, err := s.history.Get(ctx, owner, parsed)
		if err != nil {
			return models.JobCriteria{}, fmt.Errorf("criteria %s: %w", id, err)
		}
		if err := s.UseCriteria(ctx, session, saved.Criteria); err != nil {
			return models.JobCriteria{}, err
		}
		return saved.Criteria, nil
	}

	data, ok, err := s.kv.Get(ctx, criteriaKey(session))
	if err != nil {
		return models.JobCriteria{}, fmt.Errorf("failed to load session criteria: %w", err)
	}
	if !ok {
		return models.JobCriteria{}, ErrNoCriteria
	}

	var criteria models.JobCriteria
	if err := json.Unmarshal(data, &criteria); err != nil {
		return models.JobCriteria{}, fmt.Errorf("failed to decode session criteria: %w", err)
	}
	return criteria, nil
}

// Run normalizes raws, shortlists them against criteria and stores the
// report as the session's latest. Records that fail normalization are listed
// in Report.Skipped.
func (s *Service) Run(ctx context.Context, session string, criteria models.JobCriteria, raws []models.RawRecord) (models.Report, error) {
	total := len(raws)
	s.reportProgress(0, total, fmt.Sprintf("Normalizing %d records...", total))

	records, skipped := ingestion.NormalizeBatch(raws)
	for _, sk := range skipped {
		slog.WarnContext(ctx, "Record skipped", "session", session, "source_id", sk.SourceID, "error", sk.Error)
	}

	if err := ctx.Err(); err != nil {
		return models.Report{}, fmt.Errorf("shortlist cancelled: %w", err)
	}

	s.reportProgress(len(records), total, "Ranking candidates...")

	report := s.engine.Shortlist(records, criteria)
	report.RunID = uuid.NewString()
	report.CreatedAt = s.now().UTC()
	report.TotalRecords = total
	report.Skipped = skipped

	data, err := json.Marshal(report)
	if err != nil {
		return models.Report{}, fmt.Errorf("failed to encode report: %w", err)
	}
	if err := s.kv.Set(ctx, reportKey(session), data, s.sessionTTL); err != nil {
		return models.Report{}, fmt.Errorf("failed to store report: %w", err)
	}

	s.reportProgress(total, total, "Shortlist complete")
	slog.InfoContext(ctx, "Shortlist completed",
		"session", session,
		"run_id", report.RunID,
		"records", total,
		"skipped", len(skipped),
		"duplicates", report.Duplicates,
		"shortlisted", len(report.Shortlisted),
		"rejected", len(report.Rejected),
	)
	return report, nil
}

// SaveUpload keeps an uploaded workbook of parsed resumes for the session
func (s *Service) SaveUpload(session, filename string, content io.Reader) error {
	path, err := s.uploads.SaveUploadedFile(session, filename, content)
	if err != nil {
		return fmt.Errorf("failed to save upload: %w", err)
	}
	slog.Info("Upload saved", "session", session, "path", path)
	return nil
}

// SaveUploads keeps a batch of uploaded workbooks for the session. Either every
// file is kept or none is.
func (s *Service) SaveUploads(session string, uploads []ingestion.Upload) error {
	paths, err := s.uploads.SaveUploadedFiles(session, uploads)
	if err != nil {
		return fmt.Errorf("failed to save uploads: %w", err)
	}
	slog.Info("Uploads saved", "session", session, "files", len(paths))
	return nil
}

// RunUploads shortlists every workbook uploaded in the session so far
func (s *Service) RunUploads(ctx context.Context, session string, criteria models.JobCriteria) (models.Report, error) {
	raws, err := s.uploads.LoadRecords(session)
	if err != nil {
		return models.Report{}, fmt.Errorf("failed to load uploads: %w", err)
	}
	return s.Run(ctx, session, criteria, raws)
}

// ClearUploads forgets the session's uploaded workbooks
func (s *Service) ClearUploads(session string) error {
	return s.uploads.ClearUploads(session)
}

// LastReport returns the session's most recent report
func (s *Service) LastReport(ctx context.Context, session string) (models.Report, error) {
	data, ok, err := s.kv.Get(ctx, reportKey(session))
	if err != nil {
		return models.Report{}, fmt.Errorf("failed to load report: %w", err)
	}
	if !ok {
		return models.Report{}, ErrNoReport
	}

	var report models.Report
	if err := json.Unmarshal(data, &report); err != nil {
		return models.Report{}, fmt.Errorf("failed to decode report: %w", err)
	}
	return report, nil
}
