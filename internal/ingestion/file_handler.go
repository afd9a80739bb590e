package ingestion

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/fmuoria/resume-shortlister/internal/models"
)

var sessionPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// ValidSession reports whether session can name an upload directory:
// 1-64 letters, digits, '-' or '_'.
func ValidSession(session string) bool {
	return sessionPattern.MatchString(session)
}

// CheckUploadName returns an error unless filename names a workbook the
// handler stores.
func CheckUploadName(filename string) error {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext != ".xlsx" {
		return fmt.Errorf("unsupported file type: %s", ext)
	}
	return nil
}

// Upload is one file of a multi-file upload
type Upload struct {
	Filename string
	Content  io.Reader
}

// FileHandler keeps the parsed-resume workbooks uploaded in each session, so a
// new upload is shortlisted together with the batches that came before it.
type FileHandler struct {
	uploadsDir string
	now        func() time.Time
}

// NewFileHandler creates a new file handler
func NewFileHandler(uploadsDir string) *FileHandler {
	return &FileHandler{
		uploadsDir: uploadsDir,
		now:        time.Now,
	}
}

func (fh *FileHandler) sessionDir(session string) (string, error) {
	if !ValidSession(session) {
		return "", fmt.Errorf("invalid session id %q", session)
	}
	return filepath.Join(fh.uploadsDir, session), nil
}

// SaveUploadedFile stores an uploaded workbook for the session
func (fh *FileHandler) SaveUploadedFile(session, filename string, content io.Reader) (string, error) {
	paths, err := fh.SaveUploadedFiles(session, []Upload{{Filename: filename, Content: content}})
	if err != nil {
		return "", err
	}
	return paths[0], nil
}

// SaveUploadedFiles stores a batch of workbooks for the session, all or none:
// when one file fails, the files already written for the batch are removed.
// Stored names carry the upload timestamp and the position in the batch so
// batches load back in upload order.
func (fh *FileHandler) SaveUploadedFiles(session string, uploads []Upload) ([]string, error) {
	dir, err := fh.sessionDir(session)
	if err != nil {
		return nil, err
	}
	for _, u := range uploads {
		if err := CheckUploadName(u.Filename); err != nil {
			return nil, err
		}
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create uploads directory: %w", err)
	}

	stamp := fh.now().UTC().Format("20060102T150405.000000000")
	paths := make([]string, 0, len(uploads))
	for i, u := range uploads {
		filePath := filepath.Join(dir, fmt.Sprintf("%s_%03d_%s", stamp, i, filepath.Base(u.Filename)))
		if err := writeUpload(filePath, u.Content); err != nil {
			for _, p := range paths {
				os.Remove(p)
			}
			return nil, err
		}
		paths = append(paths, filePath)
	}

	return paths, nil
}

// writeUpload creates filePath with content. A partly written file is removed.
func writeUpload(filePath string, content io.Reader) error {
	file, err := os.OpenFile(filePath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	if _, err := io.Copy(file, content); err != nil {
		file.Close()
		os.Remove(filePath)
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(filePath)
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

// LoadRecords reads every workbook stored for the session, oldest first, and
// concatenates their rows.
func (fh *FileHandler) LoadRecords(session string) ([]models.RawRecord, error) {
	dir, err := fh.sessionDir(session)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []models.RawRecord{}, nil
		}
		return nil, fmt.Errorf("failed to read uploads directory: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || strings.ToLower(filepath.Ext(entry.Name())) != ".xlsx" {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	records := []models.RawRecord{}
	for _, name := range names {
		batch, err := ReadWorkbookFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", name, err)
		}
		records = append(records, batch...)
	}

	return records, nil
}

// ClearUploads removes every workbook stored for the session
func (fh *FileHandler) ClearUploads(session string) error {
	dir, err := fh.sessionDir(session)
	if err != nil {
		return err
	}
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("failed to clear uploads directory: %w", err)
	}
	return nil
}
