package checkpoint

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/hitter-splits/internal/logger"
	"github.com/yourusername/hitter-splits/internal/models"
)

const (
	filePrefix = "hitter_splits_streaks_"
	fileSuffix = ".json"
)

var errNotARecord = errors.New("checkpoint entry is not a hitter record")

// FileStore keeps one JSON document per run date in a directory.
// An unreadable document is logged and treated as missing.
type FileStore struct {
	dir    string
	logger *logger.CheckpointLogger
}

// NewFileStore creates a file store rooted at dir, creating the directory if needed
func NewFileStore(dir string, log *logrus.Logger) (*FileStore, error) {
	if log == nil {
		log = logger.Discard()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create checkpoint directory %s: %w", dir, err)
	}
	return &FileStore{
		dir:    dir,
		logger: logger.NewCheckpointLogger(log, "file"),
	}, nil
}

// Path returns the document path for a run date
func (s *FileStore) Path(runDate time.Time) string {
	return filepath.Join(s.dir, filePrefix+dateKey(runDate)+fileSuffix)
}

// Backend implements Store
func (s *FileStore) Backend() string {
	return "file"
}

// Close implements Store
func (s *FileStore) Close() error {
	return nil
}

// Load implements Store
func (s *FileStore) Load(ctx context.Context, runDate time.Time) (*models.Checkpoint, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	raw, found, err := s.readRaw(runDate)
	if err != nil {
		return nil, err
	}

	cp := models.NewCheckpoint(runDate)
	for key, data := range raw {
		if err := decodeRecord(cp, key, data); err != nil {
			s.logger.LogRecordSkipped(dateKey(runDate), s.Path(runDate), key, err)
		}
	}

	s.logger.LogLoaded(cp.DateKey(), cp.Len(), found)
	return cp, nil
}

// CompletedIDs implements Store. Record bodies are left undecoded.
func (s *FileStore) CompletedIDs(ctx context.Context, runDate time.Time) (map[string]struct{}, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	raw, found, err := s.readRaw(runDate)
	if err != nil {
		return nil, err
	}

	ids := make(map[string]struct{}, len(raw))
	for key := range raw {
		ids[key] = struct{}{}
	}

	s.logger.LogLoaded(dateKey(runDate), len(ids), found)
	return ids, nil
}

// Save implements Store. The document is rewritten through a temp file, fsync and
// rename, so a failed write leaves the previous document intact.
func (s *FileStore) Save(ctx context.Context, cp *models.Checkpoint) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	merged, _, err := s.readRaw(cp.RunDate)
	if err != nil {
		return 0, err
	}

	fresh, err := encodeRecords(cp)
	if err != nil {
		return 0, err
	}
	for key, data := range fresh {
		merged[key] = data
	}

	data, err := json.MarshalIndent(merged, "", "  ")
	if err != nil {
		return 0, fmt.Errorf("failed to encode checkpoint: %w", err)
	}

	path := s.Path(cp.RunDate)
	if err := writeFileAtomic(path, data); err != nil {
		return 0, err
	}

	s.logger.LogSaved(cp.DateKey(), path, len(merged))
	return len(merged), nil
}

// Latest implements Store
func (s *FileStore) Latest(ctx context.Context) (*models.Checkpoint, error) {
	dates, err := s.runDates()
	if err != nil {
		return nil, err
	}
	if len(dates) == 0 {
		return nil, models.ErrNotFound
	}
	return s.Load(ctx, dates[len(dates)-1])
}

// runDates lists the run dates with a document, oldest first
func (s *FileStore) runDates() ([]time.Time, error) {
	matches, err := filepath.Glob(filepath.Join(s.dir, filePrefix+"*"+fileSuffix))
	if err != nil {
		return nil, fmt.Errorf("failed to list checkpoints: %w", err)
	}

	dates := make([]time.Time, 0, len(matches))
	for _, m := range matches {
		name := strings.TrimSuffix(strings.TrimPrefix(filepath.Base(m), filePrefix), fileSuffix)
		d, err := time.Parse(models.RunDateLayout, name)
		if err != nil {
			continue
		}
		dates = append(dates, d)
	}

	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates, nil
}

// readRaw reads the document for a run date as undecoded records.
// A missing or unparseable document yields an empty map.
func (s *FileStore) readRaw(runDate time.Time) (map[string]json.RawMessage, bool, error) {
	path := s.Path(runDate)
	raw := make(map[string]json.RawMessage)

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return raw, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read checkpoint %s: %w", path, err)
	}

	if err := json.Unmarshal(data, &raw); err != nil {
		s.logger.LogDiscarded(dateKey(runDate), path, err)
		return make(map[string]json.RawMessage), false, nil
	}

	// only JSON objects can be hitter records; anything else is recomputed
	for key, value := range raw {
		trimmed := bytes.TrimSpace(value)
		if len(trimmed) > 0 && trimmed[0] == '{' {
			continue
		}
		delete(raw, key)
		if !bytes.Equal(trimmed, []byte("null")) {
			s.logger.LogRecordSkipped(dateKey(runDate), path, key, errNotARecord)
		}
	}
	return raw, true, nil
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	cleanup := func(err error) error {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}

	if _, err := tmp.Write(data); err != nil {
		return cleanup(fmt.Errorf("failed to write temp file: %w", err))
	}
	if err := tmp.Sync(); err != nil {
		return cleanup(fmt.Errorf("failed to sync temp file: %w", err))
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}
