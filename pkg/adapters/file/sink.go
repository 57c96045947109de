package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aretw0/rulesmith/pkg/domain"
)

// RuleSink implements ports.RuleSink by writing each record to
// <dir>/query_<id>.json.
type RuleSink struct {
	BasePath string
}

// NewRuleSink creates a sink writing into basePath.
// If basePath is empty, it defaults to "out".
func NewRuleSink(basePath string) *RuleSink {
	if basePath == "" {
		basePath = "out"
	}
	return &RuleSink{BasePath: basePath}
}

// Path returns the file a record with id is written to.
func (s *RuleSink) Path(id string) string {
	return filepath.Join(s.BasePath, "query_"+id+".json")
}

// Save writes the record atomically.
// It writes to a temporary file first, syncs via fsync, and then renames it to the destination.
func (s *RuleSink) Save(ctx context.Context, rec *domain.RuleRecord) error {
	if rec.ID == "" {
		return fmt.Errorf("record id cannot be empty")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := os.MkdirAll(s.BasePath, 0755); err != nil {
		return fmt.Errorf("failed to ensure output directory: %w", err)
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}

	// Same directory as the destination so the rename stays on one filesystem.
	tmpFile, err := os.CreateTemp(s.BasePath, "tmp-query-"+rec.ID+"-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}
	// Windows cannot rename an open file.
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, s.Path(rec.ID)); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

// Load reads a saved record back.
func (s *RuleSink) Load(id string) (*domain.RuleRecord, error) {
	data, err := os.ReadFile(s.Path(id))
	if err != nil {
		return nil, fmt.Errorf("failed to read record: %w", err)
	}
	var rec domain.RuleRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal record: %w", err)
	}
	return &rec, nil
}
