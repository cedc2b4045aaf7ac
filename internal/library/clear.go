package library

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"

	"channelsurfer/internal/logging"
)

// ClearResult reports what Clear removed.
type ClearResult struct {
	// Removed lists the deleted artifacts. Sidecars are not counted.
	Removed []string
	Errors  []ClearError
}

// ClearError pairs a path with the error that prevented its removal.
type ClearError struct {
	Path  string
	Error error
}

// Count returns the number of artifacts removed.
func (r ClearResult) Count() int {
	return len(r.Removed)
}

// Clear deletes every video artifact in dir along with its sidecar. Files
// that are neither are left alone. Removal continues past individual
// failures; ctx cancellation stops it early.
func Clear(ctx context.Context, dir string, logger *slog.Logger) (ClearResult, error) {
	result := ClearResult{}
	if logger == nil {
		logger = logging.NewNop()
	}
	names, err := Videos(dir)
	if err != nil {
		return result, err
	}
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		artifact := filepath.Join(dir, name)
		if err := os.Remove(artifact); err != nil {
			result.Errors = append(result.Errors, ClearError{Path: artifact, Error: err})
			logger.Warn("failed to remove artifact",
				logging.String("path", artifact),
				logging.Error(err),
				logging.String(logging.FieldEventType, "library_clear_failed"),
				logging.String(logging.FieldErrorHint, "check library_dir permissions"),
			)
			continue
		}
		result.Removed = append(result.Removed, artifact)

		sidecar := SidecarPath(artifact)
		if err := os.Remove(sidecar); err != nil && !errors.Is(err, os.ErrNotExist) {
			result.Errors = append(result.Errors, ClearError{Path: sidecar, Error: err})
		}
	}
	logger.Info("library cleared",
		logging.String("dir", dir),
		logging.Int("removed", len(result.Removed)),
		logging.Int("failed", len(result.Errors)),
		logging.String(logging.FieldEventType, "library_clear"),
	)
	return result, nil
}
