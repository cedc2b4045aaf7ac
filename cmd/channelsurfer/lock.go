package main

import (
	"fmt"

	"github.com/gofrs/flock"

	"channelsurfer/internal/config"
)

// acquireLibraryLock takes the advisory lock that keeps two sessions from
// managing the same library.
func acquireLibraryLock(cfg *config.Config) (*flock.Flock, error) {
	lock := flock.New(cfg.LockPath())
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire library lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("library %s is in use by another channelsurfer session", cfg.Paths.LibraryDir)
	}
	return lock, nil
}
