package library

import (
	"errors"
	"os"
	"path/filepath"
	"sort"

	"channelsurfer/internal/guide"
	"channelsurfer/internal/services"
)

// Entry is one video artifact found in the library. Record is nil when the
// artifact has no readable sidecar.
type Entry struct {
	Name         string
	ArtifactPath string
	SidecarPath  string
	SizeBytes    int64
	Record       *guide.Record
	// SidecarErr is set when a sidecar exists but could not be read.
	SidecarErr error
}

// Videos returns the names of the video artifacts in dir, sorted. A missing
// directory yields an empty list.
func Videos(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []string{}, nil
		}
		return nil, services.Wrap(services.ErrFilesystem, stageLibrary, "list videos", dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.Type().IsRegular() && IsArtifactFile(entry.Name()) {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// Scan lists the video artifacts in dir together with their sidecar records.
// A sidecar that fails to parse does not fail the scan; the entry carries the
// error instead.
func Scan(dir string) ([]Entry, error) {
	names, err := Videos(dir)
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(names))
	for _, name := range names {
		artifact := filepath.Join(dir, name)
		entry := Entry{
			Name:         name,
			ArtifactPath: artifact,
			SidecarPath:  SidecarPath(artifact),
		}
		if info, err := os.Stat(artifact); err == nil {
			entry.SizeBytes = info.Size()
		}
		if _, err := os.Stat(entry.SidecarPath); err == nil {
			record, err := ReadSidecar(entry.SidecarPath)
			if err != nil {
				entry.SidecarErr = err
			} else {
				entry.Record = &record
			}
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// Records returns the guide records of every artifact in dir that has a
// readable sidecar, in file name order.
func Records(dir string) ([]guide.Record, error) {
	entries, err := Scan(dir)
	if err != nil {
		return nil, err
	}
	records := make([]guide.Record, 0, len(entries))
	for _, entry := range entries {
		if entry.Record != nil {
			records = append(records, *entry.Record)
		}
	}
	return records, nil
}
