package download

import (
	"fmt"
	"strings"

	"channelsurfer/internal/archive"
	"channelsurfer/internal/library"
	"channelsurfer/internal/services"
)

// videoFormats are substrings of archive format labels that denote a video
// container.
var videoFormats = []string{"MPEG", "MP4", "AVI", "QuickTime", "Matroska", "WebM"}

// VideoFiles returns the downloadable video files of an item in listing
// order. Files whose format label names a video container win; only when
// none does are file extensions consulted.
func VideoFiles(files []archive.FileEntry) []archive.FileEntry {
	byFormat := make([]archive.FileEntry, 0, len(files))
	byExtension := make([]archive.FileEntry, 0, len(files))
	for _, file := range files {
		if hasVideoFormat(file.Format) {
			byFormat = append(byFormat, file)
			continue
		}
		if library.IsVideoFile(file.Name) {
			byExtension = append(byExtension, file)
		}
	}
	if len(byFormat) > 0 {
		return byFormat
	}
	return byExtension
}

// SelectVideo picks the file to download. A non-empty preferred name must
// match one of the video files. Otherwise the largest file with a known size
// wins, the first listed on ties; when no size is known the first listed
// file is used.
func SelectVideo(files []archive.FileEntry, preferred string) (archive.FileEntry, error) {
	candidates := VideoFiles(files)
	if len(candidates) == 0 {
		return archive.FileEntry{}, services.Wrap(services.ErrNoArtifact, stageDownload, "select file",
			fmt.Sprintf("none of %d files is a video", len(files)), nil)
	}

	if preferred = strings.TrimSpace(preferred); preferred != "" {
		for _, file := range candidates {
			if file.Name == preferred {
				return file, nil
			}
		}
		return archive.FileEntry{}, services.Wrap(services.ErrNoArtifact, stageDownload, "select file",
			fmt.Sprintf("requested file %q is not a video file of this item", preferred), nil)
	}

	best := -1
	var bestSize uint64
	for i, file := range candidates {
		if file.SizeBytes == nil {
			continue
		}
		if best < 0 || *file.SizeBytes > bestSize {
			best = i
			bestSize = *file.SizeBytes
		}
	}
	if best < 0 {
		best = 0
	}
	return candidates[best], nil
}

func hasVideoFormat(format string) bool {
	if format == "" {
		return false
	}
	for _, marker := range videoFormats {
		if strings.Contains(format, marker) {
			return true
		}
	}
	return false
}
