package library

import (
	"path/filepath"
	"strings"

	"channelsurfer/internal/textutil"
)

// artifactMarker sits between the display name and the container extension
// so archive downloads are recognizable in a shared directory.
const artifactMarker = ".ia"

var videoExtensions = map[string]struct{}{
	"mp4":  {},
	"avi":  {},
	"mkv":  {},
	"mov":  {},
	"webm": {},
	"flv":  {},
}

// maxNameBytes keeps artifact names, their sidecars and the temporary files
// used to write them under the common 255-byte file name limit.
const maxNameBytes = 230

// IsVideoExtension reports whether ext (with or without the leading dot) is a
// known video container. Matching is case-insensitive.
func IsVideoExtension(ext string) bool {
	ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
	_, ok := videoExtensions[ext]
	return ok
}

// IsVideoFile reports whether name carries a video container extension.
func IsVideoFile(name string) bool {
	return IsVideoExtension(filepath.Ext(name))
}

// IsArtifactFile reports whether name is a playable library entry: either a
// known video container or a downloaded "<base>.ia.<ext>" artifact, whatever
// container the archive served. Sidecars never qualify.
func IsArtifactFile(name string) bool {
	ext := filepath.Ext(name)
	if ext == "" || ext == "." || strings.EqualFold(ext, ".json") {
		return false
	}
	if IsVideoExtension(ext) {
		return true
	}
	stem := strings.TrimSuffix(name, ext)
	return strings.HasSuffix(strings.ToLower(stem), artifactMarker)
}

// ArtifactName builds the filesystem-safe artifact file name
// "<title>, <identifier>.ia.<ext>". The identifier suffix keeps items with
// the same title apart. Without a usable title the name is
// "<identifier>.ia.<ext>". ext defaults to mp4. Long titles are cut on a rune
// boundary so the whole name stays within maxNameBytes.
func ArtifactName(title, identifier, ext string) string {
	ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
	if ext == "" {
		ext = "mp4"
	}
	id := textutil.SanitizeFileName(identifier)
	suffix := id + artifactMarker + "." + ext
	clean := textutil.SanitizeFileName(title)
	if clean == "" || clean == id {
		return suffix
	}
	clean = strings.TrimSpace(textutil.TruncateBytes(clean, maxNameBytes-len(suffix)-len(", ")))
	if clean == "" {
		return suffix
	}
	return clean + ", " + suffix
}

// SidecarPath returns the companion sidecar path for an artifact: the same
// base name with a .json extension.
func SidecarPath(artifactPath string) string {
	return strings.TrimSuffix(artifactPath, filepath.Ext(artifactPath)) + ".json"
}
