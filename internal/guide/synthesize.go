package guide

import (
	"net/url"
	"strings"
	"time"

	"channelsurfer/internal/archive"
)

// DefaultThumbnailBase is the archive thumbnail service prefix.
const DefaultThumbnailBase = "https://archive.org/services/img/"

const unknownValue = "Unknown"

// Synthesizer builds guide records. The zero value uses the public archive
// thumbnail service and the wall clock.
type Synthesizer struct {
	ThumbnailBase string
	Now           func() time.Time
}

// Synthesize builds the guide record for the file being downloaded. now only
// feeds the download date.
func Synthesize(item archive.ItemMetadata, file archive.FileEntry, now time.Time) Record {
	return Synthesizer{Now: func() time.Time { return now }}.Synthesize(item, file)
}

// Synthesize builds the guide record for the file being downloaded.
func (s Synthesizer) Synthesize(item archive.ItemMetadata, file archive.FileEntry) Record {
	identifier := strings.TrimSpace(item.Identifier)

	title := strings.TrimSpace(item.Title)
	if title == "" {
		title = identifier
	}
	description := strings.TrimSpace(item.Description)
	station := StationName(item.Creator)

	duration := NormalizeDuration(firstNonEmpty(file.Runtime, file.Length))
	minutes := ParseMinutes(duration)
	category := Categorize(title, description)
	tags := ExtractTags(strings.Join(item.Subject, ","))
	channel, callsign := AssignChannel(category, station, tags)
	start, end := Timeslot(duration, identifier)

	return Record{
		Title:           title,
		Station:         station,
		Description:     description,
		Year:            yearOf(item),
		Duration:        duration,
		Category:        category,
		ChannelNumber:   channel,
		StationCallsign: callsign,
		Timeslot:        start + " - " + end,
		StartTime:       start,
		EndTime:         end,
		DayOfWeek:       DayOfWeek(identifier),
		ThumbnailURL:    s.thumbnailBase() + url.PathEscape(identifier),
		Tags:            tags,
		OriginalID:      identifier,
		DownloadDate:    s.now().Unix(),
		IsFeatured:      Featured(minutes, tags),
	}
}

// StationName renders the creators of an item as the station shown in the
// guide.
func StationName(creators []string) string {
	names := make([]string, 0, len(creators))
	for _, creator := range creators {
		if creator = strings.TrimSpace(creator); creator != "" {
			names = append(names, creator)
		}
	}
	if len(names) == 0 {
		return unknownValue
	}
	return strings.Join(names, ", ")
}

func yearOf(item archive.ItemMetadata) string {
	if year := strings.TrimSpace(item.Year); year != "" {
		return year
	}
	if date := strings.TrimSpace(item.Date); len(date) >= 4 {
		return date[:4]
	}
	return unknownValue
}

func (s Synthesizer) thumbnailBase() string {
	base := strings.TrimSpace(s.ThumbnailBase)
	if base == "" {
		return DefaultThumbnailBase
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return base
}

func (s Synthesizer) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
