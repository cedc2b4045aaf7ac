package guide

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// DefaultMinutes is assumed when a duration cannot be read.
const DefaultMinutes = 30

// Timeslots is the evening grid programmes are placed on.
var Timeslots = [...]string{
	"6:00 PM", "6:30 PM", "7:00 PM", "7:30 PM", "8:00 PM",
	"8:30 PM", "9:00 PM", "9:30 PM", "10:00 PM", "10:30 PM",
}

// Days is the week programmes are spread across.
var Days = [...]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// ParseMinutes reads the leading whitespace-separated token of a duration
// such as "45 min" as whole minutes, defaulting to 30.
func ParseMinutes(duration string) int {
	fields := strings.Fields(duration)
	if len(fields) == 0 {
		return DefaultMinutes
	}
	minutes, err := strconv.ParseUint(fields[0], 10, 31)
	if err != nil {
		return DefaultMinutes
	}
	return int(minutes)
}

// blockMinutes rounds a running time up to a 30, 60, 90 or 120 minute block.
func blockMinutes(minutes int) int {
	switch {
	case minutes <= 30:
		return 30
	case minutes <= 60:
		return 60
	case minutes <= 90:
		return 90
	default:
		return 120
	}
}

// Timeslot places a programme on the evening grid. The start index is the
// 32-bit identifier hash modulo the number of starts that leave room for the
// block; the end index is clamped to the last slot.
func Timeslot(duration, identifier string) (start, end string) {
	startIdx, endIdx := slotIndexes(ParseMinutes(duration), identifier)
	return Timeslots[startIdx], Timeslots[endIdx]
}

func slotIndexes(minutes int, identifier string) (int, int) {
	span := blockMinutes(minutes) / 30
	starts := uint32(len(Timeslots) - span)
	startIdx := int(Sum32(identifier) % starts)
	endIdx := startIdx + span
	if endIdx >= len(Timeslots) {
		endIdx = len(Timeslots) - 1
	}
	return startIdx, endIdx
}

// SlotIndex returns the grid position of a timeslot label, or -1.
func SlotIndex(label string) int {
	for i, slot := range Timeslots {
		if slot == label {
			return i
		}
	}
	return -1
}

// DayOfWeek picks the broadcast day from the 32-bit identifier hash.
func DayOfWeek(identifier string) string {
	return Days[Sum32(identifier)%uint32(len(Days))]
}

// Featured reports whether a programme runs over an hour or is tagged as a
// special.
func Featured(minutes int, tags []string) bool {
	if minutes > 60 {
		return true
	}
	for _, tag := range tags {
		if strings.Contains(strings.ToLower(tag), "special") {
			return true
		}
	}
	return false
}

// ExtractTags splits a comma separated subject into trimmed, non-empty tags.
func ExtractTags(subject string) []string {
	parts := strings.Split(subject, ",")
	tags := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			tags = append(tags, part)
		}
	}
	return tags
}

// NormalizeDuration turns an archive runtime or length value into the
// "<n> min" form. Seconds ("1834.5"), clock values ("00:30:34", "28:10") and
// values already in minutes are understood; anything else becomes the
// default.
func NormalizeDuration(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return formatMinutes(DefaultMinutes)
	}
	if fields := strings.Fields(raw); len(fields) > 1 && strings.HasPrefix(strings.ToLower(fields[1]), "min") {
		if _, err := strconv.ParseUint(fields[0], 10, 31); err == nil {
			return raw
		}
	}
	if seconds, ok := parseSeconds(raw); ok {
		return formatMinutes(secondsToMinutes(seconds))
	}
	return formatMinutes(DefaultMinutes)
}

func parseSeconds(raw string) (float64, bool) {
	if !strings.Contains(raw, ":") {
		seconds, err := strconv.ParseFloat(raw, 64)
		if err != nil || seconds < 0 || math.IsInf(seconds, 0) || math.IsNaN(seconds) {
			return 0, false
		}
		return seconds, true
	}
	parts := strings.Split(raw, ":")
	if len(parts) > 3 {
		return 0, false
	}
	var total float64
	for _, part := range parts {
		value, err := strconv.ParseFloat(part, 64)
		if err != nil || value < 0 {
			return 0, false
		}
		total = total*60 + value
	}
	return total, true
}

func secondsToMinutes(seconds float64) int {
	if seconds <= 0 {
		return 0
	}
	minutes := int(math.Round(seconds / 60))
	if minutes < 1 {
		return 1
	}
	return minutes
}

func formatMinutes(minutes int) string {
	return fmt.Sprintf("%d min", minutes)
}
