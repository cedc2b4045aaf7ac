package library

import (
	"slices"

	"channelsurfer/internal/guide"
)

// MenuProgrammes is how many programmes per channel the menu guide shows.
const MenuProgrammes = 3

// Channel is one row of the guide grid.
type Channel struct {
	Number     uint8          `json:"channel_number"`
	Callsign   string         `json:"station_callsign"`
	Programmes []guide.Record `json:"programmes"`
}

// BuildGrid groups records by channel number in ascending order. The callsign
// of a channel is taken from its first record. Programmes are ordered by
// their timeslot on the evening grid; off-grid start times sort last. limit
// caps the programmes per channel when positive.
func BuildGrid(records []guide.Record, limit int) []Channel {
	byNumber := make(map[uint8]*Channel)
	numbers := make([]uint8, 0)
	for _, record := range records {
		ch, ok := byNumber[record.ChannelNumber]
		if !ok {
			ch = &Channel{Number: record.ChannelNumber, Callsign: record.StationCallsign}
			byNumber[record.ChannelNumber] = ch
			numbers = append(numbers, record.ChannelNumber)
		}
		ch.Programmes = append(ch.Programmes, record)
	}
	slices.Sort(numbers)

	grid := make([]Channel, 0, len(numbers))
	for _, number := range numbers {
		ch := byNumber[number]
		slices.SortStableFunc(ch.Programmes, compareSlots)
		if limit > 0 && len(ch.Programmes) > limit {
			ch.Programmes = ch.Programmes[:limit]
		}
		grid = append(grid, *ch)
	}
	return grid
}

func compareSlots(a, b guide.Record) int {
	ai, bi := a.SlotIndex(), b.SlotIndex()
	switch {
	case ai == bi:
		return 0
	case ai < 0:
		return 1
	case bi < 0:
		return -1
	case ai < bi:
		return -1
	default:
		return 1
	}
}
