package guide

// Record is one synthesized guide entry. It is written once as a sidecar next
// to the downloaded artifact and never modified afterwards.
type Record struct {
	Title           string   `json:"title"`
	Station         string   `json:"station"`
	Description     string   `json:"description"`
	Year            string   `json:"year"`
	Duration        string   `json:"duration"`
	Category        Category `json:"category"`
	ChannelNumber   uint8    `json:"channel_number"`
	StationCallsign string   `json:"station_callsign"`
	Timeslot        string   `json:"timeslot"`
	StartTime       string   `json:"start_time"`
	EndTime         string   `json:"end_time"`
	DayOfWeek       string   `json:"day_of_week"`
	ThumbnailURL    string   `json:"thumbnail_url"`
	Tags            []string `json:"tags"`
	OriginalID      string   `json:"original_id"`
	DownloadDate    int64    `json:"download_date"`
	IsFeatured      bool     `json:"is_featured"`
}

// Minutes returns the running time in whole minutes.
func (r Record) Minutes() int {
	return ParseMinutes(r.Duration)
}

// SlotIndex returns the grid position of the programme start, or -1 when the
// start time is not on the grid.
func (r Record) SlotIndex() int {
	return SlotIndex(r.StartTime)
}
