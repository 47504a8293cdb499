package dto

// TodayResponse carries the local calendar date used as the form default.
type TodayResponse struct {
	Date     string `json:"date"`
	TimeZone string `json:"time_zone,omitempty"`
}

// DeletedResponse acknowledges a removal.
type DeletedResponse struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
}
