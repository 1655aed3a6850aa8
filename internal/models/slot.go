package models

// SlotSuggestion is a candidate appointment option offered to the customer.
// Availability fields are read-only inputs; ranking only fills the annotation
// fields on a copy.
type SlotSuggestion struct {
	ID          string `json:"id"`
	Date        string `json:"date"`       // 2006-01-02
	StartTime   string `json:"start_time"` // 15:04
	EndTime     string `json:"end_time"`
	ServiceID   int64  `json:"service_id"`
	ServiceName string `json:"service_name"`
	MasterID    int64  `json:"master_id"`
	MasterName  string `json:"master_name"`
	Price       int64  `json:"price"`
	Currency    string `json:"currency"`
	Duration    int    `json:"duration"` // minutes
	Available   bool   `json:"available"`

	// Annotations added by ranking.
	Score                  float64             `json:"score,omitempty"`
	Rank                   int                 `json:"rank,omitempty"`
	ShowStar               bool                `json:"show_star,omitempty"`
	ProximityText          string              `json:"proximity_text,omitempty"`
	ProximityTextLocalized map[Language]string `json:"proximity_text_localized,omitempty"`
	DisplayText            string              `json:"display_text,omitempty"`
}
