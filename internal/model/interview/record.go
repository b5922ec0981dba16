package interview

// Record is a finished interview kept for later review. Records are created
// once and never modified.
type Record struct {
	ID        string    `json:"id"`
	CreatedAt int64     `json:"createdAt"`
	Config    Config    `json:"config"`
	History   []Message `json:"history"`
	Feedback  Feedback  `json:"feedback"`
}
