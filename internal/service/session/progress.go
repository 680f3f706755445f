package session

// Progress describes how far through a session the learner is.
type Progress struct {
	Total     int `json:"total"`
	Answered  int `json:"answered"`
	Remaining int `json:"remaining"`
}

// IsComplete reports whether every card has been answered.
func (p Progress) IsComplete() bool {
	return p.Remaining == 0
}
