package entity

import "time"

// DefaultMaxTurns bounds the per-user history kept for pipeline context.
const DefaultMaxTurns = 5

// Turn is a single answered question in a conversation.
type Turn struct {
	Question string    `json:"question"`
	Answer   string    `json:"answer"`
	AskedAt  time.Time `json:"asked_at"`
}

// History is the bounded, chronologically ordered recent turns of one user.
type History []Turn

// Pairs converts the history to the (question, answer) shape
// the answer pipeline expects.
func (h History) Pairs() []HistoryPair {
	pairs := make([]HistoryPair, 0, len(h))
	for _, t := range h {
		pairs = append(pairs, HistoryPair{Question: t.Question, Answer: t.Answer})
	}
	return pairs
}

// Transcript is a user's conversation prepared for export.
type Transcript struct {
	UserID      string    `json:"user_id"`
	DisplayName string    `json:"display_name,omitempty"`
	ExportedAt  time.Time `json:"exported_at"`
	Turns       History   `json:"turns"`
}

// ExportFormat selects the transcript export encoding.
type ExportFormat string

const (
	FormatMarkdown ExportFormat = "md"
	FormatPDF      ExportFormat = "pdf"
	FormatDOCX     ExportFormat = "docx"
)
