package entity

// HistoryPair is one prior (question, answer) exchange passed to the
// answer pipeline as short-term memory.
type HistoryPair struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// PipelineAnswerRequest asks the RAG service to answer a question in the
// context of the user's recent history.
type PipelineAnswerRequest struct {
	Question string        `json:"question"`
	History  []HistoryPair `json:"history"`
}

// PipelineAnswer is the single normalized result shape of the answer
// pipeline boundary. Adapters must map whatever the upstream returns
// into this type; callers never inspect raw response shapes.
type PipelineAnswer struct {
	Answer  string   `json:"answer"`
	Sources []string `json:"sources,omitempty"`
}
