package domain

// DefaultTopK is the number of chunks retrieved when a query does not say.
const DefaultTopK = 5

// Query is a natural-language question against the indexed documents.
type Query struct {
	// Text is the question.
	Text string `json:"query"`

	// TopK bounds the number of candidate chunks. Zero means the configured default.
	TopK int `json:"top_k"`
}

// RetrievedChunk is a chunk returned by similarity search. Never persisted.
type RetrievedChunk struct {
	ChunkID string       `json:"chunk_id"`
	Payload ChunkPayload `json:"payload"`

	// Score is the similarity to the query; higher is more relevant.
	Score float64 `json:"score"`
}

// Attribution returns the source attribution for the chunk.
func (r RetrievedChunk) Attribution() SourceAttribution {
	return SourceAttribution{
		DocumentID: r.Payload.DocumentID,
		Title:      r.Payload.Title,
		Author:     r.Payload.Author,
		PageNumber: r.Payload.PageNumber,
		ChunkID:    r.ChunkID,
		Score:      r.Score,
	}
}

// SourceAttribution links an answer back to a chunk that supported it.
type SourceAttribution struct {
	DocumentID string  `json:"document_id" yaml:"document_id"`
	Title      string  `json:"title" yaml:"title"`
	Author     string  `json:"author" yaml:"author"`
	PageNumber int     `json:"page_number" yaml:"page_number"`
	ChunkID    string  `json:"chunk_id" yaml:"chunk_id"`
	Score      float64 `json:"score" yaml:"score"`
}

// AnswerResult is the outcome of answering a query.
// Sources only ever lists chunks that were passed to answer generation.
type AnswerResult struct {
	Answer       string              `json:"answer" yaml:"answer"`
	Sources      []SourceAttribution `json:"sources" yaml:"sources"`
	Success      bool                `json:"success" yaml:"success"`
	ErrorMessage string              `json:"error_message,omitempty" yaml:"error_message,omitempty"`
	// Retryable marks a failure caused by a transient upstream problem.
	Retryable bool `json:"retryable,omitempty" yaml:"retryable,omitempty"`
}

// EmptyAnswer is the result for a query with no matching content.
func EmptyAnswer() AnswerResult {
	return AnswerResult{Sources: []SourceAttribution{}, Success: true}
}

// FailedAnswer is the result for a query that could not be answered.
func FailedAnswer(err error) AnswerResult {
	return AnswerResult{
		Sources:      []SourceAttribution{},
		Success:      false,
		ErrorMessage: err.Error(),
		Retryable:    IsRetryable(err),
	}
}
