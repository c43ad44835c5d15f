package domain

// FileUpload is a single file submitted for ingestion.
type FileUpload struct {
	Filename string
	Content  []byte
}

// IngestFailure records why a file was not indexed.
type IngestFailure struct {
	Filename string `json:"filename"`
	Reason   string `json:"reason"`
}

// IngestResult summarises an ingestion request.
type IngestResult struct {
	// DocumentIDs lists only documents that were fully indexed, in upload order.
	DocumentIDs []string `json:"document_ids"`

	// Message summarises success and failure counts.
	Message string `json:"message"`

	// Failures lists the files that were skipped.
	Failures []IngestFailure `json:"failures,omitempty"`
}
