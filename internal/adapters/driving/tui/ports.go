// Package tui is the interactive terminal front end: ask questions, read the
// cited answer and browse the catalogue.
package tui

import (
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
)

// Ports holds the services the app drives.
type Ports struct {
	// Query answers questions over the indexed documents.
	Query driving.QueryService

	// Document lists the document catalogue. Optional.
	Document driving.DocumentService

	// TopK overrides the number of chunks retrieved per question.
	// Zero uses the query service default.
	TopK int
}

// NewPorts creates a new Ports aggregate with the given services.
func NewPorts(query driving.QueryService, document driving.DocumentService) *Ports {
	return &Ports{
		Query:    query,
		Document: document,
	}
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil {
		return ErrInvalidPorts
	}
	if p.Query == nil {
		return ErrMissingQueryService
	}
	if p.TopK < 0 {
		return ErrInvalidPorts
	}
	return nil
}
