package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

const (
	uriScheme         = "docqa://"
	catalogueURI      = uriScheme + "documents"
	documentURIPrefix = catalogueURI + "/"
	jsonMIME          = "application/json"
)

// registerResources exposes the catalogue when a document service is wired.
func (s *Server) registerResources() {
	if s.ports.Document == nil {
		return
	}

	s.server.AddResource(&mcp.Resource{
		URI:         catalogueURI,
		Name:        "documents",
		Description: "All indexed PDF documents",
		MIMEType:    jsonMIME,
	}, s.handleDocumentsResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: documentURIPrefix + "{documentId}",
		Name:        "document",
		Description: "Metadata of one indexed document",
		MIMEType:    jsonMIME,
	}, s.handleDocumentResource)
}

// handleDocumentsResource serves the whole catalogue as a JSON array.
func (s *Server) handleDocumentsResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	if s.ports.Document == nil {
		return jsonResource(req.Params.URI, []DocumentOutput{})
	}

	docs, err := s.ports.Document.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}

	out := make([]DocumentOutput, 0, len(docs))
	for i := range docs {
		out = append(out, toDocumentOutput(&docs[i]))
	}
	return jsonResource(req.Params.URI, out)
}

// handleDocumentResource serves docqa://documents/{id}. Unknown IDs and
// URIs outside the scheme are reported as missing resources.
func (s *Server) handleDocumentResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	uri := req.Params.URI
	id := extractDocumentID(uri)
	if id == "" || s.ports.Document == nil {
		return nil, mcp.ResourceNotFoundError(uri)
	}

	doc, err := s.ports.Document.Get(ctx, id)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return nil, mcp.ResourceNotFoundError(uri)
	case err != nil:
		return nil, fmt.Errorf("getting document: %w", err)
	}
	return jsonResource(uri, toDocumentOutput(doc))
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", uri, err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{URI: uri, MIMEType: jsonMIME, Text: string(data)}},
	}, nil
}

// extractDocumentID returns the {id} of docqa://documents/{id}, or "".
func extractDocumentID(uri string) string {
	id, ok := strings.CutPrefix(uri, documentURIPrefix)
	if !ok || strings.Contains(id, "/") {
		return ""
	}
	return id
}
