// Package services wires the driven ports into the two docqa pipelines.
//
// IngestService turns uploads into indexed chunks. RetrievalService,
// AnswerAssembler and QueryService turn a question into a grounded answer.
// DocumentService and SettingsService back the catalogue and configuration
// commands. Nothing here does network or storage I/O directly.
package services
