// Package domain holds the types every layer of docqa shares: documents
// and their chunks, queries and retrieved chunks, answers with source
// attributions, settings, and the sentinel errors that classify failures.
//
// Only the standard library may be imported here. Ports, services and
// adapters all depend on domain; domain depends on none of them.
package domain
