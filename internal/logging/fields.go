// Package logging provides a structured logging wrapper around charmbracelet/log.
package logging

// Field name constants for structured logging.
const (
	// Common fields.
	FieldError    = "error"
	FieldDocument = "document"
	FieldWorker   = "worker"

	// Engine lifecycle fields.
	FieldEncoding = "encoding"
	FieldFixed    = "fixed"
	FieldSource   = "source"
	FieldOption   = "option"
	FieldStatus   = "status"
	FieldCode     = "code"
	FieldRestarts = "restarts"

	// Feeding fields.
	FieldBytes = "bytes"
	FieldState = "state"
	FieldDepth = "depth"

	// Tree callback fields.
	FieldOp      = "op"
	FieldNode    = "node"
	FieldParent  = "parent"
	FieldChild   = "child"
	FieldResult  = "result"
	FieldName    = "name"
	FieldNS      = "ns"
	FieldAttrs   = "attrs"
	FieldQuirks  = "quirks"
	FieldLine    = "line"
	FieldColumn  = "column"
	FieldMessage = "message"

	// Run statistics fields.
	FieldJobs               = "jobs"
	FieldDocumentsParsed    = "documents_parsed"
	FieldDocumentsErrored   = "documents_errored"
	FieldDocumentsRestarted = "documents_restarted"
)
