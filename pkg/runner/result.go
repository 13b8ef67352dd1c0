package runner

import (
	"github.com/yaklabco/html5bridge/pkg/dom"
	"github.com/yaklabco/html5bridge/pkg/htmlparse"
)

// DocumentOutcome is the result of parsing one Source.
type DocumentOutcome struct {
	// Name is the source name.
	Name string

	// Document is the parsed tree. It is nil if the source could not be opened and
	// partial if Error is set.
	Document *dom.Document

	// Charset is the charset the document was decoded with.
	Charset string

	// CharsetSource tells how the charset was chosen.
	CharsetSource htmlparse.CharsetSource

	// ParseErrors are the recoverable parse errors in source order.
	ParseErrors []htmlparse.ParseError

	// Bytes is the number of input bytes read.
	Bytes int64

	// Error is set if the document could not be parsed to completion.
	Error error
}

// Stats captures aggregate information about a run.
type Stats struct {
	// DocumentsQueued is the number of sources handed to Run.
	DocumentsQueued int

	// DocumentsParsed is the number of documents parsed to completion.
	DocumentsParsed int

	// DocumentsErrored is the number of documents that failed.
	DocumentsErrored int

	// DocumentsRestarted is the number of documents restarted on a charset declaration.
	DocumentsRestarted int

	// ParseErrors is the total number of recoverable parse errors.
	ParseErrors int

	// Nodes is the total number of live nodes across parsed documents.
	Nodes int

	// Bytes is the total input consumed.
	Bytes int64

	// QuirksByMode maps quirks modes to document counts.
	QuirksByMode map[htmlparse.QuirksMode]int
}

// Result is the overall runner result.
type Result struct {
	// Documents holds one outcome per source, in source order. Sources skipped by
	// cancellation are absent.
	Documents []DocumentOutcome

	// Stats contains aggregate statistics for the run.
	Stats Stats
}

// HasFailures reports whether any document failed.
func (r *Result) HasFailures() bool {
	if r == nil {
		return false
	}
	return r.Stats.DocumentsErrored > 0
}

// HasParseErrors reports whether any document had recoverable parse errors.
func (r *Result) HasParseErrors() bool {
	if r == nil {
		return false
	}
	return r.Stats.ParseErrors > 0
}

func newStats() Stats {
	return Stats{
		QuirksByMode: make(map[htmlparse.QuirksMode]int),
	}
}

// accumulate updates the result with a document outcome.
func (r *Result) accumulate(outcome DocumentOutcome) {
	r.Documents = append(r.Documents, outcome)
	r.Stats.Bytes += outcome.Bytes
	r.Stats.ParseErrors += len(outcome.ParseErrors)

	if outcome.Document != nil && outcome.Document.Restarts() > 0 {
		r.Stats.DocumentsRestarted++
	}

	if outcome.Error != nil {
		r.Stats.DocumentsErrored++
		return
	}

	r.Stats.DocumentsParsed++
	r.Stats.Nodes += outcome.Document.Live()
	r.Stats.QuirksByMode[outcome.Document.Quirks()]++
}
