package dom

import (
	"errors"
	"fmt"

	"github.com/yaklabco/html5bridge/pkg/htmlparse"
)

// Sentinel errors for categorization via errors.Is.
var (
	// ErrStaleNode indicates an id whose node has been reclaimed or never existed.
	ErrStaleNode = errors.New("stale node id")

	// ErrNullNode indicates the null id was passed where a node is required.
	ErrNullNode = errors.New("null node id")

	// ErrNotChild indicates a node is not a child of the given parent.
	ErrNotChild = errors.New("node is not a child of parent")

	// ErrHierarchy indicates an insertion that would make a node its own ancestor.
	ErrHierarchy = errors.New("hierarchy request")

	// ErrNodeLimit indicates the configured node limit was reached. It matches
	// htmlparse.ErrNoMemory so the engine treats it as allocation failure.
	ErrNodeLimit = fmt.Errorf("node limit reached: %w", htmlparse.ErrNoMemory)
)
