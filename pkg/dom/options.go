package dom

import "github.com/yaklabco/html5bridge/pkg/htmlparse"

// Option configures a Document.
type Option func(*config)

type config struct {
	nodeLimit int
	onScript  func(htmlparse.NodeID) error
	onStyle   func(htmlparse.NodeID) error
}

// WithNodeLimit caps the number of live nodes, the document node included. Creating a
// node beyond the cap fails with ErrNodeLimit. Zero means unlimited.
func WithNodeLimit(n int) Option {
	return func(c *config) {
		c.nodeLimit = n
	}
}

// WithScriptHandler runs fn for every CompleteScript notification. fn may call
// Parser.Insert to inject markup.
func WithScriptHandler(fn func(script htmlparse.NodeID) error) Option {
	return func(c *config) {
		c.onScript = fn
	}
}

// WithStyleHandler runs fn for every CompleteStyle notification.
func WithStyleHandler(fn func(style htmlparse.NodeID) error) Option {
	return func(c *config) {
		c.onStyle = fn
	}
}
