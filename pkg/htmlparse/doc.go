// Package htmlparse drives an HTML5 tree-construction engine over chunked input and
// bridges its tree callbacks to a client TreeBuilder.
//
// A Parser owns one engine instance. The client installs a TreeBuilder, sets the
// document root and then feeds byte chunks:
//
//	p, err := htmlparse.New("utf-8", false)
//	if err != nil {
//		return err
//	}
//	defer p.Close()
//
//	if err := p.InstallTreeBuilder(doc); err != nil {
//		return err
//	}
//	if err := p.SetDocumentRoot(doc.Root()); err != nil {
//		return err
//	}
//	for _, chunk := range chunks {
//		if _, err := p.Feed(chunk); err != nil {
//			return err
//		}
//	}
//	_, err = p.Complete()
//
// Every TreeBuilder method runs synchronously on the stack of Feed, Insert, Complete,
// Resume or Close. Strings, tags and attributes handed to the builder are owned copies;
// NodeID values are threaded through unchanged and never interpreted.
//
// Misuse of the protocol (feeding from inside a callback, inserting outside a script
// notification, installing a builder after feeding started, closing while feeding)
// panics with a *ProtocolViolation.
package htmlparse
