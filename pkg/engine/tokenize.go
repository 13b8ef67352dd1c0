package engine

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const whitespace = " \t\n\f\r"

type token struct {
	kind        html.TokenType
	name        string
	atom        atom.Atom
	attrs       []html.Attribute
	data        string
	selfClosing bool
	doctype     doctype
	inserted    bool
	line, col   uint32
}

func (t *token) attr(key string) (string, bool) {
	for _, a := range t.attrs {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

type doctype struct {
	name        string
	publicID    string
	hasPublic   bool
	systemID    string
	hasSystem   bool
	forceQuirks bool
}

// next extracts the next complete token from the unconsumed text and returns the
// number of bytes it spans. Unless the input has ended, a token counts as complete
// only once something follows it or its closing delimiter has been seen, so the
// token stream does not depend on where chunks were split.
func (e *Engine) next() (token, int, bool) {
	if len(e.text) == 0 {
		return token{}, 0, false
	}

	var z *html.Tokenizer
	if e.rawTag != "" {
		z = html.NewTokenizerFragment(bytes.NewReader(e.text), e.rawTag)
	} else {
		z = html.NewTokenizer(bytes.NewReader(e.text))
	}

	tt := z.Next()
	if tt == html.ErrorToken {
		return token{}, 0, false
	}
	raw := z.Raw()
	n := len(raw)
	if !e.eof && n >= len(e.text) && !closed(tt, raw) {
		return token{}, 0, false
	}

	t := z.Token()
	tok := token{
		kind:     tt,
		name:     t.Data,
		atom:     t.DataAtom,
		inserted: e.inserted > 0,
		line:     e.line,
		col:      e.col,
	}
	switch tt {
	case html.SelfClosingTagToken:
		tok.kind = html.StartTagToken
		tok.selfClosing = true
		tok.attrs = e.dedupe(&tok, t.Attr)
	case html.StartTagToken:
		tok.attrs = e.dedupe(&tok, t.Attr)
	case html.TextToken, html.CommentToken:
		tok.name = ""
		tok.data = t.Data
	case html.DoctypeToken:
		tok.doctype = parseDoctype(t.Data, !bytes.HasSuffix(raw, []byte(">")))
		tok.name = tok.doctype.name
	}
	return tok, n, true
}

// closed reports whether raw, which runs to the end of the buffered text, is a
// finished construct.
func closed(tt html.TokenType, raw []byte) bool {
	switch tt {
	case html.StartTagToken, html.EndTagToken, html.SelfClosingTagToken, html.DoctypeToken:
		return bytes.HasSuffix(raw, []byte(">"))
	case html.CommentToken:
		if !bytes.HasPrefix(raw, []byte("<!--")) {
			return bytes.HasSuffix(raw, []byte(">"))
		}
		s := string(raw)
		return s == "<!-->" || s == "<!--->" ||
			(len(s) >= 7 && (strings.HasSuffix(s, "-->") || strings.HasSuffix(s, "--!>")))
	default:
		return false
	}
}

// dedupe drops repeated attribute names; the first occurrence wins.
func (e *Engine) dedupe(tok *token, attrs []html.Attribute) []html.Attribute {
	if len(attrs) < 2 {
		return attrs
	}
	out := make([]html.Attribute, 0, len(attrs))
	for _, a := range attrs {
		dup := false
		for _, kept := range out {
			if kept.Key == a.Key {
				dup = true
				break
			}
		}
		if dup {
			e.parseError(tok, "duplicate attribute "+a.Key)
			continue
		}
		out = append(out, a)
	}
	return out
}

// consume advances past n bytes of unconsumed text.
func (e *Engine) consume(n int) {
	for _, c := range e.text[:n] {
		if c == '\n' {
			e.line++
			e.col = 1
		} else {
			e.col++
		}
	}
	e.text = e.text[n:]
	e.inserted = max(0, e.inserted-n)
}

// parseDoctype parses the text between "<!DOCTYPE" and ">".
func parseDoctype(s string, eof bool) doctype {
	d := doctype{forceQuirks: eof}
	s = strings.TrimLeft(s, whitespace)

	end := strings.IndexAny(s, whitespace)
	if end < 0 {
		end = len(s)
	}
	d.name = strings.ToLower(s[:end])
	if d.name == "" {
		d.forceQuirks = true
		return d
	}
	s = strings.TrimLeft(s[end:], whitespace)
	if s == "" {
		return d
	}

	var ok bool
	switch {
	case len(s) >= 6 && strings.EqualFold(s[:6], "public"):
		d.publicID, s, ok = quoted(strings.TrimLeft(s[6:], whitespace))
		if !ok {
			d.forceQuirks = true
			return d
		}
		d.hasPublic = true
		s = strings.TrimLeft(s, whitespace)
		if s == "" {
			return d
		}
		d.systemID, _, ok = quoted(s)
		if !ok {
			d.forceQuirks = true
			return d
		}
		d.hasSystem = true
	case len(s) >= 6 && strings.EqualFold(s[:6], "system"):
		d.systemID, _, ok = quoted(strings.TrimLeft(s[6:], whitespace))
		if !ok {
			d.forceQuirks = true
			return d
		}
		d.hasSystem = true
	default:
		d.forceQuirks = true
	}
	return d
}

// quoted reads a single- or double-quoted identifier from the start of s.
func quoted(s string) (id, rest string, ok bool) {
	if s == "" || (s[0] != '"' && s[0] != '\'') {
		return "", s, false
	}
	q := s[0]
	end := strings.IndexByte(s[1:], q)
	if end < 0 {
		return s[1:], "", false
	}
	return s[1 : 1+end], s[2+end:], true
}
