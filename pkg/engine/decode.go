package engine

import (
	"bytes"
	"errors"
	"fmt"
	"unicode/utf8"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"
)

const defaultCharset = "windows-1252"

var errUnknownCharset = errors.New("unknown charset")

var boms = []struct {
	mark []byte
	name string
}{
	{[]byte{0xEF, 0xBB, 0xBF}, "utf-8"},
	{[]byte{0xFE, 0xFF}, "utf-16be"},
	{[]byte{0xFF, 0xFE}, "utf-16le"},
}

// decoder turns input bytes in the document charset into UTF-8 incrementally.
// Bytes that end mid-sequence stay pending until the next write.
type decoder struct {
	name    string
	dec     *encoding.Decoder
	pending []byte
	sniff   bool
}

func newDecoder(label string, sniff bool) (*decoder, error) {
	enc, name := charset.Lookup(label)
	if enc == nil {
		return nil, fmt.Errorf("%w: %q", errUnknownCharset, label)
	}
	return &decoder{name: name, dec: enc.NewDecoder(), sniff: sniff}, nil
}

// lookupCharset returns the canonical name for label, or "" if it is unknown.
func lookupCharset(label string) string {
	enc, name := charset.Lookup(label)
	if enc == nil {
		return ""
	}
	return name
}

// write decodes p. bom reports that a byte order mark switched the charset.
func (d *decoder) write(p []byte, atEOF bool) (out []byte, bom bool, err error) {
	d.pending = append(d.pending, p...)

	if d.sniff {
		name, size, wait := sniffBOM(d.pending)
		if wait && !atEOF {
			return nil, false, nil
		}
		d.sniff = false
		if name != "" {
			enc, canonical := charset.Lookup(name)
			d.name, d.dec = canonical, enc.NewDecoder()
			d.pending = d.pending[size:]
			bom = true
		}
	}

	for len(d.pending) > 0 {
		buf := make([]byte, len(d.pending)*3+utf8.UTFMax)
		nDst, nSrc, terr := d.dec.Transform(buf, d.pending, atEOF)
		out = append(out, buf[:nDst]...)
		d.pending = d.pending[nSrc:]
		switch {
		case terr == nil:
		case errors.Is(terr, transform.ErrShortDst) && (nDst > 0 || nSrc > 0):
		case errors.Is(terr, transform.ErrShortSrc):
			return out, bom, nil
		default:
			return out, bom, fmt.Errorf("decode %s: %w", d.name, terr)
		}
		if nSrc == 0 && nDst == 0 {
			break
		}
	}
	return out, bom, nil
}

// buffered returns the count of bytes not yet decoded.
func (d *decoder) buffered() int {
	return len(d.pending)
}

// sniffBOM matches a byte order mark at the start of p. wait reports that p is a
// proper prefix of some mark and more input is needed to decide.
func sniffBOM(p []byte) (name string, size int, wait bool) {
	for _, b := range boms {
		if bytes.HasPrefix(p, b.mark) {
			return b.name, len(b.mark), false
		}
		if len(p) < len(b.mark) && bytes.HasPrefix(b.mark, p) {
			wait = true
		}
	}
	return "", 0, wait
}
