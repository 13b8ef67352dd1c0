package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/net/html"

	"github.com/yaklabco/html5bridge/pkg/native"
)

func TestParseDoctype(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		eof  bool
		want doctype
	}{
		{
			name: "html5",
			in:   " html",
			want: doctype{name: "html"},
		},
		{
			name: "upper case name",
			in:   " HTML",
			want: doctype{name: "html"},
		},
		{
			name: "public and system",
			in:   ` html PUBLIC "-//W3C//DTD HTML 4.01//EN" 'http://www.w3.org/TR/html4/strict.dtd'`,
			want: doctype{
				name: "html", publicID: "-//W3C//DTD HTML 4.01//EN", hasPublic: true,
				systemID: "http://www.w3.org/TR/html4/strict.dtd", hasSystem: true,
			},
		},
		{
			name: "system only",
			in:   ` html SYSTEM "about:legacy-compat"`,
			want: doctype{name: "html", systemID: "about:legacy-compat", hasSystem: true},
		},
		{
			name: "empty public id",
			in:   ` html public ""`,
			want: doctype{name: "html", hasPublic: true},
		},
		{
			name: "unquoted public id",
			in:   " html PUBLIC foo",
			want: doctype{name: "html", forceQuirks: true},
		},
		{
			name: "unterminated public id",
			in:   ` html PUBLIC "foo`,
			want: doctype{name: "html", publicID: "foo", forceQuirks: true},
		},
		{
			name: "garbage after name",
			in:   " html bogus",
			want: doctype{name: "html", forceQuirks: true},
		},
		{
			name: "missing name",
			in:   "",
			want: doctype{forceQuirks: true},
		},
		{
			name: "end of input",
			in:   " html",
			eof:  true,
			want: doctype{name: "html", forceQuirks: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, parseDoctype(tt.in, tt.eof))
		})
	}
}

func TestClosed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		tt   html.TokenType
		raw  string
		want bool
	}{
		{html.StartTagToken, "<p>", true},
		{html.EndTagToken, "</p>", true},
		{html.DoctypeToken, "<!DOCTYPE html", false},
		{html.CommentToken, "<!---->", true},
		{html.CommentToken, "<!-->", true},
		{html.CommentToken, "<!-- a --", false},
		{html.CommentToken, "<!-- a --!>", true},
		{html.CommentToken, "<!--->", true},
		{html.CommentToken, "<?xml?>", true},
		{html.CommentToken, "<?xml", false},
		{html.TextToken, "abc", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, closed(tt.tt, []byte(tt.raw)), tt.raw)
	}
}

func TestCharsetFromContent(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"text/html; charset=utf-8":         "utf-8",
		"text/html;charset=\"koi8-r\"":     "koi8-r",
		"text/html; CHARSET = 'shift_jis'": "shift_jis",
		"text/html; charset=utf-8; x=y":    "utf-8",
		"text/html":                        "",
		"text/html; charset=":              "",
		"text/html; charset=\"unclosed":    "",
		"charsetcharset=big5":              "big5",
	}
	for content, want := range tests {
		assert.Equal(t, want, charsetFromContent(content), content)
	}
}

func TestQuirksFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		d    doctype
		want native.QuirksMode
	}{
		{"html5", doctype{name: "html"}, native.QuirksModeNone},
		{"force quirks", doctype{name: "html", forceQuirks: true}, native.QuirksModeFull},
		{"other name", doctype{name: "svg"}, native.QuirksModeFull},
		{"public html", doctype{name: "html", publicID: "HTML", hasPublic: true}, native.QuirksModeFull},
		{
			"html 3.2",
			doctype{name: "html", publicID: "-//W3C//DTD HTML 3.2 Final//EN", hasPublic: true},
			native.QuirksModeFull,
		},
		{
			"html 4.01 strict",
			doctype{name: "html", publicID: "-//W3C//DTD HTML 4.01//EN", hasPublic: true},
			native.QuirksModeNone,
		},
		{
			"html 4.01 frameset without system id",
			doctype{name: "html", publicID: "-//W3C//DTD HTML 4.01 Frameset//EN", hasPublic: true},
			native.QuirksModeFull,
		},
		{
			"html 4.01 frameset with system id",
			doctype{
				name: "html", publicID: "-//W3C//DTD HTML 4.01 Frameset//EN", hasPublic: true,
				systemID: "http://www.w3.org/TR/html4/frameset.dtd", hasSystem: true,
			},
			native.QuirksModeLimited,
		},
		{
			"xhtml 1.0 frameset",
			doctype{name: "html", publicID: "-//W3C//DTD XHTML 1.0 Frameset//EN", hasPublic: true},
			native.QuirksModeLimited,
		},
		{
			"ibm system id",
			doctype{
				name: "html", hasSystem: true,
				systemID: "http://www.ibm.com/data/dtd/v11/ibmxhtml1-transitional.dtd",
			},
			native.QuirksModeFull,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, quirksFor(tt.d))
		})
	}
}
