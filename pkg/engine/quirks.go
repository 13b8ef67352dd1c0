package engine

import (
	"strings"

	"github.com/yaklabco/html5bridge/pkg/native"
)

// Public identifier prefixes that put a document in quirks mode. Compared in
// lower case.
var quirkyPublicPrefixes = []string{
	"+//silmaril//dtd html pro v0r11 19970101//",
	"-//as//dtd html 3.0 aswedit + extensions//",
	"-//advasoft ltd//dtd html 3.0 aswedit + extensions//",
	"-//ietf//dtd html 2.0 level 1//",
	"-//ietf//dtd html 2.0 level 2//",
	"-//ietf//dtd html 2.0 strict level 1//",
	"-//ietf//dtd html 2.0 strict level 2//",
	"-//ietf//dtd html 2.0 strict//",
	"-//ietf//dtd html 2.0//",
	"-//ietf//dtd html 2.1e//",
	"-//ietf//dtd html 3.0//",
	"-//ietf//dtd html 3.2 final//",
	"-//ietf//dtd html 3.2//",
	"-//ietf//dtd html 3//",
	"-//ietf//dtd html level 0//",
	"-//ietf//dtd html level 1//",
	"-//ietf//dtd html level 2//",
	"-//ietf//dtd html level 3//",
	"-//ietf//dtd html strict level 0//",
	"-//ietf//dtd html strict level 1//",
	"-//ietf//dtd html strict level 2//",
	"-//ietf//dtd html strict level 3//",
	"-//ietf//dtd html strict//",
	"-//ietf//dtd html//",
	"-//metrius//dtd metrius presentational//",
	"-//microsoft//dtd internet explorer 2.0 html strict//",
	"-//microsoft//dtd internet explorer 2.0 html//",
	"-//microsoft//dtd internet explorer 2.0 tables//",
	"-//microsoft//dtd internet explorer 3.0 html strict//",
	"-//microsoft//dtd internet explorer 3.0 html//",
	"-//microsoft//dtd internet explorer 3.0 tables//",
	"-//netscape comm. corp.//dtd html//",
	"-//netscape comm. corp.//dtd strict html//",
	"-//o'reilly and associates//dtd html 2.0//",
	"-//o'reilly and associates//dtd html extended 1.0//",
	"-//o'reilly and associates//dtd html extended relaxed 1.0//",
	"-//sq//dtd html 2.0 hotmetal + extensions//",
	"-//softquad software//dtd hotmetal pro 6.0::19990601::extensions to html 4.0//",
	"-//softquad//dtd hotmetal pro 4.0::19971010::extensions to html 4.0//",
	"-//spyglass//dtd html 2.0 extended//",
	"-//sun microsystems corp.//dtd hotjava html//",
	"-//sun microsystems corp.//dtd hotjava strict html//",
	"-//w3c//dtd html 3 1995-03-24//",
	"-//w3c//dtd html 3.2 draft//",
	"-//w3c//dtd html 3.2 final//",
	"-//w3c//dtd html 3.2//",
	"-//w3c//dtd html 3.2s draft//",
	"-//w3c//dtd html 4.0 frameset//",
	"-//w3c//dtd html 4.0 transitional//",
	"-//w3c//dtd html experimental 19960712//",
	"-//w3c//dtd html experimental 970421//",
	"-//w3c//dtd w3 html//",
	"-//w3o//dtd w3 html 3.0//",
	"-//webtechs//dtd mozilla html 2.0//",
	"-//webtechs//dtd mozilla html//",
}

const (
	html401Frameset     = "-//w3c//dtd html 4.01 frameset//"
	html401Transitional = "-//w3c//dtd html 4.01 transitional//"
	xhtml1Frameset      = "-//w3c//dtd xhtml 1.0 frameset//"
	xhtml1Transitional  = "-//w3c//dtd xhtml 1.0 transitional//"
	ibmXHTMLSystemID    = "http://www.ibm.com/data/dtd/v11/ibmxhtml1-transitional.dtd"
)

// quirksFor determines the document mode a doctype selects.
func quirksFor(d doctype) native.QuirksMode {
	if isForceQuirks(d) {
		return native.QuirksModeFull
	}
	if isLimitedQuirks(d) {
		return native.QuirksModeLimited
	}
	return native.QuirksModeNone
}

func isForceQuirks(d doctype) bool {
	if d.forceQuirks || d.name != "html" {
		return true
	}

	public := strings.ToLower(d.publicID)
	system := strings.ToLower(d.systemID)

	if d.hasPublic {
		switch public {
		case "-//w3o//dtd w3 html strict 3.0//en//", "-/w3c/dtd html 4.0 transitional/en", "html":
			return true
		}
		for _, prefix := range quirkyPublicPrefixes {
			if strings.HasPrefix(public, prefix) {
				return true
			}
		}
		if !d.hasSystem &&
			(strings.HasPrefix(public, html401Frameset) || strings.HasPrefix(public, html401Transitional)) {
			return true
		}
	}
	return d.hasSystem && system == ibmXHTMLSystemID
}

func isLimitedQuirks(d doctype) bool {
	if !d.hasPublic {
		return false
	}
	public := strings.ToLower(d.publicID)
	if strings.HasPrefix(public, xhtml1Frameset) || strings.HasPrefix(public, xhtml1Transitional) {
		return true
	}
	return d.hasSystem &&
		(strings.HasPrefix(public, html401Frameset) || strings.HasPrefix(public, html401Transitional))
}
