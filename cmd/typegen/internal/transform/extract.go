package transform

import (
	"fmt"
	"regexp"
	"strings"
)

const defsMarker = "export type $defs = Record<string, never>;"

var (
	formatBlockRe  = regexp.MustCompile(`(?s)(pathItems: never;\s*\})(.*?)` + regexp.QuoteMeta(defsMarker))
	endpointEnumRe = regexp.MustCompile(`(?s)export enum \w+ \{.*?\}`)
)

// Extraction is a region cut out of the working text.
type Extraction struct {
	Content string // artifact body, empty when Found is false
	Rest    string // working text after removal
	Found   bool
}

// ExtractFormats moves the root component aliases emitted between the
// components interface and $defs into their own file. importFrom is the
// module the aliases resolve `components` against.
func ExtractFormats(src, importFrom string) Extraction {
	loc := formatBlockRe.FindStringSubmatchIndex(src)
	if loc == nil {
		return Extraction{Rest: src}
	}

	marker := src[loc[2]:loc[3]]
	body := strings.TrimSpace(src[loc[4]:loc[5]])

	content := fmt.Sprintf("import type { components } from %q;\n%s\n", importFrom, body)
	rest := src[:loc[0]] + marker + "\n" + defsMarker + src[loc[1]:]

	return Extraction{Content: content, Rest: rest, Found: true}
}

// ExtractEndpoints moves the first exported enum (the paths enum) into its
// own file.
func ExtractEndpoints(src string) Extraction {
	loc := endpointEnumRe.FindStringIndex(src)
	if loc == nil {
		return Extraction{Rest: src}
	}

	content := src[loc[0]:loc[1]] + "\n"

	end := loc[1]
	if end < len(src) && src[end] == '\n' {
		end++
	}

	return Extraction{Content: content, Rest: src[:loc[0]] + src[end:], Found: true}
}
