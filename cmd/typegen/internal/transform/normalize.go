// Package transform rewrites openapi-typescript output and derives the
// endpoint, format and packet files from it. Everything here is a pure
// function of its input text.
package transform

import (
	"regexp"
	"strings"

	"github.com/limbus/typegen/cmd/typegen/internal/config"
)

// Normalizer applies the configured rewrite table to generated text.
type Normalizer struct {
	trim    *regexp.Regexp
	trimTo  map[string]string
	renames []config.Replacement
	drop    *regexp.Regexp
}

// NewNormalizer compiles the rewrite table.
func NewNormalizer(rules *config.Rules) *Normalizer {
	n := &Normalizer{}
	if rules == nil {
		return n
	}

	if len(rules.TrimPrefixes) > 0 {
		// Only identifiers assigned a route literal, e.g. `PostLobbyEnter = "/lobby/enter"`.
		// One alternation so each identifier loses at most one prefix.
		n.trimTo = make(map[string]string, len(rules.TrimPrefixes))
		prefixes := make([]string, 0, len(rules.TrimPrefixes))
		for _, r := range rules.TrimPrefixes {
			if _, seen := n.trimTo[r.From]; seen {
				continue
			}
			n.trimTo[r.From] = r.To
			prefixes = append(prefixes, regexp.QuoteMeta(r.From))
		}
		n.trim = regexp.MustCompile(`\b(` + strings.Join(prefixes, "|") + `)([A-Z]\w*\s*=\s*"/)`)
	}

	n.renames = rules.Renames

	if len(rules.DropAliases) > 0 {
		names := make([]string, len(rules.DropAliases))
		for i, name := range rules.DropAliases {
			names[i] = regexp.QuoteMeta(name)
		}
		n.drop = regexp.MustCompile(`(?m)^export type (?:` + strings.Join(names, "|") + `)[\s<=][^\n]*(?:\n|$)`)
	}
	return n
}

// Normalize trims verb prefixes, applies renames and removes dropped
// aliases, in that order.
func (n *Normalizer) Normalize(src string) string {
	out := src
	if n.trim != nil {
		out = n.trim.ReplaceAllStringFunc(out, func(m string) string {
			sub := n.trim.FindStringSubmatch(m)
			return n.trimTo[sub[1]] + sub[2]
		})
	}
	for _, r := range n.renames {
		out = strings.ReplaceAll(out, r.From, r.To)
	}
	if n.drop != nil {
		out = n.drop.ReplaceAllString(out, "")
	}
	return out
}
