package transform

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// routeKeyRe matches object keys such as `    "/lobby/enter": {`.
var routeKeyRe = regexp.MustCompile(`(?m)^\s*"([^"]+)": \{`)

// PacketSet accumulates alias blocks and skipped candidates for one run.
// Blocks are keyed by alias base: when two routes derive the same base the
// first one added is kept and the later ones are recorded as collisions.
type PacketSet struct {
	blocks     map[string]packet
	skipped    map[string]struct{}
	collisions map[string][]string
}

type packet struct {
	route string
	block string
}

// NewPacketSet returns an empty set.
func NewPacketSet() *PacketSet {
	return &PacketSet{
		blocks:     map[string]packet{},
		skipped:    map[string]struct{}{},
		collisions: map[string][]string{},
	}
}

// Add derives the alias pair for route. It reports false and records the
// route as skipped when it does not start with "/" or has fewer than two
// segments.
func (p *PacketSet) Add(route string) bool {
	base, ok := AliasBase(route)
	if !ok {
		p.skipped[route] = struct{}{}
		return false
	}
	if kept, exists := p.blocks[base]; exists {
		if kept.route != route {
			p.collisions[base] = append(p.collisions[base], route)
		}
		return true
	}
	p.blocks[base] = packet{route: route, block: aliasBlock(base, route)}
	return true
}

// Len returns the number of retained alias pairs.
func (p *PacketSet) Len() int {
	return len(p.blocks)
}

// Blocks returns the alias blocks sorted by their full text.
func (p *PacketSet) Blocks() []string {
	blocks := make([]string, 0, len(p.blocks))
	for _, pk := range p.blocks {
		blocks = append(blocks, pk.block)
	}
	sort.Strings(blocks)
	return blocks
}

// Skipped returns the rejected candidates, sorted.
func (p *PacketSet) Skipped() []string {
	skipped := make([]string, 0, len(p.skipped))
	for route := range p.skipped {
		skipped = append(skipped, route)
	}
	sort.Strings(skipped)
	return skipped
}

// Collisions maps an alias base to the routes that were dropped because an
// earlier route already derived it.
func (p *PacketSet) Collisions() map[string][]string {
	return p.collisions
}

// Render writes the packet file: the import line followed by every block.
func (p *PacketSet) Render(importFrom string) string {
	return fmt.Sprintf("import type { paths } from %q;\n", importFrom) + strings.Join(p.Blocks(), "\n") + "\n"
}

// DerivePackets scans src for route-keyed object literals and collects an
// alias pair for each qualifying route.
func DerivePackets(src string) *PacketSet {
	set := NewPacketSet()
	for _, m := range routeKeyRe.FindAllStringSubmatch(src, -1) {
		set.Add(m[1])
	}
	return set
}

// AliasBase derives the type name base for route: the first segment
// capitalized, followed by the second segment with only its first rune
// upper-cased. Routes that do not start with "/" or have fewer than two
// segments yield false.
func AliasBase(route string) (string, bool) {
	if !strings.HasPrefix(route, "/") {
		return "", false
	}
	parts := strings.Split(strings.Trim(route, "/"), "/")
	if len(parts) < 2 {
		return "", false
	}
	return Capitalize(parts[0]) + upperFirst(parts[1]), true
}

// Capitalize upper-cases the first rune of s and lower-cases the rest.
func Capitalize(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}

func upperFirst(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}

func aliasBlock(base, route string) string {
	return fmt.Sprintf("export type %sRsp = paths[%q][\"post\"][\"responses\"][200][\"content\"][\"application/json\"];\n", base, route) +
		fmt.Sprintf("export type %sReq = paths[%q][\"post\"][\"requestBody\"][\"content\"][\"application/json\"];", base, route)
}
