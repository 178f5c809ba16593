// Package schema reads the OpenAPI document fed to the generator and
// describes which routes the packet aliases will resolve against.
package schema

import (
	"fmt"
	"sort"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/limbus/typegen/cmd/typegen/internal/transform"
)

const jsonMIME = "application/json"

// Route is one path of the document as seen by the packet aliases.
type Route struct {
	Path         string
	Alias        string // derived alias base, empty when the route is skipped
	HasPost      bool
	JSONRequest  bool // post has an application/json request body
	JSONResponse bool // post has an application/json 200 response
}

// IssueKind classifies a route diagnostic.
type IssueKind string

const (
	IssueSkipped       IssueKind = "skipped"
	IssueNoPost        IssueKind = "no-post"
	IssueNoJSONRequest IssueKind = "no-json-request"
	IssueNoJSONReply   IssueKind = "no-json-response"
	IssueCollision     IssueKind = "collision"
)

// Issue is a problem found for a single route.
type Issue struct {
	Path   string
	Kind   IssueKind
	Detail string
}

func (i Issue) String() string {
	return fmt.Sprintf("%s: %s (%s)", i.Path, i.Kind, i.Detail)
}

// Load parses the document at path and returns its routes sorted by path.
func Load(path string) ([]Route, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load schema %s: %w", path, err)
	}
	return Routes(doc), nil
}

// Routes builds the route model of an already loaded document.
func Routes(doc *openapi3.T) []Route {
	if doc == nil || doc.Paths == nil {
		return nil
	}

	items := doc.Paths.Map()
	routes := make([]Route, 0, len(items))
	for path, item := range items {
		route := Route{Path: path}
		route.Alias, _ = transform.AliasBase(path)

		if item != nil && item.Post != nil {
			op := item.Post
			route.HasPost = true
			if op.RequestBody != nil && op.RequestBody.Value != nil {
				route.JSONRequest = op.RequestBody.Value.Content.Get(jsonMIME) != nil
			}
			if op.Responses != nil {
				if rsp := op.Responses.Value("200"); rsp != nil && rsp.Value != nil {
					route.JSONResponse = rsp.Value.Content.Get(jsonMIME) != nil
				}
			}
		}
		routes = append(routes, route)
	}

	sort.Slice(routes, func(i, j int) bool { return routes[i].Path < routes[j].Path })
	return routes
}

// Check reports routes whose packet aliases would be dropped or would not
// resolve in the generated types. Collisions follow the order the packet
// deriver keeps: the first route in path order wins.
func Check(routes []Route) []Issue {
	var issues []Issue
	owner := map[string]string{}

	for _, r := range routes {
		if r.Alias == "" {
			issues = append(issues, Issue{Path: r.Path, Kind: IssueSkipped, Detail: "needs a leading slash and two segments"})
			continue
		}

		if first, taken := owner[r.Alias]; taken {
			issues = append(issues, Issue{Path: r.Path, Kind: IssueCollision, Detail: fmt.Sprintf("%s already derived from %s", r.Alias, first)})
		} else {
			owner[r.Alias] = r.Path
		}

		switch {
		case !r.HasPost:
			issues = append(issues, Issue{Path: r.Path, Kind: IssueNoPost, Detail: r.Alias + "Req/" + r.Alias + "Rsp index a missing post operation"})
		default:
			if !r.JSONRequest {
				issues = append(issues, Issue{Path: r.Path, Kind: IssueNoJSONRequest, Detail: r.Alias + "Req"})
			}
			if !r.JSONResponse {
				issues = append(issues, Issue{Path: r.Path, Kind: IssueNoJSONReply, Detail: r.Alias + "Rsp"})
			}
		}
	}
	return issues
}
