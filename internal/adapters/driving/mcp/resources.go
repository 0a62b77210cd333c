package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/sercha-library/internal/core/domain"
)

const uriScheme = "library://"

// groupURIPrefix addresses a single group. Keys are usually URLs themselves,
// so every reserved character is percent-encoded to fit one template segment.
const groupURIPrefix = uriScheme + "groups/"

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "page",
		Name:        "current-page",
		Description: "The current page of library groups",
		MIMEType:    "application/json",
	}, s.handlePageResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: groupURIPrefix + "{key}",
		Name:        "group",
		Description: "A library group with its records and text",
		MIMEType:    "application/json",
	}, s.handleGroupResource)
}

// groupURI returns the resource URI for a group key.
func groupURI(key string) string {
	return groupURIPrefix + strings.ReplaceAll(url.QueryEscape(key), "+", "%20")
}

// extractGroupKey reverses groupURI. It returns "" for foreign URIs.
func extractGroupKey(uri string) string {
	escaped, ok := strings.CutPrefix(uri, groupURIPrefix)
	if !ok || escaped == "" {
		return ""
	}
	key, err := url.PathUnescape(escaped)
	if err != nil {
		return ""
	}
	return key
}

func (s *Server) handlePageResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	page, err := s.ports.Library.GetCurrentPage(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading page: %w", err)
	}
	return jsonResource(req.Params.URI, toPageOutput(page, s.ports.Library.Filter()))
}

// groupRecord is one leaf in the group resource.
type groupRecord struct {
	ID          string         `json:"id"`
	URL         string         `json:"url,omitempty"`
	ContentType string         `json:"content_type"`
	Text        string         `json:"text,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

type groupResource struct {
	GroupOutput
	Text    string        `json:"text,omitempty"`
	Records []groupRecord `json:"items"`
}

func (s *Server) handleGroupResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	key := extractGroupKey(req.Params.URI)
	if key == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	g, err := s.ports.Library.FindGroup(ctx, key)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if err != nil {
		return nil, fmt.Errorf("finding group: %w", err)
	}

	res := groupResource{
		GroupOutput: toGroupOutput(g),
		Text:        g.CombinedText,
		Records:     make([]groupRecord, len(g.Records)),
	}
	for i := range g.Records {
		r := &g.Records[i]
		res.Records[i] = groupRecord{
			ID:          r.ID,
			URL:         r.URL,
			ContentType: r.ContentType.String(),
			Text:        r.Text,
			Metadata:    r.Metadata,
		}
	}
	return jsonResource(req.Params.URI, res)
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling resource: %w", err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}
