package version

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/net/html"
)

// TagSource lists published releases, in no particular order.
type TagSource interface {
	Name() string
	ListVersions(ctx context.Context) ([]TargetVersion, error)
}

// maxTagPageSize limits the tag page body to prevent decompression bombs.
const maxTagPageSize = 10 * 1024 * 1024 // 10MB

// browserUserAgent is sent to the tag page, which rejects unknown clients.
const browserUserAgent = "Mozilla/5.0"

// GitLabSource scrapes the upstream GitLab tag page. The page is reduced to
// its visible text and link targets before tags are matched, so scripts
// and inline data never contribute versions.
type GitLabSource struct {
	client  *http.Client
	tagsURL string
}

// NewGitLabSource creates a source for the given tags page URL.
func NewGitLabSource(client *http.Client, tagsURL string) *GitLabSource {
	return &GitLabSource{client: client, tagsURL: tagsURL}
}

func (s *GitLabSource) Name() string { return "gitlab" }

// ListVersions fetches the tag page and extracts release tags from it.
func (s *GitLabSource) ListVersions(ctx context.Context) ([]TargetVersion, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.tagsURL, nil)
	if err != nil {
		return nil, &ResolverError{
			Type:    ErrTypeNetwork,
			Source:  s.Name(),
			Message: "failed to create request",
			Err:     err,
		}
	}
	req.Header.Set("User-Agent", browserUserAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, WrapNetworkError(err, s.Name(), "failed to fetch tag listing")
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, &ResolverError{
			Type:    ErrTypeNotFound,
			Source:  s.Name(),
			Message: fmt.Sprintf("tag listing not found at %s", s.tagsURL),
		}
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, &ResolverError{
			Type:    ErrTypeRateLimit,
			Source:  s.Name(),
			Message: "too many requests",
		}
	case resp.StatusCode != http.StatusOK:
		return nil, &ResolverError{
			Type:    ErrTypeNetwork,
			Source:  s.Name(),
			Message: fmt.Sprintf("unexpected status code: %d", resp.StatusCode),
		}
	}

	text, err := pageText(io.LimitReader(resp.Body, maxTagPageSize))
	if err != nil {
		return nil, &ResolverError{
			Type:    ErrTypeNetwork,
			Source:  s.Name(),
			Message: "failed to read response body",
			Err:     err,
		}
	}
	return ExtractVersions(text), nil
}

// pageText returns the text nodes and href values of an HTML document,
// one per line. Content of script and style elements is skipped.
func pageText(r io.Reader) (string, error) {
	var sb strings.Builder
	z := html.NewTokenizer(r)
	skip := 0
	for {
		switch z.Next() {
		case html.ErrorToken:
			if err := z.Err(); err != io.EOF {
				return "", err
			}
			return sb.String(), nil
		case html.StartTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			if tok.Data == "script" || tok.Data == "style" {
				if tok.Type == html.StartTagToken {
					skip++
				}
				continue
			}
			for _, a := range tok.Attr {
				if a.Key == "href" {
					sb.WriteString(a.Val)
					sb.WriteByte('\n')
				}
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			if (string(name) == "script" || string(name) == "style") && skip > 0 {
				skip--
			}
		case html.TextToken:
			if skip == 0 {
				sb.Write(z.Text())
				sb.WriteByte('\n')
			}
		}
	}
}
