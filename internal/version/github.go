package version

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/go-github/v57/github"
	"golang.org/x/oauth2"

	"github.com/tsukumogami/g4install/internal/secrets"
)

// maxTagPages bounds tag pagination on the GitHub mirror (100 tags per page).
const maxTagPages = 5

// GitHubSource lists tags of the read-only GitHub mirror. It is useful when
// gitlab.cern.ch is unreachable from the build host.
type GitHubSource struct {
	client        *github.Client
	owner, repo   string
	authenticated bool
}

// NewGitHubSource creates a source for owner/repo. A github_token secret
// (GITHUB_TOKEN, GH_TOKEN or config.toml) enables authenticated requests.
func NewGitHubSource(owner, repo string) *GitHubSource {
	var httpClient *http.Client
	authenticated := false
	if token, err := secrets.Get("github_token"); err == nil {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		httpClient = oauth2.NewClient(context.Background(), ts)
		authenticated = true
	}
	return &GitHubSource{
		client:        github.NewClient(httpClient),
		owner:         owner,
		repo:          repo,
		authenticated: authenticated,
	}
}

// NewGitHubSourceWithClient uses an existing API client, e.g. one pointed
// at a test server with WithEnterpriseURLs.
func NewGitHubSourceWithClient(client *github.Client, owner, repo string) *GitHubSource {
	return &GitHubSource{client: client, owner: owner, repo: repo}
}

func (s *GitHubSource) Name() string { return "github" }

// ListVersions pages through the repository tags and keeps those that are
// plain release tags (v11.3.2, v11.2).
func (s *GitHubSource) ListVersions(ctx context.Context) ([]TargetVersion, error) {
	var versions []TargetVersion
	opts := &github.ListOptions{PerPage: 100}

	for page := 1; page <= maxTagPages; page++ {
		opts.Page = page
		tags, resp, err := s.client.Repositories.ListTags(ctx, s.owner, s.repo, opts)
		if err != nil {
			return nil, s.wrapError(err)
		}
		for _, tag := range tags {
			if v, err := Parse(tag.GetName()); err == nil {
				versions = append(versions, v)
			}
		}
		if resp == nil || resp.NextPage == 0 {
			break
		}
	}
	return versions, nil
}

func (s *GitHubSource) wrapError(err error) error {
	var rateErr *github.RateLimitError
	if errors.As(err, &rateErr) {
		return &ResolverError{
			Type:    ErrTypeRateLimit,
			Source:  s.Name(),
			Message: "failed to list tags",
			Err: &RateLimitError{
				Limit:         rateErr.Rate.Limit,
				Remaining:     rateErr.Rate.Remaining,
				ResetTime:     rateErr.Rate.Reset.Time,
				Authenticated: s.authenticated,
				Err:           err,
			},
		}
	}

	var respErr *github.ErrorResponse
	if errors.As(err, &respErr) && respErr.Response != nil && respErr.Response.StatusCode == http.StatusNotFound {
		return &ResolverError{
			Type:    ErrTypeNotFound,
			Source:  s.Name(),
			Message: fmt.Sprintf("repository %s/%s not found", s.owner, s.repo),
			Err:     err,
		}
	}
	return WrapNetworkError(err, s.Name(), "failed to list tags")
}
