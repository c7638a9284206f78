package version

import (
	"context"
	"net/http"
)

// ArchiveProber checks whether a source archive has been published.
type ArchiveProber struct {
	client     *http.Client
	archiveURL func(release string) string
}

// NewArchiveProber creates a prober. archiveURL maps a release string such
// as "11.3.2" to its archive URL.
func NewArchiveProber(client *http.Client, archiveURL func(release string) string) *ArchiveProber {
	return &ArchiveProber{client: client, archiveURL: archiveURL}
}

// URL returns the archive URL for v.
func (p *ArchiveProber) URL(v TargetVersion) string {
	return p.archiveURL(v.String())
}

// Available sends a HEAD request for the archive of v. Only 200 counts as
// published; transport failures are returned as errors.
func (p *ArchiveProber) Available(ctx context.Context, v TargetVersion) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, p.URL(v), nil)
	if err != nil {
		return false, &ResolverError{
			Type:    ErrTypeNetwork,
			Source:  "probe",
			Message: "failed to create request",
			Err:     err,
		}
	}
	req.Header.Set("User-Agent", browserUserAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		return false, WrapNetworkError(err, "probe", "failed to check archive "+v.Tag())
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK, nil
}
