package homeserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// HTTPDiscoverer resolves a user's homeserver through a pkarr/DHT resolver
// service reachable over plain HTTP. The actual pkarr/DHT lookup protocol
// is an external system this indexer does not implement; this is the
// narrow HTTP client boundary to whatever resolver process fronts it.
type HTTPDiscoverer struct {
	resolverURL string
	httpClient  *http.Client
}

// NewHTTPDiscoverer builds a Discoverer that queries resolverURL + "/resolve/<pubkey>".
func NewHTTPDiscoverer(resolverURL string, httpClient *http.Client) *HTTPDiscoverer {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &HTTPDiscoverer{resolverURL: resolverURL, httpClient: httpClient}
}

type resolveResponse struct {
	Homeserver string `json:"homeserver"`
}

// DiscoverHomeserver queries the resolver for userPublicKey's homeserver.
// Returns "" if the resolver has no record, matching the upstream pkarr/DHT
// lookup returning nothing.
func (d *HTTPDiscoverer) DiscoverHomeserver(ctx context.Context, userPublicKey string) (string, error) {
	url := fmt.Sprintf("%s/resolve/%s", d.resolverURL, userPublicKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("build resolve request for %s: %w", userPublicKey, err)
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("resolve homeserver for %s: %w", userPublicKey, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("resolve homeserver for %s: HTTP %s", userPublicKey, resp.Status)
	}

	var out resolveResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode resolve response for %s: %w", userPublicKey, err)
	}
	return out.Homeserver, nil
}
