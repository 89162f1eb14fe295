// Package credential implements the httpbin bearer-token credential: its
// metadata, request authentication and self-test.
package credential

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/jmylchreest/palettenode/internal/node"
	"github.com/jmylchreest/palettenode/internal/security"
)

const (
	// Name is the credential's registered type name.
	Name = "httpbinApi"

	// DefaultDomain is the API base URL used when none is configured.
	DefaultDomain = "https://httpbin.org"

	// TestPath is requested to verify a token.
	TestPath = "/bearer"
)

// Description is the metadata a host uses to register a credential type.
type Description struct {
	Name         string          `json:"name"`
	DisplayName  string          `json:"displayName"`
	Properties   []node.Property `json:"properties"`
	Authenticate Authenticate    `json:"authenticate"`
	Test         TestRequest     `json:"test"`
}

// Authenticate declares how the credential is injected into requests.
type Authenticate struct {
	Type    string            `json:"type"`
	Headers map[string]string `json:"headers"`
}

// TestRequest declares the request used to check the credential.
type TestRequest struct {
	BaseURL string `json:"baseURL"`
	URL     string `json:"url"`
}

// HTTPBinDescription returns the credential's metadata.
func HTTPBinDescription() Description {
	return Description{
		Name:        Name,
		DisplayName: "HttpBin API",
		Properties: []node.Property{
			{
				DisplayName: "Token",
				Name:        "token",
				Type:        node.PropertyString,
				Default:     "",
				TypeOptions: &node.TypeOptions{Password: true},
			},
			{
				DisplayName: "Domain",
				Name:        "domain",
				Type:        node.PropertyString,
				Default:     DefaultDomain,
			},
		},
		Authenticate: Authenticate{
			Type:    "generic",
			Headers: map[string]string{"Authorization": "Bearer {token}"},
		},
		Test: TestRequest{BaseURL: "{domain}", URL: TestPath},
	}
}

// HTTPBin holds a bearer token and the API base URL.
type HTTPBin struct {
	Token  string
	Domain string
}

// New returns a credential; an empty domain selects DefaultDomain.
func New(token, domain string) HTTPBin {
	if strings.TrimSpace(domain) == "" {
		domain = DefaultDomain
	}
	return HTTPBin{Token: token, Domain: strings.TrimRight(domain, "/")}
}

// Authenticate sets the Authorization header on req.
func (c HTTPBin) Authenticate(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.Token)
}

// Transport returns a RoundTripper that authenticates every request before
// handing it to base. A nil base uses http.DefaultTransport.
func (c HTTPBin) Transport(base http.RoundTripper) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	return &roundTripper{base: base, cred: c}
}

// Test sends GET {domain}/bearer through client and succeeds on HTTP 200.
// A nil client gets a default one with a 10 second timeout.
func (c HTTPBin) Test(ctx context.Context, client *http.Client) error {
	if c.Token == "" {
		return fmt.Errorf("credential %s: token is empty", Name)
	}
	if err := security.ValidateHTTPURL(c.Domain); err != nil {
		return fmt.Errorf("credential %s: invalid domain: %w", Name, err)
	}
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.Domain+TestPath, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	c.Authenticate(req)

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("credential test request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("credential test failed: HTTP %d: %s", resp.StatusCode, resp.Status)
	}
	return nil
}

type roundTripper struct {
	base http.RoundTripper
	cred HTTPBin
}

func (t *roundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	newReq := req.Clone(req.Context())
	t.cred.Authenticate(newReq)
	return t.base.RoundTrip(newReq)
}
