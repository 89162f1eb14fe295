package credential

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// bearerServer mimics httpbin's /bearer endpoint.
func bearerServer(t *testing.T, token string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != TestPath {
			http.NotFound(w, r)
			return
		}
		if r.Header.Get("Authorization") != "Bearer "+token {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"authenticated": true, "token": token})
	}))
	t.Cleanup(server.Close)
	return server
}

func TestNewDefaultsDomain(t *testing.T) {
	assert.Equal(t, DefaultDomain, New("t", "").Domain)
	assert.Equal(t, "https://example.com", New("t", "https://example.com/").Domain)
}

func TestAuthenticate(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "https://example.com", nil)
	New("secret", "").Authenticate(req)
	assert.Equal(t, "Bearer secret", req.Header.Get("Authorization"))
}

func TestHTTPBinTest(t *testing.T) {
	server := bearerServer(t, "secret")

	tests := []struct {
		name    string
		cred    HTTPBin
		wantErr string
	}{
		{name: "valid token", cred: New("secret", server.URL)},
		{name: "wrong token", cred: New("nope", server.URL), wantErr: "401"},
		{name: "empty token", cred: New("", server.URL), wantErr: "token is empty"},
		{name: "bad domain", cred: New("secret", "ftp://example.com"), wantErr: "invalid domain"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cred.Test(context.Background(), server.Client())
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestTransportAuthenticatesWithoutMutatingRequest(t *testing.T) {
	server := bearerServer(t, "secret")
	cred := New("secret", server.URL)

	client := &http.Client{Transport: cred.Transport(server.Client().Transport)}
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, server.URL+TestPath, nil)
	require.NoError(t, err)

	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, req.Header.Get("Authorization"))
}

func TestHTTPBinDescription(t *testing.T) {
	d := HTTPBinDescription()

	assert.Equal(t, "httpbinApi", d.Name)
	assert.Equal(t, "HttpBin API", d.DisplayName)
	require.Len(t, d.Properties, 2)
	assert.Equal(t, "token", d.Properties[0].Name)
	require.NotNil(t, d.Properties[0].TypeOptions)
	assert.True(t, d.Properties[0].TypeOptions.Password)
	assert.Equal(t, DefaultDomain, d.Properties[1].Default)
	assert.Equal(t, TestPath, d.Test.URL)

	data, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"password":true`)
}
