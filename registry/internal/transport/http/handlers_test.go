package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/williamhogman/cluster-registry/registry/internal/persistence"
	"github.com/williamhogman/cluster-registry/registry/internal/service"
)

type noopResolver struct{}

func (noopResolver) ResolveSeedHosts(ctx context.Context, clusterName string) ([]string, error) {
	return nil, nil
}

func setupServer(t *testing.T) *httptest.Server {
	t.Helper()
	registry := service.NewRegistryService(persistence.NewMemoryStore(), noopResolver{}, zap.NewNop())
	srv := httptest.NewServer(NewHandler(NewClusterHandler(registry, zap.NewNop())))
	t.Cleanup(srv.Close)
	return srv
}

func doRequest(t *testing.T, srv *httptest.Server, method, path, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, srv.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeView(t *testing.T, resp *http.Response) clusterView {
	t.Helper()
	var view clusterView
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&view))
	return view
}

func TestHealth(t *testing.T) {
	srv := setupServer(t)

	resp := doRequest(t, srv, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRegisterAndGet(t *testing.T) {
	srv := setupServer(t)

	resp := doRequest(t, srv, http.MethodPost, "/clusters",
		`{"name":"Foo_Bar.1","seedHosts":["10.0.0.1"]}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	view := decodeView(t, resp)
	assert.Equal(t, "foo_bar.1", view.Name)
	assert.Equal(t, 7199, view.JmxPort)
	assert.Nil(t, view.Partitioner)

	// Lookup by a raw name with the same canonical form
	resp = doRequest(t, srv, http.MethodGet, "/clusters/"+url.PathEscape("FOO_BAR.1"), "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{"10.0.0.1"}, decodeView(t, resp).SeedHosts)
}

func TestRegister_Errors(t *testing.T) {
	srv := setupServer(t)

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"malformed", `{`, http.StatusBadRequest},
		{"missing seed hosts", `{"name":"x"}`, http.StatusBadRequest},
		{"missing name", `{"seedHosts":["h1"]}`, http.StatusBadRequest},
		{"invalid port", `{"name":"x","seedHosts":["h1"],"jmxPort":99999}`, http.StatusBadRequest},
		{"empty canonical name", `{"name":"!!!","seedHosts":["h1"]}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := doRequest(t, srv, http.MethodPost, "/clusters", tt.body)
			assert.Equal(t, tt.status, resp.StatusCode)

			var body errorBody
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.NotEmpty(t, body.Error)
		})
	}
}

func TestRegister_Conflict(t *testing.T) {
	srv := setupServer(t)

	resp := doRequest(t, srv, http.MethodPost, "/clusters", `{"name":"my-cluster","seedHosts":[]}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = doRequest(t, srv, http.MethodPost, "/clusters", `{"name":"My-Cluster!","seedHosts":[]}`)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestUpdate(t *testing.T) {
	srv := setupServer(t)

	resp := doRequest(t, srv, http.MethodPost, "/clusters",
		`{"name":"x","seedHosts":["h1"],"jmxPort":9999,"partitioner":"p1"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = doRequest(t, srv, http.MethodPatch, "/clusters/x", `{"seedHosts":["h2"]}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	view := decodeView(t, resp)
	assert.Equal(t, "x", view.Name)
	assert.Equal(t, 9999, view.JmxPort)
	assert.Equal(t, []string{"h2"}, view.SeedHosts)
	require.NotNil(t, view.Partitioner)
	assert.Equal(t, "p1", *view.Partitioner)

	resp = doRequest(t, srv, http.MethodPatch, "/clusters/x", `{"partitioner":"p2"}`)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = doRequest(t, srv, http.MethodPatch, "/clusters/missing", `{}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestListAndDelete(t *testing.T) {
	srv := setupServer(t)

	for _, body := range []string{`{"name":"b","seedHosts":["h1"]}`, `{"name":"a","seedHosts":["h1"]}`} {
		resp := doRequest(t, srv, http.MethodPost, "/clusters", body)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	resp := doRequest(t, srv, http.MethodGet, "/clusters", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var views []clusterView
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&views))
	require.Len(t, views, 2)
	assert.Equal(t, "a", views[0].Name)

	resp = doRequest(t, srv, http.MethodDelete, "/clusters/A", "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = doRequest(t, srv, http.MethodDelete, "/clusters/a", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRequestBodyTooLarge(t *testing.T) {
	srv := setupServer(t)

	hosts := `"` + strings.Repeat("h", maxBodyBytes) + `"`
	oversized := `{"name":"big","seedHosts":[` + hosts + `]}`

	resp := doRequest(t, srv, http.MethodPost, "/clusters", oversized)
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)

	resp = doRequest(t, srv, http.MethodGet, "/clusters/big", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = doRequest(t, srv, http.MethodPost, "/clusters", `{"name":"big","seedHosts":["h1"]}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = doRequest(t, srv, http.MethodPatch, "/clusters/big", `{"seedHosts":[`+hosts+`]}`)
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
}
