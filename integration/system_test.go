//go:build integration
// +build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"net/url"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var (
	baseURL = getenv("E2E_BASE_URL", "http://localhost:3000")
	apiKey  = getenv("E2E_API_KEY", "itemstore-api-key")
)

type item struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
}

func TestSystem_E2E(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	waitReady(t, ctx, baseURL+"/readyz")

	name := fmt.Sprintf("e2e_%d_%d", time.Now().Unix(), rand.Intn(100000))

	var created item
	doJSON(t, http.MethodPost, baseURL+"/items", "", map[string]any{"name": name}, &created, 201)
	require.Equal(t, name, created.Name)
	require.True(t, created.ID >= 1000 && created.ID <= 9999, "created=%+v", created)

	doJSON(t, http.MethodPost, baseURL+"/items", "", map[string]any{"name": name}, nil, 409)

	var got item
	doJSON(t, http.MethodGet, baseURL+"/item?name="+url.QueryEscape(name), "", nil, &got, 200)
	require.Equal(t, created, got)

	doJSON(t, http.MethodDelete, baseURL+"/admin/remove/"+url.PathEscape(name), "wrong-key", nil, nil, 401)

	if os.Getenv("E2E_RESTART") == "1" {
		restartService(t, ctx)
		waitReady(t, ctx, baseURL+"/readyz")
		doJSON(t, http.MethodGet, baseURL+"/item?name="+url.QueryEscape(name), "", nil, &got, 200)
		require.Equal(t, created, got, "after restart")
	}

	var removed item
	doJSON(t, http.MethodDelete, baseURL+"/admin/remove/"+url.PathEscape(name), apiKey, nil, &removed, 200)
	require.Equal(t, created, removed)
	doJSON(t, http.MethodGet, baseURL+"/item?name="+url.QueryEscape(name), "", nil, nil, 404)
}

func waitReady(t *testing.T, ctx context.Context, url string) {
	t.Helper()
	client := &http.Client{Timeout: 2 * time.Second}

	deadline := time.Now().Add(60 * time.Second)
	for time.Now().Before(deadline) {
		req, _ := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		resp, err := client.Do(req)
		if err == nil && resp != nil && resp.StatusCode == 200 {
			_ = resp.Body.Close()
			return
		}
		if resp != nil {
			_ = resp.Body.Close()
		}
		time.Sleep(500 * time.Millisecond)
	}
	require.FailNow(t, "service not ready", url)
}

func doJSON(t *testing.T, method, url, key string, body any, out any, want int) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if key != "" {
		req.Header.Set("api-key", key)
	}

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, want, resp.StatusCode, "%s %s", method, url)

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
