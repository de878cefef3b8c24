package notion

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/notion-city-proxy/config"
	"github.com/FACorreiaa/notion-city-proxy/internal/types"
)

const testDatabaseID = "8a3f1c2e9b7d4e6fa1b2c3d4e5f60718"

func newTestClient(t *testing.T, handler http.HandlerFunc, timeout time.Duration) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := &config.NotionConfig{
		Token:      "secret_test",
		BaseURL:    srv.URL,
		APIVersion: "2022-06-28",
		Timeout:    timeout,
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewClient(cfg, logger, WithHTTPClient(srv.Client()))
}

func TestClient_QueryDatabase(t *testing.T) {
	t.Run("sends the expected request", func(t *testing.T) {
		var gotMethod, gotPath, gotAuth, gotVersion, gotContentType, gotBody string
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			gotMethod = r.Method
			gotPath = r.URL.Path
			gotAuth = r.Header.Get("Authorization")
			gotVersion = r.Header.Get("Notion-Version")
			gotContentType = r.Header.Get("Content-Type")
			b, _ := io.ReadAll(r.Body)
			gotBody = string(b)
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"object":"list","results":[],"has_more":false}`))
		}, time.Second)

		resp, err := client.QueryDatabase(context.Background(), testDatabaseID, types.QueryDatabaseRequest{})
		require.NoError(t, err)
		assert.Empty(t, resp.Results)

		assert.Equal(t, http.MethodPost, gotMethod)
		assert.Equal(t, "/v1/databases/"+testDatabaseID+"/query", gotPath)
		assert.Equal(t, "Bearer secret_test", gotAuth)
		assert.Equal(t, "2022-06-28", gotVersion)
		assert.Equal(t, "application/json", gotContentType)
		assert.JSONEq(t, `{}`, gotBody)
	})

	t.Run("decodes pages in order", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"object":"list","results":[
				{"object":"page","id":"1","properties":{"City Name":{"id":"title","type":"title","title":[{"type":"text","plain_text":"Tokyo"}]}}},
				{"object":"page","id":"2","properties":{"City Name":{"id":"x","type":"number","number":5}}}
			],"next_cursor":null,"has_more":false}`))
		}, time.Second)

		resp, err := client.QueryDatabase(context.Background(), testDatabaseID, types.QueryDatabaseRequest{})
		require.NoError(t, err)
		require.Len(t, resp.Results, 2)
		assert.Equal(t, "1", resp.Results[0].ID)
		assert.Equal(t, "2", resp.Results[1].ID)

		first, ok, err := resp.Results[0].Property("City Name")
		require.True(t, ok)
		require.NoError(t, err)
		assert.IsType(t, types.TitleValue{}, first.Value)
		second, ok, err := resp.Results[1].Property("City Name")
		require.True(t, ok)
		require.NoError(t, err)
		assert.IsType(t, types.UnsupportedValue{}, second.Value)
	})

	t.Run("malformed column does not fail the response", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"object":"list","results":[
				{"id":"1","properties":{"City Name":{"type":"title","title":[{"plain_text":"Tokyo"}]},"Notes":{"type":"rich_text","rich_text":"oops"}}}
			],"has_more":false}`))
		}, time.Second)

		resp, err := client.QueryDatabase(context.Background(), testDatabaseID, types.QueryDatabaseRequest{})
		require.NoError(t, err)
		require.Len(t, resp.Results, 1)

		_, ok, err := resp.Results[0].Property("Notes")
		assert.True(t, ok)
		assert.Error(t, err)
	})

	t.Run("error status with notion message", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"object":"error","status":404,"code":"object_not_found","message":"Could not find database."}`))
		}, time.Second)

		_, err := client.QueryDatabase(context.Background(), testDatabaseID, types.QueryDatabaseRequest{})
		require.Error(t, err)

		var he *HTTPError
		require.True(t, errors.As(err, &he))
		assert.Equal(t, http.StatusNotFound, he.Status())
		assert.Equal(t, "object_not_found", he.Code)
		assert.Equal(t, "Could not find database.", he.Message)
	})

	t.Run("error status with non-json body", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			w.Write([]byte("<html>bad gateway</html>"))
		}, time.Second)

		_, err := client.QueryDatabase(context.Background(), testDatabaseID, types.QueryDatabaseRequest{})

		var he *HTTPError
		require.True(t, errors.As(err, &he))
		assert.Equal(t, http.StatusBadGateway, he.StatusCode)
		assert.Empty(t, he.Message)
		assert.Equal(t, "<html>bad gateway</html>", he.Body)
	})

	t.Run("timeout", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(2 * time.Second):
			}
		}, 50*time.Millisecond)

		start := time.Now()
		_, err := client.QueryDatabase(context.Background(), testDatabaseID, types.QueryDatabaseRequest{})
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrUpstreamTimeout))
		assert.Less(t, time.Since(start), time.Second)
	})

	t.Run("transport failure", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		srv.Close()

		cfg := &config.NotionConfig{Token: "t", BaseURL: srv.URL, APIVersion: "2022-06-28", Timeout: time.Second}
		client := NewClient(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))

		_, err := client.QueryDatabase(context.Background(), testDatabaseID, types.QueryDatabaseRequest{})
		require.Error(t, err)

		var te *TransportError
		assert.True(t, errors.As(err, &te))
		assert.False(t, errors.Is(err, ErrUpstreamTimeout))
	})

	t.Run("malformed success body", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"results": [`))
		}, time.Second)

		_, err := client.QueryDatabase(context.Background(), testDatabaseID, types.QueryDatabaseRequest{})
		require.Error(t, err)

		var he *HTTPError
		var te *TransportError
		assert.False(t, errors.As(err, &he))
		assert.False(t, errors.As(err, &te))
		assert.False(t, errors.Is(err, ErrUpstreamTimeout))
	})
}

func TestHTTPError_Status(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, (&HTTPError{}).Status())
	assert.Equal(t, http.StatusTooManyRequests, (&HTTPError{StatusCode: 429}).Status())
}
