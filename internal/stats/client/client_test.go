package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ms-events/internal/logger"
	"ms-events/internal/models"
)

func TestHitPostsDto(t *testing.T) {
	var received models.EndpointHitDto
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/hit", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	c := New(server.URL, "main-service", server.Client(), nil, logger.NewLogger("stats-client-test"))

	err := c.Hit(context.Background(), "/events/7", "10.0.0.1")

	assert.NoError(t, err)
	assert.Equal(t, "main-service", received.App)
	assert.Equal(t, "/events/7", received.URI)
	assert.Equal(t, "10.0.0.1", received.IP)
}

func TestHitReportsUnexpectedStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	c := New(server.URL, "main-service", server.Client(), nil, logger.NewLogger("stats-client-test"))

	err := c.Hit(context.Background(), "/events/7", "10.0.0.1")

	assert.Error(t, err)
}

func TestViewsMapsResponseByURI(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/stats", r.URL.Path)
		query := r.URL.Query()
		assert.Equal(t, "true", query.Get("unique"))
		assert.NotEmpty(t, query.Get("start"))
		assert.NotEmpty(t, query.Get("end"))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode([]models.ViewStats{
			{App: "main-service", URI: "/events/1", Hits: 5},
		})
	}))
	defer server.Close()

	c := New(server.URL, "main-service", server.Client(), nil, logger.NewLogger("stats-client-test"))

	views, err := c.Views(context.Background(),
		time.Now().Add(-time.Hour), time.Now(),
		[]string{"/events/1", "/events/2"}, true)

	assert.NoError(t, err)
	assert.Equal(t, int64(5), views["/events/1"])
	// URIs the stats service never saw default to zero.
	assert.Equal(t, int64(0), views["/events/2"])
}

func TestViewsEmptyURIList(t *testing.T) {
	c := New("http://unused", "main-service", nil, nil, logger.NewLogger("stats-client-test"))

	views, err := c.Views(context.Background(), time.Now().Add(-time.Hour), time.Now(), nil, true)

	assert.NoError(t, err)
	assert.Empty(t, views)
}
