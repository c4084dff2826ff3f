package staticsite

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/activity-for-you/internal/domain/activity"
)

func TestClientFetch(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"city":"paris"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL+"/data/", time.Second)
	body, err := client.Fetch(context.Background(), "paris")
	require.NoError(t, err)
	require.Equal(t, "/data/paris.json", gotPath)
	require.JSONEq(t, `{"city":"paris"}`, string(body))
}

func TestClientFetchNotFound(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	_, err := NewClient(srv.URL, time.Second).Fetch(context.Background(), "atlantis")
	require.ErrorIs(t, err, activity.ErrDocumentNotFound)
}

func TestClientFetchServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream exploded", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, time.Second).Fetch(context.Background(), "paris")
	require.Error(t, err)
	require.NotErrorIs(t, err, activity.ErrDocumentNotFound)
	require.Contains(t, err.Error(), "status=502")
	require.Contains(t, err.Error(), "upstream exploded")
}

func TestClientFetchRejectsOversizedDocument(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("x", maxDocumentSize+10)))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, time.Second).Fetch(context.Background(), "paris")
	require.Error(t, err)
	require.Contains(t, err.Error(), "exceeds")
}

func TestClientFetchHonorsContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewClient(srv.URL, time.Second).Fetch(ctx, "paris")
	require.Error(t, err)
	require.ErrorIs(t, err, context.Canceled)
}
