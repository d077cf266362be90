package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/confplan/confplan/internal/confplan"
)

const testCatalog = `{
  "catalog": [
    {
      "id": "f1f3c0c2-0001",
      "shortId": "SVS201",
      "title": "Serverless patterns in practice",
      "abstract": "Patterns for event-driven architectures.",
      "startDateTime": "2025-12-01T09:00:00",
      "endDateTime": "2025-12-01T10:00:00",
      "startTime": "9:00 AM",
      "endTime": "10:00 AM",
      "day": "Monday",
      "venue": {"displayName": "Venetian"},
      "venueRoomName": "Venetian - Hall B",
      "level": {"value": 200, "displayName": "Intermediate"},
      "type": {"displayName": "Breakout Session"},
      "speakers": [{"displayName": "Dana Smith", "company": "Acme"}],
      "services": [{"displayName": "Lambda"}],
      "topics": [{"displayName": "Serverless"}],
      "areaOfInterest": [{"displayName": "Architecture"}],
      "role": [{"displayName": "Developer"}],
      "features": [{"displayName": "Hands-on"}],
      "seatCapacity": 150,
      "lastModified": "2025-11-01T00:00:00"
    }
  ]
}`

func TestClientFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(testCatalog))
	}))
	defer srv.Close()

	sessions, err := NewClient(srv.URL).Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, sessions, 1)

	s := sessions[0]
	assert.Equal(t, "f1f3c0c2-0001", s.ID)
	assert.Equal(t, "SVS201", s.ShortID)
	assert.Equal(t, "Serverless patterns in practice", s.Title)
	assert.Equal(t, "Monday", s.Day)
	assert.Equal(t, "Venetian", s.Venue)
	assert.Equal(t, "Venetian - Hall B", s.Room)
	assert.Equal(t, 200, s.Level)
	assert.Equal(t, "Intermediate", s.LevelName)
	assert.Equal(t, "Breakout Session", s.Type)
	assert.Equal(t, confplan.StringList{"Lambda"}, s.Services)
	assert.Equal(t, []string{"Dana Smith"}, []string(s.Speakers))
	assert.Equal(t, confplan.Speaker{Name: "Dana Smith", Company: "Acme"}, s.SpeakerProfiles[0])
	assert.Equal(t, 150, s.SeatCapacity)
	assert.Equal(t, "9:00 AM", s.StartTime)
}

func TestCacheGet_ServesFreshWithoutFetching(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(testCatalog))
	}))
	defer srv.Close()

	cache := NewCache(NewClient(srv.URL), time.Hour, nil)

	first, err := cache.Get(context.Background(), false)
	require.NoError(t, err)
	second, err := cache.Get(context.Background(), false)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), calls.Load())
}

func TestCacheGet_ForceRefetches(t *testing.T) {
	var (
		calls     atomic.Int32
		refreshed atomic.Int32
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(testCatalog))
	}))
	defer srv.Close()

	cache := NewCache(NewClient(srv.URL), time.Hour, func(ctx context.Context, sessions []confplan.Session) {
		refreshed.Add(1)
	})

	_, err := cache.Get(context.Background(), false)
	require.NoError(t, err)
	_, err = cache.Get(context.Background(), true)
	require.NoError(t, err)

	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, int32(2), refreshed.Load())
}

func TestCacheGet_FallsBackToStaleOnError(t *testing.T) {
	var failing atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if failing.Load() {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(testCatalog))
	}))
	defer srv.Close()

	cache := NewCache(NewClient(srv.URL), time.Hour, nil)

	first, err := cache.Get(context.Background(), false)
	require.NoError(t, err)

	failing.Store(true)
	cache.Invalidate()

	second, err := cache.Get(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestCacheGet_ColdErrorPropagates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	cache := NewCache(NewClient(srv.URL), time.Hour, nil)

	_, err := cache.Get(context.Background(), false)
	require.Error(t, err)
}
