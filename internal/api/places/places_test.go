package places

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viatorai/viator-assistant/internal/types"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNearby(t *testing.T) {
	t.Run("caps result at ten elements", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, r.ParseForm())
			query := r.PostForm.Get("data")
			assert.Contains(t, query, `node["tourism"="attraction"]`)
			assert.Contains(t, query, `node["amenity"="restaurant"]`)
			assert.Contains(t, query, "around:5000")

			var elements []string
			for i := 0; i < 15; i++ {
				elements = append(elements, fmt.Sprintf(`{"type":"node","id":%d,"lat":38.7,"lon":-9.1,"tags":{"name":"Place %d"}}`, i, i))
			}
			fmt.Fprintf(w, `{"elements":[%s]}`, strings.Join(elements, ","))
		}))
		defer srv.Close()

		svc := NewService(srv.URL, time.Second, testLogger())
		elements, err := svc.Nearby(context.Background(), types.Location{Lat: 38.7, Lng: -9.1}, 5)
		require.NoError(t, err)
		assert.Len(t, elements, 10)
		assert.Equal(t, int64(0), elements[0].ID)
	})

	t.Run("empty area is nil without error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"elements":[]}`))
		}))
		defer srv.Close()

		svc := NewService(srv.URL, time.Second, testLogger())
		elements, err := svc.Nearby(context.Background(), types.Location{Lat: 38.7, Lng: -9.1}, 5)
		require.NoError(t, err)
		assert.Nil(t, elements)
	})

	t.Run("rejects out-of-bounds coordinates before calling upstream", func(t *testing.T) {
		called := false
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
		}))
		defer srv.Close()

		svc := NewService(srv.URL, time.Second, testLogger())
		_, err := svc.Nearby(context.Background(), types.Location{Lat: 120, Lng: -9.1}, 5)
		assert.Error(t, err)
		assert.False(t, called)
	})

	t.Run("upstream failure is an error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusGatewayTimeout)
		}))
		defer srv.Close()

		svc := NewService(srv.URL, time.Second, testLogger())
		_, err := svc.Nearby(context.Background(), types.Location{Lat: 38.7, Lng: -9.1}, 5)
		assert.Error(t, err)
	})
}
