package events_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/catalog-aggregator/internal/events"
)

func TestWebhookPublisher_PublishSearch(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		respond    func(w http.ResponseWriter)
		wantErr    error
		wantErrMsg string
	}{
		{
			name:    "accepted",
			respond: func(w http.ResponseWriter) { w.WriteHeader(http.StatusAccepted) },
		},
		{
			name: "throttled",
			respond: func(w http.ResponseWriter) {
				w.Header().Set("Retry-After", "30")
				w.WriteHeader(http.StatusTooManyRequests)
			},
			wantErr:    events.ErrWebhookThrottled,
			wantErrMsg: `retry after "30"`,
		},
		{
			name: "rejected",
			respond: func(w http.ResponseWriter) {
				w.WriteHeader(http.StatusUnprocessableEntity)
				_, _ = w.Write([]byte("unknown schema\n"))
			},
			wantErr:    events.ErrWebhookRejected,
			wantErrMsg: "status 422: unknown schema",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var (
				got     events.SearchEvent
				headers http.Header
			)
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				headers = r.Header.Clone()
				assert.Equal(t, http.MethodPost, r.Method)
				assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
				tt.respond(w)
			}))
			t.Cleanup(srv.Close)

			ev := testEvent()
			err := events.NewWebhookPublisher(srv.URL, events.WithHTTPClient(srv.Client())).
				PublishSearch(context.Background(), ev)

			assert.Equal(t, ev.ID, got.ID)
			assert.Equal(t, ev.ID, headers.Get("Idempotency-Key"))
			assert.Equal(t, events.SearchEventType, headers.Get("X-Catalog-Event"))
			assert.Equal(t, "application/json", headers.Get("Content-Type"))

			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.wantErr)
			assert.Contains(t, err.Error(), tt.wantErrMsg)
			assert.Contains(t, err.Error(), ev.ID)
		})
	}
}

func TestWebhookPublisher_Unreachable(t *testing.T) {
	t.Parallel()

	err := events.NewWebhookPublisher("http://127.0.0.1:1/hook").
		PublishSearch(context.Background(), testEvent())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sending webhook")
}
