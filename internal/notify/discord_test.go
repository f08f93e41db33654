package notify

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSignupAnnounce_PostsWebhook(t *testing.T) {
	t.Parallel()
	got := make(chan map[string]string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		got <- body
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	d := NewDiscord(srv.URL, zap.NewNop())
	d.SignupAnnounce("alice")

	select {
	case body := <-got:
		require.Contains(t, body["content"], "alice")
	case <-time.After(5 * time.Second):
		t.Fatal("webhook never called")
	}
}

func TestSignupAnnounce_DisabledWithoutURL(t *testing.T) {
	t.Parallel()
	d := NewDiscord("", zap.NewNop())
	// Must be a no-op, not a panic or a hang.
	d.SignupAnnounce("alice")
}
