package enhance

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/skribb-ai/backend/internal/errs"
)

func newUpstream(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *Client) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv, NewClient(srv.URL, "test-key", "test-model", 5*time.Second)
}

func completionBody(content string) string {
	b, _ := json.Marshal(map[string]any{
		"choices": []map[string]any{
			{"message": map[string]string{"role": "assistant", "content": content}},
		},
	})
	return string(b)
}

func TestEnhanceText_OK(t *testing.T) {
	t.Parallel()
	var gotReq chatRequest
	_, c := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/completions", r.URL.Path)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		w.Write([]byte(completionBody("  Polished text.\n")))
	})

	out, err := c.EnhanceText(context.Background(), "rough text")
	require.NoError(t, err)
	require.Equal(t, "Polished text.", out)

	require.Equal(t, "test-model", gotReq.Model)
	require.Len(t, gotReq.Messages, 2)
	require.Equal(t, "system", gotReq.Messages[0].Role)
	require.Equal(t, "user", gotReq.Messages[1].Role)
	require.Equal(t, "rough text", gotReq.Messages[1].Content)
}

func TestEmptyInput_FailsBeforeOutboundCall(t *testing.T) {
	t.Parallel()
	called := false
	_, c := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	for _, fn := range []func() (string, error){
		func() (string, error) { return c.EnhanceText(context.Background(), "") },
		func() (string, error) { return c.EnhanceText(context.Background(), "   \n") },
		func() (string, error) { return c.FixText(context.Background(), "") },
		func() (string, error) { return c.EnhanceCode(context.Background(), "", "go") },
	} {
		_, err := fn()
		require.ErrorIs(t, err, errs.ErrValidation)
	}
	require.False(t, called, "outbound call attempted for empty input")
}

func TestEnhanceCode_LanguageHint(t *testing.T) {
	t.Parallel()
	var gotReq chatRequest
	_, c := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		w.Write([]byte(completionBody("better code")))
	})

	_, err := c.EnhanceCode(context.Background(), "x=1", "python")
	require.NoError(t, err)
	require.Contains(t, gotReq.Messages[0].Content, "python")
}

func TestUpstreamError_WrapsErrUpstream(t *testing.T) {
	t.Parallel()
	_, c := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"rate limited"}`, http.StatusTooManyRequests)
	})

	_, err := c.FixText(context.Background(), "text")
	require.ErrorIs(t, err, errs.ErrUpstream)
}

func TestMalformedResponse_WrapsErrUpstream(t *testing.T) {
	t.Parallel()

	// Valid JSON, missing the completion field.
	_, c := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	})
	_, err := c.EnhanceText(context.Background(), "text")
	require.ErrorIs(t, err, errs.ErrUpstream)

	// Not JSON at all.
	_, c2 := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>gateway error</html>"))
	})
	_, err = c2.EnhanceText(context.Background(), "text")
	require.ErrorIs(t, err, errs.ErrUpstream)
}
