package ocr

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/skribb-ai/backend/internal/errs"
)

func TestAccumulator_OrderPreservedAndTrimmed(t *testing.T) {
	t.Parallel()
	acc := &accumulator{}

	require.False(t, acc.apply(event{typ: evText, text: "Hello"}))
	require.False(t, acc.apply(event{typ: evText, text: "World"}))
	require.True(t, acc.apply(event{typ: evDone}))

	text, err := acc.result()
	require.NoError(t, err)
	require.Equal(t, "Hello\nWorld", text)
}

func TestAccumulator_ErrorDiscardsPartialText(t *testing.T) {
	t.Parallel()
	acc := &accumulator{}

	acc.apply(event{typ: evText, text: "partial"})
	require.True(t, acc.apply(event{typ: evError, detail: "engine crashed"}))

	_, err := acc.result()
	require.ErrorIs(t, err, errs.ErrUpstream)
}

func TestAccumulator_LateDoneAfterErrorIgnored(t *testing.T) {
	t.Parallel()
	acc := &accumulator{}

	require.True(t, acc.apply(event{typ: evError, detail: "boom"}))
	// A stray done after the failure must not flip the outcome.
	require.True(t, acc.apply(event{typ: evDone}))
	require.True(t, acc.apply(event{typ: evText, text: "late"}))

	_, err := acc.result()
	require.ErrorIs(t, err, errs.ErrUpstream)
}

func sseHandler(t *testing.T, frames ...string) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(32<<20))
		_, _, err := r.FormFile("file")
		require.NoError(t, err)

		w.Header().Set("Content-Type", "text/event-stream")
		fl := w.(http.Flusher)
		for _, f := range frames {
			fmt.Fprint(w, f)
			fl.Flush()
		}
	}
}

func newBridge(t *testing.T, handler http.Handler, timeout time.Duration) *Bridge {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewBridge(srv.URL, timeout, zap.NewNop())
}

func TestExtractText_HappyPath(t *testing.T) {
	t.Parallel()
	b := newBridge(t, sseHandler(t,
		"data: {\"text\": \"Hello\"}\n\n",
		"data: {\"text\": \"World\"}\n\n",
		"event: done\ndata: {}\n\n",
	), 5*time.Second)

	text, err := b.ExtractText(context.Background(), strings.NewReader("fake-image-bytes"), "scan.png", "")
	require.NoError(t, err)
	require.Equal(t, "Hello\nWorld", text)
}

func TestExtractText_ForwardsFilenameAndLang(t *testing.T) {
	t.Parallel()
	var gotQuery, gotLang string
	b := newBridge(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("filename")
		require.NoError(t, r.ParseMultipartForm(32<<20))
		gotLang = r.FormValue("lang")
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "event: done\ndata: {}\n\n")
	}), 5*time.Second)

	_, err := b.ExtractText(context.Background(), strings.NewReader("img"), "my photo.png", "fr")
	require.NoError(t, err)
	require.Equal(t, "my photo.png", gotQuery)
	require.Equal(t, "fr", gotLang)
}

func TestExtractText_ErrorEvent(t *testing.T) {
	t.Parallel()
	b := newBridge(t, sseHandler(t,
		"data: {\"text\": \"partial\"}\n\n",
		"data: {\"error\": \"OCR engine not initialized\"}\n\n",
		// Erroneous late done must not rescue the stream.
		"event: done\ndata: {}\n\n",
	), 5*time.Second)

	_, err := b.ExtractText(context.Background(), strings.NewReader("img"), "scan.png", "")
	require.ErrorIs(t, err, errs.ErrUpstream)
}

func TestExtractText_StreamEndsWithoutDone(t *testing.T) {
	t.Parallel()
	b := newBridge(t, sseHandler(t,
		"data: {\"text\": \"Hello\"}\n\n",
	), 5*time.Second)

	_, err := b.ExtractText(context.Background(), strings.NewReader("img"), "scan.png", "")
	require.ErrorIs(t, err, errs.ErrUpstream)
}

func TestExtractText_UpstreamHTTPError(t *testing.T) {
	t.Parallel()
	b := newBridge(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}), 5*time.Second)

	_, err := b.ExtractText(context.Background(), strings.NewReader("img"), "scan.png", "")
	require.ErrorIs(t, err, errs.ErrUpstream)
}

func TestExtractText_StalledStreamTimesOut(t *testing.T) {
	t.Parallel()
	release := make(chan struct{})
	b := newBridge(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: {\"text\": \"Hello\"}\n\n")
		w.(http.Flusher).Flush()
		<-release // never sends done
	}), 200*time.Millisecond)
	// Registered after newBridge so this cleanup runs before srv.Close,
	// unblocking the handler the server shutdown waits on.
	t.Cleanup(func() { close(release) })

	start := time.Now()
	_, err := b.ExtractText(context.Background(), strings.NewReader("img"), "scan.png", "")
	require.Error(t, err)
	require.Less(t, time.Since(start), 5*time.Second)
}

func TestExtractText_SkipsUnrecognizedFrames(t *testing.T) {
	t.Parallel()
	b := newBridge(t, sseHandler(t,
		": keepalive comment\n\n",
		"data: not-json\n\n",
		"data: {\"text\": \"Line\"}\n\n",
		"event: done\ndata: {}\n\n",
	), 5*time.Second)

	text, err := b.ExtractText(context.Background(), strings.NewReader("img"), "scan.png", "")
	require.NoError(t, err)
	require.Equal(t, "Line", text)
}
