// Package ocr bridges a buffered image upload to the OCR service's
// server-sent-event stream and re-exposes it as a single aggregated result.
package ocr

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/skribb-ai/backend/internal/errs"
)

// eventType is the explicit event alphabet of the stream.
type eventType int

const (
	evText eventType = iota
	evDone
	evError
)

// event is one decoded server-sent event.
type event struct {
	typ    eventType
	text   string // set for evText
	detail string // set for evError
}

// state of one bridged request.
type state int

const (
	stateStreaming state = iota
	stateCompleted
	stateFailed
)

// accumulator applies stream events in arrival order and transitions to a
// terminal state exactly once; events after a terminal state are ignored.
type accumulator struct {
	state       state
	buf         strings.Builder
	failureDesc string
}

// apply folds one event into the accumulator and reports whether the stream
// has reached a terminal state.
func (a *accumulator) apply(ev event) bool {
	if a.state != stateStreaming {
		// Late done after error (or vice versa) must not flip the outcome.
		return true
	}
	switch ev.typ {
	case evText:
		a.buf.WriteString(ev.text)
		a.buf.WriteString("\n")
		return false
	case evDone:
		a.state = stateCompleted
		return true
	case evError:
		a.state = stateFailed
		a.failureDesc = ev.detail
		return true
	}
	return false
}

// result returns the trimmed accumulated text, or the stream failure.
func (a *accumulator) result() (string, error) {
	switch a.state {
	case stateCompleted:
		return strings.TrimSpace(a.buf.String()), nil
	case stateFailed:
		return "", fmt.Errorf("%w: ocr stream error: %s", errs.ErrUpstream, a.failureDesc)
	default:
		return "", fmt.Errorf("%w: ocr stream ended before done event", errs.ErrUpstream)
	}
}

// Bridge talks to the external OCR service. It holds no per-request state;
// every ExtractText call owns its accumulator and connection exclusively.
type Bridge struct {
	baseURL       string
	streamTimeout time.Duration
	http          *http.Client
	log           *zap.Logger
}

// NewBridge constructs a Bridge. streamTimeout bounds the whole streaming
// session; a stalled upstream fails instead of leaking the request forever.
func NewBridge(baseURL string, streamTimeout time.Duration, log *zap.Logger) *Bridge {
	if streamTimeout <= 0 {
		streamTimeout = 2 * time.Minute
	}
	return &Bridge{
		baseURL:       strings.TrimRight(baseURL, "/"),
		streamTimeout: streamTimeout,
		// No Client.Timeout here: it would cap the SSE read; the per-request
		// context carries the deadline instead.
		http: &http.Client{},
		log:  log,
	}
}

// ExtractText forwards the image bytes to the OCR streaming endpoint and
// accumulates text lines in arrival order until the done event. lang is an
// optional hint forwarded to the service.
func (b *Bridge) ExtractText(ctx context.Context, image io.Reader, originalName, lang string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, b.streamTimeout)
	defer cancel()

	resp, err := b.forward(ctx, image, originalName, lang)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", fmt.Errorf("%w: ocr service returned %d: %s", errs.ErrUpstream, resp.StatusCode, detail)
	}

	return b.consume(resp.Body)
}

// forward builds the outbound multipart request and opens the stream.
func (b *Bridge) forward(ctx context.Context, image io.Reader, originalName, lang string) (*http.Response, error) {
	var body strings.Builder
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", originalName)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, image); err != nil {
		return nil, err
	}
	if lang != "" {
		if err := mw.WriteField("lang", lang); err != nil {
			return nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	endpoint := b.baseURL + "/imagetotext/stream?filename=" + url.QueryEscape(originalName)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(body.String()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Accept", "text/event-stream")

	resp, err := b.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: ocr connect: %v", errs.ErrUpstream, err)
	}
	return resp, nil
}

// consume drives the accumulator with decoded SSE events until a terminal
// state or the stream ends.
func (b *Bridge) consume(r io.Reader) (string, error) {
	acc := &accumulator{}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	eventName := ""
	var data []string
	for sc.Scan() {
		line := sc.Text()
		switch {
		case line == "":
			ev, ok := decodeEvent(eventName, strings.Join(data, "\n"))
			eventName, data = "", nil
			if !ok {
				continue
			}
			if acc.apply(ev) {
				return acc.result()
			}
		case strings.HasPrefix(line, "event:"):
			eventName = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			data = append(data, strings.TrimSpace(strings.TrimPrefix(line, "data:")))
		}
	}
	if err := sc.Err(); err != nil {
		b.log.Warn("ocr stream read failed", zap.Error(err))
		acc.apply(event{typ: evError, detail: err.Error()})
	}
	// EOF without a done event is a transport failure.
	return acc.result()
}

// decodeEvent maps one raw SSE frame onto the event alphabet.
func decodeEvent(name, data string) (event, bool) {
	if name == "done" {
		return event{typ: evDone}, true
	}
	if data == "" {
		return event{}, false
	}
	var payload struct {
		Text  *string `json:"text"`
		Error *string `json:"error"`
	}
	if err := json.Unmarshal([]byte(data), &payload); err != nil {
		// Unrecognized frames are skipped, matching the lenient consumer
		// the OCR service was built against.
		return event{}, false
	}
	if payload.Error != nil {
		return event{typ: evError, detail: *payload.Error}, true
	}
	if payload.Text != nil {
		return event{typ: evText, text: *payload.Text}, true
	}
	return event{}, false
}
