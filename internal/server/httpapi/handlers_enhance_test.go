package httpapi

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/skribb-ai/backend/internal/errs"
)

func TestEnhance_RoundTrips(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, false)
	env.enhancer.out = "polished"

	w := env.do(t, http.MethodPost, "/txt-enhance", "", map[string]string{"text": "rough draft"})
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "polished", decode(t, w)["enhancedText"])

	w = env.do(t, http.MethodPost, "/txt-fix", "", map[string]string{"text": "teh typo"})
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "polished", decode(t, w)["fixedText"])

	w = env.do(t, http.MethodPost, "/code-enhance", "", map[string]string{"code": "x=1", "language": "python"})
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	require.Equal(t, "polished", body["enhancedCode"])
	require.Equal(t, "python", body["language"])
}

func TestCodeEnhance_DefaultLanguage(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, false)
	env.enhancer.out = "ok"

	w := env.do(t, http.MethodPost, "/code-enhance", "", map[string]string{"code": "x=1"})
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "plaintext", decode(t, w)["language"])
}

func TestEnhance_EmptyText(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, false)

	for _, path := range []string{"/txt-enhance", "/txt-fix"} {
		w := env.do(t, http.MethodPost, path, "", map[string]string{"text": "   "})
		require.Equal(t, http.StatusBadRequest, w.Code, path)
	}
	w := env.do(t, http.MethodPost, "/code-enhance", "", map[string]string{"code": ""})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEnhance_UpstreamFailure(t *testing.T) {
	t.Parallel()

	// Production: generic message only.
	env := newTestEnv(t, false)
	env.enhancer.err = errors.New("llm exploded: key rejected")
	w := env.do(t, http.MethodPost, "/txt-enhance", "", map[string]string{"text": "hi"})
	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.Equal(t, "Failed to process text", decode(t, w)["error"])
	require.NotContains(t, w.Body.String(), "key rejected")

	// Dev: upstream detail attached.
	env = newTestEnv(t, true)
	env.enhancer.err = errs.ErrUpstream
	w = env.do(t, http.MethodPost, "/txt-enhance", "", map[string]string{"text": "hi"})
	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.Contains(t, decode(t, w)["error"], "Failed to process text: ")
}
