package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models/gemini-2.0-flash-exp:generateContent", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))

		var req generateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Contents, 1)
		assert.Equal(t, "Write a caption", req.Contents[0].Parts[0].Text)

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"candidates":[{"content":{"role":"model","parts":[{"text":"Hello "},{"text":"world"}]},"finishReason":"STOP"}]}`)
	}))
	defer server.Close()

	c := NewClient(Config{APIKey: "test-key", BaseURL: server.URL})
	text, err := c.GenerateContent(context.Background(), "", "Write a caption")
	require.NoError(t, err)
	assert.Equal(t, "Hello world", text)
}

func TestGenerateContentQuotaError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, `{"error":{"code":429,"message":"Resource has been exhausted (e.g. check quota).","status":"RESOURCE_EXHAUSTED"}}`)
	}))
	defer server.Close()

	c := NewClient(Config{APIKey: "k", BaseURL: server.URL})
	_, err := c.GenerateContent(context.Background(), "", "x")
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusTooManyRequests, apiErr.StatusCode)
	assert.True(t, IsQuotaExceeded(err))
}

func TestGenerateContentServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, "upstream broke")
	}))
	defer server.Close()

	c := NewClient(Config{APIKey: "k", BaseURL: server.URL})
	_, err := c.GenerateContent(context.Background(), "", "x")
	require.Error(t, err)
	assert.False(t, IsQuotaExceeded(err))
	assert.Contains(t, err.Error(), "upstream broke")
}

func TestGenerateContentNoCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"candidates":[]}`)
	}))
	defer server.Close()

	c := NewClient(Config{APIKey: "k", BaseURL: server.URL})
	_, err := c.GenerateContent(context.Background(), "", "x")
	assert.Error(t, err)
}

func TestIsQuotaExceeded(t *testing.T) {
	assert.False(t, IsQuotaExceeded(nil))
	assert.True(t, IsQuotaExceeded(errors.New("quota exceeded for project")))
	assert.True(t, IsQuotaExceeded(errors.New("got 429 from upstream")))
	assert.False(t, IsQuotaExceeded(errors.New("connection refused")))

	// case-insensitive text match and the gRPC-style status both count
	assert.True(t, IsQuotaExceeded(errors.New("Quota exceeded")))
	assert.True(t, IsQuotaExceeded(&APIError{StatusCode: http.StatusServiceUnavailable, Status: "RESOURCE_EXHAUSTED"}))
	assert.False(t, IsQuotaExceeded(&APIError{StatusCode: http.StatusServiceUnavailable, Status: "UNAVAILABLE", Message: "overloaded"}))
}

func TestConfigured(t *testing.T) {
	assert.False(t, NewClient(Config{}).Configured())
	assert.True(t, NewClient(Config{APIKey: "k"}).Configured())
	assert.Equal(t, DefaultModel, NewClient(Config{}).Model())
}
