package draft

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"visrec-admin/internal/pkg/gemini"
	"visrec-admin/internal/pkg/session"
	draftUsecase "visrec-admin/internal/service/draft"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func newRouter(apiKey, upstream string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	client := gemini.NewClient(gemini.Config{APIKey: apiKey, BaseURL: upstream, Timeout: 5 * time.Second})
	h := NewDraftHandler(draftUsecase.NewDraftService(client, nil, 0, 0, zap.NewNop()))

	r := gin.New()
	r.POST("/api/gemini", h.Generate)
	return r
}

func post(r *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/gemini", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestGenerateEndpoint(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"candidates":[{"content":{"parts":[{"text":"A bold new look."}]}}]}`)
	}))
	defer upstream.Close()

	w := post(newRouter("k", upstream.URL), `{"prompt":"Write a tagline"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"text":"A bold new look."}`, w.Body.String())
}

func TestGenerateEndpointQuota(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, `{"error":{"code":429,"message":"quota","status":"RESOURCE_EXHAUSTED"}}`)
	}))
	defer upstream.Close()

	w := post(newRouter("k", upstream.URL), `{"prompt":"x","context":"y"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "AI Limit Reached")
}

func TestGenerateEndpointErrors(t *testing.T) {
	w := post(newRouter("", "http://unused"), `{"prompt":"x"}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), `"statusMessage":"Gemini API Key is not configured."`)

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		fmt.Fprint(w, "secret internals")
	}))
	defer upstream.Close()

	w = post(newRouter("k", upstream.URL), `{"prompt":"x"}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), `"statusMessage":"Failed to generate content."`)
	assert.NotContains(t, w.Body.String(), "secret internals")

	w = post(newRouter("k", upstream.URL), `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGenerateEndpointReportsRateLimit(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"candidates":[{"content":{"parts":[{"text":"ok"}]}}]}`)
	}))
	defer upstream.Close()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	gin.SetMode(gin.TestMode)
	client := gemini.NewClient(gemini.Config{APIKey: "k", BaseURL: upstream.URL, Timeout: 5 * time.Second})
	svc := draftUsecase.NewDraftService(client, session.NewRateLimiter(rdb), 2, time.Minute, zap.NewNop())
	h := NewDraftHandler(svc)

	r := gin.New()
	r.POST("/api/gemini", func(c *gin.Context) {
		c.Set("email", "admin@example.com")
		c.Next()
	}, h.Generate)

	w := post(r, `{"prompt":"x"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "1", w.Header().Get("X-RateLimit-Remaining"))

	post(r, `{"prompt":"x"}`)
	w = post(r, `{"prompt":"x"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "AI Limit Reached")
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))

	// anonymous callers are not limited and get no headers
	w = post(newRouter("k", upstream.URL), `{"prompt":"x"}`)
	assert.Empty(t, w.Header().Get("X-RateLimit-Remaining"))
}
