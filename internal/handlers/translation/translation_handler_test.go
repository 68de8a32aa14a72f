package translation

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"visrec-admin/internal/repository/locale"
	translationUsecase "visrec-admin/internal/service/translation"

	"github.com/gin-gonic/gin"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const dir = "i18n/locales"

func newRouter(t *testing.T, files map[string]string) (*gin.Engine, afero.Fs) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll(dir, 0o755))
	for lang, body := range files {
		require.NoError(t, afero.WriteFile(fs, dir+"/"+lang+".json", []byte(body), 0o644))
	}

	svc := translationUsecase.NewTranslationService(locale.NewFileStore(fs, dir, true), "en", zap.NewNop())
	h := NewTranslationHandler(svc)

	r := gin.New()
	r.GET("/api/translations/load", h.Load)
	r.POST("/api/translations/save-new", h.SaveNew)
	r.POST("/api/translations/save", h.Save)
	r.GET("/api/translations/diff", h.Diff)
	return r, fs
}

func do(r *gin.Engine, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestLoadEndpoint(t *testing.T) {
	r, _ := newRouter(t, map[string]string{
		"en": `{"home":{"hero":{"title":"Hi"}}}`,
		"th": `{"home":{"hero":{"title":"สวัสดี"}}}`,
	})

	w := do(r, http.MethodGet, "/api/translations/load?lang=en", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"lang":"en","translations":{"home":{"hero":{"title":"Hi"}}}}`, w.Body.String())

	// a Thai browser without ?lang still gets en
	w = do(r, http.MethodGet, "/api/translations/load", "", "Accept-Language", "th-TH,th;q=0.9")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"lang":"en","translations":{"home":{"hero":{"title":"Hi"}}}}`, w.Body.String())

	w = do(r, http.MethodGet, "/api/translations/load?lang=fr", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, `Invalid language. Must be "en" or "th"`, decode(t, w)["statusMessage"])
}

func TestLoadEndpointIOError(t *testing.T) {
	r, _ := newRouter(t, nil)

	w := do(r, http.MethodGet, "/api/translations/load?lang=en", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, decode(t, w)["statusMessage"], "Failed to read en.json: ")
}

func TestSaveNewEndpoint(t *testing.T) {
	r, _ := newRouter(t, nil)

	w := do(r, http.MethodPost, "/api/translations/save-new", `{"lang":"en","translations":{"a":{"b":{"c":"x"}}}}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"message":"Successfully saved en.json"}`, w.Body.String())

	w = do(r, http.MethodGet, "/api/translations/load?lang=en", "")
	assert.JSONEq(t, `{"lang":"en","translations":{"a":{"b":{"c":"x"}}}}`, w.Body.String())

	w = do(r, http.MethodPost, "/api/translations/save-new", `{"lang":"en","translations":"oops"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid translations object", decode(t, w)["statusMessage"])

	w = do(r, http.MethodPost, "/api/translations/save-new", `{"lang":"jp","translations":{}}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSaveEndpoint(t *testing.T) {
	r, fs := newRouter(t, map[string]string{
		"en": `{"nav":{"menu":{"about":"About"}}}`,
		"th": `{"nav":{"menu":{"about":"เกี่ยวกับ"}}}`,
	})

	w := do(r, http.MethodPost, "/api/translations/save",
		`{"page":"home","section":"hero","key":"title","enValue":"Hi","thValue":"สวัสดี"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"message":"Translation saved successfully"}`, w.Body.String())

	th, err := afero.ReadFile(fs, dir+"/th.json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"nav":{"menu":{"about":"เกี่ยวกับ"}},"home":{"hero":{"title":"สวัสดี"}}}`, string(th))

	w = do(r, http.MethodPost, "/api/translations/save", `{"page":"home","key":"title"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Missing required fields: page, section, key", decode(t, w)["statusMessage"])
}

func TestDiffEndpoint(t *testing.T) {
	r, _ := newRouter(t, map[string]string{
		"en": `{"home":{"hero":{"title":"Hi","cta":"Go"}}}`,
		"th": `{"home":{"hero":{"title":"สวัสดี"}}}`,
	})

	w := do(r, http.MethodGet, "/api/translations/diff", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"missingInEn":[],"missingInTh":["home.hero.cta"],"inSync":false}`, w.Body.String())
}
