package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestOriginPolicy_Allow(t *testing.T) {
	p := NewOriginPolicy("203.0.113.9", []string{"https://code.example.com/", " "})

	cases := map[string]bool{
		"http://localhost:3000":        true,
		"http://127.0.0.1:5173":        true,
		"http://192.168.1.20:3000":     true,
		"http://10.1.2.3:80":           true,
		"http://172.16.0.4:3000":       true,
		"http://172.31.255.1:3000":     true,
		"http://172.32.0.1:3000":       false,
		"http://203.0.113.9:3000":      true,
		"https://code.example.com":     true,
		"http://evil.example.com:3000": false,
		"https://192.168.1.20:3000":    false,
		"":                             false,
	}
	for origin, want := range cases {
		assert.Equal(t, want, p.Allow(origin), origin)
	}
}

func TestCORS_Middleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORS(NewOriginPolicy("", nil)))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/x", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "http://evil.example.com")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
