package secheaders

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func serve(cfg Config, req *http.Request) http.Header {
	h := Middleware(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec.Header()
}

func TestMiddleware_BaseHeaders(t *testing.T) {
	hdr := serve(DefaultConfig(false), httptest.NewRequest(http.MethodGet, "/api/status", nil))

	assert.Equal(t, "nosniff", hdr.Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", hdr.Get("X-Frame-Options"))
	assert.Equal(t, DefaultCSP, hdr.Get("Content-Security-Policy"))
	assert.Empty(t, hdr.Get("Cross-Origin-Resource-Policy"))
	assert.Empty(t, hdr.Get("Strict-Transport-Security"), "plain http gets no HSTS")
}

func TestMiddleware_HSTSBehindProxy(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	req.Header.Set("X-Forwarded-Proto", "https")

	assert.Equal(t, "max-age=31536000; includeSubDomains", serve(DefaultConfig(false), req).Get("Strict-Transport-Security"))
	assert.Empty(t, serve(DefaultConfig(true), req).Get("Strict-Transport-Security"))
}

func TestMiddleware_UploadsCrossOrigin(t *testing.T) {
	hdr := serve(DefaultConfig(false), httptest.NewRequest(http.MethodGet, "/uploads/crowdfunding/1-a.pdf", nil))
	assert.Equal(t, "cross-origin", hdr.Get("Cross-Origin-Resource-Policy"))
}
