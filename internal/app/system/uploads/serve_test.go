package uploads

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestHandler(t *testing.T) {
	s, err := NewLocal(t.TempDir(), "/uploads", zap.NewNop())
	require.NoError(t, err)
	paths, err := s.Save(context.Background(), "crowdfunding", []File{{Name: "plan.pdf", Data: pdfBytes}})
	require.NoError(t, err)
	h := s.Handler()

	t.Run("file", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, paths[0], nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, CacheControl, rec.Header().Get("Cache-Control"))
		assert.Equal(t, string(pdfBytes), rec.Body.String())
	})

	for _, p := range []string{"/uploads/", "/uploads/crowdfunding", "/uploads/crowdfunding/", "/uploads/missing.pdf", "/uploads/../go.mod"} {
		t.Run("not found "+p, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, p, nil))
			assert.Equal(t, http.StatusNotFound, rec.Code)
			assert.Empty(t, rec.Header().Get("Cache-Control"))
		})
	}

	t.Run("post", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, paths[0], nil))
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})
}
