package errors_test

import (
	"net/http"
	"strings"
	"testing"

	errorsfeature "github.com/dalemusser/hopenest/internal/app/features/errors"
	"github.com/dalemusser/hopenest/internal/testutil"
	"go.uber.org/zap"
)

func TestNotFound(t *testing.T) {
	rec := testutil.NewRecorder()
	errorsfeature.NotFound(rec, testutil.NewRequest(http.MethodGet, "/api/nope?x=1"))
	rec.AssertStatus(t, http.StatusNotFound)

	var body map[string]string
	rec.DecodeJSON(t, &body)
	if body["error"] != "Route not found" || body["path"] != "/api/nope?x=1" {
		t.Errorf("unexpected body: %v", body)
	}
}

func TestRecoverer(t *testing.T) {
	boom := http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("kaboom") })

	cases := []struct {
		name   string
		detail bool
	}{
		{"production hides detail", false},
		{"dev shows detail", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := testutil.NewRecorder()
			errorsfeature.Recoverer(zap.NewNop(), tc.detail)(boom).ServeHTTP(rec, testutil.NewRequest(http.MethodGet, "/x"))
			rec.AssertStatus(t, http.StatusInternalServerError)
			rec.AssertMessage(t, "Internal server error")
			if got := strings.Contains(rec.Body.String(), "kaboom"); got != tc.detail {
				t.Errorf("detail present = %v, want %v: %s", got, tc.detail, rec.Body.String())
			}
		})
	}
}
