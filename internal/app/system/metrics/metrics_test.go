package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestInstrumentHandler_LabelsByRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(InstrumentHandler)
	r.Get("/api/campaigns/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	before := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/api/campaigns/{id}", "418"))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/campaigns/abc123", nil))

	after := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/api/campaigns/{id}", "418"))
	assert.Equal(t, before+1, after)
}

func TestRecordDonation(t *testing.T) {
	beforeCount := testutil.ToFloat64(donations.WithLabelValues("monthly"))
	beforeSum := testutil.ToFloat64(donationAmount.WithLabelValues("monthly"))

	RecordDonation("monthly", 25.5)

	assert.Equal(t, beforeCount+1, testutil.ToFloat64(donations.WithLabelValues("monthly")))
	assert.InDelta(t, beforeSum+25.5, testutil.ToFloat64(donationAmount.WithLabelValues("monthly")), 1e-9)
}

func TestRecordMail(t *testing.T) {
	okBefore := testutil.ToFloat64(mailSent.WithLabelValues("sandbox", "ok"))
	errBefore := testutil.ToFloat64(mailSent.WithLabelValues("sandbox", "error"))

	RecordMail("sandbox", nil)
	RecordMail("sandbox", errors.New("refused"))

	assert.Equal(t, okBefore+1, testutil.ToFloat64(mailSent.WithLabelValues("sandbox", "ok")))
	assert.Equal(t, errBefore+1, testutil.ToFloat64(mailSent.WithLabelValues("sandbox", "error")))
}

func TestRecordReconcile(t *testing.T) {
	RecordReconcile(3, nil)
	assert.Equal(t, float64(3), testutil.ToFloat64(reconcileCorrected))

	RecordReconcile(0, errors.New("timeout"))
	assert.Equal(t, float64(3), testutil.ToFloat64(reconcileCorrected), "failed run must not reset the gauge")
}

func TestHandler_ServesRegistry(t *testing.T) {
	RecordSideEffect("receipt_email", "ok")

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "hopenest_side_effects_total")
}
