package csvutil

import (
	"net/http/httptest"
	"strings"
	"testing"
)

func TestSanitizeField(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"Ada Lovelace", "Ada Lovelace"},
		{"=SUM(A1:A9)", "'=SUM(A1:A9)"},
		{"+1 555 0100", "'+1 555 0100"},
		{"-10", "'-10"},
		{"@cmd", "'@cmd"},
		{"a\x00b", "ab"},
	}
	for _, tt := range tests {
		if got := SanitizeField(tt.in); got != tt.want {
			t.Errorf("SanitizeField(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestAttach(t *testing.T) {
	rec := httptest.NewRecorder()
	cw, err := Attach(rec, "donations 2026.csv", "id", "name")
	if err != nil {
		t.Fatalf("Attach: %v", err)
	}
	if err := cw.Row("1", "=HYPERLINK()"); err != nil {
		t.Fatalf("Row: %v", err)
	}
	if err := cw.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	if ct := rec.Header().Get("Content-Type"); ct != "text/csv; charset=utf-8" {
		t.Errorf("content type: %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, `filename="donations%202026.csv"`) {
		t.Errorf("content disposition: %q", cd)
	}
	body := rec.Body.String()
	if !strings.HasPrefix(body, "\xEF\xBB\xBF") {
		t.Error("missing BOM")
	}
	want := "id,name\r\n1,'=HYPERLINK()\r\n"
	if strings.TrimPrefix(body, "\xEF\xBB\xBF") != want {
		t.Errorf("body: %q, want %q", body, want)
	}
	if cw.Rows() != 1 {
		t.Errorf("rows: got %d", cw.Rows())
	}
}
