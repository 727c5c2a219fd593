// Package csvutil streams spreadsheet-friendly CSV downloads.
package csvutil

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// bom lets Excel detect UTF-8.
var bom = []byte{0xEF, 0xBB, 0xBF}

// Writer writes sanitized rows to an HTTP attachment.
type Writer struct {
	cw   *csv.Writer
	rows int
}

// Attach sets the download headers on w, writes the BOM and the header row.
func Attach(w http.ResponseWriter, filename string, header ...string) (*Writer, error) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, url.PathEscape(filename)))
	w.Header().Set("Cache-Control", "no-store")

	if _, err := w.Write(bom); err != nil {
		return nil, fmt.Errorf("write bom: %w", err)
	}
	cw := csv.NewWriter(w)
	cw.UseCRLF = true
	if err := cw.Write(header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	return &Writer{cw: cw}, nil
}

// Row writes one record. Cells are passed through SanitizeField.
func (x *Writer) Row(cells ...string) error {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = SanitizeField(c)
	}
	x.rows++
	return x.cw.Write(out)
}

// Rows is the number of records written, header excluded.
func (x *Writer) Rows() int { return x.rows }

// Flush flushes buffered output and reports any write error.
func (x *Writer) Flush() error {
	x.cw.Flush()
	return x.cw.Error()
}

// SanitizeField neutralizes values a spreadsheet would evaluate as a formula.
func SanitizeField(s string) string {
	if s == "" {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r':
		return "'" + s
	}
	return strings.ReplaceAll(s, "\x00", "")
}
