package uploads

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var (
	pdfBytes = []byte("%PDF-1.7\n%\xe2\xe3\xcf\xd3\n1 0 obj\n<<>>\nendobj\n")
	pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
)

type part struct {
	field, name, ctype string
	data               []byte
}

func multipartRequest(t *testing.T, values map[string]string, parts ...part) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range values {
		require.NoError(t, mw.WriteField(k, v))
	}
	for _, p := range parts {
		h := textproto.MIMEHeader{}
		h.Set("Content-Disposition", `form-data; name="`+p.field+`"; filename="`+p.name+`"`)
		h.Set("Content-Type", p.ctype)
		w, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = w.Write(p.data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/crowdfunding/apply", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func pdf(name string) part { return part{"documents", name, "application/pdf", pdfBytes} }

func TestParseAcceptsDocuments(t *testing.T) {
	req := multipartRequest(t, map[string]string{"title": "  Clean Water  "},
		pdf("plan.pdf"),
		part{"documents", "photo.PNG", "image/png", pngBytes},
	)
	form, err := Parse(req, DocumentPolicy)
	require.NoError(t, err)
	assert.Equal(t, "Clean Water", form.Value("title"))
	require.Len(t, form.Files, 2)
	assert.Equal(t, "image/png", form.Files[1].ContentType)
}

func TestParseRejections(t *testing.T) {
	six := make([]part, 6)
	for i := range six {
		six[i] = pdf("doc.pdf")
	}
	big := append(append([]byte{}, pdfBytes...), bytes.Repeat([]byte("a"), 6<<20)...)

	tests := []struct {
		name  string
		parts []part
		want  *PolicyError
	}{
		{"six files", six, ErrTooManyFiles},
		{"six megabytes", []part{{"documents", "big.pdf", "application/pdf", big}}, ErrFileTooLarge},
		{"text file", []part{{"documents", "notes.txt", "text/plain", []byte("hello")}}, ErrFileType},
		{"renamed text", []part{{"documents", "notes.pdf", "application/pdf", []byte("hello")}}, ErrFileType},
		{"declared type mismatch", []part{{"documents", "plan.pdf", "image/png", pdfBytes}}, ErrFileType},
		{"no files", nil, ErrNoFiles},
		{"wrong field", []part{{"attachments", "plan.pdf", "application/pdf", pdfBytes}}, ErrUnexpectedField},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(multipartRequest(t, nil, tt.parts...), DocumentPolicy)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestParseNotMultipart(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	_, err := Parse(req, DocumentPolicy)
	assert.ErrorIs(t, err, ErrNotMultipart)
}

func TestStoreSaveAndRemove(t *testing.T) {
	dir := t.TempDir()
	s, err := NewLocal(dir, "/uploads/", zap.NewNop())
	require.NoError(t, err)
	s.now = func() time.Time { return time.UnixMilli(1700000000000) }
	ctx := context.Background()

	paths, err := s.Save(ctx, "crowdfunding", []File{
		{Name: "../../etc/My Plan.pdf", ContentType: "application/pdf", Data: pdfBytes},
		{Name: "My Plan.pdf", ContentType: "application/pdf", Data: pdfBytes},
	})
	require.NoError(t, err)
	require.Equal(t, []string{
		"/uploads/crowdfunding/1700000000000-My_Plan.pdf",
		"/uploads/crowdfunding/1700000000000-My_Plan-1.pdf",
	}, paths)

	got, err := os.ReadFile(filepath.Join(dir, "crowdfunding", "1700000000000-My_Plan.pdf"))
	require.NoError(t, err)
	assert.Equal(t, pdfBytes, got)

	s.Remove(ctx, append(paths, "/uploads/../secret", "/elsewhere/x"))
	entries, err := os.ReadDir(filepath.Join(dir, "crowdfunding"))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestStoreKey(t *testing.T) {
	s := New(nil, "uploads", zap.NewNop())
	assert.Equal(t, "/uploads", s.Prefix())

	key, ok := s.key("/uploads/crowdfunding/1-a.pdf")
	assert.True(t, ok)
	assert.Equal(t, "crowdfunding/1-a.pdf", key)

	for _, p := range []string{"/uploads/", "/uploads", "/uploads/../go.mod", "/uploads/a/../../b", "/files/a.pdf"} {
		_, ok := s.key(p)
		assert.False(t, ok, p)
	}
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "file", sanitizeFilename(""))
	assert.Equal(t, "file", sanitizeFilename(".."))
	assert.Equal(t, "a_b.png", sanitizeFilename(`C:\tmp\a b.png`))
	long := strings.Repeat("x", 150) + ".pdf"
	out := sanitizeFilename(long)
	assert.Len(t, out, 100)
	assert.True(t, strings.HasSuffix(out, ".pdf"))
}
