// Package uploads parses multipart document uploads, enforces the document
// policy and writes accepted files to local disk.
package uploads

import (
	"bytes"
	"errors"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/dalemusser/hopenest/internal/app/system/metrics"
)

// PolicyError is a rejected upload. Message is safe to show to clients.
type PolicyError struct {
	Reason  string // metrics label
	Message string
}

func (e *PolicyError) Error() string { return e.Message }

var (
	ErrTooManyFiles    = &PolicyError{Reason: "count", Message: "You can upload up to 5 documents"}
	ErrFileTooLarge    = &PolicyError{Reason: "size", Message: "Each file must be 5MB or smaller"}
	ErrFileType        = &PolicyError{Reason: "type", Message: "Only PDF, JPG, and PNG files are allowed"}
	ErrNoFiles         = &PolicyError{Reason: "missing", Message: "Please upload at least one document (PDF/JPG/PNG)."}
	ErrUnexpectedField = &PolicyError{Reason: "field", Message: "Unexpected file field"}

	// ErrNotMultipart means the request body is not multipart/form-data.
	ErrNotMultipart = errors.New("request is not multipart/form-data")
)

const (
	maxFieldBytes = 64 << 10
	maxFields     = 32
)

var allowedTypes = map[string]string{
	".pdf":  "application/pdf",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
}

// Policy bounds a document upload.
type Policy struct {
	Field       string
	MaxFiles    int
	MaxFileSize int64
	Required    bool
}

// DocumentPolicy is the crowdfunding application policy.
var DocumentPolicy = Policy{
	Field:       "documents",
	MaxFiles:    5,
	MaxFileSize: 5 << 20,
	Required:    true,
}

// File is an accepted upload held in memory until it is saved.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Form is a parsed multipart request.
type Form struct {
	Values map[string]string
	Files  []File
}

// Value returns a trimmed form value.
func (f *Form) Value(name string) string {
	return strings.TrimSpace(f.Values[name])
}

// Parse streams the multipart body and applies p to every file part. Nothing
// touches disk; a non-nil error means no file should be stored.
func Parse(r *http.Request, p Policy) (*Form, error) {
	form, err := parse(r, p)
	var pe *PolicyError
	if errors.As(err, &pe) {
		metrics.RecordUploadRejected(pe.Reason)
	}
	return form, err
}

func parse(r *http.Request, p Policy) (*Form, error) {
	// Leave room for one file past the limit so the count check, not the
	// body cap, reports an extra file.
	maxBody := int64(p.MaxFiles+1)*p.MaxFileSize + 1<<20
	r.Body = http.MaxBytesReader(nil, r.Body, maxBody)

	mr, err := r.MultipartReader()
	if err != nil {
		return nil, ErrNotMultipart
	}

	form := &Form{Values: map[string]string{}}
	fields := 0
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, mapReadErr(err)
		}

		if part.FileName() == "" {
			fields++
			if fields > maxFields {
				part.Close()
				return nil, errors.New("too many form fields")
			}
			b, err := io.ReadAll(io.LimitReader(part, maxFieldBytes))
			part.Close()
			if err != nil {
				return nil, mapReadErr(err)
			}
			form.Values[part.FormName()] = string(b)
			continue
		}

		if part.FormName() != p.Field {
			part.Close()
			return nil, ErrUnexpectedField
		}
		if len(form.Files) >= p.MaxFiles {
			part.Close()
			return nil, ErrTooManyFiles
		}

		f, err := readFile(part.FileName(), part.Header.Get("Content-Type"), part, p.MaxFileSize)
		part.Close()
		if err != nil {
			return nil, err
		}
		form.Files = append(form.Files, f)
	}

	if p.Required && len(form.Files) == 0 {
		return nil, ErrNoFiles
	}
	return form, nil
}

func readFile(name, declared string, r io.Reader, limit int64) (File, error) {
	ext := strings.ToLower(filepath.Ext(name))
	want, ok := allowedTypes[ext]
	if !ok {
		return File{}, ErrFileType
	}
	if mt, _, err := mime.ParseMediaType(declared); err != nil || normalizeType(mt) != want {
		return File{}, ErrFileType
	}

	var buf bytes.Buffer
	n, err := io.Copy(&buf, io.LimitReader(r, limit+1))
	if err != nil {
		return File{}, mapReadErr(err)
	}
	if n > limit {
		return File{}, ErrFileTooLarge
	}
	if normalizeType(http.DetectContentType(buf.Bytes())) != want {
		return File{}, ErrFileType
	}

	return File{Name: name, ContentType: want, Data: buf.Bytes()}, nil
}

func normalizeType(t string) string {
	t = strings.ToLower(strings.TrimSpace(t))
	if i := strings.IndexByte(t, ';'); i >= 0 {
		t = strings.TrimSpace(t[:i])
	}
	if t == "image/jpg" || t == "image/pjpeg" {
		return "image/jpeg"
	}
	return t
}

func mapReadErr(err error) error {
	var mbe *http.MaxBytesError
	if errors.As(err, &mbe) {
		return ErrFileTooLarge
	}
	return err
}
