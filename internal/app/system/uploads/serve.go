package uploads

import (
	"net/http"
	"os"

	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/dalemusser/waffle/pantry/storage"
)

// CacheControl is sent with every stored file. Names are unique per upload,
// so a URL never changes content.
const CacheControl = "public, max-age=31536000, immutable"

// Handler serves stored files under Prefix. With local storage only regular
// files are served; directories and anything outside the root are 404.
// Other backends are redirected to the backend URL.
func (s *Store) Handler() http.Handler {
	local, isLocal := s.backend.(*storage.Local)
	var files http.Handler
	if isLocal && s.root != "" {
		files = fileserver.Handler(s.prefix, s.root)
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", "GET, HEAD")
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}
		key, ok := s.key(r.URL.Path)
		if !ok {
			http.NotFound(w, r)
			return
		}
		if files == nil {
			http.Redirect(w, r, s.backend.URL(key), http.StatusFound)
			return
		}
		full, err := local.GetFullPath(key)
		if err != nil {
			http.NotFound(w, r)
			return
		}
		fi, err := os.Stat(full)
		if err != nil || !fi.Mode().IsRegular() {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Cache-Control", CacheControl)
		w.Header().Set("X-Content-Type-Options", "nosniff")
		files.ServeHTTP(w, r)
	})
}
