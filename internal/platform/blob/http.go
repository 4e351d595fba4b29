package blob

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
)

// Handler sirve blobs por GET bajo el prefijo montado (p.ej. /media/*).
func Handler(store Store, prefix string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := strings.TrimPrefix(r.URL.Path, prefix)
		if !validKey(key) {
			http.NotFound(w, r)
			return
		}

		info, rc, err := store.Get(r.Context(), key)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				http.NotFound(w, r)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		defer rc.Close()

		if info.ContentType != "" {
			w.Header().Set("Content-Type", info.ContentType)
		}
		if info.Size > 0 {
			w.Header().Set("Content-Length", strconv.FormatInt(info.Size, 10))
		}
		w.Header().Set("Cache-Control", "public, max-age=86400")
		_, _ = io.Copy(w, rc)
	})
}
