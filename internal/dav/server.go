package dav

import (
	"net/http"

	"golang.org/x/net/webdav"

	"github.com/ebrainte/rd-dav-server/internal/log"
	"github.com/ebrainte/rd-dav-server/internal/vfs"
)

// NewHandler builds the WebDAV HTTP handler over the snapshot store.
func NewHandler(store *vfs.Store, opener Opener) http.Handler {
	return &webdav.Handler{
		FileSystem: NewFS(store, opener),
		LockSystem: webdav.NewMemLS(),
		Logger: func(r *http.Request, err error) {
			if err != nil {
				log.Debug("webdav request failed",
					"method", r.Method,
					"path", r.URL.Path,
					"error", err)
			}
		},
	}
}
