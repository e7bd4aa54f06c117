package httpapi

import (
	"net/http"

	"github.com/klauspost/compress/gzhttp"

	"climate-api/internal/config"
)

// NewServer wraps handler with gzip negotiation. Responses below gzhttp's
// minimum size are sent uncompressed.
func NewServer(cfg config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           gzhttp.GzipHandler(handler),
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}
