package httpserver

import (
	"net/http"
	"time"
)

// New builds the gateway's HTTP server. The write timeout leaves headroom
// for handlers that block on relay calls, which in turn wait on portal hops.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}
}
