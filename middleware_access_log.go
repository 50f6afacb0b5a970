package main

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

type accessLogMiddleware struct {
	handler http.Handler
	log     zerolog.Logger
}

func (a *accessLogMiddleware) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	started := time.Now()
	wrapped := middleware.NewWrapResponseWriter(w, req.ProtoMajor)

	a.handler.ServeHTTP(wrapped, req)

	a.log.Info().
		Str("method", req.Method).
		Str("path", req.URL.Path).
		Str("remote_addr", req.RemoteAddr).
		Int("status", wrapped.Status()).
		Int("bytes", wrapped.BytesWritten()).
		Dur("elapsed", time.Since(started)).
		Msg("")
}
