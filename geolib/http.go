package geolib

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// DefaultMaxUploadSize limits a size of the request body of uploads.
const DefaultMaxUploadSize = 32 << 20

type httpHandler struct {
	processor     *Processor
	maxUploadSize int64
}

func (h httpHandler) sendError(w http.ResponseWriter, err error, message string, statusCode int) {
	e := &httpError{
		message:    message,
		statusCode: statusCode,
		err:        err,
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(e.StatusCode())
	io.WriteString(w, e.Body()) // nolint: errcheck
}

// NewHTTPHandler returns a handler with an upload form on GET / and
// CSV processing on POST /upload. Non-positive maxUploadSize means
// DefaultMaxUploadSize.
func NewHTTPHandler(processor *Processor, maxUploadSize int64) http.Handler {
	if maxUploadSize <= 0 {
		maxUploadSize = DefaultMaxUploadSize
	}

	handler := httpHandler{
		processor:     processor,
		maxUploadSize: maxUploadSize,
	}
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)

	router.Get("/", handler.handleForm)
	router.Post("/upload", handler.handleUpload)

	return router
}
