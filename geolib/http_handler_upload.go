package geolib

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

const uploadFormField = "file"

func (h httpHandler) handleUpload(w http.ResponseWriter, req *http.Request) {
	req.Body = http.MaxBytesReader(w, req.Body, h.maxUploadSize)

	file, header, err := req.FormFile(uploadFormField)

	switch {
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
		h.sendError(w, ErrNoFile, "Please select a file", http.StatusBadRequest)

		return
	case err != nil:
		h.sendError(w, err, "Cannot read uploaded file", http.StatusInternalServerError)

		return
	}

	defer file.Close()

	if header.Size == 0 {
		h.sendError(w, ErrNoFile, "Please select a file", http.StatusBadRequest)

		return
	}

	if err := CheckFilename(header.Filename); err != nil {
		h.sendError(w, err, "Please upload a CSV file", http.StatusBadRequest)

		return
	}

	buf := &bytes.Buffer{}

	_, err = h.processor.Process(req.Context(), file, buf)

	switch {
	case errors.Is(err, ErrEmptyCSV):
		h.sendError(w, err, "CSV file is empty", http.StatusBadRequest)

		return
	case errors.Is(err, ErrIPColumnNotFound):
		h.sendError(w, err,
			fmt.Sprintf("'%s' column not found in CSV", h.processor.IPColumn()),
			http.StatusBadRequest)

		return
	case err != nil:
		h.sendError(w, err, "Cannot process CSV", http.StatusInternalServerError)

		return
	}

	filename := strings.ReplaceAll("processed_"+header.Filename, `"`, `\"`)

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w) // nolint: errcheck
}
