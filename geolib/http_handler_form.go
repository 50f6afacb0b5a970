package geolib

import (
	"html/template"
	"net/http"
)

var uploadFormTemplate = template.Must(template.New("form").Parse(`<!DOCTYPE html>
<html>
  <head>
    <meta charset="utf-8">
    <title>CSV geolocation</title>
  </head>
  <body>
    <h1>Add coordinates to CSV</h1>
    <p>A file must have a <code>{{ .IPColumn }}</code> column with IP addresses.
       <code>latitude</code> and <code>longitude</code> columns are appended to each row.</p>
    <form method="post" action="/upload" enctype="multipart/form-data">
      <input type="file" name="file" accept=".csv">
      <button type="submit">Upload</button>
    </form>
  </body>
</html>
`))

func (h httpHandler) handleForm(w http.ResponseWriter, req *http.Request) {
	data := struct {
		IPColumn string
	}{
		IPColumn: h.processor.IPColumn(),
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	if err := uploadFormTemplate.Execute(w, data); err != nil {
		h.sendError(w, err, "Cannot render a page", http.StatusInternalServerError)
	}
}
