package handler

import (
	"bytes"
	"net/http"

	"github.com/a-h/templ"
)

// render writes a complete page. The component is rendered into a buffer
// first so a failure can still produce a 500.
func render(w http.ResponseWriter, r *http.Request, status int, page templ.Component) {
	var buf bytes.Buffer
	if err := page.Render(r.Context(), &buf); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
