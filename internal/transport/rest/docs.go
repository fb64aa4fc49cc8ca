package rest

import (
	_ "embed"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger/v2"
)

//go:embed openapi.yaml
var openAPISpec []byte

const openAPIPath = "/docs/openapi.yaml"

// Docs serves the Swagger UI under /docs/, pointed at the embedded OpenAPI document.
func (h *Handler) Docs() http.HandlerFunc {
	return httpSwagger.Handler(
		httpSwagger.URL(openAPIPath),
		httpSwagger.DocExpansion("list"),
	)
}

// DocsRedirect sends /docs to the Swagger UI index page.
func (h *Handler) DocsRedirect(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/docs/index.html", http.StatusMovedPermanently)
}

// OpenAPI serves the embedded OpenAPI document.
func (h *Handler) OpenAPI(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(openAPISpec); err != nil {
		h.logger.Error("Failed to write OpenAPI document", "error", err)
	}
}
