// Package rest provides HTTP handlers for product catalog operations.
package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	catalogerrors "github.com/abgdnv/catalog/internal/errors"
	"github.com/abgdnv/catalog/internal/service"
	"github.com/abgdnv/catalog/pkg/web"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

const (
	// NextCursorHeader carries the cursor of the following page on paged listings.
	NextCursorHeader = "X-Next-Cursor"

	defaultPageLimit = 100
	maxPageLimit     = 1000

	// maxBodyBytes caps the size of a create or update request body.
	maxBodyBytes = 1 << 20
)

type Handler struct {
	service  service.ProductService
	validate *validator.Validate
	logger   *slog.Logger
}

// NewHandler creates a new Handler with the provided service.
func NewHandler(service service.ProductService, logger *slog.Logger) *Handler {
	return &Handler{
		service:  service,
		validate: web.NewValidator(),
		logger:   logger.With("component", "rest"),
	}
}

// RegisterRoutes registers the HTTP routes for the catalog.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/products", func(r chi.Router) {
		r.Get("/", h.FindAll)
		r.Post("/", h.Create)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.FindByID)
			r.Put("/", h.Update)
			r.Delete("/", h.DeleteByID)
		})
	})

	r.Get("/healthz", h.HealthCheck)
	r.Get("/docs", h.DocsRedirect)
	r.Get("/docs/openapi.yaml", h.OpenAPI)
	r.Get("/docs/*", h.Docs())
}

// FindAll lists products. Without limit and cursor it returns the whole catalog;
// otherwise it returns one page and sets X-Next-Cursor when more remain.
func (h *Handler) FindAll(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	limit, limitSet, ok := web.ParseOptionalInt(r, w, h.logger, "limit", web.Gt(0), web.Lte(maxPageLimit))
	if !ok {
		return
	}
	cursor := r.URL.Query().Get("cursor")

	if !limitSet && cursor == "" {
		h.logger.DebugContext(ctx, "Received request to find all products")
		list, err := h.service.GetAll(ctx)
		if err != nil {
			h.logger.ErrorContext(ctx, "Error retrieving product list", "error", err)
			web.RespondError(w, h.logger, http.StatusInternalServerError, "Failed to fetch products")
			return
		}
		h.logger.DebugContext(ctx, "Successfully retrieved product list", "count", len(list))
		web.RespondSuccess(w, h.logger, http.StatusOK, "", list)
		return
	}

	if !limitSet {
		limit = defaultPageLimit
	}
	h.logger.DebugContext(ctx, "Received request to find products page", "limit", limit, "cursor", cursor)
	page, err := h.service.ListPage(ctx, cursor, limit)
	if err != nil {
		if errors.Is(err, catalogerrors.ErrInvalidCursor) {
			h.logger.WarnContext(ctx, "Invalid page cursor", "cursor", cursor)
			web.RespondError(w, h.logger, http.StatusBadRequest, fmt.Sprintf("Invalid cursor: %s", cursor))
			return
		}
		h.logger.ErrorContext(ctx, "Error retrieving product page", "error", err)
		web.RespondError(w, h.logger, http.StatusInternalServerError, "Failed to fetch products")
		return
	}
	if page.NextCursor != "" {
		w.Header().Set(NextCursorHeader, page.NextCursor)
	}
	web.RespondSuccess(w, h.logger, http.StatusOK, "", page.Items)
}

// FindByID retrieves a product by its ID.
func (h *Handler) FindByID(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	h.logger.DebugContext(ctx, "Received request to find product by ID", "ID", id)
	found, err := h.service.GetOne(ctx, id)
	if err != nil {
		if errors.Is(err, catalogerrors.ErrProductNotFound) {
			h.notFound(w, r, id)
			return
		}
		h.logger.ErrorContext(ctx, "Error retrieving product", "ID", id, "error", err)
		web.RespondError(w, h.logger, http.StatusInternalServerError, "Failed to fetch product")
		return
	}
	web.RespondSuccess(w, h.logger, http.StatusOK, "", found)
}

// Create handles the creation of a new product.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var productCreateDto service.ProductCreateDto
	if !h.bind(w, r, &productCreateDto) {
		return
	}

	newProduct, err := h.service.Create(ctx, productCreateDto)
	if err != nil {
		h.logger.ErrorContext(ctx, "Error creating product", "error", err)
		web.RespondError(w, h.logger, http.StatusInternalServerError, "Failed to create product")
		return
	}
	h.logger.InfoContext(ctx, "Product created successfully", "ID", newProduct.ID, "Name", newProduct.Name)
	web.RespondSuccess(w, h.logger, http.StatusCreated, "Product created successfully", newProduct)
}

// Update merges the supplied fields into an existing product.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	h.logger.DebugContext(ctx, "Received request to update product", "ID", id)
	var productUpdateDto service.ProductUpdateDto
	if !h.bind(w, r, &productUpdateDto) {
		return
	}

	updated, err := h.service.Update(ctx, id, productUpdateDto)
	if err != nil {
		if errors.Is(err, catalogerrors.ErrProductNotFound) {
			h.notFound(w, r, id)
			return
		}
		h.logger.ErrorContext(ctx, "Error updating product", "ID", id, "error", err)
		web.RespondError(w, h.logger, http.StatusInternalServerError, "Failed to update product")
		return
	}
	h.logger.InfoContext(ctx, "Product updated successfully", "ID", updated.ID)
	web.RespondSuccess(w, h.logger, http.StatusOK, "Product updated successfully", updated)
}

// DeleteByID deletes a product by its ID.
func (h *Handler) DeleteByID(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	h.logger.DebugContext(ctx, "Received request to delete product", "ID", id)
	if err := h.service.Delete(ctx, id); err != nil {
		if errors.Is(err, catalogerrors.ErrProductNotFound) {
			h.notFound(w, r, id)
			return
		}
		h.logger.ErrorContext(ctx, "Error deleting product", "ID", id, "error", err)
		web.RespondError(w, h.logger, http.StatusInternalServerError, "Failed to delete product")
		return
	}
	h.logger.InfoContext(ctx, "Product deleted successfully", "ID", id)
	web.RespondSuccess(w, h.logger, http.StatusOK, "Product deleted successfully", nil)
}

// HealthCheck is a simple liveness endpoint.
func (h *Handler) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// bind decodes the JSON body into dst and validates it, writing a 400 on failure.
// An empty body decodes as an empty object. The body must hold a single JSON value
// of at most maxBodyBytes.
func (h *Handler) bind(w http.ResponseWriter, r *http.Request, dst any) bool {
	ctx := r.Context()
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	err := dec.Decode(dst)
	if err == nil {
		if extra := dec.Decode(&struct{}{}); !errors.Is(extra, io.EOF) {
			err = fmt.Errorf("unexpected data after JSON value: %w", extra)
		}
	}
	if err != nil && !errors.Is(err, io.EOF) {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.logger.WarnContext(ctx, "Request body too large", "limit", tooLarge.Limit)
			web.RespondError(w, h.logger, http.StatusRequestEntityTooLarge, "Request body too large")
			return false
		}
		h.logger.WarnContext(ctx, "Error decoding request body", "error", err)
		web.RespondError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		message := web.ValidationMessage(err)
		h.logger.WarnContext(ctx, "Validation errors occurred", "errors", message)
		web.RespondError(w, h.logger, http.StatusBadRequest, message)
		return false
	}
	return true
}

func (h *Handler) notFound(w http.ResponseWriter, r *http.Request, id string) {
	h.logger.WarnContext(r.Context(), "Product not found", "ID", id)
	web.RespondError(w, h.logger, http.StatusNotFound, fmt.Sprintf("Product with ID %s not found", id))
}
