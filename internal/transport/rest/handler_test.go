package rest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	catalogerrors "github.com/abgdnv/catalog/internal/errors"
	"github.com/abgdnv/catalog/internal/service"
	"github.com/abgdnv/catalog/pkg/server"
	"github.com/abgdnv/catalog/pkg/web"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockProductService is a mock implementation of the ProductService interface
type mockProductService struct {
	product  *service.ProductDto
	products []service.ProductDto
	page     *service.ProductPage
	error    error

	gotID     string
	gotCreate service.ProductCreateDto
	gotUpdate service.ProductUpdateDto
	gotCursor string
	gotLimit  int32
	listPaged bool
}

func (m *mockProductService) GetOne(_ context.Context, id string) (*service.ProductDto, error) {
	m.gotID = id
	if m.error != nil {
		return nil, m.error
	}
	return m.product, nil
}

func (m *mockProductService) GetAll(_ context.Context) ([]service.ProductDto, error) {
	if m.error != nil {
		return nil, m.error
	}
	return m.products, nil
}

func (m *mockProductService) ListPage(_ context.Context, cursor string, limit int32) (*service.ProductPage, error) {
	m.listPaged = true
	m.gotCursor = cursor
	m.gotLimit = limit
	if m.error != nil {
		return nil, m.error
	}
	return m.page, nil
}

func (m *mockProductService) Create(_ context.Context, product service.ProductCreateDto) (*service.ProductDto, error) {
	m.gotCreate = product
	if m.error != nil {
		return nil, m.error
	}
	return m.product, nil
}

func (m *mockProductService) Update(_ context.Context, id string, product service.ProductUpdateDto) (*service.ProductDto, error) {
	m.gotID = id
	m.gotUpdate = product
	if m.error != nil {
		return nil, m.error
	}
	return m.product, nil
}

func (m *mockProductService) Delete(_ context.Context, id string) error {
	m.gotID = id
	return m.error
}

// toJSON is a helper function to convert a struct to JSON string
func toJSON(t *testing.T, v any) string {
	t.Helper()
	bytes, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("failed to marshal to JSON: %v", err)
	}
	return string(bytes)
}

func success(message string, data any) web.SuccessEnvelope {
	return web.SuccessEnvelope{Success: true, Message: message, Data: data}
}

func failure(message string) web.ErrorEnvelope {
	return web.ErrorEnvelope{Success: false, Error: message}
}

func newRouter(svc service.ProductService) http.Handler {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	r := server.NewChiRouter(logger)
	NewHandler(svc, logger).RegisterRoutes(r)
	return r
}

func serve(t *testing.T, handler http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

var aqua = service.ProductDto{ID: "p-1", Name: "Aqua", Brand: "X", Price: 50, Description: "citrus"}

func Test_ProductAPI_FindByID(t *testing.T) {
	testCases := []struct {
		name         string
		mockService  mockProductService
		productID    string
		expectedCode int
		expectedBody string
	}{
		{
			name:         "Success - product found",
			mockService:  mockProductService{product: &aqua},
			productID:    "p-1",
			expectedCode: http.StatusOK,
			expectedBody: toJSON(t, success("", aqua)),
		},
		{
			name:         "Error - product not found",
			mockService:  mockProductService{error: catalogerrors.ErrProductNotFound},
			productID:    "nonexistent-id",
			expectedCode: http.StatusNotFound,
			expectedBody: toJSON(t, failure("Product with ID nonexistent-id not found")),
		},
		{
			name:         "Error - service error",
			mockService:  mockProductService{error: errors.New("service unavailable")},
			productID:    "p-1",
			expectedCode: http.StatusInternalServerError,
			expectedBody: toJSON(t, failure("Failed to fetch product")),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			router := newRouter(&tc.mockService)

			// when
			rr := serve(t, router, http.MethodGet, "/products/"+tc.productID, "")

			// then
			assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
			assert.Equal(t, tc.expectedCode, rr.Code, "status code should match")
			assert.JSONEq(t, tc.expectedBody, rr.Body.String(), "response body should match")
			assert.Equal(t, tc.productID, tc.mockService.gotID)
		})
	}
}

func Test_ProductAPI_FindAll(t *testing.T) {
	testCases := []struct {
		name           string
		mockService    mockProductService
		query          string
		expectedCode   int
		expectedBody   string
		expectedPaged  bool
		expectedLimit  int32
		expectedCursor string
		expectedNext   string
	}{
		{
			name:         "Success - whole catalog",
			mockService:  mockProductService{products: []service.ProductDto{aqua}},
			expectedCode: http.StatusOK,
			expectedBody: toJSON(t, success("", []service.ProductDto{aqua})),
		},
		{
			name:         "Success - empty catalog",
			mockService:  mockProductService{products: []service.ProductDto{}},
			expectedCode: http.StatusOK,
			expectedBody: `{"success":true,"data":[]}`,
		},
		{
			name:         "Error - service error",
			mockService:  mockProductService{error: errors.New("scan failed")},
			expectedCode: http.StatusInternalServerError,
			expectedBody: toJSON(t, failure("Failed to fetch products")),
		},
		{
			name:          "Success - first page",
			mockService:   mockProductService{page: &service.ProductPage{Items: []service.ProductDto{aqua}, NextCursor: "next"}},
			query:         "?limit=1",
			expectedCode:  http.StatusOK,
			expectedBody:  toJSON(t, success("", []service.ProductDto{aqua})),
			expectedPaged: true,
			expectedLimit: 1,
			expectedNext:  "next",
		},
		{
			name:           "Success - cursor without limit uses default page size",
			mockService:    mockProductService{page: &service.ProductPage{Items: []service.ProductDto{}}},
			query:          "?cursor=abc",
			expectedCode:   http.StatusOK,
			expectedBody:   `{"success":true,"data":[]}`,
			expectedPaged:  true,
			expectedLimit:  defaultPageLimit,
			expectedCursor: "abc",
		},
		{
			name:           "Error - invalid cursor",
			mockService:    mockProductService{error: catalogerrors.ErrInvalidCursor},
			query:          "?limit=5&cursor=bogus",
			expectedCode:   http.StatusBadRequest,
			expectedBody:   toJSON(t, failure("Invalid cursor: bogus")),
			expectedPaged:  true,
			expectedLimit:  5,
			expectedCursor: "bogus",
		},
		{
			name:         "Error - limit not a number",
			query:        "?limit=ten",
			expectedCode: http.StatusBadRequest,
			expectedBody: toJSON(t, failure("Invalid limit number: ten")),
		},
		{
			name:         "Error - limit out of range",
			query:        "?limit=1001",
			expectedCode: http.StatusBadRequest,
			expectedBody: toJSON(t, failure("Invalid limit number: 1001")),
		},
		{
			name:         "Error - limit zero",
			query:        "?limit=0",
			expectedCode: http.StatusBadRequest,
			expectedBody: toJSON(t, failure("Invalid limit number: 0")),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			router := newRouter(&tc.mockService)

			// when
			rr := serve(t, router, http.MethodGet, "/products"+tc.query, "")

			// then
			assert.Equal(t, tc.expectedCode, rr.Code, "status code should match")
			assert.JSONEq(t, tc.expectedBody, rr.Body.String(), "response body should match")
			assert.Equal(t, tc.expectedPaged, tc.mockService.listPaged)
			assert.Equal(t, tc.expectedLimit, tc.mockService.gotLimit)
			assert.Equal(t, tc.expectedCursor, tc.mockService.gotCursor)
			assert.Equal(t, tc.expectedNext, rr.Header().Get(NextCursorHeader))
		})
	}
}

func Test_ProductAPI_Create(t *testing.T) {
	testCases := []struct {
		name         string
		mockService  mockProductService
		body         string
		expectedCode int
		expectedBody string
	}{
		{
			name:         "Success - product created",
			mockService:  mockProductService{product: &aqua},
			body:         `{"name":"Aqua","brand":"X","price":50,"description":"citrus"}`,
			expectedCode: http.StatusCreated,
			expectedBody: toJSON(t, success("Product created successfully", aqua)),
		},
		{
			name:         "Success - zero price and empty description are accepted",
			mockService:  mockProductService{product: &aqua},
			body:         `{"name":"Aqua","brand":"X","price":0,"description":""}`,
			expectedCode: http.StatusCreated,
			expectedBody: toJSON(t, success("Product created successfully", aqua)),
		},
		{
			name:         "Error - missing fields",
			body:         `{"brand":"X","description":"citrus"}`,
			expectedCode: http.StatusBadRequest,
			expectedBody: toJSON(t, failure("name failed on rule: required, price failed on rule: required")),
		},
		{
			name:         "Error - empty body",
			expectedCode: http.StatusBadRequest,
			expectedBody: toJSON(t, failure("name failed on rule: required, brand failed on rule: required, price failed on rule: required, description failed on rule: required")),
		},
		{
			name:         "Error - price of wrong type",
			body:         `{"name":"Aqua","brand":"X","price":"50","description":"citrus"}`,
			expectedCode: http.StatusBadRequest,
			expectedBody: toJSON(t, failure("Invalid request body")),
		},
		{
			name:         "Error - malformed json",
			body:         `{"name":`,
			expectedCode: http.StatusBadRequest,
			expectedBody: toJSON(t, failure("Invalid request body")),
		},
		{
			name:         "Error - trailing data after the object",
			body:         `{"name":"Aqua","brand":"X","price":50,"description":"citrus"} {"name":"Second"}`,
			expectedCode: http.StatusBadRequest,
			expectedBody: toJSON(t, failure("Invalid request body")),
		},
		{
			name:         "Error - trailing garbage",
			body:         `{"name":"Aqua","brand":"X","price":50,"description":"citrus"}garbage`,
			expectedCode: http.StatusBadRequest,
			expectedBody: toJSON(t, failure("Invalid request body")),
		},
		{
			name:         "Success - trailing whitespace is ignored",
			mockService:  mockProductService{product: &aqua},
			body:         "{\"name\":\"Aqua\",\"brand\":\"X\",\"price\":50,\"description\":\"citrus\"}\n",
			expectedCode: http.StatusCreated,
			expectedBody: toJSON(t, success("Product created successfully", aqua)),
		},
		{
			name:         "Error - body too large",
			body:         `{"name":"Aqua","brand":"X","price":50,"description":"` + strings.Repeat("a", maxBodyBytes) + `"}`,
			expectedCode: http.StatusRequestEntityTooLarge,
			expectedBody: toJSON(t, failure("Request body too large")),
		},
		{
			name:         "Error - service error",
			mockService:  mockProductService{error: errors.New("put failed")},
			body:         `{"name":"Aqua","brand":"X","price":50,"description":"citrus"}`,
			expectedCode: http.StatusInternalServerError,
			expectedBody: toJSON(t, failure("Failed to create product")),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			router := newRouter(&tc.mockService)

			// when
			rr := serve(t, router, http.MethodPost, "/products", tc.body)

			// then
			assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
			assert.Equal(t, tc.expectedCode, rr.Code, "status code should match")
			assert.JSONEq(t, tc.expectedBody, rr.Body.String(), "response body should match")
		})
	}
}

func Test_ProductAPI_Create_PassesFields(t *testing.T) {
	// given
	mockService := &mockProductService{product: &aqua}
	router := newRouter(mockService)

	// when
	rr := serve(t, router, http.MethodPost, "/products", `{"name":"Aqua","brand":"X","price":50,"description":"citrus"}`)

	// then
	require.Equal(t, http.StatusCreated, rr.Code)
	got := mockService.gotCreate
	assert.Equal(t, "Aqua", got.Name)
	assert.Equal(t, "X", got.Brand)
	require.NotNil(t, got.Price)
	assert.InDelta(t, 50.0, *got.Price, 0)
	require.NotNil(t, got.Description)
	assert.Equal(t, "citrus", *got.Description)
}

func Test_ProductAPI_Update(t *testing.T) {
	updated := aqua
	updated.Price = 42

	testCases := []struct {
		name         string
		mockService  mockProductService
		productID    string
		body         string
		expectedCode int
		expectedBody string
	}{
		{
			name:         "Success - price updated",
			mockService:  mockProductService{product: &updated},
			productID:    "p-1",
			body:         `{"price":42}`,
			expectedCode: http.StatusOK,
			expectedBody: toJSON(t, success("Product updated successfully", updated)),
		},
		{
			name:         "Success - empty object",
			mockService:  mockProductService{product: &aqua},
			productID:    "p-1",
			body:         `{}`,
			expectedCode: http.StatusOK,
			expectedBody: toJSON(t, success("Product updated successfully", aqua)),
		},
		{
			name:         "Error - product not found",
			mockService:  mockProductService{error: catalogerrors.ErrProductNotFound},
			productID:    "nonexistent-id",
			body:         `{"price":10}`,
			expectedCode: http.StatusNotFound,
			expectedBody: toJSON(t, failure("Product with ID nonexistent-id not found")),
		},
		{
			name:         "Error - empty name",
			productID:    "p-1",
			body:         `{"name":""}`,
			expectedCode: http.StatusBadRequest,
			expectedBody: toJSON(t, failure("name failed on rule: min")),
		},
		{
			name:         "Error - malformed json",
			productID:    "p-1",
			body:         `[1,2]`,
			expectedCode: http.StatusBadRequest,
			expectedBody: toJSON(t, failure("Invalid request body")),
		},
		{
			name:         "Error - service error",
			mockService:  mockProductService{error: errors.New("update failed")},
			productID:    "p-1",
			body:         `{"price":10}`,
			expectedCode: http.StatusInternalServerError,
			expectedBody: toJSON(t, failure("Failed to update product")),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			router := newRouter(&tc.mockService)

			// when
			rr := serve(t, router, http.MethodPut, "/products/"+tc.productID, tc.body)

			// then
			assert.Equal(t, tc.expectedCode, rr.Code, "status code should match")
			assert.JSONEq(t, tc.expectedBody, rr.Body.String(), "response body should match")
		})
	}
}

func Test_ProductAPI_Update_PassesOnlySuppliedFields(t *testing.T) {
	// given
	mockService := &mockProductService{product: &aqua}
	router := newRouter(mockService)

	// when
	rr := serve(t, router, http.MethodPut, "/products/p-1", `{"price":42,"description":""}`)

	// then
	require.Equal(t, http.StatusOK, rr.Code)
	got := mockService.gotUpdate
	assert.Equal(t, "p-1", mockService.gotID)
	assert.Nil(t, got.Name)
	assert.Nil(t, got.Brand)
	require.NotNil(t, got.Price)
	assert.InDelta(t, 42.0, *got.Price, 0)
	require.NotNil(t, got.Description)
	assert.Empty(t, *got.Description)
}

func Test_ProductAPI_Delete(t *testing.T) {
	testCases := []struct {
		name         string
		mockService  mockProductService
		productID    string
		expectedCode int
		expectedBody string
	}{
		{
			name:         "Success - product deleted",
			productID:    "p-1",
			expectedCode: http.StatusOK,
			expectedBody: `{"success":true,"message":"Product deleted successfully","data":null}`,
		},
		{
			name:         "Error - product not found",
			mockService:  mockProductService{error: catalogerrors.ErrProductNotFound},
			productID:    "p-1",
			expectedCode: http.StatusNotFound,
			expectedBody: toJSON(t, failure("Product with ID p-1 not found")),
		},
		{
			name:         "Error - service error",
			mockService:  mockProductService{error: errors.New("delete failed")},
			productID:    "p-1",
			expectedCode: http.StatusInternalServerError,
			expectedBody: toJSON(t, failure("Failed to delete product")),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			router := newRouter(&tc.mockService)

			// when
			rr := serve(t, router, http.MethodDelete, "/products/"+tc.productID, "")

			// then
			assert.Equal(t, tc.expectedCode, rr.Code, "status code should match")
			assert.JSONEq(t, tc.expectedBody, rr.Body.String(), "response body should match")
			assert.Equal(t, tc.productID, tc.mockService.gotID)
		})
	}
}

func Test_ProductAPI_HealthAndDocs(t *testing.T) {
	router := newRouter(&mockProductService{})

	health := serve(t, router, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, health.Code)

	redirect := serve(t, router, http.MethodGet, "/docs", "")
	assert.Equal(t, http.StatusMovedPermanently, redirect.Code)
	assert.Equal(t, "/docs/index.html", redirect.Header().Get("Location"))

	docs := serve(t, router, http.MethodGet, "/docs/index.html", "")
	assert.Equal(t, http.StatusOK, docs.Code)
	assert.Contains(t, docs.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, docs.Body.String(), "/docs/openapi.yaml")
	assert.NotContains(t, docs.Body.String(), "unpkg.com")

	spec := serve(t, router, http.MethodGet, "/docs/openapi.yaml", "")
	assert.Equal(t, http.StatusOK, spec.Code)
	assert.Equal(t, "application/yaml", spec.Header().Get("Content-Type"))
	assert.Contains(t, spec.Body.String(), "/products/{id}")
}

func Test_ProductAPI_UnknownRoute(t *testing.T) {
	testCases := []struct {
		name         string
		method       string
		target       string
		expectedCode int
		expectedBody string
	}{
		{
			name:         "unsupported method on a product",
			method:       http.MethodPatch,
			target:       "/products/p-1",
			expectedCode: http.StatusMethodNotAllowed,
			expectedBody: toJSON(t, failure("Method PATCH not allowed on /products/p-1")),
		},
		{
			name:         "unsupported method on the collection",
			method:       http.MethodDelete,
			target:       "/products",
			expectedCode: http.StatusMethodNotAllowed,
			expectedBody: toJSON(t, failure("Method DELETE not allowed on /products")),
		},
		{
			name:         "nested path below a product",
			method:       http.MethodGet,
			target:       "/products/x/y",
			expectedCode: http.StatusNotFound,
			expectedBody: toJSON(t, failure("Route /products/x/y not found")),
		},
		{
			name:         "unknown top-level path",
			method:       http.MethodGet,
			target:       "/orders",
			expectedCode: http.StatusNotFound,
			expectedBody: toJSON(t, failure("Route /orders not found")),
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			router := newRouter(&mockProductService{})

			// when
			rr := serve(t, router, tc.method, tc.target, `{}`)

			// then
			assert.Equal(t, tc.expectedCode, rr.Code)
			assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
			assert.JSONEq(t, tc.expectedBody, rr.Body.String())
		})
	}
}
