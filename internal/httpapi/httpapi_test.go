package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cuongthieu-itme/ecm-be/internal/cart"
	"github.com/cuongthieu-itme/ecm-be/internal/catalog"
	"github.com/cuongthieu-itme/ecm-be/internal/fault"
	"github.com/cuongthieu-itme/ecm-be/internal/order"
	"github.com/cuongthieu-itme/ecm-be/pkg/metrics"
	"github.com/cuongthieu-itme/ecm-be/pkg/pagination"
)

// prometheus collectors register globally, so one instance serves all tests
var testMetrics = metrics.NewServerMetrics("test")

func init() {
	gin.SetMode(gin.TestMode)
}

type stubCatalog struct {
	products []catalog.Product
}

func (s *stubCatalog) ListProducts(_ context.Context, q catalog.ProductQuery) ([]catalog.Product, pagination.Meta, error) {
	return s.products, pagination.NewMeta(int64(len(s.products)), q.Page, q.Limit), nil
}

func (s *stubCatalog) GetProduct(_ context.Context, id int64) (*catalog.Product, error) {
	for i := range s.products {
		if s.products[i].ID == id {
			return &s.products[i], nil
		}
	}
	return nil, fault.NotFound("product not found")
}

func (s *stubCatalog) CreateProduct(_ context.Context, in catalog.ProductInput) (*catalog.Product, error) {
	return &catalog.Product{ID: 99, Name: in.Name, Price: in.Price, Stock: in.Stock, IsActive: true}, nil
}

func (s *stubCatalog) UpdateProduct(_ context.Context, id int64, _ catalog.ProductUpdate) (*catalog.Product, error) {
	return s.GetProduct(context.Background(), id)
}

func (s *stubCatalog) DeactivateProduct(context.Context, int64) error { return nil }

func (s *stubCatalog) ListCategories(context.Context) ([]catalog.Category, error) {
	return []catalog.Category{}, nil
}

func (s *stubCatalog) GetCategory(context.Context, int64) (*catalog.CategoryDetail, error) {
	return nil, fault.NotFound("category not found")
}

func (s *stubCatalog) CreateCategory(_ context.Context, name string) (*catalog.Category, error) {
	return nil, fault.Conflict("category with this name already exists")
}

func (s *stubCatalog) UpdateCategory(context.Context, int64, string) (*catalog.Category, error) {
	return nil, fault.NotFound("category not found")
}

func (s *stubCatalog) DeleteCategory(context.Context, int64) error { return nil }

type stubCart struct {
	cart *cart.Cart
}

func (s *stubCart) Get(context.Context, int64) (*cart.Cart, error) { return s.cart, nil }

func (s *stubCart) AddItem(context.Context, int64, int64, int) (*cart.Cart, error) {
	return s.cart, nil
}

func (s *stubCart) UpdateItem(context.Context, int64, int64, int) (*cart.Cart, error) {
	return nil, fault.NotFound("cart item not found")
}

func (s *stubCart) RemoveItem(context.Context, int64, int64) (*cart.Cart, error) {
	return nil, fault.NotFound("cart item not found")
}

func (s *stubCart) Clear(context.Context, int64) error { return nil }

type stubOrders struct {
	placeErr error
	order    *order.Order
}

func (s *stubOrders) Place(_ context.Context, userID int64, _ string) (*order.Order, error) {
	if s.placeErr != nil {
		return nil, s.placeErr
	}
	return s.order, nil
}

func (s *stubOrders) ListForUser(_ context.Context, _ int64, page, limit int) ([]order.Summary, pagination.Meta, error) {
	return []order.Summary{}, pagination.NewMeta(0, page, limit), nil
}

func (s *stubOrders) ListAll(_ context.Context, page, limit int) ([]order.Summary, pagination.Meta, error) {
	return []order.Summary{}, pagination.NewMeta(0, page, limit), nil
}

func (s *stubOrders) Get(_ context.Context, id, requesterID int64, isAdmin bool) (*order.Order, error) {
	if s.order == nil || s.order.ID != id {
		return nil, fault.NotFound("order not found")
	}
	if !isAdmin && s.order.UserID != requesterID {
		return nil, fault.Forbidden("access denied")
	}
	return s.order, nil
}

func (s *stubOrders) UpdateStatus(_ context.Context, id int64, status order.Status) (*order.Order, error) {
	if s.order == nil || s.order.ID != id {
		return nil, fault.NotFound("order not found")
	}
	o := *s.order
	o.Status = status
	return &o, nil
}

func newTestRouter(cat CatalogService, carts CartService, orders OrderService) *gin.Engine {
	return NewServer(cat, carts, orders, testMetrics).Router()
}

func doRequest(r *gin.Engine, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func asUser(id string) map[string]string {
	return map[string]string{"X-User-ID": id, "X-User-Role": "USER"}
}

func asAdmin(id string) map[string]string {
	return map[string]string{"X-User-ID": id, "X-User-Role": "ADMIN"}
}

type envelope struct {
	Success bool             `json:"success"`
	Data    json.RawMessage  `json:"data"`
	Meta    *pagination.Meta `json:"meta"`
	Error   string           `json:"error"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func TestCartRequiresAuth(t *testing.T) {
	r := newTestRouter(&stubCatalog{}, &stubCart{}, &stubOrders{})
	w := doRequest(r, http.MethodGet, "/api/cart", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, decode(t, w).Success)
}

func TestAdminRouteForbiddenForUser(t *testing.T) {
	r := newTestRouter(&stubCatalog{}, &stubCart{}, &stubOrders{})
	w := doRequest(r, http.MethodPost, "/api/products", `{"name":"Widget","price":1,"stock":1,"categoryId":1}`, asUser("7"))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doRequest(r, http.MethodPost, "/api/products", `{"name":"Widget","price":1,"stock":1,"categoryId":1}`, asAdmin("1"))
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestListProductsEnvelope(t *testing.T) {
	cat := &stubCatalog{products: []catalog.Product{{ID: 1, Name: "Widget", Price: decimal.RequireFromString("10.00"), IsActive: true}}}
	r := newTestRouter(cat, &stubCart{}, &stubOrders{})

	w := doRequest(r, http.MethodGet, "/api/products?page=1&limit=10", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	env := decode(t, w)
	assert.True(t, env.Success)
	require.NotNil(t, env.Meta)
	assert.Equal(t, int64(1), env.Meta.Total)
	assert.Equal(t, 1, env.Meta.TotalPages)
}

func TestGetProductNotFound(t *testing.T) {
	r := newTestRouter(&stubCatalog{}, &stubCart{}, &stubOrders{})
	w := doRequest(r, http.MethodGet, "/api/products/42", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	env := decode(t, w)
	assert.False(t, env.Success)
	assert.Equal(t, "product not found", env.Error)
}

func TestCreateCategoryConflict(t *testing.T) {
	r := newTestRouter(&stubCatalog{}, &stubCart{}, &stubOrders{})
	w := doRequest(r, http.MethodPost, "/api/categories", `{"name":"Phones"}`, asAdmin("1"))
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestClearCartAlwaysSucceeds(t *testing.T) {
	r := newTestRouter(&stubCatalog{}, &stubCart{}, &stubOrders{})
	w := doRequest(r, http.MethodDelete, "/api/cart", "", asUser("7"))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Cart cleared successfully")
}

func TestAddCartItemRejectsBadQuantity(t *testing.T) {
	crt := &cart.Cart{Items: []cart.Item{}, TotalPrice: decimal.Zero}
	r := newTestRouter(&stubCatalog{}, &stubCart{cart: crt}, &stubOrders{})

	w := doRequest(r, http.MethodPost, "/api/cart/items", `{"productId":1,"quantity":0}`, asUser("7"))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(r, http.MethodPost, "/api/cart/items", `{"productId":1,"quantity":-2}`, asUser("7"))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(r, http.MethodPost, "/api/cart/items", `{"productId":1,"quantity":2}`, asUser("7"))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestPlaceOrderEmptyCart(t *testing.T) {
	r := newTestRouter(&stubCatalog{}, &stubCart{}, &stubOrders{placeErr: fault.InvalidRequest("cart is empty")})
	w := doRequest(r, http.MethodPost, "/api/orders", "", asUser("7"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "cart is empty", decode(t, w).Error)
}

func TestPlaceOrderCreated(t *testing.T) {
	o := &order.Order{ID: 1, UserID: 7, Status: order.StatusPending, TotalPrice: decimal.RequireFromString("20.00")}
	r := newTestRouter(&stubCatalog{}, &stubCart{}, &stubOrders{order: o})

	w := doRequest(r, http.MethodPost, "/api/orders", "", asUser("7"))
	require.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, decode(t, w).Success)
}

func TestGetOrderOwnership(t *testing.T) {
	o := &order.Order{ID: 1, UserID: 7, Status: order.StatusPending}
	r := newTestRouter(&stubCatalog{}, &stubCart{}, &stubOrders{order: o})

	w := doRequest(r, http.MethodGet, "/api/orders/1", "", asUser("8"))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doRequest(r, http.MethodGet, "/api/orders/1", "", asUser("7"))
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(r, http.MethodGet, "/api/orders/1", "", asAdmin("1"))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestUpdateOrderStatus(t *testing.T) {
	o := &order.Order{ID: 1, UserID: 7, Status: order.StatusPending}
	r := newTestRouter(&stubCatalog{}, &stubCart{}, &stubOrders{order: o})

	w := doRequest(r, http.MethodPatch, "/api/orders/1/status", `{"status":"SHIPPED"}`, asAdmin("1"))
	require.Equal(t, http.StatusOK, w.Code)

	w = doRequest(r, http.MethodPatch, "/api/orders/1/status", `{"status":"REFUNDED"}`, asAdmin("1"))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(r, http.MethodPatch, "/api/orders/1/status", `{"status":"SHIPPED"}`, asUser("7"))
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestHealth(t *testing.T) {
	r := newTestRouter(&stubCatalog{}, &stubCart{}, &stubOrders{})
	w := doRequest(r, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
