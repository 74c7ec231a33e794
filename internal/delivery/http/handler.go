package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/eltimbiriche/cart-service/internal/entity"
	"github.com/eltimbiriche/cart-service/internal/service"
	"github.com/eltimbiriche/cart-service/internal/store"
)

// Handler exposes the catalog and the cart store to the storefront UI.
type Handler struct {
	cart        *store.Store
	catalogSvc  *service.CatalogService
	orderSvc    *service.OrderService
	checkoutSvc *service.CheckoutService
}

func NewHandler(cart *store.Store, catalogSvc *service.CatalogService, orderSvc *service.OrderService, checkoutSvc *service.CheckoutService) *Handler {
	return &Handler{
		cart:        cart,
		catalogSvc:  catalogSvc,
		orderSvc:    orderSvc,
		checkoutSvc: checkoutSvc,
	}
}

func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/products", h.handleGetProducts)
	mux.HandleFunc("GET /api/products/{id}", h.handleGetProduct)
	mux.HandleFunc("GET /api/cart", h.handleGetCart)
	mux.HandleFunc("POST /api/cart/items", h.handleAddItem)
	mux.HandleFunc("PATCH /api/cart/items", h.handleUpdateQuantity)
	mux.HandleFunc("DELETE /api/cart/items/{productID}", h.handleRemoveItem)
	mux.HandleFunc("DELETE /api/cart", h.handleClearCart)
	mux.HandleFunc("PUT /api/cart/currency", h.handleSetCurrency)
	mux.HandleFunc("POST /api/checkout", h.handleCheckout)
	mux.HandleFunc("GET /api/orders", h.handleGetOrders)
	mux.HandleFunc("GET /api/orders/{id}", h.handleGetOrder)
}

// CartResponse is the cart view returned by every cart mutation.
type CartResponse struct {
	Items          []entity.CartItem `json:"items"`
	Count          int               `json:"count"`
	TotalUSD       float64           `json:"total_usd"`
	TotalCUP       float64           `json:"total_cup"`
	Total          float64           `json:"total"`
	FormattedTotal string            `json:"formatted_total"`
	Currency       entity.Currency   `json:"currency"`
	ExchangeRate   float64           `json:"exchange_rate"`
	IsOpen         bool              `json:"is_open"`
}

func (h *Handler) cartResponse() CartResponse {
	items := h.cart.Items()
	if items == nil {
		items = []entity.CartItem{}
	}
	return CartResponse{
		Items:          items,
		Count:          h.cart.CartCount(),
		TotalUSD:       h.cart.CartTotalUSD(),
		TotalCUP:       h.cart.CartTotalCUP(),
		Total:          h.cart.CartTotal(),
		FormattedTotal: h.cart.FormatCartTotal(),
		Currency:       h.cart.Currency(),
		ExchangeRate:   h.cart.ExchangeRate(),
		IsOpen:         h.cart.IsCartOpen(),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (h *Handler) handleGetProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalogSvc.GetProducts(r.Context())
	if err != nil {
		slog.Error("Failed to get products", "err", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

func (h *Handler) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid product id", http.StatusBadRequest)
		return
	}

	product, err := h.catalogSvc.GetProduct(r.Context(), id)
	if err != nil {
		slog.Error("Failed to get product", "id", id, "err", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	if product == nil {
		http.Error(w, "product not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

func (h *Handler) handleGetCart(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.cartResponse())
}

type addItemRequest struct {
	ProductID   int64  `json:"product_id"`
	Quantity    *int   `json:"quantity,omitempty"`
	VariationID *int64 `json:"variation_id,omitempty"`
}

func (h *Handler) handleAddItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	var product *entity.Product
	var variation *entity.ProductVariation
	var err error
	if req.VariationID != nil {
		product, variation, err = h.catalogSvc.ResolveVariation(r.Context(), req.ProductID, *req.VariationID)
	} else {
		product, err = h.catalogSvc.GetProduct(r.Context(), req.ProductID)
	}
	if err != nil {
		slog.Error("Failed to resolve product", "product_id", req.ProductID, "err", err)
		http.Error(w, "product not found", http.StatusNotFound)
		return
	}
	if product == nil {
		http.Error(w, "product not found", http.StatusNotFound)
		return
	}

	h.cart.AddToCart(r.Context(), *product, quantity, variation)
	writeJSON(w, http.StatusCreated, h.cartResponse())
}

type updateQuantityRequest struct {
	ProductID   int64  `json:"product_id"`
	Quantity    int    `json:"quantity"`
	VariationID *int64 `json:"variation_id,omitempty"`
}

func (h *Handler) handleUpdateQuantity(w http.ResponseWriter, r *http.Request) {
	var req updateQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	h.cart.UpdateQuantity(r.Context(), req.ProductID, req.Quantity, req.VariationID)
	writeJSON(w, http.StatusOK, h.cartResponse())
}

func (h *Handler) handleRemoveItem(w http.ResponseWriter, r *http.Request) {
	productID, err := strconv.ParseInt(r.PathValue("productID"), 10, 64)
	if err != nil {
		http.Error(w, "invalid product id", http.StatusBadRequest)
		return
	}

	var variationID *int64
	if raw := r.URL.Query().Get("variation_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			http.Error(w, "invalid variation id", http.StatusBadRequest)
			return
		}
		variationID = &id
	}

	h.cart.RemoveFromCart(r.Context(), productID, variationID)
	writeJSON(w, http.StatusOK, h.cartResponse())
}

func (h *Handler) handleClearCart(w http.ResponseWriter, r *http.Request) {
	h.cart.ClearCart(r.Context())
	writeJSON(w, http.StatusOK, h.cartResponse())
}

type setCurrencyRequest struct {
	Currency entity.Currency `json:"currency"`
}

func (h *Handler) handleSetCurrency(w http.ResponseWriter, r *http.Request) {
	var req setCurrencyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Currency != entity.USD && req.Currency != entity.CUP {
		http.Error(w, "currency must be USD or CUP", http.StatusBadRequest)
		return
	}

	h.cart.SetCurrency(req.Currency)
	writeJSON(w, http.StatusOK, h.cartResponse())
}

func (h *Handler) handleCheckout(w http.ResponseWriter, r *http.Request) {
	if h.cart.CartCount() == 0 {
		http.Error(w, "cart is empty", http.StatusBadRequest)
		return
	}

	order, err := h.checkoutSvc.Checkout(r.Context())
	if err != nil {
		slog.Error("Failed to check out", "err", err)
		http.Error(w, "failed to check out", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, order)
}

func (h *Handler) handleGetOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orderSvc.GetRecentOrders(r.Context(), 50)
	if err != nil {
		slog.Error("Failed to get orders", "err", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	if orders == nil {
		orders = []entity.Order{}
	}
	writeJSON(w, http.StatusOK, orders)
}

func (h *Handler) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.orderSvc.GetOrder(r.Context(), r.PathValue("id"))
	if err != nil {
		slog.Error("Failed to get order", "err", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	if order == nil {
		http.Error(w, "order not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

// EnableCORS is a middleware to allow the storefront frontend to connect.
func EnableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
