package httptransport

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	appauth "github.com/storefronthq/storefront/internal/application/auth"
	appbasket "github.com/storefronthq/storefront/internal/application/basket"
	appcatalog "github.com/storefronthq/storefront/internal/application/catalog"
	appcategory "github.com/storefronthq/storefront/internal/application/category"
	appcheckout "github.com/storefronthq/storefront/internal/application/checkout"
	appreview "github.com/storefronthq/storefront/internal/application/review"
	domcatalog "github.com/storefronthq/storefront/internal/domain/catalog"
	domevent "github.com/storefronthq/storefront/internal/domain/event"
	dompayment "github.com/storefronthq/storefront/internal/domain/payment"
	domuser "github.com/storefronthq/storefront/internal/domain/user"
	"github.com/storefronthq/storefront/internal/pkg/logging"
)

type Handler struct {
	auth       *appauth.Service
	catalog    *appcatalog.Service
	reviews    *appreview.Service
	basket     *appbasket.Service
	categories *appcategory.Service
	checkout   *appcheckout.Service
	events     domevent.Publisher
	log        *zap.Logger
	metrics    Metrics
	limiter    *clientLimiter
}

type Config struct {
	Auth       *appauth.Service
	Catalog    *appcatalog.Service
	Reviews    *appreview.Service
	Basket     *appbasket.Service
	Categories *appcategory.Service
	Checkout   *appcheckout.Service
	Events     domevent.Publisher
	Logger     *zap.Logger
	Metrics    Metrics
	RatePerSec float64
	RateBurst  int
}

func NewHandler(cfg Config) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.L()
	}
	return &Handler{
		auth:       cfg.Auth,
		catalog:    cfg.Catalog,
		reviews:    cfg.Reviews,
		basket:     cfg.Basket,
		categories: cfg.Categories,
		checkout:   cfg.Checkout,
		events:     cfg.Events,
		log:        logger.With(zap.String("component", "http_server")),
		metrics:    cfg.Metrics,
		limiter:    newClientLimiter(cfg.RatePerSec, cfg.RateBurst),
	}
}

func (h *Handler) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", h.observe("/health", h.handleHealth))

	mux.HandleFunc("POST /auth/register", h.observe("/auth/register", h.handleRegister))
	mux.HandleFunc("POST /auth/login", h.observe("/auth/login", h.handleLogin))

	mux.HandleFunc("GET /products", h.observe("/products", h.handleListProducts))
	mux.HandleFunc("GET /products/{id}", h.observe("/products/{id}", h.handleGetProduct))
	mux.HandleFunc("GET /categories", h.observe("/categories", h.handleListCategories))
	mux.HandleFunc("GET /categories/names", h.observe("/categories/names", h.handleListCategoryNames))
	mux.HandleFunc("GET /categories/by-name/{name}", h.observe("/categories/by-name/{name}", h.handleGetCategoryByName))
	mux.HandleFunc("GET /categories/{id}", h.observe("/categories/{id}", h.handleGetCategory))

	mux.HandleFunc("GET /me", h.observe("/me", h.authed(h.handleMe)))

	mux.HandleFunc("POST /products", h.mutation("/products", h.handleCreateProduct))
	mux.HandleFunc("DELETE /products/{id}", h.mutation("/products/{id}", h.handleDeleteProduct))
	mux.HandleFunc("POST /products/{id}/stock/add", h.mutation("/products/{id}/stock/add", h.handleAddStock))
	mux.HandleFunc("POST /products/{id}/stock/remove", h.mutation("/products/{id}/stock/remove", h.handleRemoveStock))
	mux.HandleFunc("POST /products/{id}/sale", h.mutation("/products/{id}/sale", h.handleSetSalePrice))
	mux.HandleFunc("DELETE /products/{id}/sale", h.mutation("/products/{id}/sale", h.handleClearSalePrice))
	mux.HandleFunc("POST /products/{id}/reviews", h.mutation("/products/{id}/reviews", h.handleAddReview))
	mux.HandleFunc("PUT /products/{id}/reviews", h.mutation("/products/{id}/reviews", h.handleEditReview))

	mux.HandleFunc("POST /categories", h.mutation("/categories", h.handleCreateCategory))
	mux.HandleFunc("DELETE /categories/{id}", h.mutation("/categories/{id}", h.handleDeleteCategory))
	mux.HandleFunc("POST /categories/{id}/products", h.mutation("/categories/{id}/products", h.handleAddCategoryProduct))

	mux.HandleFunc("POST /basket/items", h.mutation("/basket/items", h.handleAddBasketItem))
	mux.HandleFunc("DELETE /basket/items/{productID}", h.mutation("/basket/items/{productID}", h.handleRemoveBasketItem))
	mux.HandleFunc("POST /basket/items/{productID}/decrement", h.mutation("/basket/items/{productID}/decrement", h.handleDecrementBasketItem))
	mux.HandleFunc("POST /basket/clear", h.mutation("/basket/clear", h.handleClearBasket))

	mux.HandleFunc("POST /checkout", h.mutation("/checkout", h.handleCheckout))

	mux.HandleFunc("POST /payments/webhook", h.observe("/payments/webhook", h.handlePaymentWebhook))

	return mux
}

// mutation chains the middleware shared by every authenticated write:
// observability, rate limiting, then the authorization gate.
func (h *Handler) mutation(route string, next authedHandler) http.HandlerFunc {
	return h.observe(route, h.rateLimited(h.authed(next)))
}

type authedHandler func(w http.ResponseWriter, r *http.Request, ident appauth.Identity)

// authed verifies the bearer token and hands the resulting identity to the
// handler as an explicit parameter. No identity is ever read from ambient
// state.
func (h *Handler) authed(next authedHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			writeError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "authentication required")
			return
		}
		ident, err := h.auth.VerifyToken(token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "invalid or expired token")
			return
		}
		next(w, r, ident)
	}
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	_ = r
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// ---- auth ----

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}
	u, err := h.auth.Register(r.Context(), appauth.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toUserResponse(u))
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}
	result, err := h.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{
		Token: result.Token,
		User:  toUserResponse(result.User),
	})
}

// ---- catalog ----

type createProductRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Image       string   `json:"image"`
	Price       float64  `json:"price"`
	SalePrice   *float64 `json:"sale_price,omitempty"`
	Stock       int      `json:"stock"`
}

func (h *Handler) handleCreateProduct(w http.ResponseWriter, r *http.Request, ident appauth.Identity) {
	var req createProductRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}
	p, err := h.catalog.CreateProduct(r.Context(), ident, appcatalog.CreateProductInput{
		Name:        req.Name,
		Description: req.Description,
		Image:       req.Image,
		Price:       req.Price,
		SalePrice:   req.SalePrice,
		Stock:       req.Stock,
	})
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toProductResponse(p))
}

func (h *Handler) handleDeleteProduct(w http.ResponseWriter, r *http.Request, ident appauth.Identity) {
	if err := h.catalog.DeleteProduct(r.Context(), ident, r.PathValue("id")); err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type stockRequest struct {
	Quantity int `json:"quantity"`
}

func (h *Handler) handleAddStock(w http.ResponseWriter, r *http.Request, ident appauth.Identity) {
	var req stockRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}
	p, err := h.catalog.AddStock(r.Context(), ident, r.PathValue("id"), req.Quantity)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductResponse(p))
}

func (h *Handler) handleRemoveStock(w http.ResponseWriter, r *http.Request, ident appauth.Identity) {
	var req stockRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}
	p, err := h.catalog.RemoveStock(r.Context(), ident, r.PathValue("id"), req.Quantity)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductResponse(p))
}

type salePriceRequest struct {
	Price float64 `json:"price"`
}

func (h *Handler) handleSetSalePrice(w http.ResponseWriter, r *http.Request, ident appauth.Identity) {
	var req salePriceRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}
	p, err := h.catalog.SetSalePrice(r.Context(), ident, r.PathValue("id"), req.Price)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductResponse(p))
}

func (h *Handler) handleClearSalePrice(w http.ResponseWriter, r *http.Request, ident appauth.Identity) {
	p, err := h.catalog.ClearSalePrice(r.Context(), ident, r.PathValue("id"))
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductResponse(p))
}

func (h *Handler) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.catalog.GetProduct(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductResponse(p))
}

func (h *Handler) handleListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.ListProducts(r.Context())
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	out := make([]productResponse, 0, len(products))
	for _, p := range products {
		out = append(out, toProductResponse(p))
	}
	writeJSON(w, http.StatusOK, out)
}

// ---- reviews ----

type reviewRequest struct {
	Body   string `json:"body"`
	Rating int    `json:"rating"`
}

func (h *Handler) handleAddReview(w http.ResponseWriter, r *http.Request, ident appauth.Identity) {
	var req reviewRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}
	p, err := h.reviews.AddReview(r.Context(), ident, r.PathValue("id"), req.Body, req.Rating)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toProductResponse(p))
}

func (h *Handler) handleEditReview(w http.ResponseWriter, r *http.Request, ident appauth.Identity) {
	var req reviewRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}
	p, err := h.reviews.EditReview(r.Context(), ident, r.PathValue("id"), req.Body, req.Rating)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductResponse(p))
}

// ---- categories ----

type createCategoryRequest struct {
	Name  string `json:"name"`
	Image string `json:"image"`
}

func (h *Handler) handleCreateCategory(w http.ResponseWriter, r *http.Request, ident appauth.Identity) {
	var req createCategoryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}
	c, err := h.categories.CreateCategory(r.Context(), ident, req.Name, req.Image)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toCategoryResponse(c))
}

func (h *Handler) handleDeleteCategory(w http.ResponseWriter, r *http.Request, ident appauth.Identity) {
	if err := h.categories.DeleteCategory(r.Context(), ident, r.PathValue("id")); err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type addCategoryProductRequest struct {
	ProductID string `json:"product_id"`
}

func (h *Handler) handleAddCategoryProduct(w http.ResponseWriter, r *http.Request, ident appauth.Identity) {
	var req addCategoryProductRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}
	c, err := h.categories.AddProduct(r.Context(), ident, r.PathValue("id"), req.ProductID)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCategoryResponse(c))
}

func (h *Handler) handleGetCategory(w http.ResponseWriter, r *http.Request) {
	populated, err := h.categories.GetCategory(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toPopulatedCategoryResponse(populated))
}

func (h *Handler) handleGetCategoryByName(w http.ResponseWriter, r *http.Request) {
	populated, err := h.categories.GetCategoryByName(r.Context(), r.PathValue("name"))
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toPopulatedCategoryResponse(populated))
}

func (h *Handler) handleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categories.ListCategories(r.Context())
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	out := make([]categoryResponse, 0, len(categories))
	for _, c := range categories {
		out = append(out, toCategoryResponse(c))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) handleListCategoryNames(w http.ResponseWriter, r *http.Request) {
	names, err := h.categories.ListCategoryNames(r.Context())
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, names)
}

// ---- basket ----

type addBasketItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

func (h *Handler) handleAddBasketItem(w http.ResponseWriter, r *http.Request, ident appauth.Identity) {
	var req addBasketItemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}
	if _, err := h.basket.AddItem(r.Context(), ident, req.ProductID, req.Quantity); err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	h.writeBasketView(w, r, ident)
}

func (h *Handler) handleRemoveBasketItem(w http.ResponseWriter, r *http.Request, ident appauth.Identity) {
	if _, err := h.basket.RemoveItem(r.Context(), ident, r.PathValue("productID")); err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	h.writeBasketView(w, r, ident)
}

func (h *Handler) handleDecrementBasketItem(w http.ResponseWriter, r *http.Request, ident appauth.Identity) {
	if _, err := h.basket.DecrementItem(r.Context(), ident, r.PathValue("productID")); err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	h.writeBasketView(w, r, ident)
}

func (h *Handler) handleClearBasket(w http.ResponseWriter, r *http.Request, ident appauth.Identity) {
	if _, err := h.basket.Clear(r.Context(), ident); err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	h.writeBasketView(w, r, ident)
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request, ident appauth.Identity) {
	h.writeBasketView(w, r, ident)
}

func (h *Handler) writeBasketView(w http.ResponseWriter, r *http.Request, ident appauth.Identity) {
	view, err := h.basket.View(r.Context(), ident)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toBasketViewResponse(ident, view))
}

// ---- checkout ----

type checkoutRequest struct {
	ProductIDs []string `json:"product_ids"`
}

type checkoutResponse struct {
	OrderID   string `json:"order_id"`
	SessionID string `json:"session_id"`
	URL       string `json:"url"`
}

func (h *Handler) handleCheckout(w http.ResponseWriter, r *http.Request, ident appauth.Identity) {
	var req checkoutRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}
	result, err := h.checkout.Checkout(r.Context(), ident, req.ProductIDs, requestOrigin(r))
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, checkoutResponse{
		OrderID:   result.OrderID,
		SessionID: result.SessionID,
		URL:       result.URL,
	})
}

// requestOrigin derives the redirect base from the caller's originating
// address: the Origin header when present, otherwise the request host.
func requestOrigin(r *http.Request) string {
	if origin := r.Header.Get("Origin"); origin != "" {
		return origin
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host
}

// ---- payment webhook ----

type paymentWebhookRequest struct {
	SessionID string `json:"session_id"`
	Status    string `json:"status"`
	Reason    string `json:"reason"`
}

// handlePaymentWebhook accepts the provider's session-outcome callback and
// fans it out to the confirmation worker. Provider signature verification
// belongs to the deployment edge, not the core.
func (h *Handler) handlePaymentWebhook(w http.ResponseWriter, r *http.Request) {
	var req paymentWebhookRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}
	if req.SessionID == "" {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "session_id is required")
		return
	}

	var evt domevent.Event
	if req.Status == "completed" {
		evt = dompayment.NewSessionCompletedEvent(req.SessionID)
	} else {
		evt = dompayment.NewSessionFailedEvent(req.SessionID, req.Reason)
	}
	if err := h.events.Publish(r.Context(), evt); err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// ---- plumbing ----

func decodeJSON(r *http.Request, dst any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dst)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]errorBody{"error": {Code: code, Message: message}})
}

// writeDomainError maps typed failures to stable machine-readable codes.
// Unexpected failures are logged and surfaced without internal detail.
func (h *Handler) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, appauth.ErrUnauthenticated):
		writeError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "authentication required")
	case errors.Is(err, appauth.ErrBadCredentials):
		writeError(w, http.StatusUnauthorized, "BAD_CREDENTIALS", "invalid username or password")
	case errors.Is(err, domcatalog.ErrAlreadyReviewed):
		writeError(w, http.StatusForbidden, "ALREADY_REVIEWED", err.Error())
	case errors.Is(err, domcatalog.ErrNotFound),
		errors.Is(err, domcatalog.ErrCategoryNotFound),
		errors.Is(err, domcatalog.ErrReviewNotFound),
		errors.Is(err, domuser.ErrNotFound),
		errors.Is(err, domuser.ErrLineNotFound),
		errors.Is(err, domuser.ErrOrderNotFound):
		writeError(w, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, domcatalog.ErrInsufficientStock):
		writeError(w, http.StatusConflict, "INSUFFICIENT_STOCK", err.Error())
	case errors.Is(err, domuser.ErrConflict):
		writeError(w, http.StatusConflict, "USER_EXISTS", err.Error())
	case errors.Is(err, domcatalog.ErrCategoryExists):
		writeError(w, http.StatusConflict, "CATEGORY_EXISTS", err.Error())
	case errors.Is(err, appauth.ErrInvalidInput),
		errors.Is(err, domuser.ErrInvalidInput),
		errors.Is(err, domcatalog.ErrInvalidQuantity),
		errors.Is(err, domcatalog.ErrInvalidPrice),
		errors.Is(err, domcatalog.ErrInvalidRating),
		errors.Is(err, domcatalog.ErrNameRequired),
		errors.Is(err, domcatalog.ErrCategoryNameRequired),
		errors.Is(err, domuser.ErrInvalidQuantity),
		errors.Is(err, appcheckout.ErrEmptyCheckout):
		writeError(w, http.StatusBadRequest, "INVALID_ARGUMENT", err.Error())
	case errors.Is(err, dompayment.ErrProvider):
		writeError(w, http.StatusBadGateway, "PAYMENT_PROVIDER_FAILURE", "payment provider request failed")
	case errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusGatewayTimeout, "TIMEOUT", "request timed out")
	default:
		h.logFromRequest(r).Error("unhandled_error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
	}
}

func (h *Handler) logFromRequest(r *http.Request) *zap.Logger {
	if r == nil {
		return h.log
	}
	return logging.FromContext(r.Context())
}

// ---- response shapes ----

type reviewResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Body      string    `json:"body"`
	Rating    int       `json:"rating"`
	CreatedAt time.Time `json:"created_at"`
}

type productResponse struct {
	ID             string           `json:"id"`
	Name           string           `json:"name"`
	Description    string           `json:"description"`
	Image          string           `json:"image"`
	Price          float64          `json:"price"`
	SalePrice      float64          `json:"sale_price,omitempty"`
	OnSale         bool             `json:"on_sale"`
	EffectivePrice float64          `json:"effective_price"`
	Stock          int              `json:"stock"`
	Rating         float64          `json:"rating"`
	ReviewCount    int              `json:"review_count"`
	Reviews        []reviewResponse `json:"reviews"`
}

func toProductResponse(p *domcatalog.Product) productResponse {
	reviews := make([]reviewResponse, 0, len(p.Reviews))
	for _, r := range p.Reviews {
		reviews = append(reviews, reviewResponse{
			ID:        r.ID,
			Username:  r.Username,
			Body:      r.Body,
			Rating:    r.Rating,
			CreatedAt: r.CreatedAt,
		})
	}
	return productResponse{
		ID:             p.ID,
		Name:           p.Name,
		Description:    p.Description,
		Image:          p.Image,
		Price:          p.Price,
		SalePrice:      p.SalePrice,
		OnSale:         p.OnSale,
		EffectivePrice: p.EffectivePrice(),
		Stock:          p.Stock,
		Rating:         p.Rating(),
		ReviewCount:    p.ReviewCount(),
		Reviews:        reviews,
	}
}

type categoryResponse struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Image      string   `json:"image"`
	ProductIDs []string `json:"product_ids"`
}

func toCategoryResponse(c *domcatalog.Category) categoryResponse {
	return categoryResponse{
		ID:         c.ID,
		Name:       c.Name,
		Image:      c.Image,
		ProductIDs: c.ProductIDs,
	}
}

type populatedCategoryResponse struct {
	ID       string            `json:"id"`
	Name     string            `json:"name"`
	Image    string            `json:"image"`
	Products []productResponse `json:"products"`
}

func toPopulatedCategoryResponse(p *appcategory.Populated) populatedCategoryResponse {
	products := make([]productResponse, 0, len(p.Products))
	for _, product := range p.Products {
		products = append(products, toProductResponse(product))
	}
	return populatedCategoryResponse{
		ID:       p.Category.ID,
		Name:     p.Category.Name,
		Image:    p.Category.Image,
		Products: products,
	}
}

type userResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

func toUserResponse(u *domuser.User) userResponse {
	return userResponse{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
	}
}

type basketLineResponse struct {
	ProductID   string           `json:"product_id"`
	Quantity    int              `json:"quantity"`
	DateAdded   time.Time        `json:"date_added"`
	Unavailable bool             `json:"unavailable,omitempty"`
	UnitPrice   float64          `json:"unit_price"`
	LineTotal   float64          `json:"line_total"`
	Product     *productResponse `json:"product,omitempty"`
}

type orderResponse struct {
	ID           string    `json:"id"`
	ProductIDs   []string  `json:"product_ids"`
	PurchaseDate time.Time `json:"purchase_date"`
	SessionID    string    `json:"session_id,omitempty"`
	Status       string    `json:"status"`
}

type basketViewResponse struct {
	UserID string               `json:"user_id"`
	Lines  []basketLineResponse `json:"lines"`
	Count  int                  `json:"count"`
	Total  float64              `json:"total"`
	Orders []orderResponse      `json:"orders"`
}

func toBasketViewResponse(ident appauth.Identity, view *appbasket.View) basketViewResponse {
	lines := make([]basketLineResponse, 0, len(view.Lines))
	for _, line := range view.Lines {
		out := basketLineResponse{
			ProductID:   line.ProductID,
			Quantity:    line.Quantity,
			DateAdded:   line.DateAdded,
			Unavailable: line.Unavailable,
			UnitPrice:   line.UnitPrice,
			LineTotal:   line.LineTotal,
		}
		if line.Product != nil {
			resp := toProductResponse(line.Product)
			out.Product = &resp
		}
		lines = append(lines, out)
	}
	orders := make([]orderResponse, 0, len(view.Orders))
	for _, o := range view.Orders {
		orders = append(orders, orderResponse{
			ID:           o.ID,
			ProductIDs:   o.ProductIDs,
			PurchaseDate: o.PurchaseDate,
			SessionID:    o.SessionID,
			Status:       string(o.Status),
		})
	}
	return basketViewResponse{
		UserID: ident.UserID,
		Lines:  lines,
		Count:  view.Count,
		Total:  view.Total,
		Orders: orders,
	}
}
