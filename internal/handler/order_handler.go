package handler

import (
	"net/http"
	"strconv"

	"perfumeshop/internal/middleware"
	"perfumeshop/internal/usecase"

	"github.com/labstack/echo/v4"
)

const idempotencyHeader = "X-Idempotency-Key"

// 注文の作成・支払い・参照と見積もり
type OrderHandler struct {
	orders   *usecase.OrderUsecase
	checkout *usecase.CheckoutUsecase
}

func NewOrderHandler(orders *usecase.OrderUsecase, checkout *usecase.CheckoutUsecase) *OrderHandler {
	return &OrderHandler{orders: orders, checkout: checkout}
}

type AddressRequest struct {
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

type OrderCreateRequest struct {
	Email            string          `json:"email"`
	FullName         string          `json:"full_name"`
	Phone            string          `json:"phone"`
	Shipping         AddressRequest  `json:"shipping"`
	Billing          *AddressRequest `json:"billing"`
	PaymentOutcome   string          `json:"payment_outcome"`
	PaymentReference string          `json:"payment_reference"`
}

type OrderPayRequest struct {
	PaymentReference string `json:"payment_reference"`
}

type OrderResponse struct {
	Order usecase.OrderOutput `json:"order"`
}

func (h *OrderHandler) RegisterRoutes(e *echo.Echo, auth ...echo.MiddlewareFunc) {
	e.POST("/checkout/quote", h.quote, auth...)

	g := e.Group("/orders", auth...)
	g.POST("", h.create)
	g.GET("", h.list)
	g.GET("/:id", h.detail)
	g.POST("/:id/pay", h.pay)
}

func (h *OrderHandler) quote(c echo.Context) error {
	user := middleware.Principal(c)
	if user == nil {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.checkout.Quote(c.Request().Context(), user.ID, user.Email)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *OrderHandler) create(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req OrderCreateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	//二重送信防止キーはヘッダーから受け取る（bodyには入れない）
	in := usecase.PlaceOrderInput{
		IdempotencyKey:   c.Request().Header.Get(idempotencyHeader),
		Email:            req.Email,
		FullName:         req.FullName,
		Phone:            req.Phone,
		Shipping:         toAddressInput(req.Shipping),
		PaymentOutcome:   req.PaymentOutcome,
		PaymentReference: req.PaymentReference,
	}
	if req.Billing != nil {
		b := toAddressInput(*req.Billing)
		in.Billing = &b
	}

	res, err := h.checkout.PlaceOrder(c.Request().Context(), userID, in)
	if err != nil {
		return writeError(c, err)
	}

	status := http.StatusCreated
	if !res.Created {
		status = http.StatusOK
	}
	return c.JSON(status, OrderResponse{Order: res.Order})
}

func (h *OrderHandler) pay(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	var req OrderPayRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.checkout.Pay(c.Request().Context(), userID, orderID, req.PaymentReference)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, OrderResponse{Order: out})
}

func (h *OrderHandler) list(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	page, limit, ok := pageParams(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid page or limit"})
	}

	out, err := h.orders.ListMyOrders(c.Request().Context(), userID, page, limit)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *OrderHandler) detail(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	out, err := h.orders.GetMyOrder(c.Request().Context(), userID, orderID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, OrderResponse{Order: out})
}

func toAddressInput(a AddressRequest) usecase.AddressInput {
	return usecase.AddressInput{
		Address:    a.Address,
		City:       a.City,
		PostalCode: a.PostalCode,
		Country:    a.Country,
	}
}

// page（default 1） / limit（default 20）
func pageParams(c echo.Context) (int, int, bool) {
	page, limit := 1, 20
	if v := c.QueryParam("page"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return 0, 0, false
		}
		page = p
	}
	if v := c.QueryParam("limit"); v != "" {
		l, err := strconv.Atoi(v)
		if err != nil {
			return 0, 0, false
		}
		limit = l
	}
	return page, limit, true
}
