package usecase

import (
	"context"
	"errors"
	"net/http"
	"time"

	"perfumeshop/internal/domain/model"
	"perfumeshop/internal/domain/pricing"
	repo "perfumeshop/internal/repository"

	"github.com/shopspring/decimal"
)

// 注文の参照（本人分）
type OrderUsecase struct {
	orders     repo.OrderRepository
	orderLines repo.OrderLineRepository
}

func NewOrderUsecase(orders repo.OrderRepository, orderLines repo.OrderLineRepository) *OrderUsecase {
	return &OrderUsecase{orders: orders, orderLines: orderLines}
}

type OrderLineOutput struct {
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int64           `json:"quantity"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

type OrderOutput struct {
	ID               int64              `json:"id"`
	UserID           int64              `json:"user_id"`
	Status           string             `json:"status"`
	Email            string             `json:"email"`
	FullName         string             `json:"full_name"`
	Phone            string             `json:"phone"`
	Shipping         model.OrderAddress `json:"shipping"`
	Billing          model.OrderAddress `json:"billing"`
	PaymentReference string             `json:"payment_reference,omitempty"`
	Totals           pricing.Totals     `json:"totals"`
	CreatedAt        time.Time          `json:"created_at"`
	Lines            []OrderLineOutput  `json:"lines"`
}

type OrderListOutput struct {
	Items []OrderOutput `json:"items"`
	Total int64         `json:"total"`
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
}

func (u *OrderUsecase) ListMyOrders(ctx context.Context, userID int64, page int, limit int) (OrderListOutput, error) {
	if userID <= 0 {
		return OrderListOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if page < 1 {
		return OrderListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if limit < 1 || limit > 100 {
		return OrderListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}

	orders, total, err := u.orders.ListByUserID(ctx, userID, page, limit)
	if err != nil {
		return OrderListOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	outs, err := withLines(ctx, u.orderLines, orders)
	if err != nil {
		return OrderListOutput{}, err
	}
	return OrderListOutput{Items: outs, Total: total, Page: page, Limit: limit}, nil
}

func (u *OrderUsecase) GetMyOrder(ctx context.Context, userID int64, orderID int64) (OrderOutput, error) {
	if userID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	o, err := u.orders.FindByID(ctx, orderID)
	if errors.Is(err, repo.ErrNotFound) {
		return OrderOutput{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return OrderOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if o.UserID != userID {
		//他人の注文は「存在しない扱い」にする
		return OrderOutput{}, NewHTTPError(http.StatusNotFound, "not found")
	}

	lines, err := u.orderLines.ListByOrderID(ctx, orderID)
	if err != nil {
		return OrderOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return toOrderOutput(o, lines), nil
}

// 明細をまとめて取ってOrderOutputにする
func withLines(ctx context.Context, lineRepo repo.OrderLineRepository, orders []model.Order) ([]OrderOutput, error) {
	ids := make([]int64, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID)
	}
	byOrder, err := lineRepo.ListByOrderIDs(ctx, ids)
	if err != nil {
		return []OrderOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	outs := make([]OrderOutput, 0, len(orders))
	for _, o := range orders {
		outs = append(outs, toOrderOutput(o, byOrder[o.ID]))
	}
	return outs, nil
}

// 金額は保存値ではなく明細から再計算する
func toOrderOutput(o model.Order, lines []model.OrderLine) OrderOutput {
	outLines := make([]OrderLineOutput, 0, len(lines))
	priced := make([]pricing.Line, 0, len(lines))
	for _, l := range lines {
		outLines = append(outLines, OrderLineOutput{
			ProductID:   l.ProductID,
			ProductName: l.ProductName,
			UnitPrice:   l.UnitPrice,
			Quantity:    l.Quantity,
			LineTotal:   pricing.LineTotal(l.Quantity, l.UnitPrice),
		})
		priced = append(priced, pricing.Line{Quantity: l.Quantity, UnitPrice: l.UnitPrice})
	}

	return OrderOutput{
		ID:               o.ID,
		UserID:           o.UserID,
		Status:           string(o.Status),
		Email:            o.Email,
		FullName:         o.FullName,
		Phone:            o.Phone,
		Shipping:         o.Shipping,
		Billing:          o.Billing,
		PaymentReference: o.PaymentReference,
		Totals:           pricing.Calculate(priced),
		CreatedAt:        o.CreatedAt,
		Lines:            outLines,
	}
}
