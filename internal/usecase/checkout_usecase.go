package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"perfumeshop/internal/domain/model"
	"perfumeshop/internal/domain/pricing"
	"perfumeshop/internal/infra/payment"
	repo "perfumeshop/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	PaymentOutcomeSuccess   = "success"
	PaymentOutcomeCancelled = "cancelled"
)

// 注文作成後に失敗した段階の名前
const (
	stepOrderLines = "order_lines"
	stepStock      = "stock"
	stepCart       = "cart"
)

type CheckoutDeps struct {
	Tx         repo.TransactionManager
	CartLines  repo.CartLineRepository
	Orders     repo.OrderRepository
	OrderLines repo.OrderLineRepository
	Inventory  repo.InventoryRepository
	Validator  CheckoutValidator
	Payments   PaymentVerifier
	Guard      CheckoutGuard
	Currency   string
	Log        *slog.Logger
}

// チェックアウト（見積もり → 注文作成 → 明細 → 在庫 → カート）
type CheckoutUsecase struct {
	tx         repo.TransactionManager
	cartLines  repo.CartLineRepository
	orders     repo.OrderRepository
	orderLines repo.OrderLineRepository
	inventory  repo.InventoryRepository
	validator  CheckoutValidator
	payments   PaymentVerifier
	guard      CheckoutGuard
	currency   string
	log        *slog.Logger
	tracer     trace.Tracer
}

func NewCheckoutUsecase(d CheckoutDeps) *CheckoutUsecase {
	return &CheckoutUsecase{
		tx:         d.Tx,
		cartLines:  d.CartLines,
		orders:     d.Orders,
		orderLines: d.OrderLines,
		inventory:  d.Inventory,
		validator:  d.Validator,
		payments:   d.Payments,
		guard:      d.Guard,
		currency:   d.Currency,
		log:        d.Log,
		tracer:     otel.Tracer("perfumeshop/checkout"),
	}
}

type AddressInput struct {
	Address    string
	City       string
	PostalCode string
	Country    string
}

type PlaceOrderInput struct {
	IdempotencyKey   string
	Email            string
	FullName         string
	Phone            string
	Shipping         AddressInput
	Billing          *AddressInput // nil なら配送先と同じ
	PaymentOutcome   string
	PaymentReference string
}

// 決済ウィジェットに渡す値
type PaymentParams struct {
	Amount        int64  `json:"amount"`
	Currency      string `json:"currency"`
	CustomerEmail string `json:"customer_email"`
	Reference     string `json:"reference"`
}

type QuoteOutput struct {
	Totals  pricing.Totals `json:"totals"`
	Payment PaymentParams  `json:"payment"`
}

type PlaceOrderResult struct {
	Order OrderOutput
	// false なら同じ冪等キーの既存注文
	Created bool
}

// カートから金額と決済パラメータを出す。何も書かない
func (u *CheckoutUsecase) Quote(ctx context.Context, userID int64, email string) (QuoteOutput, error) {
	if userID <= 0 {
		return QuoteOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	lines, err := u.cartLines.ListByUserID(ctx, userID)
	if err != nil {
		return QuoteOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	cart := toCartOutput(lines)
	if len(cart.Items) == 0 {
		return QuoteOutput{}, NewHTTPError(http.StatusBadRequest, "cart empty")
	}

	return QuoteOutput{
		Totals: cart.Totals,
		Payment: PaymentParams{
			Amount:        pricing.MinorUnits(cart.Totals.Total),
			Currency:      u.currency,
			CustomerEmail: email,
			Reference:     uuid.NewString(),
		},
	}, nil
}

func (u *CheckoutUsecase) PlaceOrder(ctx context.Context, userID int64, in PlaceOrderInput) (PlaceOrderResult, error) {
	ctx, span := u.tracer.Start(ctx, "checkout.place_order", trace.WithAttributes(
		attribute.Int64("user.id", userID),
		attribute.String("payment.outcome", in.PaymentOutcome),
	))
	defer span.End()

	res, err := u.placeOrder(ctx, userID, in)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	if res.Order.ID > 0 {
		span.SetAttributes(attribute.Int64("order.id", res.Order.ID), attribute.Bool("order.created", res.Created))
	}
	return res, err
}

func (u *CheckoutUsecase) placeOrder(ctx context.Context, userID int64, in PlaceOrderInput) (PlaceOrderResult, error) {
	//認証と入力検証は書き込みより先
	if userID <= 0 {
		return PlaceOrderResult{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	key := strings.TrimSpace(in.IdempotencyKey)
	if key == "" || len(key) > 255 {
		return PlaceOrderResult{}, NewHTTPError(http.StatusBadRequest, "invalid idempotency key")
	}
	if err := u.validator.ValidatePlaceOrder(ctx, in); err != nil {
		return PlaceOrderResult{}, NewHTTPError(http.StatusBadRequest, err.Error())
	}

	//同じキーの同時送信
	acquired, err := u.guard.Acquire(ctx, userID, key)
	switch {
	case err != nil:
		// ガードが使えなくても一意制約で守られる
		u.log.Warn("checkout guard unavailable", "user_id", userID, "err", err)
	case !acquired:
		return PlaceOrderResult{}, NewHTTPError(http.StatusConflict, "checkout already in progress")
	default:
		defer func() {
			if err := u.guard.Release(context.WithoutCancel(ctx), userID, key); err != nil {
				u.log.Warn("checkout guard release failed", "user_id", userID, "err", err)
			}
		}()
	}

	//同じキーなら同じ結果を返す
	if existing, ok, err := u.findExisting(ctx, userID, key); err != nil {
		return PlaceOrderResult{}, err
	} else if ok {
		return PlaceOrderResult{Order: existing}, nil
	}

	cartLines, err := u.cartLines.ListByUserID(ctx, userID)
	if err != nil {
		return PlaceOrderResult{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if len(cartLines) == 0 {
		return PlaceOrderResult{}, NewHTTPError(http.StatusBadRequest, "cart empty")
	}

	//在庫の事前チェック（ここで落ちれば何も書かない）
	orderLines := make([]model.OrderLine, 0, len(cartLines))
	priced := make([]pricing.Line, 0, len(cartLines))
	for _, cl := range cartLines {
		p := cl.Product
		if p == nil || !p.IsActive {
			return PlaceOrderResult{}, NewHTTPError(http.StatusConflict, fmt.Sprintf("product %d unavailable", cl.ProductID))
		}
		if cl.Quantity > p.Stock {
			return PlaceOrderResult{}, NewHTTPError(http.StatusConflict, "out of stock: "+p.Name)
		}

		//スナップショット
		orderLines = append(orderLines, model.OrderLine{
			ProductID:   p.ID,
			ProductName: p.Name,
			Quantity:    cl.Quantity,
			UnitPrice:   p.Price,
			LineTotal:   pricing.LineTotal(cl.Quantity, p.Price),
		})
		priced = append(priced, pricing.Line{Quantity: cl.Quantity, UnitPrice: p.Price})
	}
	totals := pricing.Calculate(priced)

	status := u.resolveStatus(ctx, in, totals)

	billing := in.Shipping
	if in.Billing != nil {
		billing = *in.Billing
	}

	// 注文とorder.createdは同じtx
	var created model.Order
	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().Create(ctx, model.Order{
			UserID:           userID,
			IdempotencyKey:   key,
			Status:           status,
			Email:            strings.TrimSpace(in.Email),
			FullName:         strings.TrimSpace(in.FullName),
			Phone:            strings.TrimSpace(in.Phone),
			Shipping:         toOrderAddress(in.Shipping),
			Billing:          toOrderAddress(billing),
			Subtotal:         totals.Subtotal,
			ShippingFee:      totals.Shipping,
			Tax:              totals.Tax,
			Total:            totals.Total,
			PaymentReference: strings.TrimSpace(in.PaymentReference),
		})
		if err != nil {
			return err
		}
		created = o

		return enqueueOrderEvent(ctx, r, o.ID, model.EventOrderCreated, orderCreatedEvent{
			OrderID:   o.ID,
			UserID:    userID,
			Status:    string(o.Status),
			Total:     o.Total,
			Lines:     len(orderLines),
			CreatedAt: o.CreatedAt,
		})
	})
	if err != nil {
		//競合（同時で同じキーが入った等）はもう一回検索して同じ結果を返す
		if existing, ok, findErr := u.findExisting(ctx, userID, key); findErr == nil && ok {
			return PlaceOrderResult{Order: existing}, nil
		}
		u.log.Error("order create failed", "user_id", userID, "err", err)
		return PlaceOrderResult{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	// ここから先は注文を消さない
	out := toOrderOutput(created, orderLines)
	result := PlaceOrderResult{Order: out, Created: true}

	if err := u.orderLines.CreateBulk(ctx, created.ID, orderLines); err != nil {
		return result, u.partial(created.ID, stepOrderLines, err)
	}

	var stockErrs []error
	for _, l := range orderLines {
		if err := u.inventory.DecreaseStockIfEnough(ctx, l.ProductID, l.Quantity); err != nil {
			stockErrs = append(stockErrs, fmt.Errorf("product %d: %w", l.ProductID, err))
		}
	}
	if len(stockErrs) > 0 {
		return result, u.partial(created.ID, stepStock, errors.Join(stockErrs...))
	}

	//確定した注文だけカートを空にする
	if created.Status == model.OrderStatusCompleted {
		if err := u.cartLines.ClearByUserID(ctx, userID); err != nil {
			return result, u.partial(created.ID, stepCart, err)
		}
	}

	return result, nil
}

// pending の注文を別の決済で確定させる
func (u *CheckoutUsecase) Pay(ctx context.Context, userID int64, orderID int64, reference string) (OrderOutput, error) {
	ctx, span := u.tracer.Start(ctx, "checkout.pay", trace.WithAttributes(
		attribute.Int64("user.id", userID),
		attribute.Int64("order.id", orderID),
	))
	defer span.End()

	if userID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	reference = strings.TrimSpace(reference)
	if reference == "" || len(reference) > 255 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid payment_reference")
	}

	o, err := u.orders.FindByID(ctx, orderID)
	if errors.Is(err, repo.ErrNotFound) || (err == nil && o.UserID != userID) {
		return OrderOutput{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return OrderOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if o.Status != model.OrderStatusPending {
		return OrderOutput{}, NewHTTPError(http.StatusConflict, "order is not pending")
	}

	lines, err := u.orderLines.ListByOrderID(ctx, orderID)
	if err != nil {
		return OrderOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	// 明細の書き込みに失敗した注文は確定させない
	if len(lines) == 0 {
		return OrderOutput{}, NewHTTPError(http.StatusConflict, "order has no lines")
	}

	//金額は作成時に保存した合計で照合する
	if err := u.verify(ctx, reference, o.Total); err != nil {
		span.RecordError(err)
		if errors.Is(err, payment.ErrNotVerified) {
			return OrderOutput{}, NewHTTPError(http.StatusPaymentRequired, "payment not verified")
		}
		u.log.Error("payment gateway error", "order_id", orderID, "err", err)
		return OrderOutput{}, NewHTTPError(http.StatusBadGateway, "payment gateway error")
	}

	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if err := r.Orders().MarkPaid(ctx, orderID, reference); err != nil {
			return err
		}
		return enqueueOrderEvent(ctx, r, orderID, model.EventOrderStatusChanged, orderStatusChangedEvent{
			OrderID: orderID,
			From:    string(model.OrderStatusPending),
			To:      string(model.OrderStatusCompleted),
		})
	})
	switch {
	case errors.Is(err, repo.ErrOrderNotPending):
		// 照合中に別の決済かキャンセルが先に入った
		return OrderOutput{}, NewHTTPError(http.StatusConflict, "order is not pending")
	case errors.Is(err, repo.ErrNotFound):
		return OrderOutput{}, NewHTTPError(http.StatusNotFound, "not found")
	case err != nil:
		u.log.Error("mark paid failed", "order_id", orderID, "err", err)
		return OrderOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	o.Status = model.OrderStatusCompleted
	o.PaymentReference = reference
	out := toOrderOutput(o, lines)

	if err := u.cartLines.ClearByUserID(ctx, userID); err != nil {
		return out, u.partial(orderID, stepCart, err)
	}
	return out, nil
}

// 成功と言われても検証できなければ pending（注文は必ず残す）
func (u *CheckoutUsecase) resolveStatus(ctx context.Context, in PlaceOrderInput, totals pricing.Totals) model.OrderStatus {
	if in.PaymentOutcome != PaymentOutcomeSuccess {
		return model.OrderStatusPending
	}
	if err := u.verify(ctx, strings.TrimSpace(in.PaymentReference), totals.Total); err != nil {
		u.log.Warn("payment not verified, order stays pending",
			"reference", in.PaymentReference,
			"err", err,
		)
		return model.OrderStatusPending
	}
	return model.OrderStatusCompleted
}

func (u *CheckoutUsecase) verify(ctx context.Context, reference string, total decimal.Decimal) error {
	ctx, span := u.tracer.Start(ctx, "checkout.verify_payment")
	defer span.End()

	return u.payments.Verify(ctx, payment.Expectation{
		Reference:   reference,
		AmountMinor: pricing.MinorUnits(total),
		Currency:    u.currency,
	})
}

func (u *CheckoutUsecase) findExisting(ctx context.Context, userID int64, key string) (OrderOutput, bool, error) {
	existing, found, err := u.orders.FindByIdempotencyKey(ctx, userID, key)
	if err != nil {
		return OrderOutput{}, false, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if !found {
		return OrderOutput{}, false, nil
	}
	lines, err := u.orderLines.ListByOrderID(ctx, existing.ID)
	if err != nil {
		return OrderOutput{}, false, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return toOrderOutput(existing, lines), true, nil
}

func (u *CheckoutUsecase) partial(orderID int64, step string, err error) error {
	u.log.Error("checkout incomplete", "order_id", orderID, "step", step, "err", err)
	return &PartialCheckoutError{OrderID: orderID, Step: step, Err: err}
}

func toOrderAddress(a AddressInput) model.OrderAddress {
	return model.OrderAddress{
		Address:    strings.TrimSpace(a.Address),
		City:       strings.TrimSpace(a.City),
		PostalCode: strings.TrimSpace(a.PostalCode),
		Country:    strings.TrimSpace(a.Country),
	}
}
