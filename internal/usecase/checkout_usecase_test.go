package usecase_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"perfumeshop/internal/domain/model"
	"perfumeshop/internal/infra/payment"
	repo "perfumeshop/internal/repository"
	"perfumeshop/internal/usecase"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type checkoutFixture struct {
	tx         *TxManagerMock
	orders     *OrderRepoMock
	orderLines *OrderLineRepoMock
	cartLines  *CartLineRepoMock
	inventory  *InventoryRepoMock
	outbox     *OutboxRepoMock
	validator  *CheckoutValidatorMock
	payments   *PaymentsMock
	guard      *GuardMock
	uc         *usecase.CheckoutUsecase
}

func newCheckoutFixture() *checkoutFixture {
	f := &checkoutFixture{
		orders:     new(OrderRepoMock),
		orderLines: new(OrderLineRepoMock),
		cartLines:  new(CartLineRepoMock),
		inventory:  new(InventoryRepoMock),
		outbox:     new(OutboxRepoMock),
		validator:  new(CheckoutValidatorMock),
		payments:   new(PaymentsMock),
		guard:      new(GuardMock),
	}
	f.tx = &TxManagerMock{Repos: &TxReposMock{
		orders:     f.orders,
		orderLines: f.orderLines,
		cartLines:  f.cartLines,
		inventory:  f.inventory,
		outbox:     f.outbox,
	}}
	f.uc = usecase.NewCheckoutUsecase(usecase.CheckoutDeps{
		Tx:         f.tx,
		CartLines:  f.cartLines,
		Orders:     f.orders,
		OrderLines: f.orderLines,
		Inventory:  f.inventory,
		Validator:  f.validator,
		Payments:   f.payments,
		Guard:      f.guard,
		Currency:   "USD",
		Log:        slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	return f
}

// 50.00 x 2 → subtotal 100, shipping 0, tax 8, total 108
func cartWithTwo(stock int64) []model.CartLine {
	return []model.CartLine{{
		ID:        1,
		UserID:    7,
		ProductID: 11,
		Quantity:  2,
		Product: &model.Product{
			ID: 11, Name: "Sauvage", Price: decimal.RequireFromString("50.00"), Stock: stock, IsActive: true,
		},
	}}
}

func placeInput(outcome string) usecase.PlaceOrderInput {
	return usecase.PlaceOrderInput{
		IdempotencyKey: "idem-1",
		Email:          "buyer@example.com",
		FullName:       "Buyer",
		Shipping: usecase.AddressInput{
			Address: "1 Main St", City: "Lagos", PostalCode: "100001", Country: "NG",
		},
		PaymentOutcome:   outcome,
		PaymentReference: "ref-1",
	}
}

func (f *checkoutFixture) expectGuardOK() {
	f.guard.On("Acquire", mock.Anything, int64(7), "idem-1").Return(true, nil).Once()
	f.guard.On("Release", mock.Anything, int64(7), "idem-1").Return(nil).Once()
}

func TestPlaceOrder_Verified_CompletesAndClearsCart(t *testing.T) {
	f := newCheckoutFixture()
	in := placeInput(usecase.PaymentOutcomeSuccess)

	f.validator.On("ValidatePlaceOrder", mock.Anything, in).Return(nil).Once()
	f.expectGuardOK()
	f.orders.On("FindByIdempotencyKey", mock.Anything, int64(7), "idem-1").Return(model.Order{}, false, nil).Once()
	f.cartLines.On("ListByUserID", mock.Anything, int64(7)).Return(cartWithTwo(5), nil).Once()
	f.payments.On("Verify", mock.Anything, payment.Expectation{
		Reference: "ref-1", AmountMinor: 10800, Currency: "USD",
	}).Return(nil).Once()

	f.tx.On("WithinTx", mock.Anything).Once()
	f.orders.On("Create", mock.Anything, mock.MatchedBy(func(o model.Order) bool {
		return o.Status == model.OrderStatusCompleted &&
			o.Total.Equal(decimal.RequireFromString("108")) &&
			o.ShippingFee.IsZero() &&
			o.Billing == o.Shipping &&
			o.IdempotencyKey == "idem-1"
	})).Return(model.Order{ID: 99, UserID: 7, Status: model.OrderStatusCompleted, Total: decimal.RequireFromString("108")}, nil).Once()
	f.outbox.On("Enqueue", mock.Anything, mock.MatchedBy(func(e model.OutboxEvent) bool {
		return e.Type == model.EventOrderCreated && e.AggregateID == "99"
	})).Return(nil).Once()

	f.orderLines.On("CreateBulk", mock.Anything, int64(99), mock.MatchedBy(func(ls []model.OrderLine) bool {
		return len(ls) == 1 && ls[0].ProductName == "Sauvage" && ls[0].LineTotal.Equal(decimal.NewFromInt(100))
	})).Return(nil).Once()
	f.inventory.On("DecreaseStockIfEnough", mock.Anything, int64(11), int64(2)).Return(nil).Once()
	f.cartLines.On("ClearByUserID", mock.Anything, int64(7)).Return(nil).Once()

	res, err := f.uc.PlaceOrder(context.Background(), 7, in)
	require.NoError(t, err)
	assert.True(t, res.Created)
	assert.Equal(t, int64(99), res.Order.ID)
	assert.Equal(t, "completed", res.Order.Status)
	assert.True(t, res.Order.Totals.Total.Equal(decimal.RequireFromString("108")))

	f.orders.AssertExpectations(t)
	f.orderLines.AssertExpectations(t)
	f.inventory.AssertExpectations(t)
	f.cartLines.AssertExpectations(t)
	f.outbox.AssertExpectations(t)
	f.guard.AssertExpectations(t)
}

// 検証できない決済は pending で残し、カートは消さない
func TestPlaceOrder_NotVerified_PendingKeepsCart(t *testing.T) {
	f := newCheckoutFixture()
	in := placeInput(usecase.PaymentOutcomeSuccess)

	f.validator.On("ValidatePlaceOrder", mock.Anything, in).Return(nil).Once()
	f.expectGuardOK()
	f.orders.On("FindByIdempotencyKey", mock.Anything, int64(7), "idem-1").Return(model.Order{}, false, nil).Once()
	f.cartLines.On("ListByUserID", mock.Anything, int64(7)).Return(cartWithTwo(5), nil).Once()
	f.payments.On("Verify", mock.Anything, mock.Anything).Return(payment.ErrNotVerified).Once()

	f.tx.On("WithinTx", mock.Anything).Once()
	f.orders.On("Create", mock.Anything, mock.MatchedBy(func(o model.Order) bool {
		return o.Status == model.OrderStatusPending
	})).Return(model.Order{ID: 100, UserID: 7, Status: model.OrderStatusPending}, nil).Once()
	f.outbox.On("Enqueue", mock.Anything, mock.Anything).Return(nil).Once()
	f.orderLines.On("CreateBulk", mock.Anything, int64(100), mock.Anything).Return(nil).Once()
	f.inventory.On("DecreaseStockIfEnough", mock.Anything, int64(11), int64(2)).Return(nil).Once()

	res, err := f.uc.PlaceOrder(context.Background(), 7, in)
	require.NoError(t, err)
	assert.Equal(t, "pending", res.Order.Status)
	f.cartLines.AssertNotCalled(t, "ClearByUserID", mock.Anything, mock.Anything)
}

// cancelled は決済を見に行かない
func TestPlaceOrder_Cancelled_SkipsVerification(t *testing.T) {
	f := newCheckoutFixture()
	in := placeInput(usecase.PaymentOutcomeCancelled)

	f.validator.On("ValidatePlaceOrder", mock.Anything, in).Return(nil).Once()
	f.expectGuardOK()
	f.orders.On("FindByIdempotencyKey", mock.Anything, int64(7), "idem-1").Return(model.Order{}, false, nil).Once()
	f.cartLines.On("ListByUserID", mock.Anything, int64(7)).Return(cartWithTwo(5), nil).Once()
	f.tx.On("WithinTx", mock.Anything).Once()
	f.orders.On("Create", mock.Anything, mock.Anything).Return(model.Order{ID: 101, Status: model.OrderStatusPending}, nil).Once()
	f.outbox.On("Enqueue", mock.Anything, mock.Anything).Return(nil).Once()
	f.orderLines.On("CreateBulk", mock.Anything, int64(101), mock.Anything).Return(nil).Once()
	f.inventory.On("DecreaseStockIfEnough", mock.Anything, int64(11), int64(2)).Return(nil).Once()

	_, err := f.uc.PlaceOrder(context.Background(), 7, in)
	require.NoError(t, err)
	f.payments.AssertNotCalled(t, "Verify", mock.Anything, mock.Anything)
}

// 同じキーの2回目は既存の注文をそのまま返す
func TestPlaceOrder_IdempotentReplay(t *testing.T) {
	f := newCheckoutFixture()
	in := placeInput(usecase.PaymentOutcomeSuccess)

	f.validator.On("ValidatePlaceOrder", mock.Anything, in).Return(nil).Once()
	f.expectGuardOK()
	f.orders.On("FindByIdempotencyKey", mock.Anything, int64(7), "idem-1").
		Return(model.Order{ID: 55, UserID: 7, Status: model.OrderStatusCompleted}, true, nil).Once()
	f.orderLines.On("ListByOrderID", mock.Anything, int64(55)).Return([]model.OrderLine{
		{OrderID: 55, ProductID: 11, ProductName: "Sauvage", Quantity: 2, UnitPrice: decimal.RequireFromString("50"), LineTotal: decimal.RequireFromString("100")},
	}, nil).Once()

	res, err := f.uc.PlaceOrder(context.Background(), 7, in)
	require.NoError(t, err)
	assert.False(t, res.Created)
	assert.Equal(t, int64(55), res.Order.ID)
	assert.True(t, res.Order.Totals.Total.Equal(decimal.RequireFromString("108")))

	f.tx.AssertNotCalled(t, "WithinTx", mock.Anything)
	f.cartLines.AssertNotCalled(t, "ListByUserID", mock.Anything, mock.Anything)
}

// 在庫不足は409で何も書かない
func TestPlaceOrder_OutOfStock_NoWrite(t *testing.T) {
	f := newCheckoutFixture()
	in := placeInput(usecase.PaymentOutcomeSuccess)

	f.validator.On("ValidatePlaceOrder", mock.Anything, in).Return(nil).Once()
	f.expectGuardOK()
	f.orders.On("FindByIdempotencyKey", mock.Anything, int64(7), "idem-1").Return(model.Order{}, false, nil).Once()
	f.cartLines.On("ListByUserID", mock.Anything, int64(7)).Return(cartWithTwo(1), nil).Once()

	_, err := f.uc.PlaceOrder(context.Background(), 7, in)
	assertStatus(t, err, http.StatusConflict)
	assertErrContains(t, err, "out of stock")

	f.tx.AssertNotCalled(t, "WithinTx", mock.Anything)
	f.payments.AssertNotCalled(t, "Verify", mock.Anything, mock.Anything)
	f.inventory.AssertNotCalled(t, "DecreaseStockIfEnough", mock.Anything, mock.Anything, mock.Anything)
}

func TestPlaceOrder_GuardConflict(t *testing.T) {
	f := newCheckoutFixture()
	in := placeInput(usecase.PaymentOutcomeSuccess)

	f.validator.On("ValidatePlaceOrder", mock.Anything, in).Return(nil).Once()
	f.guard.On("Acquire", mock.Anything, int64(7), "idem-1").Return(false, nil).Once()

	_, err := f.uc.PlaceOrder(context.Background(), 7, in)
	assertStatus(t, err, http.StatusConflict)
	f.orders.AssertNotCalled(t, "FindByIdempotencyKey", mock.Anything, mock.Anything, mock.Anything)
	f.guard.AssertNotCalled(t, "Release", mock.Anything, mock.Anything, mock.Anything)
}

// Redisが落ちていても一意制約があるので先へ進む
func TestPlaceOrder_GuardUnavailable_FailsOpen(t *testing.T) {
	f := newCheckoutFixture()
	in := placeInput(usecase.PaymentOutcomeSuccess)

	f.validator.On("ValidatePlaceOrder", mock.Anything, in).Return(nil).Once()
	f.guard.On("Acquire", mock.Anything, int64(7), "idem-1").Return(false, errors.New("dial tcp: refused")).Once()
	f.orders.On("FindByIdempotencyKey", mock.Anything, int64(7), "idem-1").
		Return(model.Order{ID: 5, Status: model.OrderStatusPending}, true, nil).Once()
	f.orderLines.On("ListByOrderID", mock.Anything, int64(5)).Return([]model.OrderLine{}, nil).Once()

	res, err := f.uc.PlaceOrder(context.Background(), 7, in)
	require.NoError(t, err)
	assert.Equal(t, int64(5), res.Order.ID)
}

func TestPlaceOrder_ValidationBeforeAnyWrite(t *testing.T) {
	f := newCheckoutFixture()

	t.Run("unauthenticated", func(t *testing.T) {
		_, err := f.uc.PlaceOrder(context.Background(), 0, placeInput(usecase.PaymentOutcomeSuccess))
		assertStatus(t, err, http.StatusUnauthorized)
	})

	t.Run("missing key", func(t *testing.T) {
		in := placeInput(usecase.PaymentOutcomeSuccess)
		in.IdempotencyKey = "  "
		_, err := f.uc.PlaceOrder(context.Background(), 7, in)
		assertStatus(t, err, http.StatusBadRequest)
	})

	t.Run("invalid form", func(t *testing.T) {
		in := placeInput(usecase.PaymentOutcomeSuccess)
		in.Email = "x"
		f.validator.On("ValidatePlaceOrder", mock.Anything, in).Return(errors.New("invalid input: email")).Once()
		_, err := f.uc.PlaceOrder(context.Background(), 7, in)
		assertStatus(t, err, http.StatusBadRequest)
		assertErrContains(t, err, "email")
	})

	f.guard.AssertNotCalled(t, "Acquire", mock.Anything, mock.Anything, mock.Anything)
	f.tx.AssertNotCalled(t, "WithinTx", mock.Anything)
}

// 在庫減算が途中で失敗しても注文は残し、order_id付きで返す
func TestPlaceOrder_PartialFailure_KeepsOrder(t *testing.T) {
	f := newCheckoutFixture()
	in := placeInput(usecase.PaymentOutcomeSuccess)

	f.validator.On("ValidatePlaceOrder", mock.Anything, in).Return(nil).Once()
	f.expectGuardOK()
	f.orders.On("FindByIdempotencyKey", mock.Anything, int64(7), "idem-1").Return(model.Order{}, false, nil).Once()
	f.cartLines.On("ListByUserID", mock.Anything, int64(7)).Return(cartWithTwo(5), nil).Once()
	f.payments.On("Verify", mock.Anything, mock.Anything).Return(nil).Once()
	f.tx.On("WithinTx", mock.Anything).Once()
	f.orders.On("Create", mock.Anything, mock.Anything).Return(model.Order{ID: 77, Status: model.OrderStatusCompleted}, nil).Once()
	f.outbox.On("Enqueue", mock.Anything, mock.Anything).Return(nil).Once()
	f.orderLines.On("CreateBulk", mock.Anything, int64(77), mock.Anything).Return(nil).Once()
	f.inventory.On("DecreaseStockIfEnough", mock.Anything, int64(11), int64(2)).Return(repo.ErrOutOfStock).Once()

	res, err := f.uc.PlaceOrder(context.Background(), 7, in)
	pe, ok := usecase.AsPartialCheckoutError(err)
	require.True(t, ok)
	assert.Equal(t, int64(77), pe.OrderID)
	assert.Equal(t, "stock", pe.Step)
	assert.ErrorIs(t, err, repo.ErrOutOfStock)
	assert.Equal(t, int64(77), res.Order.ID)

	f.orders.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	f.cartLines.AssertNotCalled(t, "ClearByUserID", mock.Anything, mock.Anything)
}

func TestPlaceOrder_OrderLinesFail_Partial(t *testing.T) {
	f := newCheckoutFixture()
	in := placeInput(usecase.PaymentOutcomeCancelled)

	f.validator.On("ValidatePlaceOrder", mock.Anything, in).Return(nil).Once()
	f.expectGuardOK()
	f.orders.On("FindByIdempotencyKey", mock.Anything, int64(7), "idem-1").Return(model.Order{}, false, nil).Once()
	f.cartLines.On("ListByUserID", mock.Anything, int64(7)).Return(cartWithTwo(5), nil).Once()
	f.tx.On("WithinTx", mock.Anything).Once()
	f.orders.On("Create", mock.Anything, mock.Anything).Return(model.Order{ID: 78, Status: model.OrderStatusPending}, nil).Once()
	f.outbox.On("Enqueue", mock.Anything, mock.Anything).Return(nil).Once()
	f.orderLines.On("CreateBulk", mock.Anything, int64(78), mock.Anything).Return(errors.New("boom")).Once()

	_, err := f.uc.PlaceOrder(context.Background(), 7, in)
	pe, ok := usecase.AsPartialCheckoutError(err)
	require.True(t, ok)
	assert.Equal(t, "order_lines", pe.Step)
	f.inventory.AssertNotCalled(t, "DecreaseStockIfEnough", mock.Anything, mock.Anything, mock.Anything)
}

func TestPlaceOrder_EmptyCart(t *testing.T) {
	f := newCheckoutFixture()
	in := placeInput(usecase.PaymentOutcomeSuccess)

	f.validator.On("ValidatePlaceOrder", mock.Anything, in).Return(nil).Once()
	f.expectGuardOK()
	f.orders.On("FindByIdempotencyKey", mock.Anything, int64(7), "idem-1").Return(model.Order{}, false, nil).Once()
	f.cartLines.On("ListByUserID", mock.Anything, int64(7)).Return([]model.CartLine{}, nil).Once()

	_, err := f.uc.PlaceOrder(context.Background(), 7, in)
	assertStatus(t, err, http.StatusBadRequest)
	assertErrContains(t, err, "cart empty")
}

func TestQuote(t *testing.T) {
	f := newCheckoutFixture()
	f.cartLines.On("ListByUserID", mock.Anything, int64(7)).Return(cartWithTwo(5), nil).Once()

	out, err := f.uc.Quote(context.Background(), 7, "buyer@example.com")
	require.NoError(t, err)
	assert.Equal(t, int64(10800), out.Payment.Amount)
	assert.Equal(t, "USD", out.Payment.Currency)
	assert.Equal(t, "buyer@example.com", out.Payment.CustomerEmail)
	assert.NotEmpty(t, out.Payment.Reference)
	assert.True(t, out.Totals.Tax.Equal(decimal.RequireFromString("8")))
}

// 作成時に保存した金額（2 x 50 + 送料0 + 税8）
func pendingOrder() model.Order {
	return model.Order{
		ID: 42, UserID: 7, Status: model.OrderStatusPending,
		Subtotal:    decimal.RequireFromString("100"),
		ShippingFee: decimal.Zero,
		Tax:         decimal.RequireFromString("8"),
		Total:       decimal.RequireFromString("108"),
	}
}

func orderLines42() []model.OrderLine {
	return []model.OrderLine{{
		OrderID: 42, ProductID: 11, ProductName: "Sauvage", Quantity: 2,
		UnitPrice: decimal.RequireFromString("50"), LineTotal: decimal.RequireFromString("100"),
	}}
}

func TestPay_Verified_Completes(t *testing.T) {
	f := newCheckoutFixture()
	f.orders.On("FindByID", mock.Anything, int64(42)).Return(pendingOrder(), nil).Once()
	f.orderLines.On("ListByOrderID", mock.Anything, int64(42)).Return(orderLines42(), nil).Once()
	f.payments.On("Verify", mock.Anything, payment.Expectation{Reference: "ref-2", AmountMinor: 10800, Currency: "USD"}).Return(nil).Once()
	f.tx.On("WithinTx", mock.Anything).Once()
	f.orders.On("MarkPaid", mock.Anything, int64(42), "ref-2").Return(nil).Once()
	f.outbox.On("Enqueue", mock.Anything, mock.MatchedBy(func(e model.OutboxEvent) bool {
		return e.Type == model.EventOrderStatusChanged
	})).Return(nil).Once()
	f.cartLines.On("ClearByUserID", mock.Anything, int64(7)).Return(nil).Once()

	out, err := f.uc.Pay(context.Background(), 7, 42, "ref-2")
	require.NoError(t, err)
	assert.Equal(t, "completed", out.Status)
	assert.Equal(t, "ref-2", out.PaymentReference)
	f.orders.AssertExpectations(t)
	f.outbox.AssertExpectations(t)
	f.cartLines.AssertExpectations(t)
}

func TestPay_NotVerified_402(t *testing.T) {
	f := newCheckoutFixture()
	f.orders.On("FindByID", mock.Anything, int64(42)).Return(pendingOrder(), nil).Once()
	f.orderLines.On("ListByOrderID", mock.Anything, int64(42)).Return(orderLines42(), nil).Once()
	f.payments.On("Verify", mock.Anything, mock.Anything).Return(payment.ErrNotVerified).Once()

	_, err := f.uc.Pay(context.Background(), 7, 42, "ref-2")
	assertStatus(t, err, http.StatusPaymentRequired)
	f.orders.AssertNotCalled(t, "MarkPaid", mock.Anything, mock.Anything, mock.Anything)
	f.cartLines.AssertNotCalled(t, "ClearByUserID", mock.Anything, mock.Anything)
}

func TestPay_GatewayError_502(t *testing.T) {
	f := newCheckoutFixture()
	f.orders.On("FindByID", mock.Anything, int64(42)).Return(pendingOrder(), nil).Once()
	f.orderLines.On("ListByOrderID", mock.Anything, int64(42)).Return(orderLines42(), nil).Once()
	f.payments.On("Verify", mock.Anything, mock.Anything).Return(errors.New("timeout")).Once()

	_, err := f.uc.Pay(context.Background(), 7, 42, "ref-2")
	assertStatus(t, err, http.StatusBadGateway)
}

func TestPay_NoLines_409(t *testing.T) {
	f := newCheckoutFixture()
	// 明細の書き込みに失敗したまま残った注文
	f.orders.On("FindByID", mock.Anything, int64(42)).Return(pendingOrder(), nil).Once()
	f.orderLines.On("ListByOrderID", mock.Anything, int64(42)).Return([]model.OrderLine{}, nil).Once()

	_, err := f.uc.Pay(context.Background(), 7, 42, "ref-2")
	assertStatus(t, err, http.StatusConflict)
	f.payments.AssertNotCalled(t, "Verify", mock.Anything, mock.Anything)
	f.orders.AssertNotCalled(t, "MarkPaid", mock.Anything, mock.Anything, mock.Anything)
}

func TestPay_VerifiesStoredTotal(t *testing.T) {
	f := newCheckoutFixture()
	o := pendingOrder()
	o.ShippingFee = decimal.RequireFromString("9.99")
	o.Total = decimal.RequireFromString("117.99")
	f.orders.On("FindByID", mock.Anything, int64(42)).Return(o, nil).Once()
	f.orderLines.On("ListByOrderID", mock.Anything, int64(42)).Return(orderLines42(), nil).Once()
	// 明細からの再計算(10800)ではなく保存済みの合計
	f.payments.On("Verify", mock.Anything, payment.Expectation{Reference: "ref-2", AmountMinor: 11799, Currency: "USD"}).
		Return(payment.ErrNotVerified).Once()

	_, err := f.uc.Pay(context.Background(), 7, 42, "ref-2")
	assertStatus(t, err, http.StatusPaymentRequired)
	f.payments.AssertExpectations(t)
}

func TestPay_StatusChangedDuringVerify_409(t *testing.T) {
	f := newCheckoutFixture()
	f.orders.On("FindByID", mock.Anything, int64(42)).Return(pendingOrder(), nil).Once()
	f.orderLines.On("ListByOrderID", mock.Anything, int64(42)).Return(orderLines42(), nil).Once()
	f.payments.On("Verify", mock.Anything, mock.Anything).Return(nil).Once()
	f.tx.On("WithinTx", mock.Anything).Once()
	// 照合中に管理者がキャンセルした
	f.orders.On("MarkPaid", mock.Anything, int64(42), "ref-2").Return(repo.ErrOrderNotPending).Once()

	_, err := f.uc.Pay(context.Background(), 7, 42, "ref-2")
	assertStatus(t, err, http.StatusConflict)
	assertErrContains(t, err, "not pending")
	f.outbox.AssertNotCalled(t, "Enqueue", mock.Anything, mock.Anything)
	f.cartLines.AssertNotCalled(t, "ClearByUserID", mock.Anything, mock.Anything)
}

func TestPay_Guards(t *testing.T) {
	t.Run("other user's order is 404", func(t *testing.T) {
		f := newCheckoutFixture()
		o := pendingOrder()
		o.UserID = 8
		f.orders.On("FindByID", mock.Anything, int64(42)).Return(o, nil).Once()

		_, err := f.uc.Pay(context.Background(), 7, 42, "ref-2")
		assertStatus(t, err, http.StatusNotFound)
	})

	t.Run("not pending is 409", func(t *testing.T) {
		f := newCheckoutFixture()
		o := pendingOrder()
		o.Status = model.OrderStatusCompleted
		f.orders.On("FindByID", mock.Anything, int64(42)).Return(o, nil).Once()

		_, err := f.uc.Pay(context.Background(), 7, 42, "ref-2")
		assertStatus(t, err, http.StatusConflict)
	})

	t.Run("empty reference is 400", func(t *testing.T) {
		f := newCheckoutFixture()
		_, err := f.uc.Pay(context.Background(), 7, 42, " ")
		assertStatus(t, err, http.StatusBadRequest)
	})
}
