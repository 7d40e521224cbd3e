package usecase_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"perfumeshop/internal/domain/model"
	"perfumeshop/internal/infra/payment"
	repo "perfumeshop/internal/repository"
	"perfumeshop/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// =====================
// TxManager / TxRepos
// =====================

// TxManagerMock は WithinTx の中で渡す repos を固定して unit テストを回す
type TxManagerMock struct {
	mock.Mock
	Repos repo.TxRepos
}

func (m *TxManagerMock) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	m.Called(ctx)
	return fn(m.Repos)
}

type TxReposMock struct {
	orders     repo.OrderRepository
	orderLines repo.OrderLineRepository
	cartLines  repo.CartLineRepository
	inventory  repo.InventoryRepository
	products   repo.ProductRepository
	catalog    repo.CatalogRepository
	outbox     repo.OutboxRepository
	auditLogs  repo.AuditLogRepository
}

func (r *TxReposMock) Orders() repo.OrderRepository         { return r.orders }
func (r *TxReposMock) OrderLines() repo.OrderLineRepository { return r.orderLines }
func (r *TxReposMock) CartLines() repo.CartLineRepository   { return r.cartLines }
func (r *TxReposMock) Inventory() repo.InventoryRepository  { return r.inventory }
func (r *TxReposMock) Products() repo.ProductRepository     { return r.products }
func (r *TxReposMock) Catalog() repo.CatalogRepository      { return r.catalog }
func (r *TxReposMock) Outbox() repo.OutboxRepository        { return r.outbox }
func (r *TxReposMock) AuditLogs() repo.AuditLogRepository   { return r.auditLogs }

// =====================
// Repository mocks
// =====================

type OrderRepoMock struct{ mock.Mock }

func (m *OrderRepoMock) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	args := m.Called(ctx, orderID)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *OrderRepoMock) FindByIDForUpdate(ctx context.Context, orderID int64) (model.Order, error) {
	args := m.Called(ctx, orderID)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *OrderRepoMock) ListByUserID(ctx context.Context, userID int64, page int, limit int) ([]model.Order, int64, error) {
	args := m.Called(ctx, userID, page, limit)
	orders, _ := args.Get(0).([]model.Order)
	return orders, args.Get(1).(int64), args.Error(2)
}

func (m *OrderRepoMock) Create(ctx context.Context, order model.Order) (model.Order, error) {
	args := m.Called(ctx, order)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *OrderRepoMock) UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) error {
	return m.Called(ctx, orderID, status).Error(0)
}

func (m *OrderRepoMock) MarkPaid(ctx context.Context, orderID int64, ref string) error {
	return m.Called(ctx, orderID, ref).Error(0)
}

func (m *OrderRepoMock) Delete(ctx context.Context, orderID int64) error {
	return m.Called(ctx, orderID).Error(0)
}

func (m *OrderRepoMock) FindByIdempotencyKey(ctx context.Context, userID int64, key string) (model.Order, bool, error) {
	args := m.Called(ctx, userID, key)
	o, _ := args.Get(0).(model.Order)
	return o, args.Bool(1), args.Error(2)
}

func (m *OrderRepoMock) ListAdmin(ctx context.Context, f repo.AdminOrderListFilter) ([]model.Order, int64, error) {
	args := m.Called(ctx, f)
	orders, _ := args.Get(0).([]model.Order)
	return orders, args.Get(1).(int64), args.Error(2)
}

type OrderLineRepoMock struct{ mock.Mock }

func (m *OrderLineRepoMock) CreateBulk(ctx context.Context, orderID int64, lines []model.OrderLine) error {
	return m.Called(ctx, orderID, lines).Error(0)
}

func (m *OrderLineRepoMock) ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderLine, error) {
	args := m.Called(ctx, orderID)
	lines, _ := args.Get(0).([]model.OrderLine)
	return lines, args.Error(1)
}

func (m *OrderLineRepoMock) ListByOrderIDs(ctx context.Context, orderIDs []int64) (map[int64][]model.OrderLine, error) {
	args := m.Called(ctx, orderIDs)
	lines, _ := args.Get(0).(map[int64][]model.OrderLine)
	return lines, args.Error(1)
}

func (m *OrderLineRepoMock) DeleteByOrderID(ctx context.Context, orderID int64) error {
	return m.Called(ctx, orderID).Error(0)
}

type CartLineRepoMock struct{ mock.Mock }

func (m *CartLineRepoMock) ListByUserID(ctx context.Context, userID int64) ([]model.CartLine, error) {
	args := m.Called(ctx, userID)
	lines, _ := args.Get(0).([]model.CartLine)
	return lines, args.Error(1)
}

func (m *CartLineRepoMock) AddQuantity(ctx context.Context, userID int64, productID int64, qty int64) (model.CartLine, error) {
	args := m.Called(ctx, userID, productID, qty)
	l, _ := args.Get(0).(model.CartLine)
	return l, args.Error(1)
}

func (m *CartLineRepoMock) FindByID(ctx context.Context, userID int64, lineID int64) (model.CartLine, error) {
	args := m.Called(ctx, userID, lineID)
	l, _ := args.Get(0).(model.CartLine)
	return l, args.Error(1)
}

func (m *CartLineRepoMock) UpdateQuantity(ctx context.Context, userID int64, lineID int64, qty int64) error {
	return m.Called(ctx, userID, lineID, qty).Error(0)
}

func (m *CartLineRepoMock) Delete(ctx context.Context, userID int64, lineID int64) error {
	return m.Called(ctx, userID, lineID).Error(0)
}

func (m *CartLineRepoMock) ClearByUserID(ctx context.Context, userID int64) error {
	return m.Called(ctx, userID).Error(0)
}

type InventoryRepoMock struct{ mock.Mock }

func (m *InventoryRepoMock) SetStock(ctx context.Context, productID int64, newStock int64) error {
	return m.Called(ctx, productID, newStock).Error(0)
}

func (m *InventoryRepoMock) DecreaseStockIfEnough(ctx context.Context, productID int64, qty int64) error {
	return m.Called(ctx, productID, qty).Error(0)
}

func (m *InventoryRepoMock) IncreaseStock(ctx context.Context, productID int64, qty int64) error {
	return m.Called(ctx, productID, qty).Error(0)
}

func (m *InventoryRepoMock) CreateAdjustment(ctx context.Context, adj model.InventoryAdjustment) error {
	return m.Called(ctx, adj).Error(0)
}

type ProductRepoMock struct{ mock.Mock }

func (m *ProductRepoMock) ListPublic(ctx context.Context, q repo.ProductListQuery) ([]model.Product, int64, error) {
	args := m.Called(ctx, q)
	ps, _ := args.Get(0).([]model.Product)
	return ps, args.Get(1).(int64), args.Error(2)
}

func (m *ProductRepoMock) FindByID(ctx context.Context, id int64) (model.Product, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(model.Product)
	return p, args.Error(1)
}

func (m *ProductRepoMock) FindByIDs(ctx context.Context, ids []int64) ([]model.Product, error) {
	args := m.Called(ctx, ids)
	ps, _ := args.Get(0).([]model.Product)
	return ps, args.Error(1)
}

func (m *ProductRepoMock) Create(ctx context.Context, p model.Product) (model.Product, error) {
	args := m.Called(ctx, p)
	out, _ := args.Get(0).(model.Product)
	return out, args.Error(1)
}

func (m *ProductRepoMock) Update(ctx context.Context, p model.Product) error {
	return m.Called(ctx, p).Error(0)
}

func (m *ProductRepoMock) SoftDelete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

type CatalogRepoMock struct{ mock.Mock }

func (m *CatalogRepoMock) ListBrands(ctx context.Context) ([]model.Brand, error) {
	args := m.Called(ctx)
	bs, _ := args.Get(0).([]model.Brand)
	return bs, args.Error(1)
}

func (m *CatalogRepoMock) ListTypes(ctx context.Context) ([]model.ProductType, error) {
	args := m.Called(ctx)
	ts, _ := args.Get(0).([]model.ProductType)
	return ts, args.Error(1)
}

func (m *CatalogRepoMock) CreateBrand(ctx context.Context, name string) (model.Brand, error) {
	args := m.Called(ctx, name)
	b, _ := args.Get(0).(model.Brand)
	return b, args.Error(1)
}

func (m *CatalogRepoMock) CreateType(ctx context.Context, name string) (model.ProductType, error) {
	args := m.Called(ctx, name)
	t, _ := args.Get(0).(model.ProductType)
	return t, args.Error(1)
}

func (m *CatalogRepoMock) BrandExists(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *CatalogRepoMock) TypeExists(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

type OutboxRepoMock struct{ mock.Mock }

func (m *OutboxRepoMock) Enqueue(ctx context.Context, e model.OutboxEvent) error {
	return m.Called(ctx, e).Error(0)
}

type AuditRepoMock struct{ mock.Mock }

func (m *AuditRepoMock) Create(ctx context.Context, log model.AuditLog) error {
	return m.Called(ctx, log).Error(0)
}

func (m *AuditRepoMock) List(ctx context.Context, filter repo.AuditLogFilter) ([]model.AuditLog, int64, error) {
	args := m.Called(ctx, filter)
	logs, _ := args.Get(0).([]model.AuditLog)
	return logs, args.Get(1).(int64), args.Error(2)
}

type UserRepoMock struct{ mock.Mock }

func (m *UserRepoMock) Create(ctx context.Context, user *model.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *UserRepoMock) FindByID(ctx context.Context, id int64) (*model.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *UserRepoMock) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *UserRepoMock) Update(ctx context.Context, user *model.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *UserRepoMock) IncrementTokenVersion(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *UserRepoMock) SetRole(ctx context.Context, email string, role model.Role) error {
	return m.Called(ctx, email, role).Error(0)
}

type ProfileRepoMock struct{ mock.Mock }

func (m *ProfileRepoMock) FindByUserID(ctx context.Context, userID int64) (model.UserProfile, error) {
	args := m.Called(ctx, userID)
	p, _ := args.Get(0).(model.UserProfile)
	return p, args.Error(1)
}

func (m *ProfileRepoMock) Upsert(ctx context.Context, p model.UserProfile) (model.UserProfile, error) {
	args := m.Called(ctx, p)
	out, _ := args.Get(0).(model.UserProfile)
	return out, args.Error(1)
}

type StatsRepoMock struct{ mock.Mock }

func (m *StatsRepoMock) Dashboard(ctx context.Context, monthStart time.Time, lowStockBelow int64, topN int) (repo.DashboardStats, error) {
	args := m.Called(ctx, monthStart, lowStockBelow, topN)
	s, _ := args.Get(0).(repo.DashboardStats)
	return s, args.Error(1)
}

// =====================
// ports
// =====================

type PaymentsMock struct{ mock.Mock }

func (m *PaymentsMock) Verify(ctx context.Context, exp payment.Expectation) error {
	return m.Called(ctx, exp).Error(0)
}

type GuardMock struct{ mock.Mock }

func (m *GuardMock) Acquire(ctx context.Context, userID int64, key string) (bool, error) {
	args := m.Called(ctx, userID, key)
	return args.Bool(0), args.Error(1)
}

func (m *GuardMock) Release(ctx context.Context, userID int64, key string) error {
	return m.Called(ctx, userID, key).Error(0)
}

type TokenIssuerMock struct{ mock.Mock }

func (m *TokenIssuerMock) Issue(user *model.User, now time.Time) (string, int, error) {
	args := m.Called(user, now)
	return args.String(0), args.Int(1), args.Error(2)
}

type AuthValidatorMock struct{ mock.Mock }

func (m *AuthValidatorMock) ValidateRegister(ctx context.Context, email, password string) error {
	return m.Called(ctx, email, password).Error(0)
}

func (m *AuthValidatorMock) ValidateLogin(ctx context.Context, email, password string) error {
	return m.Called(ctx, email, password).Error(0)
}

func (m *AuthValidatorMock) ValidateForceLogout(ctx context.Context, targetUserID int64) error {
	return m.Called(ctx, targetUserID).Error(0)
}

type CheckoutValidatorMock struct{ mock.Mock }

func (m *CheckoutValidatorMock) ValidatePlaceOrder(ctx context.Context, in usecase.PlaceOrderInput) error {
	return m.Called(ctx, in).Error(0)
}

func (m *CheckoutValidatorMock) ValidateProfile(ctx context.Context, in usecase.ProfileInput) error {
	return m.Called(ctx, in).Error(0)
}

var (
	_ repo.OrderRepository     = (*OrderRepoMock)(nil)
	_ repo.OrderLineRepository = (*OrderLineRepoMock)(nil)
	_ repo.CartLineRepository  = (*CartLineRepoMock)(nil)
	_ repo.InventoryRepository = (*InventoryRepoMock)(nil)
	_ repo.ProductRepository   = (*ProductRepoMock)(nil)
	_ repo.CatalogRepository   = (*CatalogRepoMock)(nil)
	_ repo.OutboxRepository    = (*OutboxRepoMock)(nil)
	_ repo.AuditLogRepository  = (*AuditRepoMock)(nil)
	_ repo.UserRepository      = (*UserRepoMock)(nil)
	_ repo.ProfileRepository   = (*ProfileRepoMock)(nil)
	_ repo.StatsRepository     = (*StatsRepoMock)(nil)
	_ repo.TxRepos             = (*TxReposMock)(nil)
	_ usecase.PaymentVerifier  = (*PaymentsMock)(nil)
	_ usecase.CheckoutGuard    = (*GuardMock)(nil)
	_ usecase.TokenIssuer      = (*TokenIssuerMock)(nil)
)

// =====================
// Helper: error contains（HTTPErrorの実装詳細に依存しない）
// =====================

func assertErrContains(t *testing.T, err error, wantSubstr string) {
	t.Helper()
	if assert.Error(t, err) {
		assert.True(t, strings.Contains(err.Error(), wantSubstr), "err=%q want contains %q", err.Error(), wantSubstr)
	}
}

func assertStatus(t *testing.T, err error, want int) {
	t.Helper()
	he, ok := usecase.AsHTTPError(err)
	if assert.True(t, ok, "want HTTPError, got %v", err) {
		assert.Equal(t, want, he.Status)
	}
}
