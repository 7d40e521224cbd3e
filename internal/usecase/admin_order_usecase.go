package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"perfumeshop/internal/domain/model"
	repo "perfumeshop/internal/repository"
)

// 在庫少なめの閾値
const lowStockBelow = 10

type AdminOrderUsecase struct {
	tx         repo.TransactionManager
	orders     repo.OrderRepository
	orderLines repo.OrderLineRepository
	stats      repo.StatsRepository
	auditRepo  repo.AuditLogRepository
	now        func() time.Time
}

func NewAdminOrderUsecase(
	tx repo.TransactionManager,
	orders repo.OrderRepository,
	orderLines repo.OrderLineRepository,
	stats repo.StatsRepository,
	auditRepo repo.AuditLogRepository,
) *AdminOrderUsecase {
	return &AdminOrderUsecase{
		tx:         tx,
		orders:     orders,
		orderLines: orderLines,
		stats:      stats,
		auditRepo:  auditRepo,
		now:        time.Now,
	}
}

type AdminUpdateOrderStatusInput struct {
	Status string
}

// 注文一覧
func (u *AdminOrderUsecase) List(ctx context.Context, f repo.AdminOrderListFilter) (OrderListOutput, error) {
	// page/limitの最低限チェック
	if f.Page < 1 {
		return OrderListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if f.Limit < 1 || f.Limit > 100 {
		return OrderListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}
	if f.Status != "" && !model.OrderStatus(f.Status).Valid() {
		return OrderListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid status")
	}

	orders, total, err := u.orders.ListAdmin(ctx, f)
	if err != nil {
		return OrderListOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	outs, err := withLines(ctx, u.orderLines, orders)
	if err != nil {
		return OrderListOutput{}, err
	}
	return OrderListOutput{Items: outs, Total: total, Page: f.Page, Limit: f.Limit}, nil
}

func (u *AdminOrderUsecase) Get(ctx context.Context, orderID int64) (OrderOutput, error) {
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
	lines, err := u.orderLines.ListByOrderID(ctx, orderID)
	if err != nil {
		return OrderOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return toOrderOutput(o, lines), nil
}

// ステータス更新（cancelled なら在庫戻し）
func (u *AdminOrderUsecase) UpdateStatus(ctx context.Context, actorAdminUserID int64, orderID int64, in AdminUpdateOrderStatusInput) (OrderOutput, error) {
	if actorAdminUserID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	newStatus := model.OrderStatus(strings.ToLower(strings.TrimSpace(in.Status)))
	if !newStatus.Valid() {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid status")
	}

	var out OrderOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		// 注文取得（行ロック。同時のキャンセルで二重に在庫を戻さない）
		o, err := r.Orders().FindByIDForUpdate(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		lines, err := r.OrderLines().ListByOrderID(ctx, orderID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		// すでに同じなら何もしない（200）
		if o.Status == newStatus {
			out = toOrderOutput(o, lines)
			return nil
		}
		// 終端ガード
		if o.Status == model.OrderStatusCancelled {
			return NewHTTPError(http.StatusBadRequest, "cannot change cancelled order")
		}
		if o.Status == model.OrderStatusDelivered {
			return NewHTTPError(http.StatusBadRequest, "cannot change delivered order")
		}

		// cancelled にするときだけ在庫戻し
		if newStatus == model.OrderStatusCancelled {
			for _, l := range lines {
				if err := r.Inventory().IncreaseStock(ctx, l.ProductID, l.Quantity); err != nil {
					if errors.Is(err, repo.ErrNotFound) {
						// 商品が物理削除済みなら戻し先がない
						continue
					}
					return NewHTTPError(http.StatusInternalServerError, "db error")
				}
			}
		}

		// ステータス更新
		before := o.Status
		if err := r.Orders().UpdateStatus(ctx, orderID, newStatus); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return NewHTTPError(http.StatusNotFound, "not found")
			}
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		if err := enqueueOrderEvent(ctx, r, orderID, model.EventOrderStatusChanged, orderStatusChangedEvent{
			OrderID: orderID,
			From:    string(before),
			To:      string(newStatus),
			ActorID: actorAdminUserID,
		}); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		// 監査ログ（UPDATE_ORDER_STATUS）
		if err := writeAudit(ctx, r, actorAdminUserID, model.AuditActionUpdateOrderStatus, model.AuditResourceOrder, orderID,
			map[string]string{"status": string(before)}, map[string]string{"status": string(newStatus)}); err != nil {
			return err
		}

		o.Status = newStatus
		out = toOrderOutput(o, lines)
		return nil
	})
	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}

// 注文と明細を同じtxで消す。消した注文を返す
func (u *AdminOrderUsecase) Delete(ctx context.Context, actorAdminUserID int64, orderID int64) (OrderOutput, error) {
	if actorAdminUserID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var out OrderOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByIDForUpdate(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		lines, err := r.OrderLines().ListByOrderID(ctx, orderID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		out = toOrderOutput(o, lines)

		if err := r.OrderLines().DeleteByOrderID(ctx, orderID); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if err := r.Orders().Delete(ctx, orderID); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return NewHTTPError(http.StatusNotFound, "not found")
			}
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		if err := enqueueOrderEvent(ctx, r, orderID, model.EventOrderDeleted, orderDeletedEvent{
			OrderID: orderID,
			ActorID: actorAdminUserID,
		}); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		return writeAudit(ctx, r, actorAdminUserID, model.AuditActionDeleteOrder, model.AuditResourceOrder, orderID, out, nil)
	})
	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}

func (u *AdminOrderUsecase) Stats(ctx context.Context) (repo.DashboardStats, error) {
	now := u.now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	s, err := u.stats.Dashboard(ctx, monthStart, lowStockBelow, 5)
	if err != nil {
		return repo.DashboardStats{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return s, nil
}

type AuditLogListOutput struct {
	Items []model.AuditLog `json:"items"`
	Total int64            `json:"total"`
}

func (u *AdminOrderUsecase) AuditLogs(ctx context.Context, f repo.AuditLogFilter) (AuditLogListOutput, error) {
	if f.Limit < 0 || f.Limit > 200 {
		return AuditLogListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}
	if f.Offset < 0 {
		return AuditLogListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid offset")
	}

	logs, total, err := u.auditRepo.List(ctx, f)
	if err != nil {
		return AuditLogListOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if logs == nil {
		logs = []model.AuditLog{}
	}
	return AuditLogListOutput{Items: logs, Total: total}, nil
}
