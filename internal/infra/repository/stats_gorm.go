package repository

import (
	"context"
	"time"

	"perfumeshop/internal/domain/model"
	repo "perfumeshop/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type StatsGormRepository struct {
	db *gorm.DB
}

func NewStatsGormRepository(db *gorm.DB) *StatsGormRepository {
	return &StatsGormRepository{db: db}
}

// 売上は completed の注文だけを数える
func (r *StatsGormRepository) Dashboard(ctx context.Context, monthStart time.Time, lowStockBelow int64, topN int) (repo.DashboardStats, error) {
	var out repo.DashboardStats
	db := r.db.WithContext(ctx)

	var revenue struct {
		Total decimal.Decimal
		Month decimal.Decimal
	}
	if err := db.Model(&model.Order{}).
		Select(
			"COALESCE(SUM(total), 0) AS total, COALESCE(SUM(CASE WHEN created_at >= ? THEN total ELSE 0 END), 0) AS month",
			monthStart,
		).
		Where("status = ?", model.OrderStatusCompleted).
		Scan(&revenue).Error; err != nil {
		return repo.DashboardStats{}, err
	}
	out.TotalRevenue = revenue.Total
	out.MonthRevenue = revenue.Month

	if err := db.Model(&model.Order{}).Count(&out.TotalOrders).Error; err != nil {
		return repo.DashboardStats{}, err
	}
	if err := db.Model(&model.Order{}).
		Where("status = ?", model.OrderStatusCompleted).
		Count(&out.CompletedOrders).Error; err != nil {
		return repo.DashboardStats{}, err
	}
	if err := db.Model(&model.Order{}).
		Where("status = ?", model.OrderStatusPending).
		Count(&out.PendingOrders).Error; err != nil {
		return repo.DashboardStats{}, err
	}

	if err := db.Model(&model.Product{}).Count(&out.TotalProducts).Error; err != nil {
		return repo.DashboardStats{}, err
	}
	if err := db.Model(&model.Product{}).
		Where("stock < ?", lowStockBelow).
		Count(&out.LowStockProducts).Error; err != nil {
		return repo.DashboardStats{}, err
	}

	//売れ筋（数量順）
	top := []repo.ProductSales{}
	if err := db.Model(&model.OrderLine{}).
		Select("product_id, MAX(product_name) AS product_name, SUM(quantity) AS quantity").
		Group("product_id").
		Order("quantity desc").
		Limit(topN).
		Scan(&top).Error; err != nil {
		return repo.DashboardStats{}, err
	}
	out.TopProducts = top

	return out, nil
}
