package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type ProductSales struct {
	ProductID   int64  `json:"product_id"`
	ProductName string `json:"product_name"`
	Quantity    int64  `json:"quantity"`
}

type DashboardStats struct {
	TotalRevenue     decimal.Decimal `json:"total_revenue"`
	MonthRevenue     decimal.Decimal `json:"month_revenue"`
	TotalOrders      int64           `json:"total_orders"`
	CompletedOrders  int64           `json:"completed_orders"`
	PendingOrders    int64           `json:"pending_orders"`
	TotalProducts    int64           `json:"total_products"`
	LowStockProducts int64           `json:"low_stock_products"`
	TopProducts      []ProductSales  `json:"top_products"`
}

// 管理画面の集計
type StatsRepository interface {
	Dashboard(ctx context.Context, monthStart time.Time, lowStockBelow int64, topN int) (DashboardStats, error)
}
