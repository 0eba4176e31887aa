package stats

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/awemart/awemart/internal/domain/order"
	domshipment "github.com/awemart/awemart/internal/domain/shipment"
)

// Service answers the admin-facing analytics and dashboard queries.
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

type TopProduct struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	TotalSold int    `json:"total_sold"`
}

type OrderAnalytics struct {
	TotalOrders int64           `json:"total_orders"`
	TotalSales  decimal.Decimal `json:"total_sales"`
	TopProducts []TopProduct    `json:"top_products"`
}

// OrderAnalytics reports volume, revenue from frozen line prices, and the
// five best-selling products by quantity.
func (s *Service) OrderAnalytics(ctx context.Context) (*OrderAnalytics, error) {
	var totalOrders int64
	if err := s.db.WithContext(ctx).Model(&order.Order{}).Count(&totalOrders).Error; err != nil {
		return nil, fmt.Errorf("stats: count orders: %w", err)
	}

	// Sales are summed in Go with decimals; SQL SUM over the decimal column
	// degrades to floating point on sqlite.
	var lines []order.Line
	if err := s.db.WithContext(ctx).Find(&lines).Error; err != nil {
		return nil, fmt.Errorf("stats: load order lines: %w", err)
	}
	totalSales := decimal.Zero
	for _, l := range lines {
		totalSales = totalSales.Add(l.Subtotal())
	}

	var top []TopProduct
	err := s.db.WithContext(ctx).Model(&order.Line{}).
		Select("product_id", "name", "SUM(quantity) as total_sold").
		Group("product_id, name").
		Order("total_sold DESC").
		Limit(5).
		Scan(&top).Error
	if err != nil {
		return nil, fmt.Errorf("stats: top products: %w", err)
	}

	return &OrderAnalytics{
		TotalOrders: totalOrders,
		TotalSales:  totalSales,
		TopProducts: top,
	}, nil
}

type ShipmentDashboard struct {
	TotalShipments  int64                  `json:"total_shipments"`
	StatusCounts    map[string]int64       `json:"status_counts"`
	RecentShipments []domshipment.Shipment `json:"recent_shipments"`
}

// ShipmentDashboard reports shipment volume, a per-status breakdown and the
// ten most recent shipments.
func (s *Service) ShipmentDashboard(ctx context.Context) (*ShipmentDashboard, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&domshipment.Shipment{}).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("stats: count shipments: %w", err)
	}

	type statusCount struct {
		Status string
		N      int64
	}
	var rows []statusCount
	err := s.db.WithContext(ctx).Model(&domshipment.Shipment{}).
		Select("status", "COUNT(*) as n").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("stats: status counts: %w", err)
	}
	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		counts[r.Status] = r.N
	}

	var recent []domshipment.Shipment
	err = s.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(10).
		Find(&recent).Error
	if err != nil {
		return nil, fmt.Errorf("stats: recent shipments: %w", err)
	}

	return &ShipmentDashboard{
		TotalShipments:  total,
		StatusCounts:    counts,
		RecentShipments: recent,
	}, nil
}
