// Package reports derives aggregate sales and inventory views from the same
// store the checkout pipeline writes to. All operations are pure reads, so a
// report issued right after a checkout reflects that order.
package reports

import (
	"context"
	"sort"
	"time"

	"github.com/maputoimporthub/storefront/internal/domain"
	"github.com/maputoimporthub/storefront/internal/store"
)

// LowStockThreshold is the fixed stock level below which a product is
// flagged for the admin dashboard.
const LowStockThreshold = 50

type Service struct {
	store store.Store
}

func NewService(st store.Store) *Service {
	return &Service{store: st}
}

type SalesReport struct {
	TotalSalesMZN int64          `json:"total_sales_mzn"`
	TotalSalesUSD string         `json:"total_sales_usd"`
	TotalOrders   int            `json:"total_orders"`
	ProductsSold  int            `json:"products_sold"`
	Orders        []domain.Order `json:"orders"`
}

// Sales aggregates orders whose creation time falls within [start, end];
// either bound may be nil for unbounded.
func (s *Service) Sales(ctx context.Context, start, end *time.Time) (*SalesReport, error) {
	orders, err := s.store.GetOrders(ctx)
	if err != nil {
		return nil, err
	}

	report := &SalesReport{Orders: []domain.Order{}}
	for _, o := range orders {
		if start != nil && o.CreatedAt.Before(*start) {
			continue
		}
		if end != nil && o.CreatedAt.After(*end) {
			continue
		}
		report.Orders = append(report.Orders, o)
		report.TotalSalesMZN += o.TotalMZN
		for _, item := range o.Items {
			report.ProductsSold += item.Quantity
		}
	}
	report.TotalOrders = len(report.Orders)
	report.TotalSalesUSD = domain.MZNToUSD(report.TotalSalesMZN)
	return report, nil
}

type CategoryPerformance struct {
	Category     string `json:"category"`
	SalesMZN     int64  `json:"sales_mzn"`
	SalesUSD     string `json:"sales_usd"`
	QuantitySold int    `json:"quantity_sold"`
}

// Categories accumulates sales and quantity per product category across all
// orders. Each line item resolves its product to find the category; lines
// whose product has been deleted are dropped from the aggregate.
func (s *Service) Categories(ctx context.Context) ([]CategoryPerformance, error) {
	orders, err := s.store.GetOrders(ctx)
	if err != nil {
		return nil, err
	}

	type bucket struct {
		sales    int64
		quantity int
	}
	buckets := make(map[string]*bucket)

	for _, o := range orders {
		for _, item := range o.Items {
			product, err := s.store.GetProduct(ctx, item.ProductID)
			if err != nil {
				return nil, err
			}
			if product == nil {
				continue
			}
			b, ok := buckets[product.Category]
			if !ok {
				b = &bucket{}
				buckets[product.Category] = b
			}
			b.sales += item.TotalMZN
			b.quantity += item.Quantity
		}
	}

	rows := make([]CategoryPerformance, 0, len(buckets))
	for category, b := range buckets {
		rows = append(rows, CategoryPerformance{
			Category:     category,
			SalesMZN:     b.sales,
			SalesUSD:     domain.MZNToUSD(b.sales),
			QuantitySold: b.quantity,
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Category < rows[j].Category })
	return rows, nil
}

func (s *Service) LowStock(ctx context.Context) ([]domain.Product, error) {
	products, err := s.store.GetProducts(ctx)
	if err != nil {
		return nil, err
	}

	low := []domain.Product{}
	for _, p := range products {
		if p.Stock < LowStockThreshold {
			low = append(low, p)
		}
	}
	return low, nil
}
