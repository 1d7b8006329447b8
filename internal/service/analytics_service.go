package service

import (
	"context"
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Tarlochansingh04052005/swaad-e-bihar-website/internal/repositories"
	"github.com/Tarlochansingh04052005/swaad-e-bihar-website/models"
	"github.com/Tarlochansingh04052005/swaad-e-bihar-website/pkg/logger"
)

// Trend metrics.
const (
	MetricRevenue = "revenue"
	MetricOrders  = "orders"
)

// DashboardSnapshot is the derived KPI set, recomputed on every read. Nothing
// here is persisted.
type DashboardSnapshot struct {
	TotalOrders     int             `json:"total_orders"`
	TotalRevenue    decimal.Decimal `json:"total_revenue"`
	OrdersToday     int             `json:"orders_today"`
	RevenueToday    decimal.Decimal `json:"revenue_today"`
	CompletedCount  int             `json:"completed_count"`
	PendingCount    int             `json:"pending_count"`
	UniqueCustomers int             `json:"unique_customers"`
	RepeatCustomers int             `json:"repeat_customers"`
	MenuItemCount   int             `json:"menu_item_count"`
	AvgOrderValue   decimal.Decimal `json:"avg_order_value"`
	OnTimeRate      int             `json:"on_time_rate"`
	RepeatRate      int             `json:"repeat_rate"`
}

// TrendPoint is one calendar day in a trend series. Width is the relative bar
// width in percent against the series maximum.
type TrendPoint struct {
	Date  time.Time       `json:"date"`
	Label string          `json:"label"`
	Value decimal.Decimal `json:"value"`
	Width int             `json:"width"`
}

// CategoryShare is one slice of the catalog category mix.
type CategoryShare struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
	Percent  int    `json:"percent"`
}

type AnalyticsServiceInterface interface {
	Snapshot(ctx context.Context) (*DashboardSnapshot, error)
	Trend(ctx context.Context, days int, metric string) ([]TrendPoint, error)
	CategoryMix(ctx context.Context) ([]CategoryShare, error)
}

type AnalyticsService struct {
	orderRepo repositories.OrderRepositoryInterface
	menuRepo  repositories.MenuRepositoryInterface
	logger    *logger.Logger
	now       func() time.Time
}

func NewAnalyticsService(log *logger.Logger, orderRepo repositories.OrderRepositoryInterface, menuRepo repositories.MenuRepositoryInterface) *AnalyticsService {
	return &AnalyticsService{
		orderRepo: orderRepo,
		menuRepo:  menuRepo,
		logger:    log.WithComponent("analytics_service"),
		now:       time.Now,
	}
}

func localDay(t time.Time) time.Time {
	local := t.Local()
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.Local)
}

func percentOf(part, whole int) int {
	if whole == 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(whole) * 100))
}

// Snapshot scans all orders once and derives every KPI. Empty stores produce
// zeros, never errors.
func (s *AnalyticsService) Snapshot(ctx context.Context) (*DashboardSnapshot, error) {
	orders, err := s.orderRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	menuCount, err := s.menuRepo.Count(ctx)
	if err != nil {
		return nil, err
	}

	snapshot := &DashboardSnapshot{
		TotalRevenue:  decimal.Zero,
		RevenueToday:  decimal.Zero,
		AvgOrderValue: decimal.Zero,
		MenuItemCount: menuCount,
	}
	today := localDay(s.now())
	phoneOrders := make(map[string]int)

	for _, order := range orders {
		snapshot.TotalOrders++
		snapshot.TotalRevenue = snapshot.TotalRevenue.Add(order.TotalAmount)
		if localDay(order.CreatedAt).Equal(today) {
			snapshot.OrdersToday++
			snapshot.RevenueToday = snapshot.RevenueToday.Add(order.TotalAmount)
		}
		switch order.Status {
		case models.StatusCompleted:
			snapshot.CompletedCount++
		case models.StatusNew, models.StatusPreparing, models.StatusOutForDelivery:
			snapshot.PendingCount++
		}
		phoneOrders[order.Phone]++
	}

	snapshot.UniqueCustomers = len(phoneOrders)
	for _, count := range phoneOrders {
		if count > 1 {
			snapshot.RepeatCustomers++
		}
	}

	if snapshot.TotalOrders > 0 {
		snapshot.AvgOrderValue = snapshot.TotalRevenue.
			Div(decimal.NewFromInt(int64(snapshot.TotalOrders))).Round(2)
	}
	snapshot.OnTimeRate = percentOf(snapshot.CompletedCount, snapshot.TotalOrders)
	snapshot.RepeatRate = percentOf(snapshot.RepeatCustomers, snapshot.UniqueCustomers)
	return snapshot, nil
}

// Trend returns exactly days points ending today, one per local calendar day,
// zero-filled where no orders exist. Widths are relative to the series
// maximum and all zero when every value is zero.
func (s *AnalyticsService) Trend(ctx context.Context, days int, metric string) ([]TrendPoint, error) {
	if days <= 0 {
		return []TrendPoint{}, nil
	}

	orders, err := s.orderRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	perDay := make(map[time.Time]decimal.Decimal, days)
	for _, order := range orders {
		day := localDay(order.CreatedAt)
		switch metric {
		case MetricOrders:
			perDay[day] = perDay[day].Add(decimal.NewFromInt(1))
		default:
			perDay[day] = perDay[day].Add(order.TotalAmount)
		}
	}

	today := localDay(s.now())
	points := make([]TrendPoint, days)
	max := decimal.Zero
	for i := 0; i < days; i++ {
		day := today.AddDate(0, 0, i-days+1)
		value := perDay[day]
		points[i] = TrendPoint{
			Date:  day,
			Label: day.Format("02 Jan"),
			Value: value,
		}
		if value.GreaterThan(max) {
			max = value
		}
	}

	if max.IsPositive() {
		hundred := decimal.NewFromInt(100)
		for i := range points {
			width := points[i].Value.Div(max).Mul(hundred).Round(0)
			points[i].Width = int(width.IntPart())
		}
	}
	return points, nil
}

// CategoryMix groups catalog items by category with integer percent shares of
// the catalog size.
func (s *AnalyticsService) CategoryMix(ctx context.Context) ([]CategoryShare, error) {
	counts, err := s.menuRepo.CategoryCounts(ctx)
	if err != nil {
		return nil, err
	}

	total := 0
	for _, c := range counts {
		total += c.Count
	}

	mix := make([]CategoryShare, len(counts))
	for i, c := range counts {
		mix[i] = CategoryShare{
			Category: c.Category,
			Count:    c.Count,
			Percent:  percentOf(c.Count, total),
		}
	}
	return mix, nil
}

var _ AnalyticsServiceInterface = (*AnalyticsService)(nil)
