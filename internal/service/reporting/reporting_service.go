package reporting

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mamadbah2/bikestore/internal/domain/models"
	"github.com/mamadbah2/bikestore/internal/repository"
)

const (
	dateLayout = "2006-01-02"

	recentSalesLimit = 5
	topLimit         = 10
)

// Store is the persistence the reporting service reads from.
type Store interface {
	repository.BikeRepository
	repository.CustomerRepository
	repository.SaleRepository
	repository.InventoryRepository
}

// Chart is a label/value series ready for a bar or pie chart.
type Chart struct {
	Labels []string `json:"labels"`
	Data   []int    `json:"data"`
}

// Service computes dashboards, analytics and the daily summary from raw records.
type Service struct {
	store  Store
	logger *zap.Logger
	now    func() time.Time
}

// NewService wires a new reporting service instance.
func NewService(store Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, logger: logger, now: time.Now}
}

type snapshot struct {
	bikes     []models.Bike
	customers []models.Customer
	sales     []models.Sale
	bikeByID  map[string]models.Bike
	custByID  map[string]models.Customer
}

func (s *Service) load(ctx context.Context) (*snapshot, error) {
	bikes, err := s.store.ListBikes(ctx, models.BikeFilter{})
	if err != nil {
		return nil, fmt.Errorf("load bikes: %w", err)
	}
	customers, err := s.store.ListCustomers(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("load customers: %w", err)
	}
	sales, err := s.store.ListSales(ctx, models.SaleFilter{})
	if err != nil {
		return nil, fmt.Errorf("load sales: %w", err)
	}

	snap := &snapshot{
		bikes:     bikes,
		customers: customers,
		sales:     sales,
		bikeByID:  make(map[string]models.Bike, len(bikes)),
		custByID:  make(map[string]models.Customer, len(customers)),
	}
	for _, b := range bikes {
		snap.bikeByID[b.ID] = b
	}
	for _, c := range customers {
		snap.custByID[c.ID] = c
	}
	return snap, nil
}

func (snap *snapshot) detail(sale models.Sale) models.SaleDetail {
	var bike *models.Bike
	if b, ok := snap.bikeByID[sale.BikeID]; ok {
		bike = &b
	}
	var customer *models.Customer
	if c, ok := snap.custByID[sale.CustomerID]; ok {
		customer = &c
	}
	return models.NewSaleDetail(sale, bike, customer)
}

func (snap *snapshot) lowStock() []models.Bike {
	out := make([]models.Bike, 0)
	for _, b := range snap.bikes {
		if b.IsLowStock() {
			out = append(out, b)
		}
	}
	return out
}

func (snap *snapshot) revenue() (decimal.Decimal, int) {
	total := decimal.Zero
	units := 0
	for _, sale := range snap.sales {
		total = total.Add(sale.TotalAmount())
		units += sale.Quantity
	}
	return total, units
}

// salesByType aggregates sales per bike type in BikeTypes order. Types with no
// sales are omitted unless includeEmpty is set.
func (snap *snapshot) salesByType(includeEmpty bool) []models.TypeSales {
	agg := make(map[models.BikeType]*models.TypeSales)
	for _, t := range models.BikeTypes {
		agg[t] = &models.TypeSales{Type: t, Revenue: decimal.Zero}
	}
	for _, b := range snap.bikes {
		if ts, ok := agg[b.Type]; ok {
			ts.TotalStock += b.StockQuantity
		}
	}
	for _, sale := range snap.sales {
		bike, ok := snap.bikeByID[sale.BikeID]
		if !ok {
			continue
		}
		ts, ok := agg[bike.Type]
		if !ok {
			continue
		}
		ts.SaleCount++
		ts.UnitsSold += sale.Quantity
		ts.Revenue = ts.Revenue.Add(sale.TotalAmount())
	}

	out := make([]models.TypeSales, 0, len(agg))
	for _, t := range models.BikeTypes {
		if ts := agg[t]; includeEmpty || ts.SaleCount > 0 {
			out = append(out, *ts)
		}
	}
	return out
}

// Dashboard builds the landing page summary.
func (s *Service) Dashboard(ctx context.Context) (*models.Dashboard, error) {
	snap, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	revenue, _ := snap.revenue()
	lowStock := snap.lowStock()

	recent := make([]models.SaleDetail, 0, recentSalesLimit)
	for i, sale := range snap.sales {
		if i == recentSalesLimit {
			break
		}
		recent = append(recent, snap.detail(sale))
	}

	return &models.Dashboard{
		TotalBikes:     len(snap.bikes),
		TotalCustomers: len(snap.customers),
		TotalSales:     len(snap.sales),
		TotalRevenue:   revenue,
		LowStockBikes:  lowStock,
		LowStockCount:  len(lowStock),
		RecentSales:    recent,
		SalesByType:    snap.salesByType(false),
	}, nil
}

// SalesReport builds the analytics payload.
func (s *Service) SalesReport(ctx context.Context) (*models.SalesReport, error) {
	snap, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	revenue, units := snap.revenue()
	return &models.SalesReport{
		MonthlySales:   monthlySales(snap.sales),
		TopBikes:       topBikes(snap),
		TopCustomers:   topCustomers(snap),
		LowStock:       snap.lowStock(),
		TotalRevenue:   revenue,
		TotalBikesSold: units,
	}, nil
}

func monthlySales(sales []models.Sale) []models.MonthlySales {
	byMonth := make(map[time.Time]*models.MonthlySales)
	for _, sale := range sales {
		d := sale.SaleDate.UTC()
		month := time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.UTC)
		m, ok := byMonth[month]
		if !ok {
			m = &models.MonthlySales{Month: month, Revenue: decimal.Zero}
			byMonth[month] = m
		}
		m.TotalSales++
		m.Revenue = m.Revenue.Add(sale.TotalAmount())
	}

	out := make([]models.MonthlySales, 0, len(byMonth))
	for _, m := range byMonth {
		out = append(out, *m)
	}
	slices.SortFunc(out, func(a, b models.MonthlySales) int {
		return a.Month.Compare(b.Month)
	})
	return out
}

func topBikes(snap *snapshot) []models.TopBike {
	agg := make(map[string]*models.TopBike)
	for _, sale := range snap.sales {
		bike, ok := snap.bikeByID[sale.BikeID]
		if !ok {
			continue
		}
		tb, ok := agg[bike.ID]
		if !ok {
			tb = &models.TopBike{Bike: bike, Revenue: decimal.Zero}
			agg[bike.ID] = tb
		}
		tb.TotalSold += sale.Quantity
		tb.Revenue = tb.Revenue.Add(sale.TotalAmount())
	}

	out := make([]models.TopBike, 0, len(agg))
	for _, tb := range agg {
		out = append(out, *tb)
	}
	slices.SortFunc(out, func(a, b models.TopBike) int {
		if c := cmp.Compare(b.TotalSold, a.TotalSold); c != 0 {
			return c
		}
		if c := b.Revenue.Cmp(a.Revenue); c != 0 {
			return c
		}
		return cmp.Compare(a.Bike.String(), b.Bike.String())
	})
	if len(out) > topLimit {
		out = out[:topLimit]
	}
	return out
}

func topCustomers(snap *snapshot) []models.TopCustomer {
	agg := make(map[string]*models.TopCustomer)
	for _, sale := range snap.sales {
		customer, ok := snap.custByID[sale.CustomerID]
		if !ok {
			continue
		}
		tc, ok := agg[customer.ID]
		if !ok {
			tc = &models.TopCustomer{Customer: customer, TotalSpent: decimal.Zero}
			agg[customer.ID] = tc
		}
		tc.TotalSpent = tc.TotalSpent.Add(sale.TotalAmount())
		tc.TotalBikes += sale.Quantity
	}

	out := make([]models.TopCustomer, 0, len(agg))
	for _, tc := range agg {
		out = append(out, *tc)
	}
	slices.SortFunc(out, func(a, b models.TopCustomer) int {
		if c := b.TotalSpent.Cmp(a.TotalSpent); c != 0 {
			return c
		}
		return cmp.Compare(a.Customer.Name, b.Customer.Name)
	})
	if len(out) > topLimit {
		out = out[:topLimit]
	}
	return out
}

// SalesByTypeChart counts sales per bike type. Types without sales are left out.
func (s *Service) SalesByTypeChart(ctx context.Context) (Chart, error) {
	snap, err := s.load(ctx)
	if err != nil {
		return Chart{}, err
	}

	chart := Chart{Labels: []string{}, Data: []int{}}
	for _, ts := range snap.salesByType(false) {
		chart.Labels = append(chart.Labels, ts.Type.Label())
		chart.Data = append(chart.Data, ts.SaleCount)
	}
	return chart, nil
}

// InventoryByTypeChart sums stock per bike type, for every type carried in the catalog.
func (s *Service) InventoryByTypeChart(ctx context.Context) (Chart, error) {
	snap, err := s.load(ctx)
	if err != nil {
		return Chart{}, err
	}

	chart := Chart{Labels: []string{}, Data: []int{}}
	carried := snap.carriedTypes()
	for _, ts := range snap.salesByType(true) {
		if carried[ts.Type] {
			chart.Labels = append(chart.Labels, ts.Type.Label())
			chart.Data = append(chart.Data, ts.TotalStock)
		}
	}
	return chart, nil
}

func (snap *snapshot) carriedTypes() map[models.BikeType]bool {
	carried := make(map[models.BikeType]bool)
	for _, b := range snap.bikes {
		carried[b.Type] = true
	}
	return carried
}

// DailyReport aggregates the sales of the calendar day containing at (in at's
// location) together with the current stock alerts.
func (s *Service) DailyReport(ctx context.Context, at time.Time) (models.DailyReport, error) {
	snap, err := s.load(ctx)
	if err != nil {
		return models.DailyReport{}, err
	}
	inventories, err := s.store.ListInventories(ctx)
	if err != nil {
		return models.DailyReport{}, fmt.Errorf("load inventories: %w", err)
	}
	settings := make(map[string]models.Inventory, len(inventories))
	for _, inv := range inventories {
		settings[inv.BikeID] = inv
	}

	start := time.Date(at.Year(), at.Month(), at.Day(), 0, 0, 0, 0, at.Location())
	end := start.AddDate(0, 0, 1)

	report := models.DailyReport{
		Date:          start,
		Revenue:       decimal.Zero,
		LowStockBikes: []string{},
		ReorderBikes:  []string{},
		CreatedAt:     s.now().UTC(),
	}
	for _, sale := range snap.sales {
		if sale.SaleDate.Before(start) || !sale.SaleDate.Before(end) {
			continue
		}
		report.SalesCount++
		report.UnitsSold += sale.Quantity
		report.Revenue = report.Revenue.Add(sale.TotalAmount())
	}
	report.TotalRevenue, _ = snap.revenue()

	for _, bike := range snap.bikes {
		label := fmt.Sprintf("%s: %d left", bike, bike.StockQuantity)
		if bike.IsLowStock() {
			report.LowStockBikes = append(report.LowStockBikes, label)
		}
		inv, ok := settings[bike.ID]
		if !ok {
			inv = models.DefaultInventory(bike.ID)
		}
		if inv.NeedsReorder(bike.StockQuantity) {
			report.ReorderBikes = append(report.ReorderBikes, label)
		}
	}

	s.logger.Debug("daily report computed",
		zap.String("date", start.Format(dateLayout)),
		zap.Int("sales", report.SalesCount),
		zap.Int("low_stock", len(report.LowStockBikes)))
	return report, nil
}

// FormatDailyReport renders the report as the plain text sent to operators.
func FormatDailyReport(report models.DailyReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Daily report %s\n", report.Date.Format(dateLayout))
	if report.SalesCount == 0 {
		b.WriteString("Sales: none today.\n")
	} else {
		fmt.Fprintf(&b, "Sales: %d (%d bikes), revenue %s.\n",
			report.SalesCount, report.UnitsSold, report.Revenue.StringFixed(2))
	}
	fmt.Fprintf(&b, "Total revenue to date: %s.\n", report.TotalRevenue.StringFixed(2))

	writeList(&b, "Low stock", report.LowStockBikes)
	writeList(&b, "Needs reorder", report.ReorderBikes)
	return strings.TrimRight(b.String(), "\n")
}

func writeList(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		fmt.Fprintf(b, "%s: none.\n", title)
		return
	}
	fmt.Fprintf(b, "%s (%d):\n", title, len(items))
	for _, item := range items {
		fmt.Fprintf(b, "- %s\n", item)
	}
}
