package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TypeSales aggregates sales for one bike type.
type TypeSales struct {
	Type       BikeType        `json:"type" bson:"type"`
	SaleCount  int             `json:"total_sales" bson:"total_sales"`
	UnitsSold  int             `json:"units_sold" bson:"units_sold"`
	Revenue    decimal.Decimal `json:"total_revenue" bson:"total_revenue"`
	TotalStock int             `json:"total_stock" bson:"total_stock"`
}

// Dashboard is the landing page summary.
type Dashboard struct {
	TotalBikes     int             `json:"total_bikes"`
	TotalCustomers int             `json:"total_customers"`
	TotalSales     int             `json:"total_sales"`
	TotalRevenue   decimal.Decimal `json:"total_revenue"`
	LowStockBikes  []Bike          `json:"low_stock_bikes"`
	LowStockCount  int             `json:"low_stock_count"`
	RecentSales    []SaleDetail    `json:"recent_sales"`
	SalesByType    []TypeSales     `json:"sales_by_type"`
}

// MonthlySales aggregates sales per calendar month.
type MonthlySales struct {
	Month      time.Time       `json:"month"`
	TotalSales int             `json:"total_sales"`
	Revenue    decimal.Decimal `json:"total_revenue"`
}

// TopBike ranks bikes by units sold.
type TopBike struct {
	Bike      Bike            `json:"bike"`
	TotalSold int             `json:"total_sold"`
	Revenue   decimal.Decimal `json:"total_revenue"`
}

// TopCustomer ranks customers by spend.
type TopCustomer struct {
	Customer   Customer        `json:"customer"`
	TotalSpent decimal.Decimal `json:"total_spent"`
	TotalBikes int             `json:"total_bikes"`
}

// SalesReport is the analytics page payload.
type SalesReport struct {
	MonthlySales   []MonthlySales  `json:"monthly_sales"`
	TopBikes       []TopBike       `json:"top_bikes"`
	TopCustomers   []TopCustomer   `json:"top_customers"`
	LowStock       []Bike          `json:"low_stock"`
	TotalRevenue   decimal.Decimal `json:"total_revenue"`
	TotalBikesSold int             `json:"total_bikes_sold"`
}

// DailyReport is the snapshot archived by the scheduled report job.
type DailyReport struct {
	Date          time.Time       `bson:"date" json:"date"`
	SalesCount    int             `bson:"sales_count" json:"sales_count"`
	UnitsSold     int             `bson:"units_sold" json:"units_sold"`
	Revenue       decimal.Decimal `bson:"revenue" json:"revenue"`
	LowStockBikes []string        `bson:"low_stock_bikes" json:"low_stock_bikes"`
	ReorderBikes  []string        `bson:"reorder_bikes" json:"reorder_bikes"`
	TotalRevenue  decimal.Decimal `bson:"total_revenue" json:"total_revenue"`
	CreatedAt     time.Time       `bson:"created_at" json:"created_at"`
}

// CustomerSummary is a customer with purchase aggregates.
type CustomerSummary struct {
	Customer
	TotalPurchases decimal.Decimal `json:"total_purchases"`
	PurchaseCount  int             `json:"purchase_count"`
	TotalBikes     int             `json:"total_bikes"`
	RecentSales    []SaleDetail    `json:"recent_sales,omitempty"`
}

// BikeSummary is a bike with its sales aggregates.
type BikeSummary struct {
	Bike
	IsLowStock  bool         `json:"is_low_stock"`
	IsInStock   bool         `json:"is_in_stock"`
	TotalSold   int          `json:"total_sold"`
	RecentSales []SaleDetail `json:"recent_sales,omitempty"`
}

// SupplierSummary is a supplier with the bikes it provides.
type SupplierSummary struct {
	Supplier
	BikeCount int    `json:"bike_count"`
	Bikes     []Bike `json:"bikes,omitempty"`
}
