package models

import (
	"cmp"
	"slices"
	"strings"
)

// SortBikes orders bikes by brand then model.
func SortBikes(bikes []Bike) {
	slices.SortStableFunc(bikes, func(a, b Bike) int {
		if c := cmp.Compare(strings.ToLower(a.Brand), strings.ToLower(b.Brand)); c != 0 {
			return c
		}
		return cmp.Compare(strings.ToLower(a.Model), strings.ToLower(b.Model))
	})
}

// SortCustomers orders customers by name.
func SortCustomers(customers []Customer) {
	slices.SortStableFunc(customers, func(a, b Customer) int {
		return cmp.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	})
}

// SortSuppliers orders suppliers by name.
func SortSuppliers(suppliers []Supplier) {
	slices.SortStableFunc(suppliers, func(a, b Supplier) int {
		return cmp.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	})
}

// SortSales orders sales newest first.
func SortSales(sales []Sale) {
	slices.SortStableFunc(sales, func(a, b Sale) int {
		return b.SaleDate.Compare(a.SaleDate)
	})
}
