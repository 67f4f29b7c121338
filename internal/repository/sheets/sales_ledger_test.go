package sheets

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/mamadbah2/bikestore/internal/domain/models"
)

type fakeSheet struct {
	rows     map[string][][]interface{}
	appended [][]interface{}
	set      [][]interface{}
	err      error
}

func (f *fakeSheet) AppendRow(_ context.Context, _ string, values []interface{}) error {
	if f.err != nil {
		return f.err
	}
	f.appended = append(f.appended, values)
	return nil
}

func (f *fakeSheet) SetRow(_ context.Context, _ string, values []interface{}) error {
	f.set = append(f.set, values)
	return nil
}

func (f *fakeSheet) ReadRange(_ context.Context, sheetRange string) ([][]interface{}, error) {
	return f.rows[sheetRange], nil
}

func TestSalesLedgerAppendSale(t *testing.T) {
	sheet := &fakeSheet{}
	ledger := NewSalesLedger(sheet, zaptest.NewLogger(t))

	sale := models.Sale{
		ID:        "s-1",
		Quantity:  2,
		SalePrice: decimal.RequireFromString("450.5"),
		SaleDate:  time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
	}
	bike := models.Bike{Brand: "Trek", Model: "Marlin 5", Color: "Red", Type: models.BikeTypeMountain}
	customer := models.Customer{Name: "Ada", Email: "ada@example.com"}

	require.NoError(t, ledger.AppendSale(context.Background(), sale, bike, customer))
	require.Len(t, sheet.appended, 1)

	row := sheet.appended[0]
	assert.Equal(t, "2024-03-01T10:00:00Z", row[0])
	assert.Equal(t, "Trek Marlin 5 (Red)", row[2])
	assert.Equal(t, "450.50", row[7])
	assert.Equal(t, "901.00", row[8])
}

func TestSalesLedgerAppendSaleWrapsError(t *testing.T) {
	sheet := &fakeSheet{err: errors.New("quota exceeded")}
	ledger := NewSalesLedger(sheet, nil)

	err := ledger.AppendSale(context.Background(), models.Sale{ID: "s-9"}, models.Bike{}, models.Customer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "s-9")
}

func TestSalesLedgerEnsureHeader(t *testing.T) {
	t.Run("writes header on empty tab", func(t *testing.T) {
		sheet := &fakeSheet{}
		require.NoError(t, NewSalesLedger(sheet, nil).EnsureHeader(context.Background()))
		require.Len(t, sheet.set, 1)
		assert.Equal(t, "Date", sheet.set[0][0])
	})

	t.Run("keeps existing header", func(t *testing.T) {
		sheet := &fakeSheet{rows: map[string][][]interface{}{headerRange: {{"Date"}}}}
		require.NoError(t, NewSalesLedger(sheet, nil).EnsureHeader(context.Background()))
		assert.Empty(t, sheet.set)
	})
}
