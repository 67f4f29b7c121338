package sheets

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/bikestore/internal/domain/models"
)

const (
	// SalesRange is the tab and columns the ledger appends to.
	SalesRange  = "Sales!A:I"
	headerRange = "Sales!A1:I1"
)

var ledgerHeader = []interface{}{
	"Date", "Sale ID", "Bike", "Type", "Customer", "Email", "Quantity", "Unit Price", "Total",
}

// SalesLedger mirrors every recorded sale as one spreadsheet row.
type SalesLedger struct {
	sheet  Sheet
	logger *zap.Logger
}

// NewSalesLedger wraps a sheet.
func NewSalesLedger(sheet Sheet, logger *zap.Logger) *SalesLedger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SalesLedger{sheet: sheet, logger: logger}
}

// EnsureHeader writes the column titles when the tab is empty.
func (l *SalesLedger) EnsureHeader(ctx context.Context) error {
	rows, err := l.sheet.ReadRange(ctx, headerRange)
	if err != nil {
		return fmt.Errorf("read ledger header: %w", err)
	}
	if len(rows) > 0 && len(rows[0]) > 0 {
		return nil
	}
	if err := l.sheet.SetRow(ctx, headerRange, ledgerHeader); err != nil {
		return fmt.Errorf("write ledger header: %w", err)
	}
	l.logger.Info("sales ledger header created")
	return nil
}

// AppendSale writes the sale row.
func (l *SalesLedger) AppendSale(ctx context.Context, sale models.Sale, bike models.Bike, customer models.Customer) error {
	row := []interface{}{
		sale.SaleDate.UTC().Format(time.RFC3339),
		sale.ID,
		bike.String(),
		string(bike.Type),
		customer.Name,
		customer.Email,
		sale.Quantity,
		sale.SalePrice.StringFixed(2),
		sale.TotalAmount().StringFixed(2),
	}
	if err := l.sheet.AppendRow(ctx, SalesRange, row); err != nil {
		return fmt.Errorf("export sale %s: %w", sale.ID, err)
	}
	l.logger.Debug("sale exported to ledger", zap.String("sale_id", sale.ID))
	return nil
}

// Rows returns the ledger content, header row included.
func (l *SalesLedger) Rows(ctx context.Context) ([][]interface{}, error) {
	return l.sheet.ReadRange(ctx, SalesRange)
}
