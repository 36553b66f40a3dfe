package data

import (
	"context"
	"strings"

	"gorm.io/gorm"
)

const (
	// OrderDateColumn and AmountColumn are the optional supplier columns that
	// carry a real order history. The generated schema never has them.
	OrderDateColumn = "OrderDate"
	AmountColumn    = "Amount"
)

// SupplierOrder is one raw (OrderDate, Amount) pair read from Suppliers.
// OrderDate is kept as text; callers decide how to parse it.
type SupplierOrder struct {
	OrderDate *string  `gorm:"column:OrderDate"`
	Amount    *float64 `gorm:"column:Amount"`
}

// LoadSuppliers reads the full supplier table in primary-key order.
func LoadSuppliers(ctx context.Context, db *gorm.DB) ([]Supplier, error) {
	var suppliers []Supplier
	if err := db.WithContext(ctx).Order("SupplierID").Find(&suppliers).Error; err != nil {
		return nil, err
	}
	return suppliers, nil
}

// SupplierColumns lists the column names of the Suppliers table as stored.
func SupplierColumns(db *gorm.DB) ([]string, error) {
	types, err := db.Migrator().ColumnTypes(&Supplier{})
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(types))
	for _, ct := range types {
		names = append(names, ct.Name())
	}
	return names, nil
}

// HasOrderHistory reports whether Suppliers carries both OrderDate and Amount.
func HasOrderHistory(columns []string) bool {
	var date, amount bool
	for _, c := range columns {
		switch {
		case strings.EqualFold(c, OrderDateColumn):
			date = true
		case strings.EqualFold(c, AmountColumn):
			amount = true
		}
	}
	return date && amount
}

// LoadSupplierOrders reads the OrderDate/Amount pairs from Suppliers. It must
// only be called when HasOrderHistory is true.
func LoadSupplierOrders(ctx context.Context, db *gorm.DB) ([]SupplierOrder, error) {
	var rows []SupplierOrder
	err := db.WithContext(ctx).
		Table(Supplier{}.TableName()).
		Select(OrderDateColumn, AmountColumn).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
