package data

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSuppliersOrdersByID(t *testing.T) {
	gdb := openTestDB(t)
	for _, name := range []string{"Acme", "Globex", "Initech"} {
		require.NoError(t, gdb.Create(&Supplier{CompanyName: name, City: "Oslo"}).Error)
	}

	got, err := LoadSuppliers(context.Background(), gdb)
	require.NoError(t, err)
	require.Len(t, got, 3)
	for i, s := range got {
		assert.Equal(t, uint(i+1), s.SupplierID)
	}
	assert.Equal(t, "Globex", got[1].CompanyName)
}

func TestHasOrderHistory(t *testing.T) {
	tests := []struct {
		name    string
		columns []string
		want    bool
	}{
		{"generated schema", []string{"SupplierID", "CompanyName", "City", "Country"}, false},
		{"date only", []string{"SupplierID", "OrderDate"}, false},
		{"both", []string{"SupplierID", "OrderDate", "Amount"}, true},
		{"case insensitive", []string{"orderdate", "AMOUNT"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HasOrderHistory(tt.columns))
		})
	}
}

func TestSupplierColumnsOnGeneratedSchema(t *testing.T) {
	gdb := openTestDB(t)
	cols, err := SupplierColumns(gdb)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"SupplierID", "CompanyName", "City", "Country"}, cols)
	assert.False(t, HasOrderHistory(cols))
}

func TestLoadSupplierOrdersWithHistoryColumns(t *testing.T) {
	gdb := openTestDB(t)
	require.NoError(t, gdb.Exec("ALTER TABLE Suppliers ADD COLUMN OrderDate TEXT").Error)
	require.NoError(t, gdb.Exec("ALTER TABLE Suppliers ADD COLUMN Amount REAL").Error)
	require.NoError(t, gdb.Exec(
		"INSERT INTO Suppliers (CompanyName, City, OrderDate, Amount) VALUES (?, ?, ?, ?), (?, ?, ?, NULL)",
		"Acme", "Oslo", "2023-01-02", 10.5,
		"Globex", "Rome", "2023-01-03",
	).Error)

	cols, err := SupplierColumns(gdb)
	require.NoError(t, err)
	require.True(t, HasOrderHistory(cols))

	rows, err := LoadSupplierOrders(context.Background(), gdb)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.NotNil(t, rows[0].OrderDate)
	assert.Equal(t, "2023-01-02", *rows[0].OrderDate)
	require.NotNil(t, rows[0].Amount)
	assert.Equal(t, 10.5, *rows[0].Amount)
	assert.Nil(t, rows[1].Amount)
}
