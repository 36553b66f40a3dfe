package main

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"supplier-dashboard/internal/data"
)

func TestGendataEndToEnd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "supplier.db")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"--db", path, "--suppliers", "10", "--products", "20", "--orders", "40", "--seed", "3"})
	require.NoError(t, rootCmd.Execute())

	got := out.String()
	assert.Contains(t, got, "Inserted 10 suppliers.")
	assert.Contains(t, got, "Inserted 7 categories.")
	assert.Contains(t, got, "Inserted 20 products.")
	assert.Contains(t, got, "Inserted 40 order details.")
	assert.NotContains(t, got, "FAIL")
	assert.True(t, strings.HasSuffix(got, "Database setup and data generation completed successfully!\n"))
}

func TestPrintChecksStatuses(t *testing.T) {
	var out bytes.Buffer
	err := printChecks(&out, []data.CheckResult{
		{Table: "Products", Name: "orphan supplier", Duration: time.Millisecond},
		{Table: "OrderDetails", Name: "quantity range", Violations: 3},
		{Table: "Products", Name: "price range", Err: errors.New("no such table")},
	})
	require.NoError(t, err)

	got := out.String()
	assert.Contains(t, got, "OK")
	assert.Contains(t, got, "FAIL")
	assert.Contains(t, got, "no such table")
}
