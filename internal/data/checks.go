package data

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Check is a query whose result rows violate one of the declared relationships
// or value ranges of the generated dataset.
type Check struct {
	Table       string
	Name        string
	Description string
	Query       string
	Args        []interface{}
}

// CheckResult captures timing and the number of violating rows for a check.
type CheckResult struct {
	Table       string
	Name        string
	Description string
	Duration    time.Duration
	Violations  int64
	Err         error
}

// OK reports whether the check ran and found nothing.
func (r CheckResult) OK() bool { return r.Err == nil && r.Violations == 0 }

// Checks returns the built-in integrity checks.
func Checks() []Check {
	return []Check{
		{
			Table:       "Products",
			Name:        "orphan supplier",
			Description: "SupplierID does not match any row in Suppliers.",
			Query: `SELECT COUNT(*) FROM Products p
				LEFT JOIN Suppliers s ON s.SupplierID = p.SupplierID
				WHERE s.SupplierID IS NULL`,
		},
		{
			Table:       "Products",
			Name:        "orphan category",
			Description: "CategoryID does not match any row in Categories.",
			Query: `SELECT COUNT(*) FROM Products p
				LEFT JOIN Categories c ON c.CategoryID = p.CategoryID
				WHERE c.CategoryID IS NULL`,
		},
		{
			Table:       "Products",
			Name:        "price range",
			Description: "UnitPrice outside [1, 100].",
			Query:       "SELECT COUNT(*) FROM Products WHERE UnitPrice < ? OR UnitPrice > ?",
			Args:        []interface{}{minUnitPrice, maxUnitPrice},
		},
		{
			Table:       "OrderDetails",
			Name:        "orphan product",
			Description: "ProductID does not match any row in Products.",
			Query: `SELECT COUNT(*) FROM OrderDetails o
				LEFT JOIN Products p ON p.ProductID = o.ProductID
				WHERE p.ProductID IS NULL`,
		},
		{
			Table:       "OrderDetails",
			Name:        "quantity range",
			Description: "Quantity outside [1, 50].",
			Query:       "SELECT COUNT(*) FROM OrderDetails WHERE Quantity < ? OR Quantity > ?",
			Args:        []interface{}{minQuantity, maxQuantity},
		},
	}
}

// RunChecks executes every check and collects its result. A failing query is
// recorded on its result and does not stop the remaining checks.
func RunChecks(ctx context.Context, db *gorm.DB) []CheckResult {
	checks := Checks()
	results := make([]CheckResult, 0, len(checks))
	for _, c := range checks {
		res := CheckResult{Table: c.Table, Name: c.Name, Description: c.Description}

		start := time.Now()
		var count int64
		if err := db.WithContext(ctx).Raw(c.Query, c.Args...).Scan(&count).Error; err != nil {
			res.Err = fmt.Errorf("%s/%s: %w", c.Table, c.Name, err)
			results = append(results, res)
			continue
		}
		res.Duration = time.Since(start)
		res.Violations = count
		results = append(results, res)
	}
	return results
}

// TableCount is the number of rows stored in a table.
type TableCount struct {
	Table string
	Rows  int64
}

// TableCounts counts the rows of every model table.
func TableCounts(ctx context.Context, db *gorm.DB) ([]TableCount, error) {
	counts := make([]TableCount, 0, 4)
	for _, m := range Models() {
		var n int64
		if err := db.WithContext(ctx).Model(m).Count(&n).Error; err != nil {
			return nil, err
		}
		counts = append(counts, TableCount{Table: tableName(m), Rows: n})
	}
	return counts, nil
}

func tableName(m interface{}) string {
	if t, ok := m.(interface{ TableName() string }); ok {
		return t.TableName()
	}
	return fmt.Sprintf("%T", m)
}
