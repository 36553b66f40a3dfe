package data

// Supplier is a company that provides products.
type Supplier struct {
	SupplierID  uint   `gorm:"column:SupplierID;primaryKey;autoIncrement"`
	CompanyName string `gorm:"column:CompanyName;not null"`
	City        string `gorm:"column:City"`
	Country     string `gorm:"column:Country"`
}

func (Supplier) TableName() string { return "Suppliers" }

// Category groups products; its rows come from a fixed list.
type Category struct {
	CategoryID   uint   `gorm:"column:CategoryID;primaryKey;autoIncrement"`
	CategoryName string `gorm:"column:CategoryName;not null"`
}

func (Category) TableName() string { return "Categories" }

// Product references its supplier and category. Only the supplier reference is
// declared as a foreign key; neither is enforced by the store.
type Product struct {
	ProductID   uint    `gorm:"column:ProductID;primaryKey;autoIncrement"`
	ProductName string  `gorm:"column:ProductName;not null"`
	SupplierID  uint    `gorm:"column:SupplierID"`
	CategoryID  uint    `gorm:"column:CategoryID"`
	UnitPrice   float64 `gorm:"column:UnitPrice"`

	Supplier *Supplier `gorm:"foreignKey:SupplierID;references:SupplierID"`
}

func (Product) TableName() string { return "Products" }

// OrderDetail is a single order line with a snapshot of the product price.
type OrderDetail struct {
	OrderID   uint    `gorm:"column:OrderID;primaryKey;autoIncrement"`
	ProductID uint    `gorm:"column:ProductID"`
	Quantity  int     `gorm:"column:Quantity"`
	UnitPrice float64 `gorm:"column:UnitPrice"`

	Product *Product `gorm:"foreignKey:ProductID;references:ProductID"`
}

func (OrderDetail) TableName() string { return "OrderDetails" }

// Models lists every table in creation order.
func Models() []interface{} {
	return []interface{}{&Supplier{}, &Category{}, &Product{}, &OrderDetail{}}
}
