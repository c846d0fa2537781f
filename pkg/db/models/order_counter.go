package models

// OrderCounterName is the single row shared by every order creation.
const OrderCounterName = "order_counter"

// OrderCounter holds the next order number. The row is updated and re-read
// inside the checkout transaction so numbers stay unique and monotonic
// across concurrent checkouts and across server instances.
type OrderCounter struct {
	Name       string `gorm:"column:name;primaryKey"`
	NextNumber int64  `gorm:"column:next_number;not null"`
}

// TableName overrides GORM's pluralization.
func (OrderCounter) TableName() string {
	return "order_counters"
}
