package domain

import "time"

// OrderStatus is the fixed status enumeration used by the backend. Any status
// may transition to any other; the console imposes no ordering.
type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderProcessing OrderStatus = "processing"
	OrderCompleted  OrderStatus = "completed"
	OrderCancelled  OrderStatus = "cancelled"
)

// IsValid reports whether s is one of the known statuses.
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderPending, OrderProcessing, OrderCompleted, OrderCancelled:
		return true
	}
	return false
}

// Label returns the localized display label shown in the console.
func (s OrderStatus) Label() string {
	switch s {
	case OrderPending:
		return "قيد الانتظار"
	case OrderProcessing:
		return "قيد المعالجة"
	case OrderCompleted:
		return "مكتمل"
	case OrderCancelled:
		return "ملغي"
	}
	return string(s)
}

// OrderItem is a single line of an order. Price is the line total, not the
// unit price; the unit price is Price / Quantity.
type OrderItem struct {
	ProductName string  `json:"productName"`
	Quantity    int     `json:"quantity"`
	Price       float64 `json:"price"`
}

// Order represents a customer order. Subtotal, Shipping and Total come from
// the backend and are trusted as-is; the console never recomputes them.
type Order struct {
	ID        string      `json:"_id"`
	Name      string      `json:"name"`
	Phone     string      `json:"phone"`
	Address   string      `json:"address"`
	Status    OrderStatus `json:"status"`
	Items     []OrderItem `json:"items"`
	Subtotal  float64     `json:"subtotal"`
	Shipping  float64     `json:"shipping"`
	Total     float64     `json:"total"`
	CreatedAt time.Time   `json:"createdAt"`
}
