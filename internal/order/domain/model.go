package domain

import "time"

const (
	StatusPending    = "pending"
	StatusPaid       = "paid"
	StatusProcessing = "processing"
	StatusShipped    = "shipped"
	StatusDelivered  = "delivered"
	StatusCancelled  = "cancelled"

	PaymentUnpaid   = "unpaid"
	PaymentPaid     = "paid"
	PaymentFailed   = "failed"
	PaymentRefunded = "refunded"
)

// ValidStatus reports whether value is in the order-status allow-list.
func ValidStatus(value string) bool {
	switch value {
	case StatusPending, StatusPaid, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// ValidPaymentStatus reports whether value is in the payment-status allow-list.
func ValidPaymentStatus(value string) bool {
	switch value {
	case PaymentUnpaid, PaymentPaid, PaymentFailed, PaymentRefunded:
		return true
	}
	return false
}

type Order struct {
	ID     int64  `json:"id" gorm:"primaryKey"`
	Number string `json:"number" gorm:"type:text;not null;uniqueIndex:ux_orders_number"`
	UserID int64  `json:"user_id" gorm:"column:user_id;not null;index"`
	Email  string `json:"email" gorm:"type:text;not null"`

	Status          string `json:"status" gorm:"type:text;not null;default:pending"`
	PaymentStatus   string `json:"payment_status" gorm:"column:payment_status;type:text;not null;default:unpaid"`
	PaymentProvider string `json:"payment_provider,omitempty" gorm:"column:payment_provider;type:text;not null;default:''"`
	PaymentRef      string `json:"-" gorm:"column:payment_ref;type:text;not null;default:''"`

	Currency string `json:"currency" gorm:"type:text;not null"`
	Subtotal int64  `json:"subtotal" gorm:"not null"`
	Shipping int64  `json:"shipping" gorm:"not null"`
	Total    int64  `json:"total" gorm:"not null"`

	ShipToName    string `json:"ship_to_name" gorm:"column:ship_to_name;type:text;not null;default:''"`
	ShipToAddress string `json:"ship_to_address" gorm:"column:ship_to_address;type:text;not null;default:''"`
	ShipToCity    string `json:"ship_to_city" gorm:"column:ship_to_city;type:text;not null;default:''"`
	ShipToPostal  string `json:"ship_to_postal" gorm:"column:ship_to_postal;type:text;not null;default:''"`
	ShipToCountry string `json:"ship_to_country" gorm:"column:ship_to_country;type:text;not null;default:''"`

	Items []OrderItem `json:"items,omitempty" gorm:"foreignKey:OrderID"`

	CreatedAt time.Time `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Order) TableName() string { return "orders" }

// OrderItem snapshots the purchased variant so later catalog edits cannot
// rewrite order history.
type OrderItem struct {
	ID        int64 `json:"id" gorm:"primaryKey"`
	OrderID   int64 `json:"order_id" gorm:"column:order_id;not null;index"`
	ProductID int64 `json:"product_id" gorm:"column:product_id;not null"`
	VariantID int64 `json:"variant_id" gorm:"column:variant_id;not null"`

	ProductTitle string `json:"product_title" gorm:"column:product_title;type:text;not null"`
	VariantName  string `json:"variant_name" gorm:"column:variant_name;type:text;not null"`
	SKU          string `json:"sku" gorm:"column:sku;type:text;not null"`

	UnitPrice int64 `json:"unit_price" gorm:"column:unit_price;not null"`
	Quantity  int   `json:"quantity" gorm:"not null"`
	Total     int64 `json:"total" gorm:"not null"`

	CreatedAt time.Time `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (OrderItem) TableName() string { return "order_items" }
