// internal/domain/order/entity.go
package order

import (
	"time"

	"gorm.io/gorm"
)

// Status represents the order status
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
	StatusRefunded   Status = "refunded"
)

// ReturnStatus represents the lifecycle of a return request
type ReturnStatus string

const (
	ReturnStatusRequested ReturnStatus = "requested"
	ReturnStatusApproved  ReturnStatus = "approved"
	ReturnStatusRejected  ReturnStatus = "rejected"
	ReturnStatusReceived  ReturnStatus = "received"
	ReturnStatusRefunded  ReturnStatus = "refunded"
)

// Order represents the order entity
type Order struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	OrderNumber string `gorm:"uniqueIndex;not null;size:50" json:"order_number"`
	UserID      uint   `gorm:"not null;index" json:"user_id"`
	Email       string `gorm:"not null;size:255" json:"email"`
	Status      Status `gorm:"not null;default:'pending'" json:"status"`

	// Financial Information
	SubtotalAmount int64 `gorm:"not null" json:"subtotal_amount"` // In cents
	TaxAmount      int64 `gorm:"default:0" json:"tax_amount"`
	ShippingAmount int64 `gorm:"default:0" json:"shipping_amount"`
	TotalAmount    int64 `gorm:"not null" json:"total_amount"`

	// Address snapshot
	ShippingAddress Address `gorm:"embedded;embeddedPrefix:shipping_" json:"shipping_address"`

	// Additional Information
	Currency string `gorm:"size:3;default:'USD'" json:"currency"`
	Notes    string `gorm:"type:text" json:"notes"`

	// Shipping Information
	ShippingMethodID *uint  `gorm:"index" json:"shipping_method_id"`
	ShippingMethod   string `gorm:"size:100" json:"shipping_method"`
	TrackingNumber   string `gorm:"size:100" json:"tracking_number"`

	// Timestamps
	ProcessedAt *time.Time     `json:"processed_at"`
	ShippedAt   *time.Time     `json:"shipped_at"`
	DeliveredAt *time.Time     `json:"delivered_at"`
	CancelledAt *time.Time     `json:"cancelled_at"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Items         []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"items"`
	StatusHistory []StatusHistory `gorm:"foreignKey:OrderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"status_history,omitempty"`
}

// OrderItem represents a line in an order. Title, author and price are
// snapshots taken at checkout.
type OrderItem struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	OrderID    uint      `gorm:"not null;index" json:"order_id"`
	BookID     uint      `gorm:"not null;index" json:"book_id"`
	SellerID   uint      `gorm:"not null;index" json:"seller_id"`
	Title      string    `gorm:"not null;size:255" json:"title"`
	Author     string    `gorm:"size:255" json:"author"`
	ISBN       string    `gorm:"size:17" json:"isbn"`
	Quantity   int       `gorm:"not null" json:"quantity"`
	UnitPrice  int64     `gorm:"not null" json:"unit_price"`  // Price per copy in cents
	TotalPrice int64     `gorm:"not null" json:"total_price"` // Quantity * UnitPrice
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ShippingMethod represents a selectable delivery option
type ShippingMethod struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Name          string    `gorm:"not null;size:100" json:"name"`
	Description   string    `gorm:"size:255" json:"description"`
	Price         int64     `gorm:"not null" json:"price"` // In cents
	EstimatedDays int       `gorm:"default:5" json:"estimated_days"`
	IsActive      bool      `gorm:"default:true" json:"is_active"`
	SortOrder     int       `gorm:"default:0" json:"sort_order"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// StatusHistory tracks order status changes
type StatusHistory struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	OrderID   uint      `gorm:"not null;index" json:"order_id"`
	Status    Status    `gorm:"not null" json:"status"`
	Comment   string    `gorm:"type:text" json:"comment"`
	CreatedBy uint      `gorm:"index" json:"created_by"` // User ID who made the change
	CreatedAt time.Time `json:"created_at"`
}

// ReturnRequest represents a buyer's request to return a delivered order
type ReturnRequest struct {
	ID         uint         `gorm:"primaryKey" json:"id"`
	OrderID    uint         `gorm:"not null;index" json:"order_id"`
	UserID     uint         `gorm:"not null;index" json:"user_id"`
	Status     ReturnStatus `gorm:"not null;default:'requested'" json:"status"`
	Reason     string       `gorm:"type:text;not null" json:"reason"`
	AdminNotes string       `gorm:"type:text" json:"admin_notes"`
	ResolvedAt *time.Time   `json:"resolved_at"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`

	// Relationships
	Order Order        `gorm:"foreignKey:OrderID" json:"order,omitempty"`
	Items []ReturnItem `gorm:"foreignKey:ReturnRequestID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"items"`
}

// ReturnItem represents a single order line being returned
type ReturnItem struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	ReturnRequestID uint      `gorm:"not null;index" json:"return_request_id"`
	OrderItemID     uint      `gorm:"not null;index" json:"order_item_id"`
	Quantity        int       `gorm:"not null" json:"quantity"`
	CreatedAt       time.Time `json:"created_at"`
}

// Address represents the shipping address snapshot (embedded in Order)
type Address struct {
	FirstName    string `gorm:"size:100" json:"first_name"`
	LastName     string `gorm:"size:100" json:"last_name"`
	AddressLine1 string `gorm:"size:255" json:"address_line1"`
	AddressLine2 string `gorm:"size:255" json:"address_line2"`
	City         string `gorm:"size:100" json:"city"`
	State        string `gorm:"size:100" json:"state"`
	PostalCode   string `gorm:"size:20" json:"postal_code"`
	Country      string `gorm:"size:2" json:"country"`
	Phone        string `gorm:"size:20" json:"phone"`
}

// TableName overrides
func (Order) TableName() string          { return "orders" }
func (OrderItem) TableName() string      { return "order_items" }
func (ShippingMethod) TableName() string { return "shipping_methods" }
func (StatusHistory) TableName() string  { return "order_status_history" }
func (ReturnRequest) TableName() string  { return "return_requests" }
func (ReturnItem) TableName() string     { return "return_items" }

// Business methods for Order

// GetFormattedTotal returns total amount as float
func (o *Order) GetFormattedTotal() float64 {
	return float64(o.TotalAmount) / 100
}

// CanBeCancelled checks if the buyer can still cancel the order
func (o *Order) CanBeCancelled() bool {
	return o.Status == StatusPending
}

// CanBeReturned checks if the buyer can open a return request
func (o *Order) CanBeReturned() bool {
	return o.Status == StatusDelivered
}

// IsRevenueCounting reports whether the order counts towards revenue
func (o *Order) IsRevenueCounting() bool {
	return o.Status == StatusProcessing || o.Status == StatusShipped || o.Status == StatusDelivered
}

// AddStatusHistory adds a new status change to history
func (o *Order) AddStatusHistory(status Status, comment string, createdBy uint) {
	history := StatusHistory{
		OrderID:   o.ID,
		Status:    status,
		Comment:   comment,
		CreatedBy: createdBy,
		CreatedAt: time.Now().UTC(),
	}
	o.StatusHistory = append(o.StatusHistory, history)
}

// validStatusTransitions defines the legal order status moves
var validStatusTransitions = map[Status][]Status{
	StatusPending:    {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusShipped, StatusCancelled},
	StatusShipped:    {StatusDelivered},
	StatusDelivered:  {StatusRefunded},
	StatusCancelled:  {},
	StatusRefunded:   {},
}

// IsValidStatusTransition reports whether moving from one status to
// another is legal
func IsValidStatusTransition(from, to Status) bool {
	for _, allowed := range validStatusTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}
