// internal/domain/order/service.go
package order

import (
	"fmt"
	"time"

	"github.com/your-org/bookstore-backend/internal/config"
	"github.com/your-org/bookstore-backend/internal/domain/book"
	"gorm.io/gorm"
)

// CancellationHook is notified inside the cancel transaction so other
// areas can reverse what checkout recorded for the order.
type CancellationHook interface {
	OnOrderCancelled(tx *gorm.DB, o *Order) error
}

// StockAlertRefresher re-evaluates a book's stock alerts after copies
// go back on the shelf. Registered from wiring, like the hooks.
type StockAlertRefresher func(tx *gorm.DB, bookID uint) error

// Service handles order business logic
type Service struct {
	db            *gorm.DB
	config        *config.Config
	hooks         []CancellationHook
	refreshAlerts StockAlertRefresher
}

// NewService creates a new order service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		config: cfg,
	}
}

// AddCancellationHook registers a hook invoked when orders are cancelled
func (s *Service) AddCancellationHook(hook CancellationHook) {
	s.hooks = append(s.hooks, hook)
}

// SetStockAlertRefresher registers the callback run after restocks
func (s *Service) SetStockAlertRefresher(fn StockAlertRefresher) {
	s.refreshAlerts = fn
}

// OrderListRequest represents order list query parameters
type OrderListRequest struct {
	Page      int    `form:"page,default=1"`
	Limit     int    `form:"limit,default=20"`
	Status    Status `form:"status"`
	SortBy    string `form:"sort_by,default=created_at"`
	SortOrder string `form:"sort_order,default=desc"`
	DateFrom  string `form:"date_from"`
	DateTo    string `form:"date_to"`
}

// OrderResponse represents order response with pagination
type OrderResponse struct {
	Orders     []Order    `json:"orders"`
	Pagination Pagination `json:"pagination"`
}

// Pagination represents pagination information
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
	HasPrev    bool  `json:"has_prev"`
}

// ReturnRequestCreate represents a buyer's return request
type ReturnRequestCreate struct {
	Reason string `json:"reason" binding:"required"`
	Items  []struct {
		OrderItemID uint `json:"order_item_id" binding:"required"`
		Quantity    int  `json:"quantity" binding:"required"`
	} `json:"items" binding:"required"`
}

// GetUserOrders retrieves orders for a buyer
func (s *Service) GetUserOrders(userID uint, req *OrderListRequest) (*OrderResponse, error) {
	query := s.db.Model(&Order{}).
		Preload("Items").
		Where("user_id = ?", userID)
	return s.listOrders(query, req)
}

// GetSellerOrders retrieves orders containing at least one of the
// seller's books
func (s *Service) GetSellerOrders(sellerID uint, req *OrderListRequest) (*OrderResponse, error) {
	query := s.db.Model(&Order{}).
		Preload("Items", "seller_id = ?", sellerID).
		Where("id IN (?)", s.db.Model(&OrderItem{}).Select("order_id").Where("seller_id = ?", sellerID))
	return s.listOrders(query, req)
}

// GetAllOrders retrieves all orders for admins
func (s *Service) GetAllOrders(req *OrderListRequest) (*OrderResponse, error) {
	query := s.db.Model(&Order{}).Preload("Items")
	return s.listOrders(query, req)
}

func (s *Service) listOrders(query *gorm.DB, req *OrderListRequest) (*OrderResponse, error) {
	var orders []Order
	var total int64

	if req.Page < 1 {
		req.Page = 1
	}
	if req.Limit < 1 || req.Limit > 100 {
		req.Limit = 20
	}

	// Apply filters
	if req.Status != "" {
		query = query.Where("status = ?", req.Status)
	}

	if req.DateFrom != "" {
		query = query.Where("created_at >= ?", req.DateFrom)
	}

	if req.DateTo != "" {
		query = query.Where("created_at <= ?", req.DateTo)
	}

	// Count total records
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}

	// Apply sorting
	orderClause := s.buildOrderClause(req.SortBy, req.SortOrder)
	query = query.Order(orderClause)

	// Apply pagination
	offset := (req.Page - 1) * req.Limit
	if err := query.Offset(offset).Limit(req.Limit).Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve orders: %w", err)
	}

	// Calculate pagination info
	totalPages := int((total + int64(req.Limit) - 1) / int64(req.Limit))
	pagination := Pagination{
		Page:       req.Page,
		Limit:      req.Limit,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    req.Page < totalPages,
		HasPrev:    req.Page > 1,
	}

	return &OrderResponse{
		Orders:     orders,
		Pagination: pagination,
	}, nil
}

// GetOrder retrieves a single order, enforcing access rules: buyers see
// their own orders, sellers see orders containing their books, admins
// see everything.
func (s *Service) GetOrder(id, actorID uint, role string) (*Order, error) {
	var o Order
	result := s.db.
		Preload("Items").
		Preload("StatusHistory", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC")
		}).
		Where("id = ?", id).
		First(&o)

	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("order not found")
		}
		return nil, fmt.Errorf("failed to retrieve order: %w", result.Error)
	}

	switch {
	case role == "admin":
	case o.UserID == actorID:
	case role == "seller":
		var count int64
		s.db.Model(&OrderItem{}).Where("order_id = ? AND seller_id = ?", id, actorID).Count(&count)
		if count == 0 {
			return nil, fmt.Errorf("order not found")
		}
	default:
		return nil, fmt.Errorf("order not found")
	}

	return &o, nil
}

// GetOrderByNumber retrieves a buyer's order by its order number
func (s *Service) GetOrderByNumber(orderNumber string, userID uint) (*Order, error) {
	var o Order
	result := s.db.
		Preload("Items").
		Where("order_number = ? AND user_id = ?", orderNumber, userID).
		First(&o)

	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("order not found")
		}
		return nil, fmt.Errorf("failed to retrieve order: %w", result.Error)
	}

	return &o, nil
}

// UpdateOrderStatus moves an order along the fulfillment pipeline.
// Cancellation goes through CancelOrder so stock and earnings are
// reversed; this method rejects it.
func (s *Service) UpdateOrderStatus(orderID uint, status Status, comment string, updatedBy uint) error {
	if status == StatusCancelled {
		return fmt.Errorf("use the cancel operation to cancel orders")
	}

	// Get current order
	var o Order
	if err := s.db.First(&o, orderID).Error; err != nil {
		return fmt.Errorf("order not found: %w", err)
	}

	// Validate status transition
	if !IsValidStatusTransition(o.Status, status) {
		return fmt.Errorf("invalid status transition from %s to %s", o.Status, status)
	}

	// Update order status
	updates := map[string]interface{}{
		"status": status,
	}

	// Set timestamps based on status
	now := time.Now().UTC()
	switch status {
	case StatusProcessing:
		updates["processed_at"] = now
	case StatusShipped:
		updates["shipped_at"] = now
	case StatusDelivered:
		updates["delivered_at"] = now
	}

	if err := s.db.Model(&o).Updates(updates).Error; err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}

	// Add status history
	statusHistory := StatusHistory{
		OrderID:   orderID,
		Status:    status,
		Comment:   comment,
		CreatedBy: updatedBy,
		CreatedAt: now,
	}

	if err := s.db.Create(&statusHistory).Error; err != nil {
		return fmt.Errorf("failed to create status history: %w", err)
	}

	return nil
}

// CancelOrder cancels a pending order, restoring stock and sales
// counters exactly and notifying the registered hooks. Buyers may only
// cancel their own orders.
func (s *Service) CancelOrder(orderID, actorID uint, isAdmin bool, reason string) error {
	var o Order
	if err := s.db.Preload("Items").First(&o, orderID).Error; err != nil {
		return fmt.Errorf("order not found: %w", err)
	}

	if !isAdmin && o.UserID != actorID {
		return fmt.Errorf("order not found")
	}

	if !o.CanBeCancelled() {
		return fmt.Errorf("order cannot be cancelled in current status: %s", o.Status)
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	// Restore stock and reverse the sales counters recorded at checkout
	for _, item := range o.Items {
		result := tx.Model(&book.Book{}).
			Where("id = ?", item.BookID).
			UpdateColumns(map[string]interface{}{
				"stock_quantity": gorm.Expr("stock_quantity + ?", item.Quantity),
				"total_sales":    gorm.Expr("total_sales - ?", item.Quantity),
				"total_revenue":  gorm.Expr("total_revenue - ?", item.TotalPrice),
			})
		if result.Error != nil {
			tx.Rollback()
			return fmt.Errorf("failed to restore stock: %w", result.Error)
		}

		// Recovered stock may clear an open low stock alert
		if s.refreshAlerts != nil {
			if err := s.refreshAlerts(tx, item.BookID); err != nil {
				tx.Rollback()
				return fmt.Errorf("failed to refresh stock alerts: %w", err)
			}
		}
	}

	now := time.Now().UTC()
	if err := tx.Model(&o).Updates(map[string]interface{}{
		"status":       StatusCancelled,
		"cancelled_at": now,
	}).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to update order status: %w", err)
	}
	o.Status = StatusCancelled
	o.CancelledAt = &now

	// Add status history
	statusHistory := StatusHistory{
		OrderID:   orderID,
		Status:    StatusCancelled,
		Comment:   fmt.Sprintf("Order cancelled: %s", reason),
		CreatedBy: actorID,
		CreatedAt: now,
	}

	if err := tx.Create(&statusHistory).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to create status history: %w", err)
	}

	for _, hook := range s.hooks {
		if err := hook.OnOrderCancelled(tx, &o); err != nil {
			tx.Rollback()
			return fmt.Errorf("cancellation hook failed: %w", err)
		}
	}

	return tx.Commit().Error
}

// GetShippingMethods lists the active delivery options
func (s *Service) GetShippingMethods() ([]ShippingMethod, error) {
	var methods []ShippingMethod
	if err := s.db.Where("is_active = ?", true).Order("sort_order ASC, price ASC").Find(&methods).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve shipping methods: %w", err)
	}
	return methods, nil
}

// CreateReturnRequest opens a return for a delivered order
func (s *Service) CreateReturnRequest(orderID, userID uint, req *ReturnRequestCreate) (*ReturnRequest, error) {
	var o Order
	if err := s.db.Preload("Items").Where("id = ? AND user_id = ?", orderID, userID).First(&o).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("order not found")
		}
		return nil, fmt.Errorf("failed to retrieve order: %w", err)
	}

	if !o.CanBeReturned() {
		return nil, fmt.Errorf("only delivered orders can be returned")
	}

	// One open return per order
	var existing int64
	s.db.Model(&ReturnRequest{}).
		Where("order_id = ? AND status IN ?", orderID, []ReturnStatus{ReturnStatusRequested, ReturnStatusApproved, ReturnStatusReceived}).
		Count(&existing)
	if existing > 0 {
		return nil, fmt.Errorf("a return request is already open for this order")
	}

	itemsByID := make(map[uint]OrderItem, len(o.Items))
	for _, item := range o.Items {
		itemsByID[item.ID] = item
	}

	returnRequest := ReturnRequest{
		OrderID: orderID,
		UserID:  userID,
		Status:  ReturnStatusRequested,
		Reason:  req.Reason,
	}

	for _, reqItem := range req.Items {
		orderItem, ok := itemsByID[reqItem.OrderItemID]
		if !ok {
			return nil, fmt.Errorf("order item %d does not belong to this order", reqItem.OrderItemID)
		}
		if reqItem.Quantity < 1 || reqItem.Quantity > orderItem.Quantity {
			return nil, fmt.Errorf("invalid return quantity for item %d", reqItem.OrderItemID)
		}
		returnRequest.Items = append(returnRequest.Items, ReturnItem{
			OrderItemID: reqItem.OrderItemID,
			Quantity:    reqItem.Quantity,
		})
	}

	if len(returnRequest.Items) == 0 {
		return nil, fmt.Errorf("return request must include at least one item")
	}

	if err := s.db.Create(&returnRequest).Error; err != nil {
		return nil, fmt.Errorf("failed to create return request: %w", err)
	}

	return &returnRequest, nil
}

// GetUserReturns lists a buyer's return requests
func (s *Service) GetUserReturns(userID uint) ([]ReturnRequest, error) {
	var returns []ReturnRequest
	if err := s.db.Preload("Items").Where("user_id = ?", userID).
		Order("created_at DESC").Find(&returns).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve returns: %w", err)
	}
	return returns, nil
}

// GetAllReturns lists return requests for admins, optionally by status
func (s *Service) GetAllReturns(status ReturnStatus) ([]ReturnRequest, error) {
	query := s.db.Preload("Items").Preload("Order")
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var returns []ReturnRequest
	if err := query.Order("created_at DESC").Find(&returns).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve returns: %w", err)
	}
	return returns, nil
}

// validReturnTransitions defines the legal return status moves
var validReturnTransitions = map[ReturnStatus][]ReturnStatus{
	ReturnStatusRequested: {ReturnStatusApproved, ReturnStatusRejected},
	ReturnStatusApproved:  {ReturnStatusReceived},
	ReturnStatusReceived:  {ReturnStatusRefunded},
}

// UpdateReturnStatus moves a return request along its lifecycle. When a
// return is refunded the order is marked refunded and the returned
// copies go back into stock.
func (s *Service) UpdateReturnStatus(returnID uint, status ReturnStatus, adminNotes string) (*ReturnRequest, error) {
	var rr ReturnRequest
	if err := s.db.Preload("Items").First(&rr, returnID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("return request not found")
		}
		return nil, fmt.Errorf("failed to retrieve return request: %w", err)
	}

	allowed := false
	for _, next := range validReturnTransitions[rr.Status] {
		if next == status {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, fmt.Errorf("invalid return transition from %s to %s", rr.Status, status)
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	now := time.Now().UTC()
	updates := map[string]interface{}{
		"status":      status,
		"admin_notes": adminNotes,
	}
	if status == ReturnStatusRejected || status == ReturnStatusRefunded {
		updates["resolved_at"] = now
	}

	if err := tx.Model(&rr).Updates(updates).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to update return request: %w", err)
	}

	if status == ReturnStatusRefunded {
		for _, item := range rr.Items {
			var orderItem OrderItem
			if err := tx.First(&orderItem, item.OrderItemID).Error; err != nil {
				tx.Rollback()
				return nil, fmt.Errorf("failed to load order item: %w", err)
			}
			if err := tx.Model(&book.Book{}).
				Where("id = ?", orderItem.BookID).
				UpdateColumn("stock_quantity", gorm.Expr("stock_quantity + ?", item.Quantity)).Error; err != nil {
				tx.Rollback()
				return nil, fmt.Errorf("failed to restock returned copies: %w", err)
			}

			if s.refreshAlerts != nil {
				if err := s.refreshAlerts(tx, orderItem.BookID); err != nil {
					tx.Rollback()
					return nil, fmt.Errorf("failed to refresh stock alerts: %w", err)
				}
			}
		}

		if err := tx.Model(&Order{}).Where("id = ?", rr.OrderID).
			Update("status", StatusRefunded).Error; err != nil {
			tx.Rollback()
			return nil, fmt.Errorf("failed to mark order refunded: %w", err)
		}

		history := StatusHistory{
			OrderID:   rr.OrderID,
			Status:    StatusRefunded,
			Comment:   "Return refunded",
			CreatedAt: now,
		}
		if err := tx.Create(&history).Error; err != nil {
			tx.Rollback()
			return nil, fmt.Errorf("failed to create status history: %w", err)
		}
	}

	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("failed to commit return update: %w", err)
	}

	rr.Status = status
	rr.AdminNotes = adminNotes
	return &rr, nil
}

func (s *Service) buildOrderClause(sortBy, sortOrder string) string {
	validSortFields := map[string]bool{
		"created_at":   true,
		"updated_at":   true,
		"total_amount": true,
		"status":       true,
		"order_number": true,
	}

	if !validSortFields[sortBy] {
		sortBy = "created_at"
	}

	if sortOrder != "asc" && sortOrder != "desc" {
		sortOrder = "desc"
	}

	return fmt.Sprintf("%s %s", sortBy, sortOrder)
}
