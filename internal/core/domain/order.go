package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus follows the forward delivery pipeline, plus terminal
// side-states.
type OrderStatus string

const (
	OrderPendingConfirmation OrderStatus = "pending_confirmation"
	OrderConfirmed           OrderStatus = "confirmed"
	OrderPreparing           OrderStatus = "preparing"
	OrderReadyForPickup      OrderStatus = "ready_for_pickup"
	OrderOutForDelivery      OrderStatus = "out_for_delivery"
	OrderDelivered           OrderStatus = "delivered"
	OrderCancelled           OrderStatus = "cancelled"
	OrderReturned            OrderStatus = "returned"
	OrderFailedDelivery      OrderStatus = "failed_delivery"
)

// OrderSource distinguishes manually entered orders from bulk-imported ones.
type OrderSource string

const (
	SourceManualEntry OrderSource = "manual"
	SourceBulkImport  OrderSource = "bulk_import"
)

var pipelineRank = map[OrderStatus]int{
	OrderPendingConfirmation: 0,
	OrderConfirmed:           1,
	OrderPreparing:           2,
	OrderReadyForPickup:      3,
	OrderOutForDelivery:      4,
	OrderDelivered:           5,
}

// StatusRank returns the total order used by the dedup guard to pick a
// survivor: live pipeline states rank by progression, terminal side-states
// (cancelled, returned, failed_delivery) rank below every pipeline state.
func StatusRank(s OrderStatus) int {
	if r, ok := pipelineRank[s]; ok {
		return r
	}
	return -1
}

// Order is the slice of the upstream order entity this core owns: the
// fields revenue recognition and the integrity guard read and write.
type Order struct {
	ID              int64           `json:"id"`
	CustomerID      int64           `json:"customerID"`
	CustomerPhone   string          `json:"customerPhone"`
	Status          OrderStatus     `json:"status"`
	TotalAmount     decimal.Decimal `json:"totalAmount"`
	DeliveryAddress string          `json:"deliveryAddress"`
	Source          OrderSource     `json:"source"`
	// Back-reference to the revenue recognition entry, nil until recognized.
	GLEntryID          *string `json:"glEntryID,omitempty"`
	RevenueRecognized  bool    `json:"revenueRecognized"`
	CostDataIncomplete bool    `json:"costDataIncomplete"`
	DeliveryAgentID    *int64  `json:"deliveryAgentID,omitempty"`
	SalesRepID         *int64  `json:"salesRepID,omitempty"`
	// Fixed commission amounts for the assigned agent/rep, zero when unassigned.
	DeliveryCommission decimal.Decimal `json:"deliveryCommission"`
	RepCommission      decimal.Decimal `json:"repCommission"`
	Items              []OrderItem     `json:"items,omitempty"`
	CreatedAt          time.Time       `json:"createdAt"`
	DeletedAt          *time.Time      `json:"deletedAt,omitempty"`
}

// Live reports whether the order participates in active balance
// computations (not soft-deleted).
func (o Order) Live() bool {
	return o.DeletedAt == nil
}

// OrderItem is one product line on an order, carrying the product data the
// recognition workflow needs (list price and per-unit cost).
type OrderItem struct {
	ID               int64           `json:"id"`
	OrderID          int64           `json:"orderID"`
	ProductID        int64           `json:"productID"`
	ProductName      string          `json:"productName"`
	Quantity         int64           `json:"quantity"`
	UnitPrice        decimal.Decimal `json:"unitPrice"`
	TotalPrice       decimal.Decimal `json:"totalPrice"`
	ProductListPrice decimal.Decimal `json:"productListPrice"`
	ProductCOGS      decimal.Decimal `json:"productCOGS"`
}

// Customer is the minimal customer projection the dedup guard reports on.
type Customer struct {
	ID          int64  `json:"id"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	PhoneNumber string `json:"phoneNumber"`
}
