package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Order struct {
	ID             uint            `json:"id" gorm:"primaryKey"`
	OrderNumber    string          `json:"order_number" gorm:"unique;not null"`
	CustomerName   string          `json:"customer_name" gorm:"not null;index"`
	CustomerPhone  string          `json:"customer_phone" gorm:"not null"`
	CustomerEmail  string          `json:"customer_email,omitempty"`
	ServiceType    ServiceType     `json:"service_type" gorm:"type:varchar(16);not null;default:'wash_dry'"`
	TotalAmount    decimal.Decimal `json:"total_amount" gorm:"type:decimal(12,2);not null"`
	DeliveryMethod DeliveryMethod  `json:"delivery_method" gorm:"type:varchar(16);not null"`
	PickupDate     *time.Time      `json:"pickup_date" gorm:"type:date"`
	DeliveryDate   *time.Time      `json:"delivery_date" gorm:"type:date"`
	Status         OrderStatus     `json:"status" gorm:"type:varchar(16);not null;default:'pending';index"`
	Notes          string          `json:"notes,omitempty" gorm:"type:text"`
	CreatedBy      uint            `json:"created_by"`
	Items          []OrderItem     `json:"items" gorm:"foreignKey:OrderID"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// OrderStatusLog records one accepted status transition.
type OrderStatusLog struct {
	ID         uint        `json:"id" gorm:"primaryKey"`
	OrderID    uint        `json:"order_id" gorm:"not null;index"`
	FromStatus OrderStatus `json:"from_status" gorm:"type:varchar(16);not null"`
	ToStatus   OrderStatus `json:"to_status" gorm:"type:varchar(16);not null"`
	ChangedBy  uint        `json:"changed_by"`
	ChangedAt  time.Time   `json:"changed_at" gorm:"not null"`
}

// EmployeeActivity summarizes what one staff member has done with orders.
type EmployeeActivity struct {
	UserID        uint   `json:"user_id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	Role          string `json:"role"`
	OrdersCreated int64  `json:"orders_created"`
	StatusChanges int64  `json:"status_changes"`
}

type DeliveryMethod string

const (
	DeliveryPickup  DeliveryMethod = "pickup"
	DeliveryDeliver DeliveryMethod = "deliver"
)

func (m DeliveryMethod) Valid() bool {
	return m == DeliveryPickup || m == DeliveryDeliver
}

type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderProcessing OrderStatus = "processing"
	OrderReady      OrderStatus = "ready"
	OrderCompleted  OrderStatus = "completed"
	OrderCancelled  OrderStatus = "cancelled"
)

// OrderStatuses lists every status in lifecycle order.
var OrderStatuses = []OrderStatus{OrderPending, OrderProcessing, OrderReady, OrderCompleted, OrderCancelled}

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderPending:    {OrderProcessing, OrderCancelled},
	OrderProcessing: {OrderReady, OrderCancelled},
	OrderReady:      {OrderCompleted, OrderCancelled},
}

func (s OrderStatus) Valid() bool {
	for _, status := range OrderStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition is possible.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderCompleted || s == OrderCancelled
}

// CanTransitionTo reports whether moving from s to next is allowed.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}
