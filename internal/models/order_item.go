package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderItem struct {
	ID          uint            `json:"id" gorm:"primaryKey"`
	OrderID     uint            `json:"order_id" gorm:"not null;index"`
	Name        string          `json:"name" gorm:"not null"`
	Quantity    int             `json:"quantity" gorm:"not null"`
	ServiceType ServiceType     `json:"service_type" gorm:"type:varchar(16);not null"`
	UnitPrice   decimal.Decimal `json:"unit_price" gorm:"type:decimal(12,2);not null"`
	LineTotal   decimal.Decimal `json:"line_total" gorm:"type:decimal(12,2);not null"`
	CreatedAt   time.Time       `json:"created_at"`
}

// ServiceType describes what processing an item (or a whole order) needs.
type ServiceType string

const (
	ServiceWashDry  ServiceType = "wash_dry"
	ServiceWashOnly ServiceType = "wash_only"
	ServiceDryOnly  ServiceType = "dry_only"
	// ServiceMixed is only ever derived for an order, never set on an item.
	ServiceMixed ServiceType = "mixed"
)
