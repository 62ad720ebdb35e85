package services

import (
	"fmt"

	"washnet/internal/models"

	"github.com/shopspring/decimal"
)

// ServiceCatalog maps each service type to its per-item price. It is
// immutable once built and is passed to whatever needs pricing.
type ServiceCatalog struct {
	prices map[models.ServiceType]decimal.Decimal
}

// DefaultServiceCatalog returns the shop's standard price list.
func DefaultServiceCatalog() ServiceCatalog {
	catalog, _ := NewServiceCatalog(map[string]decimal.Decimal{
		string(models.ServiceWashDry):  decimal.NewFromInt(100),
		string(models.ServiceWashOnly): decimal.NewFromInt(60),
		string(models.ServiceDryOnly):  decimal.NewFromInt(50),
	})
	return catalog
}

// NewServiceCatalog builds a catalog from a price list. The wash_dry price is
// required because it is the fallback for unrecognized types; mixed is a
// derived order type and cannot be priced.
func NewServiceCatalog(prices map[string]decimal.Decimal) (ServiceCatalog, error) {
	copied := make(map[models.ServiceType]decimal.Decimal, len(prices))
	for key, price := range prices {
		serviceType := models.ServiceType(key)
		if serviceType == models.ServiceMixed {
			return ServiceCatalog{}, fmt.Errorf("service type %q cannot have a price", key)
		}
		if price.IsNegative() {
			return ServiceCatalog{}, fmt.Errorf("price for %q must not be negative", key)
		}
		copied[serviceType] = price
	}
	if _, ok := copied[models.ServiceWashDry]; !ok {
		return ServiceCatalog{}, fmt.Errorf("price for %q is required", models.ServiceWashDry)
	}
	return ServiceCatalog{prices: copied}, nil
}

// PriceOf returns the catalog price, or the wash_dry price when serviceType is
// not in the catalog.
func (c ServiceCatalog) PriceOf(serviceType models.ServiceType) decimal.Decimal {
	if price, ok := c.prices[serviceType]; ok {
		return price
	}
	return c.prices[models.ServiceWashDry]
}

func (c ServiceCatalog) IsKnown(serviceType models.ServiceType) bool {
	_, ok := c.prices[serviceType]
	return ok
}

// ComputeTotal sums price * quantity over items.
func (c ServiceCatalog) ComputeTotal(items []models.OrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(c.LineTotal(item))
	}
	return total
}

func (c ServiceCatalog) LineTotal(item models.OrderItem) decimal.Decimal {
	return c.PriceOf(item.ServiceType).Mul(decimal.NewFromInt(int64(ClampQuantity(item.Quantity))))
}

// ClampQuantity enforces the one-piece minimum on a line item.
func ClampQuantity(quantity int) int {
	if quantity < 1 {
		return 1
	}
	return quantity
}

// ResolveServiceType derives the order-level service type: the single type
// shared by every item, mixed when items disagree, wash_dry when no item
// carries a type.
func ResolveServiceType(items []models.OrderItem) models.ServiceType {
	seen := make(map[models.ServiceType]struct{})
	var only models.ServiceType
	for _, item := range items {
		if item.ServiceType == "" {
			continue
		}
		seen[item.ServiceType] = struct{}{}
		only = item.ServiceType
	}

	switch len(seen) {
	case 0:
		return models.ServiceWashDry
	case 1:
		return only
	default:
		return models.ServiceMixed
	}
}
