package services

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"washnet/internal/models"
)

const dateLayout = "2006-01-02"

var nonDigits = regexp.MustCompile(`\D`)

var errInvalidDate = errors.New("invalid date")

var orderRules = map[string]fieldRule{
	"customer_name":   {code: CodeNameRequired, message: "Customer name is required"},
	"customer_phone":  {code: CodePhoneInvalid, message: "Phone number must be 10-11 digits (e.g. 09XXXXXXXXX)"},
	"customer_email":  {code: CodeEmailInvalid, message: "Please enter a valid email address"},
	"items":           {code: CodeItemsRequired, message: "At least one item with a name is required"},
	"name":            {code: CodeItemNameRequired, message: "Item %d must have a name"},
	"delivery_method": {code: CodeDeliveryMethodInvalid, message: "Delivery method must be pickup or deliver"},
}

// CreateOrderRequest is the point-of-sale payload for a new order.
// The validate tags apply to the normalized request: trimmed strings and a
// digits-only phone.
type CreateOrderRequest struct {
	CustomerName   string             `json:"customer_name" validate:"required"`
	CustomerPhone  string             `json:"customer_phone" validate:"min=10,max=11"`
	CustomerEmail  string             `json:"customer_email" validate:"omitempty,email"`
	Items          []OrderItemRequest `json:"items" validate:"required,min=1,dive"`
	DeliveryMethod string             `json:"delivery_method" validate:"oneof=pickup deliver"`
	PickupDate     string             `json:"pickup_date"`
	DeliveryDate   string             `json:"delivery_date"`
	Notes          string             `json:"notes"`
}

type OrderItemRequest struct {
	Name        string `json:"name" validate:"required"`
	Quantity    int    `json:"quantity"`
	ServiceType string `json:"service_type"`
}

// RequestFromOrder rebuilds the request an order would have been created
// from, so a stored order can be run through validation again.
func RequestFromOrder(order *models.Order) CreateOrderRequest {
	req := CreateOrderRequest{
		CustomerName:   order.CustomerName,
		CustomerPhone:  order.CustomerPhone,
		CustomerEmail:  order.CustomerEmail,
		DeliveryMethod: string(order.DeliveryMethod),
		Notes:          order.Notes,
	}
	if order.PickupDate != nil {
		req.PickupDate = order.PickupDate.Format(dateLayout)
	}
	if order.DeliveryDate != nil {
		req.DeliveryDate = order.DeliveryDate.Format(dateLayout)
	}
	for _, item := range order.Items {
		req.Items = append(req.Items, OrderItemRequest{
			Name:        item.Name,
			Quantity:    item.Quantity,
			ServiceType: string(item.ServiceType),
		})
	}
	return req
}

// OrderValidator checks a CreateOrderRequest and, in the same pass, turns it
// into a normalized order ready to be stored.
type OrderValidator struct {
	catalog  ServiceCatalog
	location *time.Location
	now      func() time.Time
}

// NewOrderValidator builds a validator that prices with catalog and compares
// dates as calendar days in location. now defaults to time.Now.
func NewOrderValidator(catalog ServiceCatalog, location *time.Location, now func() time.Time) *OrderValidator {
	if location == nil {
		location = time.Local
	}
	if now == nil {
		now = time.Now
	}
	return &OrderValidator{catalog: catalog, location: location, now: now}
}

// Validate returns the normalized order, or a *ValidationError listing every
// violation found.
func (v *OrderValidator) Validate(req CreateOrderRequest) (*models.Order, error) {
	verr := &ValidationError{}
	req = normalizeRequest(req)

	if err := checkStruct(req, orderRules, verr); err != nil {
		return nil, err
	}

	order := &models.Order{
		CustomerName:   req.CustomerName,
		CustomerPhone:  req.CustomerPhone,
		CustomerEmail:  req.CustomerEmail,
		DeliveryMethod: models.DeliveryMethod(req.DeliveryMethod),
		Status:         models.OrderPending,
		Notes:          req.Notes,
	}

	order.Items = v.buildItems(req.Items, verr)
	order.ServiceType = ResolveServiceType(order.Items)
	order.TotalAmount = v.catalog.ComputeTotal(order.Items)

	v.applyDates(order, req, verr)

	if !verr.Empty() {
		return nil, verr
	}
	return order, nil
}

func normalizeRequest(req CreateOrderRequest) CreateOrderRequest {
	norm := CreateOrderRequest{
		CustomerName:   strings.TrimSpace(req.CustomerName),
		CustomerPhone:  nonDigits.ReplaceAllString(req.CustomerPhone, ""),
		CustomerEmail:  strings.TrimSpace(req.CustomerEmail),
		DeliveryMethod: strings.TrimSpace(req.DeliveryMethod),
		PickupDate:     strings.TrimSpace(req.PickupDate),
		DeliveryDate:   strings.TrimSpace(req.DeliveryDate),
		Notes:          strings.TrimSpace(req.Notes),
	}
	if req.Items != nil {
		norm.Items = make([]OrderItemRequest, len(req.Items))
	}
	for i, item := range req.Items {
		norm.Items[i] = OrderItemRequest{
			Name:        strings.TrimSpace(item.Name),
			Quantity:    ClampQuantity(item.Quantity),
			ServiceType: strings.TrimSpace(item.ServiceType),
		}
	}
	return norm
}

// buildItems prices the normalized items. Catalog membership is checked here
// since the catalog is injected.
func (v *OrderValidator) buildItems(reqItems []OrderItemRequest, verr *ValidationError) []models.OrderItem {
	items := make([]models.OrderItem, 0, len(reqItems))
	named := 0
	for i, reqItem := range reqItems {
		item := models.OrderItem{
			Name:        reqItem.Name,
			Quantity:    reqItem.Quantity,
			ServiceType: models.ServiceType(reqItem.ServiceType),
		}
		if item.Name != "" {
			named++
		}

		if item.ServiceType == "" {
			item.ServiceType = models.ServiceWashDry
		} else if !v.catalog.IsKnown(item.ServiceType) {
			verr.Add(fmt.Sprintf("item.%d.service_type", i), CodeServiceTypeInvalid,
				fmt.Sprintf("Item %d has an unknown service type %q", i+1, item.ServiceType))
		}

		item.UnitPrice = v.catalog.PriceOf(item.ServiceType)
		item.LineTotal = v.catalog.LineTotal(item)
		items = append(items, item)
	}

	if len(items) > 0 && named == 0 {
		verr.Add("items", CodeItemsRequired, "At least one item with a name is required")
	}
	return items
}

// applyDates keeps only the date the delivery method uses. The other date is
// parsed quietly and only takes part in the delivery-after-pickup check.
func (v *OrderValidator) applyDates(order *models.Order, req CreateOrderRequest, verr *ValidationError) {
	pickup, pickupErr := v.parseDate(req.PickupDate)
	delivery, deliveryErr := v.parseDate(req.DeliveryDate)

	switch order.DeliveryMethod {
	case models.DeliveryPickup:
		order.PickupDate = v.requireFutureDate("pickup_date", "Pickup", pickup, pickupErr, verr)
	case models.DeliveryDeliver:
		order.DeliveryDate = v.requireFutureDate("delivery_date", "Delivery", delivery, deliveryErr, verr)
	}

	if pickup != nil && delivery != nil && !delivery.After(*pickup) {
		verr.Add("delivery_date", CodeDateOrderInvalid, "Delivery date must be after pickup date")
	}
}

func (v *OrderValidator) requireFutureDate(field, label string, date *time.Time, parseErr error, verr *ValidationError) *time.Time {
	switch {
	case parseErr != nil:
		verr.Add(field, CodeDateInvalid, "Date must be in YYYY-MM-DD format")
		return nil
	case date == nil:
		verr.Add(field, CodeDateRequired, label+" date is required for "+strings.ToLower(label)+" orders")
		return nil
	case date.Before(v.today()):
		verr.Add(field, CodeDateInPast, label+" date cannot be in the past")
	}
	return date
}

// parseDate accepts YYYY-MM-DD or an RFC 3339 timestamp and returns the
// calendar day as UTC midnight. Blank input yields nil without an error.
func (v *OrderValidator) parseDate(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}

	if t, err := time.Parse(dateLayout, raw); err == nil {
		return &t, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		day := calendarDay(t.In(v.location))
		return &day, nil
	}
	return nil, errInvalidDate
}

func (v *OrderValidator) today() time.Time {
	return calendarDay(v.now().In(v.location))
}

func calendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
