package services

import (
	"errors"
	"testing"
	"time"

	"washnet/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var manila = time.FixedZone("PHT", 8*60*60)

// 2026-10-19 01:30 in Manila, still the 18th in UTC.
var validatorNow = time.Date(2026, 10, 18, 17, 30, 0, 0, time.UTC)

func newTestValidator() *OrderValidator {
	return NewOrderValidator(DefaultServiceCatalog(), manila, func() time.Time { return validatorNow })
}

func validRequest() CreateOrderRequest {
	return CreateOrderRequest{
		CustomerName:  "  Maria Santos ",
		CustomerPhone: "0912-345-6789",
		CustomerEmail: " maria@example.com ",
		Items: []OrderItemRequest{
			{Name: " Shirts ", Quantity: 5, ServiceType: "wash_dry"},
			{Name: "Jeans", Quantity: 2, ServiceType: "dry_only"},
		},
		DeliveryMethod: "pickup",
		PickupDate:     "2026-10-21",
		Notes:          " fold neatly ",
	}
}

func requireValidationError(t *testing.T, err error) *ValidationError {
	t.Helper()
	var verr *ValidationError
	require.True(t, errors.As(err, &verr), "expected *ValidationError, got %v", err)
	return verr
}

func TestValidate_NormalizesValidOrder(t *testing.T) {
	order, err := newTestValidator().Validate(validRequest())
	require.NoError(t, err)

	assert.Equal(t, "Maria Santos", order.CustomerName)
	assert.Equal(t, "09123456789", order.CustomerPhone)
	assert.Equal(t, "maria@example.com", order.CustomerEmail)
	assert.Equal(t, "fold neatly", order.Notes)
	assert.Equal(t, models.OrderPending, order.Status)
	assert.Equal(t, models.ServiceMixed, order.ServiceType)
	assert.Equal(t, "600", order.TotalAmount.String())

	require.Len(t, order.Items, 2)
	assert.Equal(t, "Shirts", order.Items[0].Name)
	assert.Equal(t, "100", order.Items[0].UnitPrice.String())
	assert.Equal(t, "500", order.Items[0].LineTotal.String())
	assert.Equal(t, "100", order.Items[1].LineTotal.String())

	assert.Equal(t, models.DeliveryPickup, order.DeliveryMethod)
	require.NotNil(t, order.PickupDate)
	assert.Equal(t, "2026-10-21", order.PickupDate.Format(dateLayout))
	assert.Nil(t, order.DeliveryDate)
}

func TestValidate_SingleServiceType(t *testing.T) {
	req := validRequest()
	req.Items = []OrderItemRequest{{Name: "Towels", Quantity: 3, ServiceType: "wash_only"}}

	order, err := newTestValidator().Validate(req)
	require.NoError(t, err)
	assert.Equal(t, models.ServiceWashOnly, order.ServiceType)
	assert.Equal(t, "180", order.TotalAmount.String())
}

func TestValidate_CustomerFields(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*CreateOrderRequest)
		field  string
		code   string
	}{
		{"blank name", func(r *CreateOrderRequest) { r.CustomerName = "   " }, "customer_name", CodeNameRequired},
		{"short phone", func(r *CreateOrderRequest) { r.CustomerPhone = "123" }, "customer_phone", CodePhoneInvalid},
		{"long phone", func(r *CreateOrderRequest) { r.CustomerPhone = "091234567890" }, "customer_phone", CodePhoneInvalid},
		{"letters only phone", func(r *CreateOrderRequest) { r.CustomerPhone = "call me" }, "customer_phone", CodePhoneInvalid},
		{"email without domain", func(r *CreateOrderRequest) { r.CustomerEmail = "maria@" }, "customer_email", CodeEmailInvalid},
		{"email without tld", func(r *CreateOrderRequest) { r.CustomerEmail = "maria@example" }, "customer_email", CodeEmailInvalid},
		{"email with space", func(r *CreateOrderRequest) { r.CustomerEmail = "ma ria@example.com" }, "customer_email", CodeEmailInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.modify(&req)

			_, err := newTestValidator().Validate(req)
			verr := requireValidationError(t, err)
			assert.True(t, verr.Has(tt.field, tt.code), "errors: %+v", verr.Errors)
			assert.Len(t, verr.Errors, 1)
		})
	}
}

func TestValidate_PhoneLengths(t *testing.T) {
	for _, phone := range []string{"9123456789", "09123456789", "(0912) 345 6789", "+0912.345.6789"} {
		req := validRequest()
		req.CustomerPhone = phone
		_, err := newTestValidator().Validate(req)
		assert.NoError(t, err, phone)
	}
}

func TestValidate_EmailOptional(t *testing.T) {
	req := validRequest()
	req.CustomerEmail = "   "

	order, err := newTestValidator().Validate(req)
	require.NoError(t, err)
	assert.Empty(t, order.CustomerEmail)
}

func TestValidate_Items(t *testing.T) {
	t.Run("no items", func(t *testing.T) {
		req := validRequest()
		req.Items = nil

		_, err := newTestValidator().Validate(req)
		verr := requireValidationError(t, err)
		assert.True(t, verr.Has("items", CodeItemsRequired))
		assert.Len(t, verr.Errors, 1)
	})

	t.Run("all names blank", func(t *testing.T) {
		req := validRequest()
		req.Items = []OrderItemRequest{{Name: " ", Quantity: 1}, {Name: "", Quantity: 2}}

		_, err := newTestValidator().Validate(req)
		verr := requireValidationError(t, err)
		assert.True(t, verr.Has("items", CodeItemsRequired))
		assert.True(t, verr.Has("item.0.name", CodeItemNameRequired))
		assert.True(t, verr.Has("item.1.name", CodeItemNameRequired))
	})

	t.Run("one blank name among named items", func(t *testing.T) {
		req := validRequest()
		req.Items = append(req.Items, OrderItemRequest{Name: "  ", Quantity: 1, ServiceType: "wash_dry"})

		_, err := newTestValidator().Validate(req)
		verr := requireValidationError(t, err)
		assert.False(t, verr.Has("items", CodeItemsRequired))
		assert.True(t, verr.Has("item.2.name", CodeItemNameRequired))
		assert.Equal(t, []string{"Item 3 must have a name"}, verr.Fields()["item.2.name"])
	})

	t.Run("quantity clamped", func(t *testing.T) {
		req := validRequest()
		req.Items = []OrderItemRequest{{Name: "Blanket", Quantity: 0, ServiceType: "wash_only"}, {Name: "Pillow", Quantity: -2, ServiceType: "wash_only"}}

		order, err := newTestValidator().Validate(req)
		require.NoError(t, err)
		assert.Equal(t, 1, order.Items[0].Quantity)
		assert.Equal(t, 1, order.Items[1].Quantity)
		assert.Equal(t, "120", order.TotalAmount.String())
	})

	t.Run("missing service type defaults to wash_dry", func(t *testing.T) {
		req := validRequest()
		req.Items = []OrderItemRequest{{Name: "Blanket", Quantity: 2}}

		order, err := newTestValidator().Validate(req)
		require.NoError(t, err)
		assert.Equal(t, models.ServiceWashDry, order.Items[0].ServiceType)
		assert.Equal(t, models.ServiceWashDry, order.ServiceType)
		assert.Equal(t, "200", order.TotalAmount.String())
	})

	t.Run("unknown service type rejected", func(t *testing.T) {
		req := validRequest()
		req.Items[1].ServiceType = "ironing"

		_, err := newTestValidator().Validate(req)
		verr := requireValidationError(t, err)
		assert.True(t, verr.Has("item.1.service_type", CodeServiceTypeInvalid))
	})

	t.Run("mixed is not an item type", func(t *testing.T) {
		req := validRequest()
		req.Items[0].ServiceType = "mixed"

		_, err := newTestValidator().Validate(req)
		verr := requireValidationError(t, err)
		assert.True(t, verr.Has("item.0.service_type", CodeServiceTypeInvalid))
	})
}

func TestValidate_Dates(t *testing.T) {
	t.Run("pickup yesterday", func(t *testing.T) {
		req := validRequest()
		req.PickupDate = "2026-10-18"

		_, err := newTestValidator().Validate(req)
		verr := requireValidationError(t, err)
		assert.True(t, verr.Has("pickup_date", CodeDateInPast))
	})

	t.Run("pickup today in shop zone", func(t *testing.T) {
		// Already the 19th in Manila even though UTC is still on the 18th.
		req := validRequest()
		req.PickupDate = "2026-10-19"

		_, err := newTestValidator().Validate(req)
		assert.NoError(t, err)
	})

	t.Run("pickup date required", func(t *testing.T) {
		req := validRequest()
		req.PickupDate = ""
		req.DeliveryDate = "2026-10-25"

		_, err := newTestValidator().Validate(req)
		verr := requireValidationError(t, err)
		assert.True(t, verr.Has("pickup_date", CodeDateRequired))
	})

	t.Run("delivery clears pickup", func(t *testing.T) {
		req := validRequest()
		req.DeliveryMethod = "deliver"
		req.PickupDate = ""
		req.DeliveryDate = "2026-10-25"

		order, err := newTestValidator().Validate(req)
		require.NoError(t, err)
		assert.Nil(t, order.PickupDate)
		require.NotNil(t, order.DeliveryDate)
		assert.Equal(t, "2026-10-25", order.DeliveryDate.Format(dateLayout))
	})

	t.Run("pickup clears later delivery date", func(t *testing.T) {
		req := validRequest()
		req.DeliveryDate = "2026-10-30"

		order, err := newTestValidator().Validate(req)
		require.NoError(t, err)
		assert.NotNil(t, order.PickupDate)
		assert.Nil(t, order.DeliveryDate)
	})

	t.Run("delivery date in past", func(t *testing.T) {
		req := validRequest()
		req.DeliveryMethod = "deliver"
		req.PickupDate = ""
		req.DeliveryDate = "2025-01-01"

		_, err := newTestValidator().Validate(req)
		verr := requireValidationError(t, err)
		assert.True(t, verr.Has("delivery_date", CodeDateInPast))
	})

	t.Run("delivery not after pickup", func(t *testing.T) {
		req := validRequest()
		req.PickupDate = "2026-10-22"
		req.DeliveryDate = "2026-10-22"

		_, err := newTestValidator().Validate(req)
		verr := requireValidationError(t, err)
		assert.True(t, verr.Has("delivery_date", CodeDateOrderInvalid))
	})

	t.Run("unparseable date", func(t *testing.T) {
		req := validRequest()
		req.PickupDate = "next tuesday"

		_, err := newTestValidator().Validate(req)
		verr := requireValidationError(t, err)
		assert.True(t, verr.Has("pickup_date", CodeDateInvalid))
		assert.False(t, verr.Has("pickup_date", CodeDateRequired))
	})

	t.Run("RFC 3339 timestamp uses the shop day", func(t *testing.T) {
		req := validRequest()
		req.PickupDate = "2026-10-20T18:00:00Z" // 02:00 on the 21st in Manila

		order, err := newTestValidator().Validate(req)
		require.NoError(t, err)
		assert.Equal(t, "2026-10-21", order.PickupDate.Format(dateLayout))
	})

	t.Run("malformed date of the unused method is ignored", func(t *testing.T) {
		req := validRequest()
		req.DeliveryDate = "garbage"

		order, err := newTestValidator().Validate(req)
		require.NoError(t, err)
		assert.Nil(t, order.DeliveryDate)

		req = validRequest()
		req.DeliveryMethod = "deliver"
		req.PickupDate = "someday"
		req.DeliveryDate = "2026-10-25"

		order, err = newTestValidator().Validate(req)
		require.NoError(t, err)
		assert.Nil(t, order.PickupDate)
	})

	t.Run("malformed date of the chosen method", func(t *testing.T) {
		req := validRequest()
		req.DeliveryMethod = "deliver"
		req.DeliveryDate = "25/10/2026"

		_, err := newTestValidator().Validate(req)
		verr := requireValidationError(t, err)
		assert.True(t, verr.Has("delivery_date", CodeDateInvalid))
		assert.Len(t, verr.Errors, 1)
	})

	t.Run("unknown delivery method", func(t *testing.T) {
		req := validRequest()
		req.DeliveryMethod = "drone"

		_, err := newTestValidator().Validate(req)
		verr := requireValidationError(t, err)
		assert.True(t, verr.Has("delivery_method", CodeDeliveryMethodInvalid))
	})
}

func TestValidate_CollectsEveryError(t *testing.T) {
	req := CreateOrderRequest{
		CustomerName:   "",
		CustomerPhone:  "123",
		CustomerEmail:  "nope",
		DeliveryMethod: "pickup",
		PickupDate:     "2020-01-01",
	}

	_, err := newTestValidator().Validate(req)
	verr := requireValidationError(t, err)

	fields := verr.Fields()
	assert.Contains(t, fields, "customer_name")
	assert.Contains(t, fields, "customer_phone")
	assert.Contains(t, fields, "customer_email")
	assert.Contains(t, fields, "items")
	assert.Contains(t, fields, "pickup_date")
	assert.Contains(t, verr.Error(), "customer_phone")
}

func TestValidate_Idempotent(t *testing.T) {
	requests := map[string]CreateOrderRequest{
		"pickup": validRequest(),
		"deliver": {
			CustomerName:   "Juan dela Cruz",
			CustomerPhone:  "9171234567",
			Items:          []OrderItemRequest{{Name: "Curtains", Quantity: 0, ServiceType: ""}},
			DeliveryMethod: "deliver",
			DeliveryDate:   "2026-11-02",
		},
	}

	for name, req := range requests {
		t.Run(name, func(t *testing.T) {
			v := newTestValidator()
			first, err := v.Validate(req)
			require.NoError(t, err)

			second, err := v.Validate(RequestFromOrder(first))
			require.NoError(t, err)
			assert.Equal(t, first, second)
		})
	}
}

func TestFieldKey(t *testing.T) {
	tests := []struct {
		namespace string
		key       string
		index     int
	}{
		{"CreateOrderRequest.customer_name", "customer_name", -1},
		{"CreateOrderRequest.items", "items", -1},
		{"CreateOrderRequest.items[2].name", "item.2.name", 2},
		{"RegisterRequest.password_confirmation", "password_confirmation", -1},
	}
	for _, tt := range tests {
		key, index := fieldKey(tt.namespace)
		assert.Equal(t, tt.key, key, tt.namespace)
		assert.Equal(t, tt.index, index, tt.namespace)
	}
}
