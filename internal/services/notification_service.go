package services

import (
	"context"
	"fmt"

	"washnet/internal/models"
	"washnet/pkg/whatsapp"
)

// Notifier tells customers about changes to their orders.
type Notifier interface {
	NotifyOrderReady(ctx context.Context, order *models.Order) error
}

type whatsappNotifier struct {
	client *whatsapp.Client
}

func NewWhatsAppNotifier(client *whatsapp.Client) Notifier {
	return &whatsappNotifier{client: client}
}

func (n *whatsappNotifier) NotifyOrderReady(ctx context.Context, order *models.Order) error {
	return n.client.SendTextMessage(ctx, order.CustomerPhone, ReadyMessage(order))
}

// ReadyMessage is the text sent when an order reaches the ready state.
func ReadyMessage(order *models.Order) string {
	if order.DeliveryMethod == models.DeliveryDeliver {
		msg := fmt.Sprintf("Hi %s, your laundry order %s is ready and will be delivered", order.CustomerName, order.OrderNumber)
		if order.DeliveryDate != nil {
			msg += " on " + order.DeliveryDate.Format("Jan 2, 2006")
		}
		return msg + fmt.Sprintf(". Total: PHP %s. Thank you for choosing WASHNET!", order.TotalAmount.StringFixed(2))
	}
	return fmt.Sprintf("Hi %s, your laundry order %s is ready for pickup. Total: PHP %s. Thank you for choosing WASHNET!",
		order.CustomerName, order.OrderNumber, order.TotalAmount.StringFixed(2))
}

type noopNotifier struct{}

// NewNoopNotifier returns a Notifier that drops every message.
func NewNoopNotifier() Notifier {
	return noopNotifier{}
}

func (noopNotifier) NotifyOrderReady(context.Context, *models.Order) error {
	return nil
}
