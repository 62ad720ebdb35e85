package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"washnet/internal/metrics"
	"washnet/internal/models"
	"washnet/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type OrderService interface {
	CreateOrder(ctx context.Context, req CreateOrderRequest, createdBy uint) (*models.Order, error)
	GetOrderByID(ctx context.Context, id uint) (*models.Order, error)
	GetAllOrders(ctx context.Context, status string) ([]models.Order, error)
	SearchByCustomerName(ctx context.Context, name string) ([]models.Order, error)
	UpdateStatus(ctx context.Context, id uint, status string, changedBy uint) (*models.Order, error)
	GetStatusHistory(ctx context.Context, id uint) ([]models.OrderStatusLog, error)
	GetStatistics(ctx context.Context) (*OrderStatistics, error)
	GetEmployeeOverview(ctx context.Context) ([]models.EmployeeActivity, error)
}

type OrderStatistics struct {
	TotalOrders int64                        `json:"total_orders"`
	ByStatus    map[models.OrderStatus]int64 `json:"by_status"`
	Revenue     decimal.Decimal              `json:"revenue"`
	OrdersToday int64                        `json:"orders_today"`
}

type orderService struct {
	orderRepo repository.OrderRepository
	validator *OrderValidator
	notifier  Notifier
	metrics   *metrics.Metrics
	location  *time.Location
	now       func() time.Time
}

func NewOrderService(
	orderRepo repository.OrderRepository,
	validator *OrderValidator,
	notifier Notifier,
	m *metrics.Metrics,
	location *time.Location,
) OrderService {
	if notifier == nil {
		notifier = NewNoopNotifier()
	}
	if location == nil {
		location = time.Local
	}
	return &orderService{
		orderRepo: orderRepo,
		validator: validator,
		notifier:  notifier,
		metrics:   m,
		location:  location,
		now:       time.Now,
	}
}

func (s *orderService) CreateOrder(ctx context.Context, req CreateOrderRequest, createdBy uint) (*models.Order, error) {
	order, err := s.validator.Validate(req)
	if err != nil {
		return nil, err
	}

	order.OrderNumber = s.newOrderNumber()
	order.CreatedBy = createdBy

	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	s.metrics.OrderCreated(string(order.ServiceType))
	slog.InfoContext(ctx, "order created",
		"order_id", order.ID,
		"order_number", order.OrderNumber,
		"service_type", order.ServiceType,
		"total_amount", order.TotalAmount.String(),
		"items", len(order.Items),
	)
	return order, nil
}

func (s *orderService) GetOrderByID(ctx context.Context, id uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return order, nil
}

func (s *orderService) GetAllOrders(ctx context.Context, status string) ([]models.Order, error) {
	filter := models.OrderStatus(strings.TrimSpace(status))
	if filter != "" && !filter.Valid() {
		verr := &ValidationError{}
		verr.Add("status", CodeStatusInvalid, fmt.Sprintf("Unknown status %q", status))
		return nil, verr
	}
	return s.orderRepo.GetAll(ctx, filter)
}

// SearchByCustomerName is the customer-facing lookup; names match
// case-insensitively after trimming.
func (s *orderService) SearchByCustomerName(ctx context.Context, name string) ([]models.Order, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		verr := &ValidationError{}
		verr.Add("customer_name", CodeNameRequired, "Please enter your name")
		return nil, verr
	}
	return s.orderRepo.SearchByCustomerName(ctx, name)
}

// UpdateStatus applies one lifecycle transition. Unknown target statuses are
// reported as invalid transitions as well.
func (s *orderService) UpdateStatus(ctx context.Context, id uint, status string, changedBy uint) (*models.Order, error) {
	next := models.OrderStatus(strings.TrimSpace(status))
	if !next.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, status)
	}

	entry, err := s.orderRepo.UpdateStatus(ctx, id, next, changedBy)
	if err != nil {
		return nil, mapNotFound(err)
	}

	s.metrics.StatusChanged(string(entry.FromStatus), string(entry.ToStatus))
	slog.InfoContext(ctx, "order status changed",
		"order_id", id,
		"from", entry.FromStatus,
		"to", entry.ToStatus,
		"changed_by", changedBy,
	)

	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err)
	}

	if next == models.OrderReady {
		if err := s.notifier.NotifyOrderReady(ctx, order); err != nil {
			slog.WarnContext(ctx, "failed to notify customer", "order_id", id, "error", err)
		}
	}
	return order, nil
}

func (s *orderService) GetStatusHistory(ctx context.Context, id uint) ([]models.OrderStatusLog, error) {
	if _, err := s.orderRepo.GetByID(ctx, id); err != nil {
		return nil, mapNotFound(err)
	}
	return s.orderRepo.GetStatusLog(ctx, id)
}

func (s *orderService) GetStatistics(ctx context.Context) (*OrderStatistics, error) {
	byStatus, err := s.orderRepo.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}

	revenue, err := s.orderRepo.Revenue(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to sum revenue: %w", err)
	}

	local := s.now().In(s.location)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, s.location)
	today, err := s.orderRepo.CountCreatedBetween(ctx, start, start.AddDate(0, 0, 1))
	if err != nil {
		return nil, fmt.Errorf("failed to count today's orders: %w", err)
	}

	stats := &OrderStatistics{
		ByStatus:    byStatus,
		Revenue:     revenue,
		OrdersToday: today,
	}
	for _, count := range byStatus {
		stats.TotalOrders += count
	}
	return stats, nil
}

func (s *orderService) GetEmployeeOverview(ctx context.Context) ([]models.EmployeeActivity, error) {
	activity, err := s.orderRepo.EmployeeActivity(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load employee activity: %w", err)
	}
	if activity == nil {
		activity = []models.EmployeeActivity{}
	}
	return activity, nil
}

// newOrderNumber returns a human-readable reference like WN-20261019-3F9A1C.
func (s *orderService) newOrderNumber() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return fmt.Sprintf("WN-%s-%s", s.now().In(s.location).Format("20060102"), suffix)
}

func mapNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrOrderNotFound
	}
	return err
}
