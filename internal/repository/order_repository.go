package repository

import (
	"context"
	"fmt"
	"time"

	"washnet/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, id uint) (*models.Order, error)
	GetAll(ctx context.Context, status models.OrderStatus) ([]models.Order, error)
	SearchByCustomerName(ctx context.Context, name string) ([]models.Order, error)
	UpdateStatus(ctx context.Context, id uint, next models.OrderStatus, changedBy uint) (*models.OrderStatusLog, error)
	GetStatusLog(ctx context.Context, orderID uint) ([]models.OrderStatusLog, error)
	CountByStatus(ctx context.Context) (map[models.OrderStatus]int64, error)
	CountCreatedBetween(ctx context.Context, start, end time.Time) (int64, error)
	Revenue(ctx context.Context) (decimal.Decimal, error)
	EmployeeActivity(ctx context.Context) ([]models.EmployeeActivity, error)
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

// Create inserts the order and its items in one transaction.
func (r *orderRepository) Create(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *orderRepository) GetByID(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	err := r.withItems(ctx).First(&order, id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) GetAll(ctx context.Context, status models.OrderStatus) ([]models.Order, error) {
	var orders []models.Order
	query := r.withItems(ctx)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	err := query.Order("created_at DESC, id DESC").Find(&orders).Error
	return orders, err
}

func (r *orderRepository) SearchByCustomerName(ctx context.Context, name string) ([]models.Order, error) {
	var orders []models.Order
	err := r.withItems(ctx).
		Where("LOWER(customer_name) = LOWER(?)", name).
		Order("created_at DESC, id DESC").
		Find(&orders).Error
	return orders, err
}

// UpdateStatus moves the order to next and appends a status log entry. The
// row is locked for the duration of the transaction so concurrent updates
// are checked against the committed status.
func (r *orderRepository) UpdateStatus(ctx context.Context, id uint, next models.OrderStatus, changedBy uint) (*models.OrderStatusLog, error) {
	var entry *models.OrderStatusLog
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&order, id).Error; err != nil {
			return err
		}

		from := order.Status
		if !from.CanTransitionTo(next) {
			return fmt.Errorf("%w: %s -> %s", models.ErrInvalidTransition, from, next)
		}

		if err := tx.Model(&order).Update("status", next).Error; err != nil {
			return err
		}

		entry = &models.OrderStatusLog{
			OrderID:    order.ID,
			FromStatus: from,
			ToStatus:   next,
			ChangedBy:  changedBy,
			ChangedAt:  time.Now().UTC(),
		}
		return tx.Create(entry).Error
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

func (r *orderRepository) GetStatusLog(ctx context.Context, orderID uint) ([]models.OrderStatusLog, error) {
	var entries []models.OrderStatusLog
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("changed_at ASC, id ASC").
		Find(&entries).Error
	return entries, err
}

func (r *orderRepository) CountByStatus(ctx context.Context) (map[models.OrderStatus]int64, error) {
	var rows []struct {
		Status models.OrderStatus
		Count  int64
	}
	err := r.db.WithContext(ctx).Model(&models.Order{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[models.OrderStatus]int64, len(models.OrderStatuses))
	for _, status := range models.OrderStatuses {
		counts[status] = 0
	}
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

func (r *orderRepository) CountCreatedBetween(ctx context.Context, start, end time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("created_at >= ? AND created_at < ?", start.UTC(), end.UTC()).
		Count(&count).Error
	return count, err
}

// Revenue sums the totals of every order that was not cancelled. The sum is
// done in Go so the result stays exact whatever the driver returns.
func (r *orderRepository) Revenue(ctx context.Context) (decimal.Decimal, error) {
	var totals []decimal.Decimal
	err := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("status <> ?", models.OrderCancelled).
		Pluck("total_amount", &totals).Error
	if err != nil {
		return decimal.Zero, err
	}

	sum := decimal.Zero
	for _, total := range totals {
		sum = sum.Add(total)
	}
	return sum, nil
}

// EmployeeActivity counts orders created and status changes made by every
// active user.
func (r *orderRepository) EmployeeActivity(ctx context.Context) ([]models.EmployeeActivity, error) {
	var rows []models.EmployeeActivity
	err := r.db.WithContext(ctx).Model(&models.User{}).
		Select(`users.id AS user_id, users.name, users.email, users.role,
			(SELECT COUNT(*) FROM orders WHERE orders.created_by = users.id) AS orders_created,
			(SELECT COUNT(*) FROM order_status_logs WHERE order_status_logs.changed_by = users.id) AS status_changes`).
		Where("users.is_active = ?", true).
		Order("users.id ASC").
		Scan(&rows).Error
	return rows, err
}

func (r *orderRepository) withItems(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("id ASC")
	})
}
