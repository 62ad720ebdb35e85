package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"washnet/internal/database"
	"washnet/internal/models"
	"washnet/internal/redis"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:svc_%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := database.OpenSQLite(dsn)
	require.NoError(t, err)

	err = db.AutoMigrate(&models.User{}, &models.Invitation{}, &models.Order{}, &models.OrderItem{}, &models.OrderStatusLog{})
	require.NoError(t, err)

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

type memorySessions struct {
	mu       sync.Mutex
	sessions map[string]*redis.SessionData
}

func newMemorySessions() *memorySessions {
	return &memorySessions{sessions: make(map[string]*redis.SessionData)}
}

func (m *memorySessions) SetSession(_ context.Context, token string, data *redis.SessionData, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[token] = data
	return nil
}

func (m *memorySessions) GetSession(_ context.Context, token string) (*redis.SessionData, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.sessions[token]
	if !ok {
		return nil, redis.ErrSessionNotFound
	}
	return data, nil
}

func (m *memorySessions) DeleteSession(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, token)
	return nil
}

type recordingNotifier struct {
	mu     sync.Mutex
	orders []*models.Order
	err    error
}

func (n *recordingNotifier) NotifyOrderReady(_ context.Context, order *models.Order) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.orders = append(n.orders, order)
	return n.err
}
