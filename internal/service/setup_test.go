package service

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"receipts/internal/auth"
	"receipts/internal/cache"
	"receipts/internal/database"
	"receipts/internal/events"
	"receipts/internal/model"
	"receipts/internal/repository"

	"github.com/alicebob/miniredis/v2"
	"github.com/glebarez/sqlite"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))
	return db
}

func setupCache(t *testing.T) (*cache.RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	return cache.NewRedisCache(client), mr
}

// countingUsers records how often the user lookup reaches the database
type countingUsers struct {
	repository.UserRepository
	byLogin atomic.Int32
}

func (c *countingUsers) GetByLogin(ctx context.Context, login string) (*model.User, error) {
	c.byLogin.Add(1)
	return c.UserRepository.GetByLogin(ctx, login)
}

type recordingPublisher struct {
	events []events.ReceiptCreated
}

func (p *recordingPublisher) Publish(_ context.Context, e events.ReceiptCreated) error {
	p.events = append(p.events, e)
	return nil
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func createTestUser(t *testing.T, db *gorm.DB, login string) *model.User {
	t.Helper()
	hash, err := auth.HashPassword("secretP1")
	require.NoError(t, err)
	u := &model.User{Name: "Tester", Login: login, Password: hash}
	require.NoError(t, repository.NewUserRepository(db).Create(context.Background(), u))
	return u
}
