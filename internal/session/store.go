package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	keyPrefix = "checkout:session:"

	// TTL обновляется на каждой записи; по истечении сессия просто
	// отсутствует — никакой фоновой чистки не требуется.
	DefaultTTL = 7 * 24 * time.Hour
)

// CheckoutSession — прогресс многошагового чекаута. Одна активная
// сессия на холдера; last write wins.
type CheckoutSession struct {
	Step            string          `json:"step"`
	CartItems       json.RawMessage `json:"cart_items,omitempty"`
	CustomerData    json.RawMessage `json:"customer_data,omitempty"`
	ShippingAddress json.RawMessage `json:"shipping_address,omitempty"`
	ShippingOption  string          `json:"shipping_option,omitempty"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

type Store struct {
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

func NewStore(addr, password string, db int, log *zap.Logger) (*Store, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	log.Info("Redis connected successfully", zap.String("addr", addr))

	return &Store{client: rdb, ttl: DefaultTTL, log: log}, nil
}

func (s *Store) Close() error { return s.client.Close() }

// Put перезаписывает сессию холдера и сбрасывает TTL от момента записи.
func (s *Store) Put(ctx context.Context, holderID string, sess *CheckoutSession) error {
	sess.UpdatedAt = time.Now().UTC()
	payload, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, keyPrefix+holderID, payload, s.ttl).Err()
}

// Get возвращает (nil, nil), когда сессии нет или она истекла.
func (s *Store) Get(ctx context.Context, holderID string) (*CheckoutSession, error) {
	raw, err := s.client.Get(ctx, keyPrefix+holderID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var sess CheckoutSession
	if err := json.Unmarshal(raw, &sess); err != nil {
		s.log.Warn("corrupted checkout session dropped", zap.String("holder_id", holderID), zap.Error(err))
		_ = s.client.Del(ctx, keyPrefix+holderID).Err()
		return nil, nil
	}
	return &sess, nil
}

func (s *Store) Delete(ctx context.Context, holderID string) error {
	return s.client.Del(ctx, keyPrefix+holderID).Err()
}
