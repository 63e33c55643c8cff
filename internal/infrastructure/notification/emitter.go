package notification

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	appcontract "github.com/contractflow/backend/internal/application/contract"
	"github.com/contractflow/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Notification is one delivered user notification row
type Notification struct {
	shared.BaseEntity
	UserID      uuid.UUID `gorm:"type:uuid;not null;index"`
	Type        string    `gorm:"size:50;not null"`
	Message     string    `gorm:"size:500;not null"`
	RelatedType string    `gorm:"size:50"`
	RelatedID   uuid.UUID `gorm:"type:uuid"`
	ReadAt      *time.Time
}

// TableName returns the database table name
func (Notification) TableName() string { return "notifications" }

// deliveryTimeout bounds one detached persist-and-publish round
const deliveryTimeout = 5 * time.Second

// Emitter persists notifications and pushes them onto a Redis channel for
// live delivery. Delivery runs on its own goroutine so the emitting service
// never waits on it; a failure is logged and swallowed, never surfaced.
type Emitter struct {
	db         *gorm.DB
	client     *redis.Client
	channel    string
	logger     *zap.Logger
	ownsClient bool
	inflight   sync.WaitGroup
}

// EmitterOption configures the emitter
type EmitterOption func(*Emitter)

// WithEmitterLogger sets the logger
func WithEmitterLogger(logger *zap.Logger) EmitterOption {
	return func(e *Emitter) {
		e.logger = logger
	}
}

// NewEmitter creates an emitter with its own Redis connection
func NewEmitter(db *gorm.DB, addr, password string, redisDB int, channel string, opts ...EmitterOption) (*Emitter, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       redisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}

	e := newEmitter(db, client, channel, opts...)
	e.ownsClient = true
	return e, nil
}

// NewEmitterWithClient creates an emitter reusing an existing Redis client
func NewEmitterWithClient(db *gorm.DB, client *redis.Client, channel string, opts ...EmitterOption) *Emitter {
	return newEmitter(db, client, channel, opts...)
}

func newEmitter(db *gorm.DB, client *redis.Client, channel string, opts ...EmitterOption) *Emitter {
	e := &Emitter{
		db:      db,
		client:  client,
		channel: channel,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// notificationMessage is the wire form pushed onto the Redis channel
type notificationMessage struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	Type        string    `json:"type"`
	Message     string    `json:"message"`
	RelatedType string    `json:"related_type,omitempty"`
	RelatedID   uuid.UUID `json:"related_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Emit implements the application Notifier contract. The write and publish
// are handed off to a delivery goroutine detached from the caller's
// cancellation, so a slow database or Redis never delays a transition.
func (e *Emitter) Emit(ctx context.Context, userID uuid.UUID, notifType, message, relatedType string, relatedID uuid.UUID) {
	n := &Notification{
		BaseEntity:  shared.NewBaseEntity(),
		UserID:      userID,
		Type:        notifType,
		Message:     message,
		RelatedType: relatedType,
		RelatedID:   relatedID,
	}

	e.inflight.Add(1)
	go func() {
		defer e.inflight.Done()
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), deliveryTimeout)
		defer cancel()
		e.deliver(ctx, n)
	}()
}

// deliver writes the row and pushes the live message
func (e *Emitter) deliver(ctx context.Context, n *Notification) {
	if err := e.db.WithContext(ctx).Create(n).Error; err != nil {
		e.logger.Warn("failed to persist notification",
			zap.String("user_id", n.UserID.String()),
			zap.String("type", n.Type),
			zap.Error(err))
		return
	}

	if e.client == nil {
		return
	}

	data, err := json.Marshal(notificationMessage{
		ID:          n.ID,
		UserID:      n.UserID,
		Type:        n.Type,
		Message:     n.Message,
		RelatedType: n.RelatedType,
		RelatedID:   n.RelatedID,
		CreatedAt:   n.CreatedAt,
	})
	if err != nil {
		e.logger.Warn("failed to encode notification", zap.Error(err))
		return
	}

	if err := e.client.Publish(ctx, e.channel, data).Err(); err != nil {
		e.logger.Warn("failed to publish notification",
			zap.String("channel", e.channel),
			zap.Error(err))
	}
}

// Close drains in-flight deliveries and releases the Redis connection when
// the emitter owns it
func (e *Emitter) Close() error {
	e.inflight.Wait()
	if e.ownsClient && e.client != nil {
		return e.client.Close()
	}
	return nil
}

// Ensure Emitter implements Notifier
var _ appcontract.Notifier = (*Emitter)(nil)
