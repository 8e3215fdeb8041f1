package services

import (
	"context"
	"time"
)

// CacheService interface for caching operations
type CacheService interface {
	// Basic operations
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)

	// Atomic operations
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) (bool, error)
	Increment(ctx context.Context, key string) (int64, error)

	// Set operations for unique collections
	SAdd(ctx context.Context, key string, members ...interface{}) error
	SMembers(ctx context.Context, key string) ([]string, error)

	// Health check
	Ping(ctx context.Context) error
	Close() error
}

// Cache key patterns for the application
const (
	// User cache keys
	UserCacheKeyPattern = "user:%s"

	// Entity review status cache: entity_type:entity_id
	StatusCacheKeyPattern = "review_status:%s:%s"

	// Pending review counts per reviewer
	PendingCountKeyPattern = "pending_reviews:%s"

	// Reminder dedup keys: entity_type:entity_id:reviewer_id. SetNX on
	// these keeps the worker from re-nagging a reviewer every poll.
	ReminderSentKeyPattern = "review_reminder:%s:%s:%s"

	// Unread notification counts
	UnreadCountKeyPattern = "unread_notifications:%s"
)

// Common cache durations
const (
	CacheShortTerm  = 5 * time.Minute
	CacheMediumTerm = 30 * time.Minute
	CacheLongTerm   = 2 * time.Hour
	CacheDay        = 24 * time.Hour
)
