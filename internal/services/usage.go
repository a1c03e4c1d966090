package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/prompthive/prompthive/internal/config"
	"github.com/prompthive/prompthive/internal/models"
	"github.com/prompthive/prompthive/pkg/logger"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// UsageTracker enforces per-user daily quotas on gated actions. The check
// must run before the gated work (in particular before any billable
// completion-API call): a denied check never triggers external work.
//
// Counters reset on the UTC calendar-day boundary.
type UsageTracker interface {
	// CheckAndIncrement consumes one slot if count < limit and reports
	// whether the action is allowed. A denied call leaves the counter
	// unchanged.
	CheckAndIncrement(ctx context.Context, userID uint, actionKey string, limit int) (bool, error)
	// Count returns today's consumed count without mutating it.
	Count(ctx context.Context, userID uint, actionKey string) (int, error)
}

// NewUsageTracker picks the Redis backend when Redis is enabled, otherwise
// the database backend.
func NewUsageTracker(cfg *config.RedisConfig, db *gorm.DB) UsageTracker {
	if cfg != nil && cfg.Enabled {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		})
		if err := client.Ping(context.Background()).Err(); err == nil {
			logger.Infof("[Usage] Redis usage tracker at %s", cfg.Addr)
			return NewRedisUsageTracker(client)
		}
		logger.Warnf("[Usage] Redis unavailable, falling back to database tracker")
	}
	return NewDBUsageTracker(db)
}

// usageDay returns the current UTC day bucket.
func usageDay(now time.Time) string {
	return now.UTC().Format("2006-01-02")
}

// --- Redis backend ---

// RedisUsageTracker keeps counters in Redis. INCR is atomic, so under
// concurrent requests at most limit-count calls win; an over-limit INCR is
// compensated with DECR, leaving the counter net unchanged.
type RedisUsageTracker struct {
	client *redis.Client
}

func NewRedisUsageTracker(client *redis.Client) *RedisUsageTracker {
	return &RedisUsageTracker{client: client}
}

func usageKey(userID uint, actionKey string, now time.Time) string {
	return fmt.Sprintf("usage:%s:%d:%s", usageDay(now), userID, actionKey)
}

func (t *RedisUsageTracker) CheckAndIncrement(ctx context.Context, userID uint, actionKey string, limit int) (bool, error) {
	if limit <= 0 {
		return false, nil
	}

	now := time.Now()
	key := usageKey(userID, actionKey, now)

	count, err := t.client.Incr(ctx, key).Result()
	if err != nil {
		return false, err
	}

	if count == 1 {
		// Key expires at the next UTC midnight; the window dies with the day.
		midnight := now.UTC().Truncate(24 * time.Hour).Add(24 * time.Hour)
		t.client.ExpireAt(ctx, key, midnight)
	}

	if count > int64(limit) {
		t.client.Decr(ctx, key)
		return false, nil
	}
	return true, nil
}

func (t *RedisUsageTracker) Count(ctx context.Context, userID uint, actionKey string) (int, error) {
	val, err := t.client.Get(ctx, usageKey(userID, actionKey, time.Now())).Int()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, err
	}
	return val, nil
}

// --- Database backend ---

// DBUsageTracker keeps counters in the usage_counters table. The increment
// is a conditional UPDATE (count < limit), so concurrent callers cannot
// race past the limit: the store serializes the writes and RowsAffected
// tells each caller whether it won a slot.
type DBUsageTracker struct {
	db *gorm.DB
}

func NewDBUsageTracker(db *gorm.DB) *DBUsageTracker {
	return &DBUsageTracker{db: db}
}

func (t *DBUsageTracker) CheckAndIncrement(ctx context.Context, userID uint, actionKey string, limit int) (bool, error) {
	if limit <= 0 {
		return false, nil
	}

	day := usageDay(time.Now())
	db := t.db.WithContext(ctx)

	res := db.Model(&models.UsageCounter{}).
		Where("user_id = ? AND action_key = ? AND day = ? AND count < ?", userID, actionKey, day, limit).
		UpdateColumn("count", gorm.Expr("count + 1"))
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected > 0 {
		return true, nil
	}

	// No row to increment: either first use today or already at the limit.
	var existing models.UsageCounter
	err := db.Where("user_id = ? AND action_key = ? AND day = ?", userID, actionKey, day).
		First(&existing).Error
	if err == nil {
		return false, nil // at the limit
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}

	counter := models.UsageCounter{UserID: userID, ActionKey: actionKey, Day: day, Count: 1}
	if err := db.Create(&counter).Error; err != nil {
		// A concurrent first use won the insert; retry the conditional
		// update once against the now-existing row.
		if isUniqueViolation(err) {
			retry := db.Model(&models.UsageCounter{}).
				Where("user_id = ? AND action_key = ? AND day = ? AND count < ?", userID, actionKey, day, limit).
				UpdateColumn("count", gorm.Expr("count + 1"))
			if retry.Error != nil {
				return false, retry.Error
			}
			return retry.RowsAffected > 0, nil
		}
		return false, err
	}
	return true, nil
}

func (t *DBUsageTracker) Count(ctx context.Context, userID uint, actionKey string) (int, error) {
	var counter models.UsageCounter
	err := t.db.WithContext(ctx).
		Where("user_id = ? AND action_key = ? AND day = ?", userID, actionKey, usageDay(time.Now())).
		First(&counter).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return counter.Count, nil
}

// PurgeBefore deletes counter rows older than the given day, for the
// nightly cleanup job.
func (t *DBUsageTracker) PurgeBefore(day string) (int64, error) {
	res := t.db.Where("day < ?", day).Delete(&models.UsageCounter{})
	return res.RowsAffected, res.Error
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate")
}
