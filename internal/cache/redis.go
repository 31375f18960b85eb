package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	InvoiceStatsKeyFmt = "invoice:stats:%d"
	SettingsKeyFmt     = "settings:invoice:%d"
)

var client *redis.Client

// Init initializes the Redis connection. The server degrades to
// uncached operation when Redis is unreachable.
func Init() error {
	host := os.Getenv("REDIS_HOST")
	if host == "" {
		host = "redis"
	}
	port := os.Getenv("REDIS_PORT")
	if port == "" {
		port = "6379"
	}

	client = redis.NewClient(&redis.Options{
		Addr:     host + ":" + port,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		client = nil
		return err
	}
	return nil
}

// GetClient returns the Redis client
func GetClient() *redis.Client {
	return client
}

// hashCredentials creates a hash of email+password for cache key
func hashCredentials(email, password string) string {
	h := sha256.New()
	h.Write([]byte(email + ":" + password))
	return "auth:" + hex.EncodeToString(h.Sum(nil))[:32]
}

// GetCachedAuth checks if credentials are cached and valid
func GetCachedAuth(ctx context.Context, email, password string) (int64, bool) {
	if client == nil {
		return 0, false
	}
	key := hashCredentials(email, password)
	userID, err := client.Get(ctx, key).Int64()
	if err != nil {
		return 0, false
	}
	return userID, true
}

// CacheAuth caches valid credentials for 15 minutes
func CacheAuth(ctx context.Context, email, password string, userID int64) {
	if client == nil {
		return
	}
	key := hashCredentials(email, password)
	client.Set(ctx, key, userID, 15*time.Minute)
}

// InvalidateAuth removes cached auth for a user (on password change)
func InvalidateAuth(ctx context.Context, email, password string) {
	if client == nil {
		return
	}
	key := hashCredentials(email, password)
	client.Del(ctx, key)
}

// GetCachedInvoiceStats returns cached dashboard stats for a user if available
func GetCachedInvoiceStats(ctx context.Context, userID int) ([]byte, bool) {
	if client == nil {
		return nil, false
	}
	data, err := client.Get(ctx, fmt.Sprintf(InvoiceStatsKeyFmt, userID)).Bytes()
	if err != nil {
		return nil, false
	}
	return data, true
}

// CacheInvoiceStats caches dashboard stats for 2 minutes
func CacheInvoiceStats(ctx context.Context, userID int, data []byte) {
	if client == nil {
		return
	}
	client.Set(ctx, fmt.Sprintf(InvoiceStatsKeyFmt, userID), data, 2*time.Minute)
}

// InvalidateInvoiceStats clears dashboard stats after any invoice write
func InvalidateInvoiceStats(ctx context.Context, userID int) {
	if client == nil {
		return
	}
	client.Del(ctx, fmt.Sprintf(InvoiceStatsKeyFmt, userID))
}

// GetCachedSettings returns cached invoice settings for a user if available
func GetCachedSettings(ctx context.Context, userID int) ([]byte, bool) {
	if client == nil {
		return nil, false
	}
	data, err := client.Get(ctx, fmt.Sprintf(SettingsKeyFmt, userID)).Bytes()
	if err != nil {
		return nil, false
	}
	return data, true
}

// CacheSettings caches invoice settings for 10 minutes
func CacheSettings(ctx context.Context, userID int, data []byte) {
	if client == nil {
		return
	}
	client.Set(ctx, fmt.Sprintf(SettingsKeyFmt, userID), data, 10*time.Minute)
}

// InvalidateSettings clears cached settings after an update or a number
// assignment, since assignment advances next_number
func InvalidateSettings(ctx context.Context, userID int) {
	if client == nil {
		return
	}
	client.Del(ctx, fmt.Sprintf(SettingsKeyFmt, userID))
}

// Close closes the Redis connection
func Close() {
	if client != nil {
		client.Close()
	}
}
