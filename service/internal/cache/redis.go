// Package cache holds the Redis-backed pieces of the server: the action
// history queue, live snapshots and move de-duplication.
package cache

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Rdb is the shared client. It stays nil when Redis is not configured and
// every caller must tolerate that.
var Rdb *redis.Client

var ErrNoClient = errors.New("cache: redis not configured")

// ConnectRedis dials addr and checks the connection.
func ConnectRedis(ctx context.Context, addr, password string) error {
	c := redis.NewClient(&redis.Options{Addr: addr, Password: password})
	if err := c.Ping(ctx).Err(); err != nil {
		c.Close()
		return fmt.Errorf("ping redis at %s: %w", addr, err)
	}
	Rdb = c
	logrus.WithField("addr", addr).Info("connected to redis")
	return nil
}

// Close releases the shared client.
func Close() {
	if Rdb != nil {
		Rdb.Close()
		Rdb = nil
	}
}
