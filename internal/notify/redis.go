package notify

import (
	"context"
	"encoding/json"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/abhisek/skillpath/internal/logging"
)

// DefaultChannel is the pub/sub channel notifications are published on.
const DefaultChannel = "skillpath:achievements"

// RedisPublisher publishes notifications as JSON on a Redis channel.
type RedisPublisher struct {
	log     *logging.Logger
	rdb     *goredis.Client
	channel string
}

func NewRedisPublisher(rdb *goredis.Client, channel string, log *logging.Logger) *RedisPublisher {
	if channel == "" {
		channel = DefaultChannel
	}
	return &RedisPublisher{log: log.With("service", "RedisPublisher"), rdb: rdb, channel: channel}
}

func (p *RedisPublisher) Publish(ctx context.Context, n Notification) error {
	raw, err := json.Marshal(n)
	if err != nil {
		return err
	}
	if err := p.rdb.Publish(ctx, p.channel, raw).Err(); err != nil {
		return fmt.Errorf("publish %s to %s: %w", n.AchievementID, p.channel, err)
	}
	p.log.Debug("notification published", "channel", p.channel, "achievement", n.AchievementID)
	return nil
}

// Subscribe forwards notifications from the channel to onMsg until ctx is
// done.
func (p *RedisPublisher) Subscribe(ctx context.Context, onMsg func(Notification)) error {
	sub := p.rdb.Subscribe(ctx, p.channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("redis subscribe: %w", err)
	}

	go func() {
		defer sub.Close()
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case m, ok := <-ch:
				if !ok {
					return
				}
				var n Notification
				if err := json.Unmarshal([]byte(m.Payload), &n); err != nil {
					p.log.Warn("bad notification payload", "error", err)
					continue
				}
				onMsg(n)
			}
		}
	}()
	return nil
}
