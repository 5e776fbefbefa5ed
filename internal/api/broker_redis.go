package api

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/pkg/errors"
	redis "github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"weightnav/internal/model"
)

// RedisBroker implements EventBroker over Redis Pub/Sub so every replica's
// stream clients see every solve.
type RedisBroker struct {
	rdb *redis.Client
	log *log.Entry

	mu   sync.Mutex
	subs map[chan model.SolutionEvent]*redis.PubSub
}

func NewRedisBroker(url string, logger *log.Entry) (*RedisBroker, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, errors.Wrap(err, "parse REDIS_URL")
	}
	rdb := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, errors.Wrap(err, "ping redis")
	}
	return &RedisBroker{
		rdb:  rdb,
		log:  logger.WithField("component", "redis-broker"),
		subs: map[chan model.SolutionEvent]*redis.PubSub{},
	}, nil
}

func (b *RedisBroker) Ping(ctx context.Context) error { return b.rdb.Ping(ctx).Err() }

func (b *RedisBroker) Close() error { return b.rdb.Close() }

func (b *RedisBroker) Subscribe(topic string) chan model.SolutionEvent {
	ch := make(chan model.SolutionEvent, 16)
	ctx := context.Background()
	ps := b.rdb.Subscribe(ctx, chanName(topic))
	// wait for the subscription so events published right after are not lost
	if _, err := ps.Receive(ctx); err != nil {
		b.log.WithError(err).Warn("subscribe")
	}
	b.mu.Lock()
	b.subs[ch] = ps
	b.mu.Unlock()
	go func() {
		defer close(ch)
		for msg := range ps.Channel() {
			var evt model.SolutionEvent
			if err := json.Unmarshal([]byte(msg.Payload), &evt); err != nil {
				b.log.WithError(err).Debug("drop malformed event")
				continue
			}
			select {
			case ch <- evt:
			default:
			}
		}
	}()
	return ch
}

// Unsubscribe closes the Redis subscription; ch is closed once its reader goroutine exits.
func (b *RedisBroker) Unsubscribe(_ string, ch chan model.SolutionEvent) {
	b.mu.Lock()
	ps, ok := b.subs[ch]
	delete(b.subs, ch)
	b.mu.Unlock()
	if ok {
		_ = ps.Close()
	}
}

func (b *RedisBroker) Publish(topic string, evt model.SolutionEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	data, err := json.Marshal(evt)
	if err != nil {
		return
	}
	if err := b.rdb.Publish(ctx, chanName(topic), data).Err(); err != nil {
		b.log.WithError(err).Warn("publish")
	}
}

func chanName(topic string) string { return "weightnav:" + topic }
