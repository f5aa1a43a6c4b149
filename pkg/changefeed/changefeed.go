package changefeed

import (
	"context"
	"encoding/json"

	"engagehub/pkg/rediskey"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Tables carrying a change feed.
const (
	TableUsers         = "users"
	TableCampaigns     = "campaigns"
	TableSubmissions   = "submissions"
	TableNotifications = "notifications"
)

type Op string

const (
	OpInsert Op = "INSERT"
	OpUpdate Op = "UPDATE"
	OpDelete Op = "DELETE"
)

// Event is one row change on a table. Delivery is at-least-once and
// unordered; consumers re-derive their view on each event.
type Event struct {
	Table string          `json:"table"`
	Op    Op              `json:"op"`
	Row   json.RawMessage `json:"row"`
}

var Module = fx.Module("changefeed",
	fx.Provide(NewPublisher, NewSubscriber),
)

type Publisher struct {
	rdb *redis.Client
}

func NewPublisher(rdb *redis.Client) *Publisher {
	return &Publisher{rdb: rdb}
}

// Publish fans the event out to every subscriber of the table's channel.
// A feed failure never fails the write that produced it.
func (p *Publisher) Publish(ctx context.Context, table string, op Op, row any) {
	payload, err := json.Marshal(row)
	if err != nil {
		zap.L().Error("changefeed: failed to marshal row", zap.String("table", table), zap.Error(err))
		return
	}

	event := Event{Table: table, Op: op, Row: payload}
	b, err := json.Marshal(event)
	if err != nil {
		zap.L().Error("changefeed: failed to marshal event", zap.String("table", table), zap.Error(err))
		return
	}

	if err := p.rdb.Publish(ctx, rediskey.BuildFeedChannel(table), b).Err(); err != nil {
		zap.L().Error("changefeed: failed to publish", zap.String("table", table), zap.Error(err))
	}
}

type Subscriber struct {
	rdb *redis.Client
}

func NewSubscriber(rdb *redis.Client) *Subscriber {
	return &Subscriber{rdb: rdb}
}

// Subscribe returns a channel of events for one table. The channel closes
// when ctx is cancelled; callers resubscribe to restart the stream.
func (s *Subscriber) Subscribe(ctx context.Context, table string) (<-chan Event, error) {
	pubsub := s.rdb.Subscribe(ctx, rediskey.BuildFeedChannel(table))
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, err
	}

	out := make(chan Event)
	go func() {
		defer close(out)
		defer pubsub.Close()

		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var event Event
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					zap.L().Warn("changefeed: dropping malformed event", zap.Error(err))
					continue
				}
				select {
				case out <- event:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}
