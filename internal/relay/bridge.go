package relay

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	publishQueueSize = 1024
	publishTimeout   = 2 * time.Second
)

// bridgeMessage is what travels over the redis channel
type bridgeMessage struct {
	Origin string `json:"origin"`
	Sender string `json:"sender"`
	Code   string `json:"code"`
}

// Bridge links relay processes through redis pub/sub so participants
// connected to different instances still see each other's updates.
// Updates leave in the order they were published; there is still no
// ordering between different senders.
type Bridge struct {
	client     *redis.Client
	channel    string
	instanceID string
	outbound   chan []byte
}

func NewBridge(client *redis.Client, channel string) *Bridge {
	return &Bridge{
		client:     client,
		channel:    channel,
		instanceID: uuid.NewString(),
		outbound:   make(chan []byte, publishQueueSize),
	}
}

func (b *Bridge) InstanceID() string {
	return b.instanceID
}

// Publish is fire-and-forget: the update is queued for the single publish
// loop and dropped when the queue is full.
func (b *Bridge) Publish(senderID, code string) {
	payload, err := json.Marshal(bridgeMessage{Origin: b.instanceID, Sender: senderID, Code: code})
	if err != nil {
		metricPublishFailures.Inc()
		return
	}

	select {
	case b.outbound <- payload:
	default:
		metricPublishFailures.Inc()
		log.Warn().Str("participant", senderID).Msg("bridge queue full, dropping update")
	}
}

// Run publishes queued updates and delivers foreign ones to the hub until
// ctx is done. ready is closed once the subscription is live.
func (b *Bridge) Run(ctx context.Context, hub *Hub, ready chan<- struct{}) error {
	go b.publishLoop(ctx)
	return b.subscribe(ctx, hub, ready)
}

func (b *Bridge) publishLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case payload := <-b.outbound:
			pctx, cancel := context.WithTimeout(ctx, publishTimeout)
			err := b.client.Publish(pctx, b.channel, payload).Err()
			cancel()
			if err != nil {
				metricPublishFailures.Inc()
				log.Warn().Err(err).Str("channel", b.channel).Msg("failed to publish code update")
			}
		}
	}
}

func (b *Bridge) subscribe(ctx context.Context, hub *Hub, ready chan<- struct{}) error {
	pubsub := b.client.Subscribe(ctx, b.channel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s: %w", b.channel, err)
	}
	if ready != nil {
		close(ready)
	}
	log.Info().Str("channel", b.channel).Str("instance", b.instanceID).Msg("relay bridge subscribed")

	messages := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-messages:
			if !ok {
				return nil
			}

			var m bridgeMessage
			if err := json.Unmarshal([]byte(msg.Payload), &m); err != nil {
				log.Warn().Err(err).Msg("ignoring malformed bridge message")
				continue
			}
			// our own updates were already fanned out locally
			if m.Origin == b.instanceID {
				continue
			}
			hub.DeliverRemote(m.Code)
		}
	}
}
