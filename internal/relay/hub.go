package relay

import (
	"encoding/json"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog/log"
)

// EventCodeUpdate carries the full buffer text of the sender
const EventCodeUpdate = "codeUpdate"

// Event is the JSON envelope of every websocket frame
type Event struct {
	Event string `json:"event"`
	Data  string `json:"data"`
}

// Publisher receives every locally originated update, e.g. to forward it to
// other relay processes. It must not block.
type Publisher interface {
	Publish(senderID, code string)
}

// Participant is one connected realtime session
type Participant struct {
	ID        string
	send      chan []byte
	connected atomic.Bool
}

func NewParticipant(id string, queueSize int) *Participant {
	p := &Participant{
		ID:   id,
		send: make(chan []byte, queueSize),
	}
	p.connected.Store(true)
	return p
}

// Messages is closed once the participant leaves the hub
func (p *Participant) Messages() <-chan []byte {
	return p.send
}

func (p *Participant) Connected() bool {
	return p.connected.Load()
}

func (p *Participant) enqueue(msg []byte) bool {
	select {
	case p.send <- msg:
		return true
	default:
		return false
	}
}

// Hub fans every code update out to all other connected participants.
// It keeps no history: whoever is not registered at broadcast time never sees the update.
type Hub struct {
	mu           sync.RWMutex
	participants map[string]*Participant
	publisher    Publisher
}

func NewHub() *Hub {
	return &Hub{
		participants: make(map[string]*Participant),
	}
}

// SetPublisher must be called before the hub starts serving
func (h *Hub) SetPublisher(p Publisher) {
	h.mu.Lock()
	h.publisher = p
	h.mu.Unlock()
}

func (h *Hub) Register(p *Participant) {
	h.mu.Lock()
	h.participants[p.ID] = p
	count := len(h.participants)
	h.mu.Unlock()

	metricParticipants.Set(float64(count))
	log.Info().Str("participant", p.ID).Int("participants", count).Msg("a user connected")
}

// Unregister is idempotent; the participant's queue is closed exactly once
func (h *Hub) Unregister(p *Participant) {
	h.mu.Lock()
	current, ok := h.participants[p.ID]
	if ok && current == p {
		delete(h.participants, p.ID)
		p.connected.Store(false)
		close(p.send)
	}
	count := len(h.participants)
	h.mu.Unlock()

	if ok {
		metricParticipants.Set(float64(count))
		log.Info().Str("participant", p.ID).Int("participants", count).Msg("user disconnected")
	}
}

func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.participants)
}

// Broadcast relays code from sender to every other local participant and
// hands it to the publisher. The sender never gets its own update back.
func (h *Hub) Broadcast(senderID, code string) {
	msg, err := encodeCodeUpdate(code)
	if err != nil {
		log.Error().Err(err).Msg("failed to encode code update")
		return
	}

	h.mu.RLock()
	publisher := h.publisher
	h.fanOut(senderID, msg)
	h.mu.RUnlock()

	metricUpdates.WithLabelValues("local").Inc()
	if publisher != nil {
		publisher.Publish(senderID, code)
	}
}

// DeliverRemote relays an update that originated in another relay process
// to every local participant.
func (h *Hub) DeliverRemote(code string) {
	msg, err := encodeCodeUpdate(code)
	if err != nil {
		log.Error().Err(err).Msg("failed to encode remote code update")
		return
	}

	h.mu.RLock()
	h.fanOut("", msg)
	h.mu.RUnlock()

	metricUpdates.WithLabelValues("remote").Inc()
}

// fanOut must be called with h.mu held for reading
func (h *Hub) fanOut(skipID string, msg []byte) {
	for id, p := range h.participants {
		if id == skipID {
			continue
		}
		if !p.enqueue(msg) {
			// slow consumer, drop it rather than stall everybody else
			metricDropped.Inc()
			log.Warn().Str("participant", id).Msg("send queue full, disconnecting participant")
			go h.Unregister(p)
		}
	}
}

// Close disconnects every participant
func (h *Hub) Close() {
	h.mu.RLock()
	all := make([]*Participant, 0, len(h.participants))
	for _, p := range h.participants {
		all = append(all, p)
	}
	h.mu.RUnlock()

	for _, p := range all {
		h.Unregister(p)
	}
}

func encodeCodeUpdate(code string) ([]byte, error) {
	return json.Marshal(Event{Event: EventCodeUpdate, Data: code})
}
