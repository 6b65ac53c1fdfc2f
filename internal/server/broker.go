package server

import (
	"encoding/json"
	"sync"
	"time"
)

// Event is the envelope published to game subscribers.
type Event struct {
	Type      string    `json:"type"`
	Payload   any       `json:"payload,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Broker is an in-process pub/sub for real-time events, keyed by game
// ID. Publication is fire-and-forget: slow subscribers drop events and
// a publish can never fail or delay the mutation that triggered it.
type Broker struct {
	mu   sync.RWMutex
	subs map[string]map[chan []byte]struct{}
}

func NewBroker() *Broker {
	return &Broker{
		subs: make(map[string]map[chan []byte]struct{}),
	}
}

// Subscribe returns a channel that receives JSON-encoded events for
// the given game.
func (b *Broker) Subscribe(gameID string) chan []byte {
	ch := make(chan []byte, 16)
	b.mu.Lock()
	if b.subs[gameID] == nil {
		b.subs[gameID] = make(map[chan []byte]struct{})
	}
	b.subs[gameID][ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes a channel from the game's subscribers.
func (b *Broker) Unsubscribe(gameID string, ch chan []byte) {
	b.mu.Lock()
	delete(b.subs[gameID], ch)
	if len(b.subs[gameID]) == 0 {
		delete(b.subs, gameID)
	}
	b.mu.Unlock()
}

// Publish sends an event to all subscribers of the given game. Called
// only after the transaction behind the event has committed.
func (b *Broker) Publish(gameID, eventType string, payload any) {
	data, _ := json.Marshal(Event{
		Type:      eventType,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	})
	b.mu.RLock()
	for ch := range b.subs[gameID] {
		select {
		case ch <- data:
		default:
			// Drop if subscriber is slow.
		}
	}
	b.mu.RUnlock()
}
