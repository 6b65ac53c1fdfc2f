package server

import (
	"encoding/json"
	"testing"
)

func TestBrokerPublishReachesSubscribers(t *testing.T) {
	b := NewBroker()
	ch := b.Subscribe("g1")
	other := b.Subscribe("g2")
	defer b.Unsubscribe("g1", ch)
	defer b.Unsubscribe("g2", other)

	b.Publish("g1", "code_accepted", map[string]string{"teamName": "pumpkin"})

	select {
	case data := <-ch:
		var ev Event
		if err := json.Unmarshal(data, &ev); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if ev.Type != "code_accepted" {
			t.Errorf("type = %q, want code_accepted", ev.Type)
		}
	default:
		t.Fatal("subscriber received nothing")
	}

	select {
	case <-other:
		t.Fatal("event leaked to another game's subscriber")
	default:
	}
}

func TestBrokerDropsWhenSubscriberIsFull(t *testing.T) {
	b := NewBroker()
	ch := b.Subscribe("g1")
	defer b.Unsubscribe("g1", ch)

	// Overfill the buffered channel; Publish must not block.
	for i := 0; i < 100; i++ {
		b.Publish("g1", "tick", nil)
	}

	if got := len(ch); got != cap(ch) {
		t.Errorf("queued = %d, want full buffer %d", got, cap(ch))
	}
}
