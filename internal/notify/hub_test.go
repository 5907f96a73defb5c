package notify

import (
	"encoding/json"
	"testing"
	"time"
)

func receiveEvent(t *testing.T, sub *Subscription) Event {
	t.Helper()
	select {
	case payload := <-sub.Events():
		var ev Event
		if err := json.Unmarshal(payload, &ev); err != nil {
			t.Fatalf("malformed payload %q: %v", payload, err)
		}
		return ev
	case <-time.After(time.Second):
		t.Fatal("expected a queued event")
		return Event{}
	}
}

func TestHubBroadcastDeliversToSubscriber(t *testing.T) {
	hub := NewHub(4)
	sub := hub.Subscribe("lab1")
	defer hub.Unsubscribe(sub)

	if err := hub.Broadcast("lab1", ParameterValuesChanged([]string{"temperature"})); err != nil {
		t.Fatalf("broadcast failed: %v", err)
	}

	ev := receiveEvent(t, sub)
	if ev.Type != EventTypeParameterValuesChanged {
		t.Fatalf("unexpected event type %q", ev.Type)
	}
	if len(ev.Parameters) != 1 || ev.Parameters[0] != "temperature" {
		t.Fatalf("unexpected parameters: %v", ev.Parameters)
	}
}

func TestHubBroadcastIsolatesProjects(t *testing.T) {
	hub := NewHub(4)
	lab1 := hub.Subscribe("lab1")
	lab2 := hub.Subscribe("lab2")
	defer hub.Unsubscribe(lab1)
	defer hub.Unsubscribe(lab2)

	hub.Broadcast("lab1", ParameterValuesChanged([]string{"ph"}))

	receiveEvent(t, lab1)

	select {
	case payload := <-lab2.Events():
		t.Fatalf("lab2 must not receive lab1 broadcasts, got %q", payload)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHubBroadcastWithoutSubscribersIsNoOp(t *testing.T) {
	hub := NewHub(4)

	if err := hub.Broadcast("lab1", ParameterValuesChanged([]string{"temperature"})); err != nil {
		t.Fatalf("broadcast failed: %v", err)
	}
	if hub.HasProject("lab1") {
		t.Fatal("broadcast must not create a registry entry")
	}
}

func TestHubSlowSubscriberDropsWithoutAffectingOthers(t *testing.T) {
	hub := NewHub(2)
	slow := hub.Subscribe("lab1")
	fast := hub.Subscribe("lab1")
	defer hub.Unsubscribe(slow)
	defer hub.Unsubscribe(fast)

	// Fill both queues, then keep broadcasting while only fast drains.
	for i := 0; i < 5; i++ {
		hub.Broadcast("lab1", ParameterValuesChanged([]string{"temperature"}))
		receiveEvent(t, fast)
	}

	// slow kept only its queue capacity; the rest were dropped.
	drained := 0
	for {
		select {
		case <-slow.Events():
			drained++
			continue
		default:
		}
		break
	}
	if drained != 2 {
		t.Fatalf("expected slow subscriber to hold exactly 2 messages, got %d", drained)
	}

	// The stalled subscriber stays registered; only unsubscribe removes it.
	if got := hub.SubscriberCount("lab1"); got != 2 {
		t.Fatalf("expected 2 subscribers, got %d", got)
	}
}

func TestHubUnsubscribeIsIdempotentAndPrunesEmptyProjects(t *testing.T) {
	hub := NewHub(4)
	first := hub.Subscribe("lab1")
	second := hub.Subscribe("lab1")

	hub.Unsubscribe(first)
	hub.Unsubscribe(first) // no-op

	if got := hub.SubscriberCount("lab1"); got != 1 {
		t.Fatalf("expected 1 subscriber after double unsubscribe, got %d", got)
	}

	hub.Unsubscribe(second)

	if hub.HasProject("lab1") {
		t.Fatal("last unsubscribe must remove the project entry")
	}

	// A broadcast with nobody attached stays a no-op and leaves no residue.
	hub.Broadcast("lab1", ParameterValuesChanged([]string{"temperature"}))
	if hub.HasProject("lab1") {
		t.Fatal("broadcast after teardown must not recreate the entry")
	}
}

func TestHubUnsubscribeClosesQueue(t *testing.T) {
	hub := NewHub(4)
	sub := hub.Subscribe("lab1")
	hub.Unsubscribe(sub)

	select {
	case _, ok := <-sub.Events():
		if ok {
			t.Fatal("expected closed channel, got a message")
		}
	case <-time.After(time.Second):
		t.Fatal("expected channel to be closed")
	}
}

func TestHubConcurrentSubscribeBroadcastUnsubscribe(t *testing.T) {
	hub := NewHub(4)
	done := make(chan struct{})

	go func() {
		defer close(done)
		for i := 0; i < 200; i++ {
			hub.Broadcast("lab1", ParameterValuesChanged([]string{"temperature"}))
		}
	}()

	for i := 0; i < 100; i++ {
		sub := hub.Subscribe("lab1")
		hub.Unsubscribe(sub)
	}

	<-done

	if hub.SubscriberCount("lab1") != 0 {
		t.Fatal("expected no subscribers to survive")
	}
}
