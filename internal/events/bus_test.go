package events

import (
	"errors"
	"testing"
)

func TestBus_PublishOrder(t *testing.T) {
	bus := NewBus()
	var got []string
	bus.Subscribe(EventMatchPlayed, func(Event) error {
		got = append(got, "first")
		return errors.New("boom")
	})
	bus.Subscribe(EventMatchPlayed, func(Event) error {
		got = append(got, "second")
		return nil
	})
	bus.Subscribe(EventBetPlaced, func(Event) error {
		got = append(got, "bet")
		return nil
	})

	bus.Publish(New(EventMatchPlayed, "s1", MatchPlayedEvent{Home: "A", Away: "B"}))

	if len(got) != 2 || got[0] != "first" || got[1] != "second" {
		t.Fatalf("handlers ran as %v, want [first second]", got)
	}
}

func TestBus_SubscribeAll(t *testing.T) {
	bus := NewBus()
	seen := map[EventType]int{}
	bus.SubscribeAll(func(e Event) error {
		seen[e.Type]++
		return nil
	}, EventRoundGenerated, EventSlipCleared)

	bus.Publish(New(EventRoundGenerated, "s1", RoundGeneratedEvent{Round: 1}))
	bus.Publish(New(EventSlipCleared, "s1", SlipClearedEvent{}))
	bus.Publish(New(EventBetPlaced, "s1", BetPlacedEvent{}))

	if seen[EventRoundGenerated] != 1 || seen[EventSlipCleared] != 1 || seen[EventBetPlaced] != 0 {
		t.Errorf("unexpected dispatch counts %v", seen)
	}
}

func TestBus_NilPublish(t *testing.T) {
	var bus *Bus
	bus.Publish(New(EventMatchPlayed, "s1", nil))
}

func TestNew_StampsEvent(t *testing.T) {
	e := New(EventSessionCreated, "abc", SessionCreatedEvent{Variant: "classic"})
	if e.ID == "" {
		t.Error("expected an event id")
	}
	if e.Timestamp.IsZero() {
		t.Error("expected a timestamp")
	}
	if e.SessionID != "abc" || e.Type != EventSessionCreated {
		t.Errorf("got %+v", e)
	}
}

func TestWorker_HandlesInOrderOffThePublisher(t *testing.T) {
	release := make(chan struct{})
	var got []int
	w := NewWorker("test", 8, func(e Event) error {
		<-release
		got = append(got, e.Payload.(int))
		return nil
	}, nil)

	bus := NewBus()
	bus.Subscribe(EventMatchPlayed, w.Handle)
	for i := 0; i < 3; i++ {
		// returns while the handler is still blocked
		bus.Publish(New(EventMatchPlayed, "s1", i))
	}
	close(release)
	w.Close()

	if len(got) != 3 || got[0] != 0 || got[1] != 1 || got[2] != 2 {
		t.Fatalf("handled %v, want [0 1 2]", got)
	}
}

func TestWorker_DropsWhenFull(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{}, 1)
	handled := 0
	drops := 0
	w := NewWorker("test", 1, func(Event) error {
		select {
		case started <- struct{}{}:
		default:
		}
		<-release
		handled++
		return nil
	}, func() { drops++ })

	// first event is taken by the goroutine, second fills the queue
	if err := w.Handle(New(EventMatchPlayed, "s1", nil)); err != nil {
		t.Fatal(err)
	}
	<-started
	if err := w.Handle(New(EventMatchPlayed, "s1", nil)); err != nil {
		t.Fatal(err)
	}
	if err := w.Handle(New(EventMatchPlayed, "s1", nil)); err == nil {
		t.Fatal("expected a full-queue error")
	}
	close(release)
	w.Close()

	if handled != 2 || drops != 1 {
		t.Fatalf("handled=%d drops=%d, want 2 and 1", handled, drops)
	}
	if err := w.Handle(New(EventMatchPlayed, "s1", nil)); err == nil || drops != 2 {
		t.Fatalf("closed worker accepted an event (drops=%d)", drops)
	}
}
