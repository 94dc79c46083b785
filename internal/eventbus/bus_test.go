package eventbus

import (
	"sync"
	"testing"
	"time"
)

func TestBus_SubscribeAndPublish(t *testing.T) {
	bus := New()
	defer bus.Close()

	received := make(chan Event, 10)
	bus.Subscribe(EventPixelPlaced, received)

	bus.Publish(Event{
		Type: EventPixelPlaced,
		Data: map[string]int{"x": 1, "y": 2},
	})

	select {
	case evt := <-received:
		if evt.Type != EventPixelPlaced {
			t.Errorf("expected %s, got %s", EventPixelPlaced, evt.Type)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestBus_MultipleSubscribers(t *testing.T) {
	bus := New()
	defer bus.Close()

	ch1 := make(chan Event, 10)
	ch2 := make(chan Event, 10)
	bus.Subscribe(EventPixelPlaced, ch1)
	bus.Subscribe(EventPixelPlaced, ch2)

	bus.Publish(Event{Type: EventPixelPlaced})

	for _, ch := range []chan Event{ch1, ch2} {
		select {
		case <-ch:
		case <-time.After(time.Second):
			t.Fatal("subscriber did not receive event")
		}
	}
}

func TestBus_TypeFiltering(t *testing.T) {
	bus := New()
	defer bus.Close()

	pixelCh := make(chan Event, 10)
	resizeCh := make(chan Event, 10)
	bus.Subscribe(EventPixelPlaced, pixelCh)
	bus.Subscribe(EventCanvasResized, resizeCh)

	bus.Publish(Event{Type: EventPixelPlaced})

	select {
	case <-pixelCh:
	case <-time.After(time.Second):
		t.Fatal("pixel subscriber did not receive event")
	}

	select {
	case <-resizeCh:
		t.Fatal("resize subscriber should NOT receive a pixel.placed event")
	case <-time.After(50 * time.Millisecond):
		// good
	}
}

func TestBus_PublishBatch(t *testing.T) {
	bus := New()
	defer bus.Close()

	received := make(chan Event, 100)
	bus.Subscribe(EventPixelPlaced, received)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			bus.Publish(Event{Type: EventPixelPlaced})
		}()
	}
	wg.Wait()

	time.Sleep(100 * time.Millisecond)
	if len(received) != 50 {
		t.Errorf("expected 50 events, got %d", len(received))
	}
}

func TestBus_PublishAfterCloseIsNoop(t *testing.T) {
	bus := New()
	received := make(chan Event, 1)
	bus.Subscribe(EventPixelPlaced, received)
	bus.Close()

	bus.Publish(Event{Type: EventPixelPlaced})

	select {
	case <-received:
		t.Fatal("expected no event after Close")
	case <-time.After(50 * time.Millisecond):
		// good
	}
}
