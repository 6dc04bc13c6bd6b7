package eventbus

import "testing"

var _ EventBus = New()

func TestBusPublishSubscribe(t *testing.T) {
	bus := New()
	ch := bus.Subscribe()
	bus.Publish("hello")
	if v := <-ch; v != "hello" {
		t.Fatalf("expected hello got %v", v)
	}
	bus.Unsubscribe(ch)
	if _, ok := <-ch; ok {
		t.Fatalf("expected channel closed after unsubscribe")
	}
}

func TestTypedBusDropsWhenFull(t *testing.T) {
	bus := NewTyped[int](WithBuffer(1))
	ch := bus.Subscribe()
	bus.Publish(1)
	bus.Publish(2)
	if got := <-ch; got != 1 {
		t.Fatalf("expected 1 got %d", got)
	}
	if bus.Dropped() != 1 {
		t.Fatalf("expected 1 dropped got %d", bus.Dropped())
	}
}

func TestTypedBusClose(t *testing.T) {
	bus := NewTyped[int]()
	ch1 := bus.Subscribe()
	ch2 := bus.Subscribe()
	bus.Close()
	if _, ok := <-ch1; ok {
		t.Fatalf("expected ch1 closed")
	}
	if _, ok := <-ch2; ok {
		t.Fatalf("expected ch2 closed")
	}
	if _, ok := <-bus.Subscribe(); ok {
		t.Fatalf("subscribe after close should return closed channel")
	}
	bus.Publish(3)
}

func TestTypedBusUnsubscribeAfterClose(t *testing.T) {
	bus := NewTyped[float64]()
	ch := bus.Subscribe()
	bus.Close()
	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("panic on Unsubscribe after Close: %v", r)
		}
	}()
	bus.Unsubscribe(ch)
}
