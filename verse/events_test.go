package verse

import (
	"fmt"
	"sync"
	"testing"
)

func TestFeedDeliversInRegistrationOrder(t *testing.T) {
	feed := newFeed[int](func(string, ...any) {})

	var got []string
	for _, name := range []string{"first", "second", "third"} {
		feed.subscribe(func(int) { got = append(got, name) })
	}

	feed.publish(1)

	want := []string{"first", "second", "third"}
	if len(got) != len(want) {
		t.Fatalf("deliveries = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("delivery %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestFeedUnsubscribeStopsDelivery(t *testing.T) {
	feed := newFeed[int](func(string, ...any) {})

	calls := 0
	sub := feed.subscribe(func(int) { calls++ })

	feed.publish(1)
	sub.Unsubscribe()
	feed.publish(2)
	sub.Unsubscribe()
	feed.publish(3)

	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
}

func TestFeedUnsubscribeDuringDelivery(t *testing.T) {
	feed := newFeed[int](func(string, ...any) {})

	var sub *Subscription
	first := 0
	second := 0
	sub = feed.subscribe(func(int) {
		first++
		sub.Unsubscribe()
	})
	feed.subscribe(func(int) { second++ })

	feed.publish(1)
	feed.publish(2)

	if first != 1 {
		t.Fatalf("first subscriber calls = %d, want 1", first)
	}
	if second != 2 {
		t.Fatalf("second subscriber calls = %d, want 2", second)
	}
}

func TestFeedIsolatesPanickingSubscriber(t *testing.T) {
	var mu sync.Mutex
	var logged []string
	logf := func(format string, args ...any) {
		mu.Lock()
		defer mu.Unlock()
		logged = append(logged, fmt.Sprintf(format, args...))
	}
	feed := newFeed[int](logf)

	feed.subscribe(func(int) { panic("subscriber exploded") })
	survived := 0
	feed.subscribe(func(int) { survived++ })

	feed.publish(1)
	feed.publish(2)

	if survived != 2 {
		t.Fatalf("surviving subscriber calls = %d, want 2", survived)
	}
	mu.Lock()
	defer mu.Unlock()
	if len(logged) != 2 {
		t.Fatalf("panic logs = %d, want 2", len(logged))
	}
}

func TestFeedNilSubscriber(t *testing.T) {
	feed := newFeed[int](func(string, ...any) {})

	sub := feed.subscribe(nil)
	sub.Unsubscribe()

	feed.publish(1)
}
