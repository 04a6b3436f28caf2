package verse

import "sync"

// AssetUpdateEvent carries one asset record, from a push frame or from a
// successful mint call. The record replaces any prior view of the asset.
type AssetUpdateEvent struct {
	Asset AssetRecord
}

// BalanceUpdateEvent carries the last observed balance for one wallet.
type BalanceUpdateEvent struct {
	Address string
	Balance float64
}

// TransferCompleteEvent reports the resolution of one transfer attempt.
// Failed attempts are reported too, with Success false.
type TransferCompleteEvent struct {
	AssetID string
	From    string
	To      string
	Success bool
	Message string
}

// ConnectionStateEvent reports one session lifecycle transition. Err is
// non-nil when a failure caused the transition.
type ConnectionStateEvent struct {
	State SessionState
	Err   error
}

// Subscription identifies one registered event callback.
type Subscription struct {
	cancel func()
}

// Unsubscribe removes the callback. It is safe to call repeatedly and safe
// to call from inside a delivery; the callback sees no events after the
// current fan-out completes.
func (s *Subscription) Unsubscribe() {
	if s == nil || s.cancel == nil {
		return
	}
	s.cancel()
}

// feed fans events out to subscribers in registration order. Delivery
// snapshots the subscriber list under the lock and invokes callbacks
// outside it, so subscribers may re-enter the client freely.
type feed[T any] struct {
	mu     sync.Mutex
	nextID int
	order  []int
	subs   map[int]func(T)
	logf   func(format string, args ...any)
}

func newFeed[T any](logf func(format string, args ...any)) *feed[T] {
	return &feed[T]{
		subs: make(map[int]func(T)),
		logf: logf,
	}
}

func (f *feed[T]) subscribe(fn func(T)) *Subscription {
	if fn == nil {
		return &Subscription{}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	id := f.nextID
	f.subs[id] = fn
	f.order = append(f.order, id)
	return &Subscription{cancel: func() { f.remove(id) }}
}

func (f *feed[T]) remove(id int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.subs, id)
	for i, existing := range f.order {
		if existing == id {
			f.order = append(f.order[:i], f.order[i+1:]...)
			break
		}
	}
}

func (f *feed[T]) publish(event T) {
	f.mu.Lock()
	callbacks := make([]func(T), 0, len(f.order))
	for _, id := range f.order {
		if fn, ok := f.subs[id]; ok {
			callbacks = append(callbacks, fn)
		}
	}
	f.mu.Unlock()

	for _, fn := range callbacks {
		f.deliver(fn, event)
	}
}

// deliver isolates one callback so a panicking subscriber cannot starve the
// others or kill the read loop.
func (f *feed[T]) deliver(fn func(T), event T) {
	defer func() {
		if r := recover(); r != nil {
			f.logf("verse: subscriber panic recovered: %v", r)
		}
	}()
	fn(event)
}
