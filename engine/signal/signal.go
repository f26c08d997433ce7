package signal

import (
	"sync"
	"sync/atomic"
)

// ID identifies a subscriber on a Bus. A subscriber holds at most one callback per event name.
type ID uint64

// idCount is an atomic counter used to hand out process-unique subscriber identities.
var idCount atomic.Uint64

// NextID returns a new subscriber identity, unique for the lifetime of the process.
//
// Returns:
//   - ID: a fresh subscriber identity
func NextID() ID {
	return ID(idCount.Add(1))
}

// None is the payload type of events that carry no argument or produce no result.
type None struct{}

// Key names an event together with its argument type A and result type R.
// Subscribing or emitting through a Key whose types differ from the declared ones is rejected,
// so a callback can never be invoked with the wrong shape.
type Key[A, R any] struct {
	name string
}

// NewKey creates a typed event key.
//
// Parameters:
//   - name: the event name
//
// Returns:
//   - Key[A, R]: the typed key
func NewKey[A, R any](name string) Key[A, R] {
	return Key[A, R]{name: name}
}

// Name returns the event name of the key.
func (k Key[A, R]) Name() string {
	return k.name
}

// Signal is the key of an event that takes no argument and returns nothing.
type Signal = Key[None, None]

// NewSignal creates the key of an argument-less event.
func NewSignal(name string) Signal {
	return NewKey[None, None](name)
}

// channel is the type-erased view of a typedChannel held in the Bus registry.
type channel interface {
	unsubscribe(id ID) bool
	size() int
}

// typedChannel stores the callbacks of one event in subscription order.
type typedChannel[A, R any] struct {
	order     []ID
	callbacks map[ID]func(A) R
}

func newTypedChannel[A, R any]() *typedChannel[A, R] {
	return &typedChannel[A, R]{callbacks: make(map[ID]func(A) R)}
}

func (c *typedChannel[A, R]) subscribe(id ID, cb func(A) R) {
	if _, ok := c.callbacks[id]; !ok {
		c.order = append(c.order, id)
	}
	c.callbacks[id] = cb
}

func (c *typedChannel[A, R]) unsubscribe(id ID) bool {
	if _, ok := c.callbacks[id]; !ok {
		return false
	}
	delete(c.callbacks, id)
	for i, other := range c.order {
		if other == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return true
}

func (c *typedChannel[A, R]) size() int {
	return len(c.order)
}

// entry pairs a subscriber with its callback for lock-free dispatch.
type entry[A, R any] struct {
	id ID
	cb func(A) R
}

func (c *typedChannel[A, R]) snapshot() []entry[A, R] {
	out := make([]entry[A, R], 0, len(c.order))
	for _, id := range c.order {
		out = append(out, entry[A, R]{id: id, cb: c.callbacks[id]})
	}
	return out
}

// Bus is a per-object registry mapping event names to their subscribers.
// Components expose a Bus so that other components can react to their events without
// holding a reference back to them.
//
// The registry is guarded by a mutex, but callbacks are always invoked without holding it:
// a callback may subscribe, unsubscribe or emit on the same Bus.
type Bus struct {
	mu       *sync.Mutex
	channels map[string]channel
}

// NewBus creates a Bus and declares each argument-less event.
// Events carrying an argument or a result are declared with Declare.
//
// Parameters:
//   - signals: the argument-less events the owner can emit
//
// Returns:
//   - *Bus: the newly created bus
func NewBus(signals ...Signal) *Bus {
	b := &Bus{
		mu:       &sync.Mutex{},
		channels: make(map[string]channel),
	}
	for _, s := range signals {
		b.channels[s.name] = newTypedChannel[None, None]()
	}
	return b
}

// Declare registers the event of key on the bus. Declaring an event twice with the same types is a no-op.
//
// Parameters:
//   - b: the bus
//   - key: the event to declare
//
// Returns:
//   - bool: false if the name is already declared with different payload types
func Declare[A, R any](b *Bus, key Key[A, R]) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if ch, ok := b.channels[key.name]; ok {
		_, same := ch.(*typedChannel[A, R])
		return same
	}
	b.channels[key.name] = newTypedChannel[A, R]()
	return true
}

// Subscribe registers cb as the callback of subscriber id for the event of key.
// An existing registration of the same subscriber is replaced in place and keeps its position.
//
// Parameters:
//   - b: the bus
//   - key: the event to subscribe to
//   - id: the subscriber identity
//   - cb: the callback
//
// Returns:
//   - bool: false if the event is undeclared, declared with other types, or cb is nil
func Subscribe[A, R any](b *Bus, key Key[A, R], id ID, cb func(A) R) bool {
	if cb == nil {
		return false
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	ch, ok := b.channels[key.name]
	if !ok {
		return false
	}
	typed, ok := ch.(*typedChannel[A, R])
	if !ok {
		return false
	}
	typed.subscribe(id, cb)
	return true
}

// Connect subscribes a callback that takes no argument and returns nothing.
func Connect(b *Bus, key Signal, id ID, cb func()) bool {
	if cb == nil {
		return false
	}
	return Subscribe(b, key, id, func(None) None {
		cb()
		return None{}
	})
}

// ConnectArgs subscribes a callback that takes an argument and returns nothing.
func ConnectArgs[A any](b *Bus, key Key[A, None], id ID, cb func(A)) bool {
	if cb == nil {
		return false
	}
	return Subscribe(b, key, id, func(arg A) None {
		cb(arg)
		return None{}
	})
}

// ConnectResult subscribes a callback that takes no argument and returns a result.
func ConnectResult[R any](b *Bus, key Key[None, R], id ID, cb func() R) bool {
	if cb == nil {
		return false
	}
	return Subscribe(b, key, id, func(None) R {
		return cb()
	})
}

// Unsubscribe removes the callback of subscriber id from the event name.
//
// Parameters:
//   - name: the event name
//   - id: the subscriber identity
//
// Returns:
//   - bool: false if the subscriber was not registered for the event
func (b *Bus) Unsubscribe(name string, id ID) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch, ok := b.channels[name]
	if !ok {
		return false
	}
	return ch.unsubscribe(id)
}

// UnsubscribeAll removes subscriber id from every event of the bus.
//
// Returns:
//   - int: the number of registrations removed
func (b *Bus) UnsubscribeAll(id ID) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	removed := 0
	for _, ch := range b.channels {
		if ch.unsubscribe(id) {
			removed++
		}
	}
	return removed
}

// Declared reports whether name is a declared event of the bus.
func (b *Bus) Declared(name string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.channels[name]
	return ok
}

// Subscribers returns the number of callbacks registered for name.
func (b *Bus) Subscribers(name string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	if ch, ok := b.channels[name]; ok {
		return ch.size()
	}
	return 0
}

// lookup returns a snapshot of the callbacks registered for key, or nil when the event is unknown.
func lookup[A, R any](b *Bus, key Key[A, R]) []entry[A, R] {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch, ok := b.channels[key.name]
	if !ok {
		return nil
	}
	typed, ok := ch.(*typedChannel[A, R])
	if !ok {
		return nil
	}
	return typed.snapshot()
}

// Emit invokes every callback registered for key with arg, in subscription order.
// Emitting an undeclared event, or an event through a key of other types, does nothing.
//
// Parameters:
//   - b: the bus
//   - key: the event to emit
//   - arg: the argument passed to each callback
func Emit[A, R any](b *Bus, key Key[A, R], arg A) {
	for _, e := range lookup(b, key) {
		e.cb(arg)
	}
}

// Fire emits an argument-less event.
func Fire(b *Bus, key Signal) {
	Emit(b, key, None{})
}

// EmitAndCollect invokes every callback registered for key and collects their results by subscriber.
//
// Parameters:
//   - b: the bus
//   - key: the event to emit
//   - arg: the argument passed to each callback
//
// Returns:
//   - map[ID]R: the result of each subscriber, empty when nothing is registered
func EmitAndCollect[A, R any](b *Bus, key Key[A, R], arg A) map[ID]R {
	entries := lookup(b, key)
	results := make(map[ID]R, len(entries))
	for _, e := range entries {
		results[e.id] = e.cb(arg)
	}
	return results
}

// Forwarder returns a closure that fires key on b. It is used to chain an event of one
// component into an event of another.
func Forwarder(b *Bus, key Signal) func() {
	return func() {
		Fire(b, key)
	}
}
