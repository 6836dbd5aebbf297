package events

import (
	"io"
	"log/slog"
	"sync"
)

// Bus delivers each event to registered handlers synchronously and to
// subscribers through buffered channels. A subscriber whose buffer is full
// misses the event; Dispatch never blocks on a slow reader.
type Bus struct {
	logger *slog.Logger

	mu       sync.RWMutex
	handlers []func(Event)
	subs     map[int]chan Event
	nextSub  int
	closed   bool
}

var _ Dispatcher = (*Bus)(nil)

// NewBus returns an empty bus. A nil logger discards drop warnings.
func NewBus(logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Bus{logger: logger, subs: make(map[int]chan Event)}
}

// Handle registers fn to be called for every dispatched event.
func (b *Bus) Handle(fn func(Event)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, fn)
}

// Subscribe returns a channel receiving future events and a function that
// cancels the subscription and closes the channel.
func (b *Bus) Subscribe(buffer int) (<-chan Event, func()) {
	ch := make(chan Event, buffer)

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(ch)
		return ch, func() {}
	}
	id := b.nextSub
	b.nextSub++
	b.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if c, ok := b.subs[id]; ok {
				delete(b.subs, id)
				close(c)
			}
		})
	}
}

// Dispatch publishes event. It always returns nil.
func (b *Bus) Dispatch(event Event) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return nil
	}
	for _, fn := range b.handlers {
		fn(event)
	}
	for id, ch := range b.subs {
		select {
		case ch <- event:
		default:
			b.logger.Warn("Dropped event for slow subscriber", "type", event.Type(), "subscriber", id)
		}
	}
	return nil
}

// Close closes every subscriber channel. Later dispatches are ignored.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
}
