package krate

import "sync"

// lagThreshold is the per-subscriber backlog size at which the
// ObserverLagging hook starts firing. Nothing is dropped either way.
const lagThreshold = 1024

// Subscription is one observer of the change-notification bus.
type Subscription struct {
	sub *subscriber
	b   *broadcaster
	id  uint64
}

// Keys returns the stream of written keys. The channel is closed when the
// subscription is cancelled or the Krate is closed; it never closes on its
// own and carries no errors.
func (s *Subscription) Keys() <-chan string { return s.sub.out }

// Cancel detaches this subscriber. Other subscribers and in-flight writes
// are unaffected. Safe to call more than once.
func (s *Subscription) Cancel() { s.b.unsubscribe(s.id) }

// broadcaster is a hot multicast bus with no replay buffer. publish never
// blocks on consumers: each subscriber keeps a FIFO backlog drained by its
// own pump goroutine, so a stalled consumer costs memory, not writer
// latency.
type broadcaster struct {
	mu     sync.Mutex
	subs   map[uint64]*subscriber
	nextID uint64
	closed bool
}

type subscriber struct {
	mu    sync.Mutex
	queue []string
	wake  chan struct{}
	done  chan struct{}
	out   chan string
	once  sync.Once
	hooks Hooks
}

func newBroadcaster() *broadcaster {
	return &broadcaster{subs: make(map[uint64]*subscriber)}
}

func (b *broadcaster) subscribe(hooks Hooks) *Subscription {
	sub := &subscriber{
		wake:  make(chan struct{}, 1),
		done:  make(chan struct{}),
		out:   make(chan string),
		hooks: hooks,
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		sub.stop()
		close(sub.out)
		return &Subscription{sub: sub, b: b}
	}
	b.nextID++
	id := b.nextID
	b.subs[id] = sub
	b.mu.Unlock()

	go sub.pump()
	return &Subscription{sub: sub, b: b, id: id}
}

func (b *broadcaster) unsubscribe(id uint64) {
	b.mu.Lock()
	sub, ok := b.subs[id]
	delete(b.subs, id)
	b.mu.Unlock()
	if ok {
		sub.stop()
	}
}

func (b *broadcaster) publish(key string) {
	b.mu.Lock()
	for _, sub := range b.subs {
		sub.enqueue(key)
	}
	b.mu.Unlock()
}

func (b *broadcaster) close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	subs := b.subs
	b.subs = make(map[uint64]*subscriber)
	b.mu.Unlock()

	for _, sub := range subs {
		sub.stop()
	}
}

func (s *subscriber) enqueue(key string) {
	s.mu.Lock()
	s.queue = append(s.queue, key)
	queued := len(s.queue)
	s.mu.Unlock()

	if queued >= lagThreshold {
		s.hooks.ObserverLagging(queued)
	}
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *subscriber) stop() {
	s.once.Do(func() { close(s.done) })
}

// pump delivers queued keys to out in publish order until stopped.
func (s *subscriber) pump() {
	defer close(s.out)
	for {
		s.mu.Lock()
		for len(s.queue) == 0 {
			s.mu.Unlock()
			select {
			case <-s.wake:
			case <-s.done:
				return
			}
			s.mu.Lock()
		}
		key := s.queue[0]
		s.queue = s.queue[1:]
		s.mu.Unlock()

		select {
		case s.out <- key:
		case <-s.done:
			return
		}
	}
}
