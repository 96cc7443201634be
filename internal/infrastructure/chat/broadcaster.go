package chat

import (
	"sync"

	"roomcast/internal/core/domain"
	"roomcast/internal/infrastructure/monitoring"
)

// Subscriber receives the encoded frames published to one room. Frames are
// delivered through a bounded buffer; a subscriber that falls behind loses
// its oldest pending frames, never the newest.
type Subscriber struct {
	room   *Room
	frames chan []byte

	closeOnce sync.Once
}

// Frames is the subscriber's delivery channel. It is never closed; readers
// stop when their session context ends.
func (s *Subscriber) Frames() <-chan []byte {
	return s.frames
}

// Close unsubscribes from the room. A publish racing with Close may still
// land in the buffer; it is never delivered because nothing reads after
// Close.
func (s *Subscriber) Close() {
	s.closeOnce.Do(func() {
		s.room.unsubscribe(s)
	})
}

// Room fans published events out to its current subscribers. Publishing
// never blocks: a full subscriber buffer sheds its oldest frame instead of
// applying backpressure to the publisher.
type Room struct {
	id         domain.RoomID
	bufferSize int
	metrics    *monitoring.PrometheusCollector

	mu          sync.Mutex
	subscribers map[*Subscriber]struct{}
}

func newRoom(id domain.RoomID, bufferSize int, metrics *monitoring.PrometheusCollector) *Room {
	return &Room{
		id:          id,
		bufferSize:  bufferSize,
		metrics:     metrics,
		subscribers: make(map[*Subscriber]struct{}),
	}
}

// ID returns the room id.
func (r *Room) ID() domain.RoomID {
	return r.id
}

// Subscribe registers a new subscriber with a fresh buffer.
func (r *Room) Subscribe() *Subscriber {
	sub := &Subscriber{
		room:   r,
		frames: make(chan []byte, r.bufferSize),
	}

	r.mu.Lock()
	r.subscribers[sub] = struct{}{}
	r.mu.Unlock()

	return sub
}

func (r *Room) unsubscribe(sub *Subscriber) {
	r.mu.Lock()
	delete(r.subscribers, sub)
	r.mu.Unlock()
}

// SubscriberCount reports the current number of subscribers.
func (r *Room) SubscriberCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.subscribers)
}

// Publish encodes the event once and delivers it to every subscriber.
// The error is only for events outside the known variant set.
func (r *Room) Publish(ev domain.ServerEvent) error {
	frame, err := domain.EncodeServerEvent(ev)
	if err != nil {
		return err
	}

	// Snapshot under the lock, deliver outside it.
	r.mu.Lock()
	subscribers := make([]*Subscriber, 0, len(r.subscribers))
	for sub := range r.subscribers {
		subscribers = append(subscribers, sub)
	}
	r.mu.Unlock()

	for _, sub := range subscribers {
		r.deliver(sub, frame)
	}
	return nil
}

// deliver pushes one frame into a subscriber buffer, shedding the oldest
// queued frame when the buffer is full.
func (r *Room) deliver(sub *Subscriber, frame []byte) {
	select {
	case sub.frames <- frame:
		return
	default:
	}

	select {
	case <-sub.frames:
		r.metrics.RecordFrameDropped("room")
	default:
	}
	select {
	case sub.frames <- frame:
	default:
		r.metrics.RecordFrameDropped("room")
	}
}
