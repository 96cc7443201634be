package chat

import (
	"sync"

	"roomcast/internal/core/domain"
	"roomcast/internal/infrastructure/monitoring"
)

// Registry hands out the broadcast room for a room id, creating it on
// first use. A room, once created, lives for the process lifetime; there
// is exactly one Room per id at any time.
type Registry struct {
	bufferSize int
	metrics    *monitoring.PrometheusCollector

	mu    sync.Mutex
	rooms map[domain.RoomID]*Room
}

func NewRegistry(bufferSize int, metrics *monitoring.PrometheusCollector) *Registry {
	if bufferSize < 1 {
		bufferSize = 1
	}
	return &Registry{
		bufferSize: bufferSize,
		metrics:    metrics,
		rooms:      make(map[domain.RoomID]*Room),
	}
}

// Get returns the live room for the id, creating it when absent. The lock
// covers only the map lookup; publishing and subscribing synchronize per
// room.
func (r *Registry) Get(roomID domain.RoomID) *Room {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, exists := r.rooms[roomID]
	if !exists {
		room = newRoom(roomID, r.bufferSize, r.metrics)
		r.rooms[roomID] = room
		r.metrics.RecordRoomOpened()
	}
	return room
}

// RoomCount reports the number of rooms created so far.
func (r *Registry) RoomCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rooms)
}
