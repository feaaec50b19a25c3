package engine

import (
	"context"
	"sync"

	"github.com/huangsam/statweights/schema"
)

type registration struct {
	requestType schema.RequestType
	cancel      context.CancelFunc
}

// SignalManager tracks cancellable request contexts by request type so that
// an abort can reach every run of that type.
type SignalManager struct {
	mu     sync.Mutex
	next   uint64
	active map[uint64]registration
}

// NewSignalManager creates an empty signal manager.
func NewSignalManager() *SignalManager {
	return &SignalManager{active: make(map[uint64]registration)}
}

// Register derives a cancellable context for a request of requestType.
// release must be called once the request ends.
func (m *SignalManager) Register(ctx context.Context, requestType schema.RequestType) (runCtx context.Context, release func()) {
	runCtx, cancel := context.WithCancel(ctx)

	m.mu.Lock()
	id := m.next
	m.next++
	m.active[id] = registration{requestType: requestType, cancel: cancel}
	m.mu.Unlock()

	return runCtx, func() {
		m.mu.Lock()
		delete(m.active, id)
		m.mu.Unlock()
		cancel()
	}
}

// AbortType cancels every registered request that requestType covers and
// returns how many were cancelled.
func (m *SignalManager) AbortType(requestType schema.RequestType) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, reg := range m.active {
		if requestType.Covers(reg.requestType) {
			reg.cancel()
			delete(m.active, id)
			n++
		}
	}
	return n
}

