// Package iocache persists engine results so repeated runs skip the simulator.
package iocache

import (
	"sync"

	"github.com/huangsam/statweights/internal/contract"
)

// CacheStoreManager owns the process-wide cache stores.
type CacheStoreManager struct {
	sync.RWMutex // Protects the store pointers during initialization
	engine       contract.CacheStore
}

var _ contract.CacheManager = &CacheStoreManager{} // Compile-time check

// GetEngineStore returns the engine result store, or nil when caching is off.
func (mgr *CacheStoreManager) GetEngineStore() contract.CacheStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.engine
}
