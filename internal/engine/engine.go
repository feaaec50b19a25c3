// Package engine adapts external stat weight simulators to contract.Engine.
package engine

import (
	"fmt"

	"github.com/huangsam/statweights/internal/contract"
)

// New builds the engine described by cfg. A result file takes precedence over
// the simulator binary. When store is non-nil, results are memoized in it and
// cfg.RefreshCache decides whether memoized results may be returned.
func New(cfg *contract.Config, store contract.CacheStore) (contract.Engine, error) {
	var eng contract.Engine
	switch {
	case cfg.ResultFile != "":
		eng = NewStaticEngine(cfg.ResultFile)
	case cfg.EnginePath != "":
		eng = NewExecEngine(cfg.EnginePath, cfg.EngineArgs...)
	default:
		return nil, fmt.Errorf("%w: either --engine-path or --result-file is required", contract.ErrConfiguration)
	}
	if store != nil {
		cached := NewCachedEngine(eng, store)
		cached.Refresh = cfg.RefreshCache
		eng = cached
	}
	return eng, nil
}
