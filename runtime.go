// Copyright 2025 Zintix Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cardlab

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/zintix-labs/cardlab/dto"
	"github.com/zintix-labs/cardlab/errs"
	"github.com/zintix-labs/cardlab/spec"
)

type TableRuntime struct {
	// build-time 來源（只讀引用）
	lab *Lab

	// data-plane：每張牌桌一個 pool
	pools map[spec.TID]*TablePool
	ids   []spec.TID // 固定順序，用於觀測/列舉（來自 cat.IDs()）

	// lifecycle
	done      chan struct{}
	closeOnce sync.Once
	closed    atomic.Bool
	reason    atomic.Value // string

	poolSize int // 每張牌桌的池大小
}

func (rt *TableRuntime) Play(ctx context.Context, req *dto.PlayRequest) (dto.RoundResult, error) {
	select {
	case <-ctx.Done():
		return dto.RoundResult{}, errs.WrapWarn(ctx.Err(), "play canceled/timeout")
	case <-rt.done:
		rt.closed.Store(true)
		return dto.RoundResult{}, errs.NewFatal("table runtime closed: " + rt.ClosedReason())
	default:
	}
	if req == nil {
		return dto.RoundResult{}, errs.NewWarn("nil request")
	}

	tp, ok := rt.pools[req.TableID]
	if !ok {
		return dto.RoundResult{}, errs.NewWarn("table id not found")
	}

	// pool 自己會處理 done / close / rebuild / metrics
	return tp.Play(ctx, req)
}

// Pool 取得指定牌桌的池（觀測用）。
func (rt *TableRuntime) Pool(id spec.TID) (*TablePool, bool) {
	tp, ok := rt.pools[id]
	return tp, ok
}

func (rt *TableRuntime) IDs() []spec.TID {
	out := make([]spec.TID, len(rt.ids))
	copy(out, rt.ids)
	return out
}

// Metrics 依 IDs 順序回傳每個池的快照。
func (rt *TableRuntime) Metrics() []TablePoolMetrics {
	out := make([]TablePoolMetrics, 0, len(rt.ids))
	for _, id := range rt.ids {
		out = append(out, rt.pools[id].Metrics())
	}
	return out
}

// Close 關閉 runtime 與底下所有池，可重複呼叫。
func (rt *TableRuntime) Close() {
	rt.closeWithReason("closed")
}

func (rt *TableRuntime) closeWithReason(reason string) {
	rt.closeOnce.Do(func() {
		if reason == "" {
			reason = "closed"
		}
		rt.reason.Store(reason)
		rt.closed.Store(true)
		close(rt.done)
		for _, tp := range rt.pools {
			tp.closeWithReason("runtime_" + reason)
		}
	})
}

func (rt *TableRuntime) Closed() bool {
	return rt.closed.Load()
}

func (rt *TableRuntime) ClosedReason() string {
	if v := rt.reason.Load(); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
