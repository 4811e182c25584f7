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
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/zintix-labs/cardlab/dto"
	"github.com/zintix-labs/cardlab/errs"
	"github.com/zintix-labs/cardlab/spec"
)

// brokenCap broken 通道容量：連續故障超過此數量時整個池進入關閉狀態
const brokenCap = 100

// TablePool 專門管理「某一張牌桌設定」的所有 Table 實例。
// 它透過兩個通道管理 Table 生命週期：
//  1. pool：健康且可用的 Table，供 Play() 借出 / 歸還。
//  2. broken：在運作過程中發生 fatal error 或 panic 的 Table，送往此通道等待丟棄。
//
// 壞掉的 Table 會被送至 broken，並立即補上一張新桌（新 seed）以維持容量。
type TablePool struct {
	tableName     string
	tableId       spec.TID
	ts            *spec.TableSetting
	initSeed      int64
	seedMaker     *seedMaker
	pool          chan *Table   // 可用牌桌的通道，用於取得和歸還
	broken        chan *Table   // 壞掉牌桌的通道
	done          chan struct{} // 關閉訊號：關閉後不再允許借桌/歸還/補桌
	closeOnce     sync.Once     // 確保 Close() 只執行一次
	poolsize      int           // 目標容量
	rebuild       atomic.Int32  // 補桌次數
	inflight      atomic.Int32  // 使用中
	panics        atomic.Int32  // panic 次數
	fatals        atomic.Int32  // fatal 次數（產生器狀態不可信）
	closeReason   atomic.Value  // string: 關閉原因
	closeInflight atomic.Int32  // 關閉當下 inflight（快照）
	closeAvail    atomic.Int32  // 關閉當下 pool 可用數量（len(pool) 快照）
	closeBroken   atomic.Int32  // 關閉當下 broken backlog（len(broken) 快照）

	// build 建桌函數，預設為 newTableWithSeed
	build func(ts *spec.TableSetting, seed int64) (*Table, error)
}

// newTablePool 建立指定牌桌的池。
//   - n: 牌桌數量（至少為 1）
//   - seed: 池內每張桌的 seed 由此導出（seedMaker）
func newTablePool(n int, ts *spec.TableSetting, seed int64) (*TablePool, error) {
	n = max(1, n) // 確保數量至少為1
	p := &TablePool{
		tableName: ts.TableName,
		tableId:   ts.TableID,
		ts:        ts,
		initSeed:  seed,
		seedMaker: newSeedMaker(seed),
		pool:      make(chan *Table, n),
		broken:    make(chan *Table, brokenCap),
		done:      make(chan struct{}),
		poolsize:  n,
		build:     newTableWithSeed,
	}

	p.closeReason.Store("")
	p.closeInflight.Store(-1)
	p.closeAvail.Store(-1)
	p.closeBroken.Store(-1)

	// 上架 n 張新桌
	for i := 0; i < n; i++ {
		t, err := p.build(ts, p.seedMaker.next())
		if err != nil {
			return nil, err
		}
		p.pool <- t
	}
	return p, nil
}

// Close 進入關閉狀態：之後所有 Play() 直接回 error。
func (p *TablePool) Close() {
	p.closeWithReason("closed")
}

// Closed 回報池是否已進入關閉狀態。
func (p *TablePool) Closed() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}

// closeWithReason 進入關閉狀態並記錄原因（reason 只會被寫入一次）。
func (p *TablePool) closeWithReason(reason string) {
	p.closeOnce.Do(func() {
		if reason == "" {
			reason = "closed"
		}
		p.closeReason.Store(reason)
		// 進入關閉狀態的瞬間做一次快照，方便事後排查。
		p.closeInflight.Store(p.inflight.Load())
		p.closeAvail.Store(int32(len(p.pool)))
		p.closeBroken.Store(int32(len(p.broken)))
		close(p.done)
	})
}

// isFatalErr 判斷本次錯誤是否代表「牌桌狀態不可信」需要淘汰/補桌。
//
//   - panic 一律視為 broken（由 caller 端的 defer/recover 處理）
//   - 一般的 request/validation 類錯誤（Warn）不淘汰牌桌
func isFatalErr(err error) bool {
	return err != nil && errs.IsFatal(err)
}

// Play 借出一張桌打一局；ctx 取消時放棄等待。
func (p *TablePool) Play(ctx context.Context, req *dto.PlayRequest) (res dto.RoundResult, err error) {
	var t *Table
	select {
	case <-p.done:
		return res, errs.NewFatal("table pool closed: " + p.ClosedReason())
	case <-ctx.Done():
		return res, errs.WrapWarn(ctx.Err(), "play canceled/timeout")
	case t = <-p.pool:
		p.inflight.Add(1)
	}

	if t == nil {
		return res, errs.NewFatal("table pool got nil table")
	}

	var isPanic bool

	defer func() {
		// 有借有還 再借不難
		p.inflight.Add(-1)
		if r := recover(); r != nil {
			isPanic = true
			p.panics.Add(1)
			err = errs.NewFatal(fmt.Sprintf("table %s panic : %v", t.tableName, r))
		}

		// 若已關閉，直接丟棄（不歸還、不補桌）
		if p.Closed() {
			return
		}

		if isPanic || isFatalErr(err) {
			if !isPanic {
				p.fatals.Add(1)
			}
			// 1) 壞桌送入 broken（避免阻塞）
			select {
			case p.broken <- t:
			default:
				// broken 通道滿代表系統正在連續故障：進入關閉狀態讓上層接管。
				p.closeWithReason("overwhelmed_by_failures")
				if err == nil {
					err = errs.NewFatal("table pool overwhelmed by failures")
				}
				return
			}

			// 2) 補一張新桌（維持容量）
			nt, buildErr := p.build(p.ts, p.seedMaker.next())
			p.rebuild.Add(1)
			if buildErr != nil {
				err = errs.NewFatal(fmt.Sprintf("table %s can not build", p.tableName))
				p.closeWithReason("rebuild_failed")
				return
			}
			select {
			case <-p.done:
			case p.pool <- nt:
			}
			return
		}

		// 非致命錯誤：牌桌仍然健康，歸還 pool，err 原樣回傳。
		select {
		case <-p.done:
		case p.pool <- t:
		}
	}()

	res, err = t.Play(req)
	return res, err
}

func (p *TablePool) PoolSize() int {
	return p.poolsize
}

func (p *TablePool) Inflight() int {
	return int(p.inflight.Load())
}

func (p *TablePool) ReBuild() int {
	return int(p.rebuild.Load())
}

func (p *TablePool) ClosedReason() string {
	if v := p.closeReason.Load(); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func (p *TablePool) Panics() int {
	return int(p.panics.Load())
}

func (p *TablePool) Fatals() int {
	return int(p.fatals.Load())
}

// Available 回傳當下 pool 可用牌桌數（len(pool)）。在高併發下為近似值。
func (p *TablePool) Available() int {
	return len(p.pool)
}

// TablePoolMetrics 是「拉取式（pull）」觀測快照。
//
// Available/BrokenBacklog 來自 len(chan)，在高併發下是近似值。
// CloseInflight/CloseAvail/CloseBroken 只會在 Close 時寫入一次（-1 表示尚未關閉）。
type TablePoolMetrics struct {
	TableName string   `json:"table_name"`
	TableID   spec.TID `json:"table_id"`

	PoolSize      int    `json:"pool_size"`      // 目標容量
	Available     int    `json:"available"`      // 當下可借出的牌桌數
	Inflight      int    `json:"inflight"`       // 使用中
	BrokenBacklog int    `json:"broken_backlog"` // broken channel 當下 backlog
	Rebuild       int    `json:"rebuild"`        // 補桌次數
	Panics        int    `json:"panics"`         // panic 次數
	Fatals        int    `json:"fatals"`         // fatal 次數
	Closed        bool   `json:"closed"`         // 是否已關閉
	CloseReason   string `json:"close_reason"`   // 關閉原因

	CloseInflight int `json:"close_inflight"`
	CloseAvail    int `json:"close_avail"`
	CloseBroken   int `json:"close_broken"`
}

func (p *TablePool) Metrics() TablePoolMetrics {
	return TablePoolMetrics{
		TableName:     p.tableName,
		TableID:       p.tableId,
		PoolSize:      p.poolsize,
		Available:     len(p.pool),
		Inflight:      int(p.inflight.Load()),
		BrokenBacklog: len(p.broken),
		Rebuild:       int(p.rebuild.Load()),
		Panics:        int(p.panics.Load()),
		Fatals:        int(p.fatals.Load()),
		Closed:        p.Closed(),
		CloseReason:   p.ClosedReason(),
		CloseInflight: int(p.closeInflight.Load()),
		CloseAvail:    int(p.closeAvail.Load()),
		CloseBroken:   int(p.closeBroken.Load()),
	}
}
