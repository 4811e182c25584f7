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
	"strings"
	"sync"

	"github.com/zintix-labs/cardlab/dto"
	"github.com/zintix-labs/cardlab/errs"
	"github.com/zintix-labs/cardlab/sdk/blackjack"
	"github.com/zintix-labs/cardlab/sdk/buf"
	"github.com/zintix-labs/cardlab/sdk/core"
	"github.com/zintix-labs/cardlab/spec"
)

// Table 封裝一張「可對外提供 Play」的牌桌。
//
//   - 對外：提供 Play 入口（HTTP / 模擬器通常只操作 Table）。
//   - 對內：持有一個產生器（Core）與牌桌規則，每局都用新的牌堆。
//
// 並發語意：
//   - Table 內含可重用的 RoundResult buffer 與產生器狀態，同一張 Table 不應被多 goroutine 同時使用。
//   - Play 以 mutex 保護；PlayInternal / Begin 不上鎖，由呼叫端保證獨佔。
//
// Buffer 語意：
//   - RoundResult 會被重用，每次 PlayInternal 會覆寫內容；需要保留請轉成 DTO。
type Table struct {
	tableName   string             // 牌桌名稱（主要用於觀測/日誌）
	tableId     spec.TID           // 牌桌 ID（Catalog 內唯一）
	ts          *spec.TableSetting // 牌桌設定
	rules       blackjack.Rules    // 由設定衍生的規則
	core        *core.Core         // 產生器（Snapshot/Restore 合約）
	RoundResult *buf.RoundResult   // 可重用的結果 buffer
	mu          sync.Mutex         // 保護 buffer 與產生器狀態一致性
	initseed    int64              // 出生 seed（便於追溯；完整重現請用 Snapshot/Restore）
}

// newTableWithSeed 以指定 seed 建立 Table。
//
// 產生器種類由設定檔決定：同一份 TableSetting + 同一個 seed 會得到一致的牌序。
func newTableWithSeed(ts *spec.TableSetting, seed int64) (*Table, error) {
	if ts == nil {
		return nil, errs.NewFatal("table setting is nil")
	}
	f, err := ts.Factory()
	if err != nil {
		return nil, errs.Wrap(err, "table generator")
	}
	rules := ts.Rules()
	if err := rules.Valid(); err != nil {
		return nil, errs.Wrap(err, "table rules")
	}
	t := &Table{
		tableName:   ts.TableName,
		tableId:     ts.TableID,
		ts:          ts,
		rules:       rules,
		core:        core.New(f.New(seed)),
		RoundResult: buf.NewRoundResult(ts),
		initseed:    seed,
	}
	return t, nil
}

func (t *Table) Name() string { return t.tableName }

func (t *Table) ID() spec.TID { return t.tableId }

func (t *Table) Setting() spec.TableSetting { return *t.ts }

func (t *Table) Rules() blackjack.Rules { return t.rules }

func (t *Table) InitSeed() int64 { return t.initseed }

// Play 為主要公開入口，會驗證下注請求，自動打完一局並回傳結果。
//
// 請求帶 start_b64u 時以該快照作為起點（回放 / 續玩），結束後產生器會恢復到請求前的狀態。
func (t *Table) Play(r *dto.PlayRequest) (dto.RoundResult, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	// 1. 校驗請求合法性
	if err := t.valid(r); err != nil {
		return dto.RoundResult{}, err
	}
	// 2. parse dto to inner request
	req, err := r.Parse()
	if err != nil {
		return dto.RoundResult{}, err
	}

	// 3. get start snapshot
	startsnap, err := t.SnapshotCore()
	if err != nil {
		return dto.RoundResult{}, errs.NewFatal("before snapshot error " + err.Error())
	}
	rem := startsnap
	replay := req.StartState != nil && len(req.StartState.StartSnap) != 0
	if replay {
		startsnap = req.StartState.StartSnap
		if err := t.RestoreCore(startsnap); err != nil {
			return dto.RoundResult{}, errs.NewWarn("restore core err " + err.Error())
		}
	}

	// 4. play
	rr, perr := t.play(req.Bet)
	if perr != nil {
		if e := t.RestoreCore(rem); e != nil {
			return dto.RoundResult{}, errs.NewFatal("fall back err " + e.Error())
		}
		return dto.RoundResult{}, errs.Wrap(perr, "play round failed")
	}

	// 5. get after snapshot
	aftersnap, err := t.SnapshotCore()
	if err != nil {
		if e := t.RestoreCore(rem); e != nil {
			return dto.RoundResult{}, errs.NewFatal("fall back err " + e.Error())
		}
		return dto.RoundResult{}, errs.NewWarn("after snapshot error " + err.Error())
	}
	rr.State.StartSnap = startsnap
	rr.State.AfterSnap = aftersnap

	// 6. restore if needed
	if replay {
		if err := t.RestoreCore(rem); err != nil {
			return dto.RoundResult{}, errs.NewFatal("restore core back err " + err.Error())
		}
	}

	// 7. dto
	return dto.NewRoundResultDTO(rr)
}

// PlayInternal 直接取得內部 RoundResult；常用於模擬器或測試
//
// 此行為跳過所有檢查，並只使用 1 單位下注（bet_unit）。
func (t *Table) PlayInternal() (*buf.RoundResult, error) {
	return t.play(t.ts.BetUnit)
}

// Begin 以牌桌的產生器開一局互動牌局（已發完起手牌）。
//
// 回傳的 Round 與 Table 共用產生器，打完之前不可再對同一張 Table 呼叫 Play / Begin。
func (t *Table) Begin() (*blackjack.Round, error) {
	r, err := blackjack.NewRound(t.core, t.rules)
	if err != nil {
		return nil, err
	}
	if err := r.Deal(); err != nil {
		return nil, err
	}
	return r, nil
}

func (t *Table) play(bet int) (*buf.RoundResult, error) {
	rr := t.RoundResult
	rr.Reset()
	r, err := blackjack.NewRound(t.core, t.rules)
	if err != nil {
		return nil, err
	}
	sum, err := r.AutoPlay()
	if err != nil {
		return nil, err
	}
	rr.Settle(bet, sum)
	return rr, nil
}

func (t *Table) valid(req *dto.PlayRequest) error {
	if req == nil {
		return errs.NewWarn("nil request")
	}
	if t.tableId != req.TableID {
		return errs.NewWarn("table id is not matched")
	}
	if req.TableName != "" && !strings.EqualFold(t.tableName, strings.TrimSpace(req.TableName)) {
		return errs.NewWarn("table name is not matched")
	}
	return t.validBet(req.Bet)
}

func (t *Table) validBet(bet int) error {
	if bet <= 0 {
		return errs.NewWarn("bet must be positive")
	}
	if bet%t.ts.BetUnit != 0 {
		return errs.Warnf("bet must be a multiple of bet unit %d", t.ts.BetUnit)
	}
	return nil
}

// SnapshotCore 取得產生器狀態
func (t *Table) SnapshotCore() ([]byte, error) {
	return t.core.Snapshot()
}

// RestoreCore 恢復產生器狀態
func (t *Table) RestoreCore(src []byte) error {
	return t.core.Restore(src)
}
