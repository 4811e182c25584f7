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

// Package cardlab 提供 Cardlab 引擎的「組裝入口（assembler）」與「運行入口（runtime entry）」。
//
// Lab 把牌桌目錄（Catalog）與設定檔來源（fs.FS）組在一起，並提供建立下列物件的入口：
//   - Table：持有一個產生器的牌桌，對外提供 Play（自動牌局）與 Begin（互動牌局）。
//   - TableRuntime：每張牌桌一個 TablePool，給 HTTP 服務使用。
//   - Simulator：大量模擬與統計。
//   - SessionStore：HTTP 互動牌局（hit / stand）。
//
// 產生器種類（lcg / mt19937）與規則都寫在牌桌設定檔中，Lab 本身不綁定任何產生器。
package cardlab

import (
	"io/fs"
	"time"

	"github.com/zintix-labs/cardlab/catalog"
	"github.com/zintix-labs/cardlab/errs"
	"github.com/zintix-labs/cardlab/sdk/core"
	"github.com/zintix-labs/cardlab/spec"
)

// Configs 用來把一或多個設定檔來源（fs.FS）打包成 New() 需要的參數。
//
// 可以用 go:embed 把設定檔編進 binary，也可以用 os.DirFS 在本機開發時讀取目錄。
func Configs(cfgs ...fs.FS) []fs.FS {
	return cfgs
}

// Lab 是「組裝器（assembler）」與「運行入口（runtime entry）」。
//
// 使用流程通常分成兩階段：
//   - 註冊階段：建立 catalog、掃描設定檔、檢查重複與缺漏。
//   - 執行階段：Freeze 之後依牌桌 ID 建立 Table / Simulator / Runtime。
//
//	lab, _ := cardlab.NewAuto(cardlab.Configs(cfgFS))
//	t, _ := lab.NewTableWithSeed(1, 5489)
//	res, _ := t.Play(&dto.PlayRequest{TableID: 1, Bet: 1})
type Lab struct {
	cat *catalog.Catalog
	sum []catalog.Summary
	now func() time.Time
}

// New 建立一個 Lab instance（註冊階段）。cfgs 至少一個。
func New(cfgs []fs.FS) (*Lab, error) {
	if len(cfgs) == 0 {
		return nil, errs.NewFatal("configs required")
	}
	cata, err := catalog.New(cfgs...)
	if err != nil {
		return nil, err
	}
	return &Lab{cat: cata, now: time.Now}, nil
}

// NewAuto 建立一個直接進入執行階段的 Lab instance：註冊全部設定檔並 Freeze。
func NewAuto(cfgs []fs.FS) (*Lab, error) {
	lab, err := New(cfgs)
	if err != nil {
		return nil, err
	}
	if err := lab.RegisterAll(); err != nil {
		return nil, err
	}
	lab.Freeze()
	return lab, nil
}

func (l *Lab) Register(ents ...catalog.Entry) error {
	return l.cat.Register(ents...)
}

// RegisterAll 解析所有設定來源中尚未註冊的設定檔（.yaml/.yml/.json，依檔名排序），
// 用檔案內宣告的 TableID / TableName 一次性註冊。任何一個檔案失敗都不會寫入。
func (l *Lab) RegisterAll() error {
	entries, err := l.cat.Discover()
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return errs.NewFatal("no config files found to register")
	}
	return l.cat.Register(entries...)
}

func (l *Lab) Freeze() {
	l.cat.Freeze()
}

func (l *Lab) EntryById(id spec.TID) (catalog.Entry, bool) {
	return l.cat.GetByID(id)
}

func (l *Lab) EntryByName(name string) (catalog.Entry, bool) {
	return l.cat.GetByName(name)
}

func (l *Lab) IDs() []spec.TID {
	return l.cat.IDs()
}

func (l *Lab) All() []catalog.Entry {
	return l.cat.All()
}

// Summary 列出所有牌桌的設定摘要（需先 Freeze，結果會快取）。
func (l *Lab) Summary() ([]catalog.Summary, error) {
	if !l.cat.IsFrozen() {
		return nil, errs.NewFatal("catalog is not frozen yet")
	}
	if l.sum != nil {
		return l.sum, nil
	}
	ids := l.cat.IDs()
	cs := make([]catalog.Summary, 0, len(ids))
	for _, id := range ids {
		ts, err := l.cat.TableSettingById(id)
		if err != nil {
			return nil, errs.NewFatal("parse table setting failed")
		}
		cs = append(cs, catalog.NewSummary(ts))
	}
	l.sum = cs
	return l.sum, nil
}

// TableSetting 回傳牌桌設定（每次重新解析，呼叫端可自由修改）。
func (l *Lab) TableSetting(id spec.TID) (*spec.TableSetting, error) {
	if !l.cat.IsFrozen() {
		return nil, errs.NewFatal("catalog is not frozen yet")
	}
	return l.cat.TableSettingById(id)
}

// NewTable 依牌桌 ID 建立一張 Table，seed 由目前時間導出（core.TimeSeed）。
func (l *Lab) NewTable(id spec.TID) (*Table, error) {
	return l.NewTableWithSeed(id, core.TimeSeed(l.now()))
}

// NewTableWithSeed 與 NewTable 相同，但由呼叫端指定初始 seed。
//
// 同一份設定 + 同一個 seed 會發出完全相同的牌；任意時間點的重現請用 Snapshot/Restore。
func (l *Lab) NewTableWithSeed(id spec.TID, seed int64) (*Table, error) {
	ts, err := l.TableSetting(id)
	if err != nil {
		return nil, err
	}
	return newTableWithSeed(ts, seed)
}

func (l *Lab) NewSimulator(id spec.TID) (*Simulator, error) {
	return l.NewSimulatorWithSeed(id, core.TimeSeed(l.now()))
}

func (l *Lab) NewSimulatorWithSeed(id spec.TID, seed int64) (*Simulator, error) {
	ts, err := l.TableSetting(id)
	if err != nil {
		return nil, err
	}
	return newSimulatorWithSeed(ts, seed)
}

// NewSimulatorByJSON 以一份未註冊的牌桌設定（JSON）建立模擬器，用於試算新設定。
func (l *Lab) NewSimulatorByJSON(raw []byte, seed int64) (*Simulator, error) {
	ts, err := spec.GetTableSettingByJSON(raw)
	if err != nil {
		return nil, errs.WrapWarn(err, "invalid table setting")
	}
	return newSimulatorWithSeed(ts, seed)
}

// NewDevSimulator
//
// 只提供給Dev模式使用的單線模擬器，重點是保持可重現性
func (l *Lab) NewDevSimulator(id spec.TID, seed int64) (*DevSimulator, error) {
	ts, err := l.TableSetting(id)
	if err != nil {
		return nil, err
	}
	return newDevSimulator(ts, seed)
}

// NewSessionStore 建立互動牌局倉庫；maxSessions <= 0 與 ttl <= 0 時使用預設值。
func (l *Lab) NewSessionStore(maxSessions int, ttl time.Duration) *SessionStore {
	return newSessionStore(l, maxSessions, ttl, cryptoSeed())
}

// BuildRuntime 為每張牌桌建立一個 TablePool（每池 poolSize 張桌）。
func (l *Lab) BuildRuntime(poolSize int) (*TableRuntime, error) {
	// 進入 runtime 前，catalog 必須 Freeze
	l.Freeze()

	ids := l.cat.IDs()
	if len(ids) == 0 {
		return nil, errs.NewFatal("no tables registered")
	}

	rt := &TableRuntime{
		lab:      l,
		pools:    make(map[spec.TID]*TablePool, len(ids)),
		ids:      ids,
		done:     make(chan struct{}),
		poolSize: max(1, poolSize),
	}
	rt.reason.Store("")

	// 先全建好（fail-fast）
	for _, id := range ids {
		ts, err := l.cat.TableSettingById(id)
		if err != nil {
			return nil, err
		}
		tp, err := newTablePool(rt.poolSize, ts, cryptoSeed())
		if err != nil {
			return nil, err
		}
		rt.pools[id] = tp
	}
	return rt, nil
}
