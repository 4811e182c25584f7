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

// Package dev 提供開發用的可回放端點：逐局結果（含前後快照）與小量統計。
package dev

import (
	"crypto/rand"
	"math"
	"math/big"
	"net/http"
	"strconv"
	"strings"

	"github.com/zintix-labs/cardlab"
	"github.com/zintix-labs/cardlab/catalog"
	"github.com/zintix-labs/cardlab/dto"
	"github.com/zintix-labs/cardlab/errs"
	"github.com/zintix-labs/cardlab/server/httperr"
	"github.com/zintix-labs/cardlab/server/netsvr"
	"github.com/zintix-labs/cardlab/server/svrcfg"
	"github.com/zintix-labs/cardlab/spec"
)

// devRequest 是 dev 端點的輸入 payload。
//
//   - tid 與 table 擇一；兩者都有時以 tid 為準。
//   - rounds 與舊欄位 round 擇一，rounds 優先。
//   - seed 為 int64 字串，空字串時自動產生（crypto/rand）。
//   - snap 為產生器快照（base64url）；提供 snap 時以 snap 為起點，seed 只用來建桌。
type devRequest struct {
	TID    int64  `json:"tid"`
	Table  string `json:"table"`
	Rounds int    `json:"rounds"`
	Round  int    `json:"round"`
	Seed   string `json:"seed"`
	Snap   string `json:"snap"`
}

func (r devRequest) round() int {
	if r.Rounds > 0 {
		return r.Rounds
	}
	return max(0, r.Round)
}

// Register 註冊 dev routes。
//
//   - GET  /dev/meta   ：牌桌設定摘要。
//   - POST /dev/rounds ：連續打 N 局並回傳每局結果（含 start_b64u / after_b64u）。
//   - POST /dev/sim    ：跑 N 局統計，不回傳逐局結果。
func Register(svr netsvr.NetRouter, cfg *svrcfg.SvrCfg) {
	svr.Get("/dev/meta", devMeta(cfg))
	svr.Post("/dev/rounds", devRounds(cfg))
	svr.Post("/dev/sim", devSim(cfg))
}

func devMeta(cfg *svrcfg.SvrCfg) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lab, ok := getLab(cfg)
		if !ok {
			httperr.Errs(w, errs.NewFatal("lab is required"))
			return
		}
		sum, err := lab.Summary()
		if err != nil {
			httperr.Errs(w, err)
			return
		}
		httperr.JSON(w, sum)
	}
}

// devRounds 執行可回放的連續牌局；snap 非空時走 RestoreRounds。
func devRounds(cfg *svrcfg.SvrCfg) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ds, req, ok := prepare(w, r, cfg)
		if !ok {
			return
		}
		var (
			report cardlab.DevRoundReport
			err    error
		)
		if snap := strings.TrimSpace(req.Snap); snap != "" {
			report, err = ds.RestoreRounds(snap, req.round())
		} else {
			report, err = ds.Rounds(req.round())
		}
		if err != nil {
			httperr.Errs(w, err)
			return
		}
		httperr.JSON(w, report)
	}
}

// devSim 與 devRounds 相同的輸入，但只回統計報表。
func devSim(cfg *svrcfg.SvrCfg) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ds, req, ok := prepare(w, r, cfg)
		if !ok {
			return
		}
		var (
			report cardlab.DevSimReport
			err    error
		)
		if snap := strings.TrimSpace(req.Snap); snap != "" {
			report, err = ds.RestoreSim(snap, req.round())
		} else {
			report, err = ds.Sim(req.round())
		}
		if err != nil {
			httperr.Errs(w, err)
			return
		}
		httperr.JSON(w, report)
	}
}

// prepare 解碼請求並建立 DevSimulator；失敗時已寫回錯誤。
func prepare(w http.ResponseWriter, r *http.Request, cfg *svrcfg.SvrCfg) (*cardlab.DevSimulator, *devRequest, bool) {
	req := new(devRequest)
	if err := dto.DecodeJSONBody(r, req); err != nil {
		httperr.Errs(w, err)
		return nil, nil, false
	}
	lab, ok := getLab(cfg)
	if !ok {
		httperr.Errs(w, errs.NewFatal("lab is required"))
		return nil, nil, false
	}
	sum, err := resolveSummary(lab, req)
	if err != nil {
		httperr.Errs(w, err)
		return nil, nil, false
	}
	if req.round() < 1 {
		httperr.Errs(w, errs.NewWarn("round is required"))
		return nil, nil, false
	}
	seed, err := resolveSeed(req.Seed)
	if err != nil {
		httperr.Errs(w, err)
		return nil, nil, false
	}
	ds, err := lab.NewDevSimulator(sum.TID, seed)
	if err != nil {
		httperr.Errs(w, err)
		return nil, nil, false
	}
	return ds, req, true
}

// getLab dev routes 不負責組裝，只使用上層注入的 Lab。
func getLab(cfg *svrcfg.SvrCfg) (*cardlab.Lab, bool) {
	if cfg == nil || cfg.Lab == nil {
		return nil, false
	}
	return cfg.Lab, true
}

// resolveSummary 解析牌桌：tid > 0 精準匹配；否則 table 先做不分大小寫的名稱匹配，再嘗試當作數字 id。
func resolveSummary(lab *cardlab.Lab, req *devRequest) (catalog.Summary, error) {
	sums, err := lab.Summary()
	if err != nil {
		return catalog.Summary{}, err
	}
	find := func(id spec.TID) (catalog.Summary, bool) {
		for _, s := range sums {
			if s.TID == id {
				return s, true
			}
		}
		return catalog.Summary{}, false
	}
	if req.TID > 0 {
		if s, ok := find(spec.TID(req.TID)); ok {
			return s, nil
		}
		return catalog.Summary{}, errs.NewWarn("tid not found")
	}
	name := strings.TrimSpace(req.Table)
	if name == "" {
		return catalog.Summary{}, errs.NewWarn("table is required")
	}
	for _, s := range sums {
		if strings.EqualFold(s.Name, name) {
			return s, nil
		}
	}
	if id, err := strconv.ParseUint(name, 10, 64); err == nil {
		if s, ok := find(spec.TID(id)); ok {
			return s, nil
		}
	}
	return catalog.Summary{}, errs.NewWarn("table not found")
}

// resolveSeed 空字串自動產生；非空必須為合法 int64。
func resolveSeed(seed string) (int64, error) {
	seed = strings.TrimSpace(seed)
	if seed == "" {
		rnd, err := rand.Int(rand.Reader, big.NewInt(math.MaxInt64))
		if err != nil {
			return 0, errs.NewWarn("seed generate failed")
		}
		return rnd.Int64(), nil
	}
	v, err := strconv.ParseInt(seed, 10, 64)
	if err != nil {
		return 0, errs.NewWarn("seed must be int64")
	}
	return v, nil
}
