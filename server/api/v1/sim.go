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

package v1

import (
	"crypto/rand"
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"net/http"
	"net/url"
	"strconv"

	"github.com/zintix-labs/cardlab"
	"github.com/zintix-labs/cardlab/dto"
	"github.com/zintix-labs/cardlab/errs"
	"github.com/zintix-labs/cardlab/server/httperr"
	"github.com/zintix-labs/cardlab/spec"
	"github.com/zintix-labs/cardlab/stats"
)

const (
	maxSimRounds    = 1_000_000
	maxSimWorkers   = 8
	maxPlayers      = 100_000
	maxPlayerRounds = 15_000
	simPlayerWorker = 4
)

type SimHandler struct {
	Lab *cardlab.Lab
}

func NewSimHandler(lab *cardlab.Lab) (*SimHandler, error) {
	if lab == nil {
		return nil, errs.NewFatal("lab is required")
	}
	return &SimHandler{Lab: lab}, nil
}

// 內部結構 不影響外部 也不被外部使用
type simResponse struct {
	Stats    *stats.StatReport `json:"stats"`
	Seed     int64             `json:"seed"`
	UsedTime int64             `json:"used_ms"`
}

func (sh *SimHandler) Sim(w http.ResponseWriter, q *http.Request) {
	type SimRequestBody struct {
		TID    spec.TID `json:"tid"`
		Round  int      `json:"round"`
		Worker int      `json:"worker"`
		Seed   *int64   `json:"seed,omitempty"`
	}
	if q.Method != http.MethodGet && q.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	req := new(SimRequestBody)
	if q.Method == http.MethodGet {
		v := q.URL.Query()
		tid, err := queryInt(v, "tid", true)
		if err != nil {
			httperr.Errs(w, err)
			return
		}
		req.TID = spec.TID(tid)
		if req.Round, err = queryInt(v, "round", true); err != nil {
			httperr.Errs(w, err)
			return
		}
		if req.Worker, err = queryInt(v, "worker", false); err != nil {
			httperr.Errs(w, err)
			return
		}
		if req.Seed, err = querySeed(v); err != nil {
			httperr.Errs(w, err)
			return
		}
	}
	if q.Method == http.MethodPost {
		if err := dto.DecodeJSONBody(q, req); err != nil {
			httperr.Errs(w, err)
			return
		}
	}
	// 業務檢驗
	if _, ok := sh.Lab.EntryById(req.TID); !ok {
		httperr.Errs(w, errs.NewWarn("tid not found"))
		return
	}
	if req.Round < 1 || req.Round > maxSimRounds {
		httperr.Errs(w, errs.NewWarn("round must be between 1 to 1,000,000"))
		return
	}
	worker := max(1, req.Worker)
	if worker > maxSimWorkers {
		httperr.Errs(w, errs.NewWarn("worker must be between 1 and 8"))
		return
	}
	seed, err := seedOrRandom(req.Seed)
	if err != nil {
		httperr.Errs(w, err)
		return
	}
	sim, err := sh.Lab.NewSimulatorWithSeed(req.TID, seed)
	if err != nil {
		// 錯誤來自 lab，尊重錯誤分級
		httperr.Errs(w, errs.Wrap(err, fmt.Sprintf("build simulator err: %d", req.TID)))
		return
	}
	var st *stats.StatReport
	var used int64
	if worker == 1 {
		rep, d, serr := sim.Sim(req.Round, false)
		st, used, err = rep, d.Milliseconds(), serr
	} else {
		// 多工時每個 worker 各打 round/worker 局（至少 1 局）
		rep, d, serr := sim.SimMP(max(1, req.Round/worker), worker, false)
		st, used, err = rep, d.Milliseconds(), serr
	}
	if err != nil {
		httperr.Errs(w, errs.Wrap(err, "simulate err"))
		return
	}
	httperr.JSON(w, simResponse{Stats: st, Seed: seed, UsedTime: used})
}

func (sh *SimHandler) SimPlayers(w http.ResponseWriter, r *http.Request) {
	type SimPlayerRequestBody struct {
		TID    spec.TID `json:"tid"`
		Player int      `json:"player"`
		Bets   int      `json:"bets"`
		Round  int      `json:"round"`
		Seed   *int64   `json:"seed,omitempty"`
	}
	type SimPlayerResponse struct {
		StatsReport *stats.StatReport       `json:"stats"`
		Estimator   *stats.EstimatorPlayers `json:"est"`
		Seed        int64                   `json:"seed"`
		UsedTime    int64                   `json:"used_ms"`
	}
	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	req := new(SimPlayerRequestBody)
	if r.Method == http.MethodGet {
		v := r.URL.Query()
		tid, err := queryInt(v, "tid", true)
		if err != nil {
			httperr.Errs(w, err)
			return
		}
		req.TID = spec.TID(tid)
		if req.Player, err = queryInt(v, "player", true); err != nil {
			httperr.Errs(w, err)
			return
		}
		if req.Bets, err = queryInt(v, "bets", true); err != nil {
			httperr.Errs(w, err)
			return
		}
		if req.Round, err = queryInt(v, "round", true); err != nil {
			httperr.Errs(w, err)
			return
		}
		if req.Seed, err = querySeed(v); err != nil {
			httperr.Errs(w, err)
			return
		}
	}
	if r.Method == http.MethodPost {
		if err := dto.DecodeJSONBody(r, req); err != nil {
			httperr.Errs(w, err)
			return
		}
	}
	// 業務邏輯判斷
	if _, ok := sh.Lab.EntryById(req.TID); !ok {
		httperr.Errs(w, errs.NewWarn("tid not found"))
		return
	}
	if req.Player < 1 || req.Player > maxPlayers {
		httperr.Errs(w, errs.NewWarn("player must be between 1 and 100,000"))
		return
	}
	if req.Bets < 1 {
		httperr.Errs(w, errs.NewWarn("bets must be at least 1"))
		return
	}
	if req.Round < 1 || req.Round > maxPlayerRounds {
		httperr.Errs(w, errs.NewWarn("round must be between 1 and 15,000"))
		return
	}
	seed, err := seedOrRandom(req.Seed)
	if err != nil {
		httperr.Errs(w, err)
		return
	}
	sim, err := sh.Lab.NewSimulatorWithSeed(req.TID, seed)
	if err != nil {
		httperr.Errs(w, errs.Wrap(err, fmt.Sprintf("build simulator err: %d", req.TID)))
		return
	}
	st, est, used, err := sim.SimPlayers(simPlayerWorker, req.Player, req.Bets, req.Round, false)
	if err != nil {
		httperr.Errs(w, errs.Wrap(err, fmt.Sprintf("simulator err: %d", req.TID)))
		return
	}
	httperr.JSON(w, &SimPlayerResponse{
		StatsReport: st,
		Estimator:   est,
		Seed:        seed,
		UsedTime:    used.Milliseconds(),
	})
}

// SimByCfg 以請求中的牌桌設定（未註冊）直接模擬，用於試算新設定。
func (sh *SimHandler) SimByCfg(w http.ResponseWriter, r *http.Request) {
	type SimRequestByJson struct {
		Rounds       int             `json:"round"`
		TableSetting json.RawMessage `json:"cfg"`
		Seed         *int64          `json:"seed,omitempty"`
	}
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	req := new(SimRequestByJson)
	if err := dto.DecodeJSONBody(r, req); err != nil {
		httperr.Errs(w, err)
		return
	}
	if req.Rounds < 1 || req.Rounds > maxSimRounds {
		httperr.Errs(w, errs.NewWarn("round must be between 1 to 1,000,000"))
		return
	}
	if len(req.TableSetting) == 0 {
		httperr.Errs(w, errs.NewWarn("cfg is required"))
		return
	}
	seed, err := seedOrRandom(req.Seed)
	if err != nil {
		httperr.Errs(w, err)
		return
	}
	sim, err := sh.Lab.NewSimulatorByJSON(req.TableSetting, seed)
	if err != nil {
		httperr.Errs(w, err)
		return
	}
	st, used, err := sim.Sim(req.Rounds, false)
	if err != nil {
		httperr.Errs(w, err)
		return
	}
	httperr.JSON(w, simResponse{Stats: st, Seed: seed, UsedTime: used.Milliseconds()})
}

// ============================================================
// ** helpers **
// ============================================================

// queryInt 讀取非負整數參數；required 且缺值時回 Warn。
func queryInt(v url.Values, name string, required bool) (int, error) {
	s := v.Get(name)
	if s == "" {
		if required {
			return 0, errs.NewWarn(name + " is required")
		}
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, errs.NewWarn(name + " must be non-negative integer")
	}
	return n, nil
}

func querySeed(v url.Values) (*int64, error) {
	s := v.Get("seed")
	if s == "" {
		return nil, nil
	}
	u, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil, errs.NewWarn("seed must be int64")
	}
	return &u, nil
}

// seedOrRandom 未指定 seed 時以 crypto/rand 產生 [0, MaxInt64)
func seedOrRandom(seed *int64) (int64, error) {
	if seed != nil {
		return *seed, nil
	}
	rnd, err := rand.Int(rand.Reader, big.NewInt(math.MaxInt64))
	if err != nil {
		return 0, errs.NewWarn("seed generate failed")
	}
	return rnd.Int64(), nil
}
