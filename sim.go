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
	"io"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/zintix-labs/cardlab/errs"
	"github.com/zintix-labs/cardlab/recorder"
	"github.com/zintix-labs/cardlab/spec"
	"github.com/zintix-labs/cardlab/stats"
	"golang.org/x/sync/errgroup"
)

const capPrepare int = 100

// playerQueue SimPlayers 派發玩家的緩衝
const playerQueue = 2048

// Simulator 用於大量自動牌局，可建立多張牌桌並平行紀錄統計。
//
// 每局固定押 1 個 bet_unit，玩家與莊家都依牌桌設定的停牌點數自動補牌。
// 第 0 張桌使用初始 seed，其餘牌桌的 seed 由 seedMaker 依序導出，所以同一個 seed 的結果可重現。
// Simulator 本身不可併發使用。
type Simulator struct {
	TableName string
	TableID   spec.TID
	ts        *spec.TableSetting
	initSeed  int64
	seedmaker *seedMaker
	tables    []*Table                  // 依 worker 編號
	recs      []*recorder.RoundRecorder // 依 worker 或玩家編號
}

func newSimulatorWithSeed(ts *spec.TableSetting, seed int64) (*Simulator, error) {
	t, err := newTableWithSeed(ts, seed)
	if err != nil {
		return nil, err
	}
	s := &Simulator{
		TableName: ts.TableName,
		TableID:   ts.TableID,
		ts:        ts,
		initSeed:  seed,
		seedmaker: newSeedMaker(seed),
		tables:    make([]*Table, 1, capPrepare),
		recs:      make([]*recorder.RoundRecorder, 0, capPrepare),
	}
	s.tables[0] = t
	return s, nil
}

// InitSeed 第一張桌的 seed
func (s *Simulator) InitSeed() int64 {
	return s.initSeed
}

// Sim 單線模擬：以一張牌桌連續打 rounds 局並回傳統計結果與用時
func (s *Simulator) Sim(rounds int, showpb bool) (*stats.StatReport, time.Duration, error) {
	return s.SimMP(rounds, 1, showpb)
}

// SimMP 平行執行 workers 張牌桌，每張 rounds 局，合併後回傳統計結果與用時
func (s *Simulator) SimMP(rounds int, workers int, showpb bool) (*stats.StatReport, time.Duration, error) {
	if workers < 1 {
		return nil, 0, errs.NewWarn("workers must > 0")
	}
	if rounds < 1 {
		return nil, 0, errs.NewWarn("round must > 0")
	}
	if err := s.prepare(workers, workers, 0); err != nil {
		return nil, 0, err
	}

	bar := startBar(rounds*workers, showpb)
	g, ctx := errgroup.WithContext(context.Background())
	for i := range workers {
		t, rec := s.tables[i], s.recs[i]
		g.Go(func() error {
			for range rounds {
				if ctx.Err() != nil {
					return nil
				}
				rr, err := t.PlayInternal()
				if err != nil {
					return err
				}
				rec.Record(rr)
				bar.Increment()
			}
			return nil
		})
	}
	err := g.Wait()
	used := finishBar(bar)
	if err != nil {
		return nil, 0, errs.Wrap(err, "sim round failed")
	}
	st, err := recorder.MergeRoundRecorder(s.recs[:workers])
	if err != nil {
		return nil, 0, err
	}
	return st.Done(), used, nil
}

// SimPlayers 模擬 players 位玩家各自帶入 initBets 注，最多打 rounds 局；
// 玩家在餘額不足一注或達到離場線時提早離桌。回傳牌桌報表與玩家體驗評估。
func (s *Simulator) SimPlayers(workers int, players int, initBets int, rounds int, showpb bool) (*stats.StatReport, *stats.EstimatorPlayers, time.Duration, error) {
	if players < 1 || initBets < 1 || rounds < 1 || workers < 1 {
		return nil, nil, 0, errs.NewWarn("invalid param")
	}
	if err := s.prepare(workers, players, initBets); err != nil {
		return nil, nil, 0, err
	}

	bar := startBar(players, showpb)
	g, ctx := errgroup.WithContext(context.Background())
	jobs := make(chan *recorder.RoundRecorder, playerQueue)
	for w := range workers {
		t := s.tables[w]
		g.Go(func() error {
			for rec := range jobs {
				if ctx.Err() != nil {
					continue
				}
				for range rounds {
					rr, err := t.PlayInternal()
					if err != nil {
						return err
					}
					if rec.RecordWithPlayer(rr) {
						break
					}
				}
				bar.Increment()
			}
			return nil
		})
	}
	g.Go(func() error {
		defer close(jobs)
		for _, rec := range s.recs[:players] {
			select {
			case jobs <- rec:
			case <-ctx.Done():
				return nil
			}
		}
		return nil
	})
	err := g.Wait()
	used := finishBar(bar)
	if err != nil {
		return nil, nil, 0, errs.Wrap(err, "sim round failed")
	}

	merged, err := recorder.MergeRoundRecorder(s.recs[:players])
	if err != nil {
		return nil, nil, 0, err
	}
	per := make([]*stats.StatReport, players)
	for i, rec := range s.recs[:players] {
		per[i] = rec.Done()
	}
	return merged.Done(), stats.EstimatorPlayerExp(per), used, nil
}

// prepare 補足 tables 張牌桌與 recs 份全新的紀錄員。
// 牌桌保留給下一次模擬繼續使用（產生器狀態延續），紀錄員每次重建。
func (s *Simulator) prepare(tables, recs, initBets int) error {
	for len(s.tables) < tables {
		t, err := newTableWithSeed(s.ts, s.seedmaker.next())
		if err != nil {
			return err
		}
		s.tables = append(s.tables, t)
	}
	s.recs = s.recs[:0]
	for range recs {
		r, err := recorder.NewRoundRecorder(s.ts, initBets)
		if err != nil {
			return err
		}
		s.recs = append(s.recs, r)
	}
	return nil
}

func startBar(total int, show bool) *pb.ProgressBar {
	bar := pb.New(total)
	if !show {
		bar.SetWriter(io.Discard)
	}
	return bar.Start()
}

func finishBar(bar *pb.ProgressBar) time.Duration {
	used := time.Since(bar.StartTime())
	bar.Finish()
	return used
}
