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
	"github.com/zintix-labs/cardlab/corefmt"
	"github.com/zintix-labs/cardlab/dto"
	"github.com/zintix-labs/cardlab/errs"
	"github.com/zintix-labs/cardlab/sdk/blackjack"
	"github.com/zintix-labs/cardlab/spec"
	"github.com/zintix-labs/cardlab/stats"
)

const (
	devMaxRounds = 5000
	devMaxSim    = 3_000_000
)

// DevSimulator
//
// 只提供給Dev模式使用的模擬器，單線(不併發)，重點在可審計、可重現
type DevSimulator struct {
	sim      *Simulator // 只開放Sim功能
	t        *Table     // 逐局回放用（與 sim 同 seed）
	before   []byte
	after    []byte
	before64 string
	after64  string
}

func newDevSimulator(ts *spec.TableSetting, seed int64) (*DevSimulator, error) {
	sim, err := newSimulatorWithSeed(ts, seed)
	if err != nil {
		return nil, err
	}
	t, err := newTableWithSeed(ts, seed)
	if err != nil {
		return nil, err
	}
	simBe, err := sim.tables[0].SnapshotCore()
	if err != nil {
		return nil, err
	}
	be, err := t.SnapshotCore()
	if err != nil {
		return nil, err
	}
	be64 := corefmt.EncodeBase64URL(be)
	if corefmt.EncodeBase64URL(simBe) != be64 {
		return nil, errs.NewFatal("seeds are not equal")
	}
	return &DevSimulator{
		sim:      sim,
		t:        t,
		before:   be,
		before64: be64,
	}, nil
}

type DevRoundReport struct {
	Before      string            `json:"start_b64u"`
	After       string            `json:"after_b64u"`
	Round       int               `json:"round"`
	Rtp         float64           `json:"rtp"`
	TotalBet    int               `json:"total_bet"`
	TotalReturn int               `json:"total_return"`
	PlayerWins  int               `json:"player_wins"`
	DealerWins  int               `json:"dealer_wins"`
	Draws       int               `json:"draws"`
	Results     []dto.RoundResult `json:"results"`
}

func (d *DevSimulator) playOne() (dto.RoundResult, error) {
	req := &dto.PlayRequest{
		TableName: d.t.tableName,
		TableID:   d.t.tableId,
		Bet:       d.t.ts.BetUnit,
	}
	return d.t.Play(req)
}

// Rounds 由目前的產生器狀態連續打 round 局，每局附上前後快照。
func (d *DevSimulator) Rounds(round int) (DevRoundReport, error) {
	if round < 1 || round > devMaxRounds {
		return DevRoundReport{}, errs.NewWarn("round must be between 1 and 5,000")
	}

	ds := make([]dto.RoundResult, 0, round)
	for range round {
		result, err := d.playOne()
		if err != nil {
			return DevRoundReport{}, errs.Wrap(err, "play error")
		}
		ds = append(ds, result)
	}

	de := DevRoundReport{
		Before:  ds[0].State.StartSnapB64U,
		After:   ds[len(ds)-1].State.AfterSnapB64U,
		Round:   len(ds),
		Results: ds,
	}
	for _, r := range ds {
		de.TotalBet += r.Bet
		de.TotalReturn += r.Return
		switch r.Outcome {
		case blackjack.OutcomePlayer:
			de.PlayerWins++
		case blackjack.OutcomeDealer:
			de.DealerWins++
		default:
			de.Draws++
		}
	}
	de.Rtp = 100.0 * float64(de.TotalReturn) / float64(de.TotalBet)
	d.before64, d.after64 = de.Before, de.After
	return de, nil
}

// RestoreRounds 先把產生器恢復到 be64 快照再打 round 局。
func (d *DevSimulator) RestoreRounds(be64 string, round int) (DevRoundReport, error) {
	if round < 1 || round > devMaxRounds {
		return DevRoundReport{}, errs.NewWarn("round must be between 1 and 5,000")
	}
	be, err := corefmt.DecodeBase64URL(be64)
	if err != nil {
		return DevRoundReport{}, errs.NewWarn("decode snapshot failed: " + err.Error())
	}
	if err := d.t.RestoreCore(be); err != nil {
		return DevRoundReport{}, errs.NewWarn("table restore failed: " + err.Error())
	}
	d.before = be
	return d.Rounds(round)
}

type DevSimReport struct {
	Before string            `json:"before"`
	After  string            `json:"after"`
	Stat   *stats.StatReport `json:"statistic"`
}

func (d *DevSimulator) Sim(round int) (DevSimReport, error) {
	if round < 1 || round > devMaxSim {
		return DevSimReport{}, errs.NewWarn("round must be between 1 and 3,000,000")
	}
	t := d.sim.tables[0]
	be, err := t.SnapshotCore()
	if err != nil {
		return DevSimReport{}, err
	}
	d.before = be
	d.before64 = corefmt.EncodeBase64URL(be)

	stat, _, err := d.sim.Sim(round, false)
	if err != nil {
		return DevSimReport{}, errs.Wrap(err, "sim failed")
	}

	af, err := t.SnapshotCore()
	if err != nil {
		return DevSimReport{}, err
	}
	d.after = af
	d.after64 = corefmt.EncodeBase64URL(af)

	return DevSimReport{
		Before: d.before64,
		After:  d.after64,
		Stat:   stat,
	}, nil
}

func (d *DevSimulator) RestoreSim(be64 string, round int) (DevSimReport, error) {
	be, err := corefmt.DecodeBase64URL(be64)
	if err != nil {
		return DevSimReport{}, errs.WrapWarn(err, "decode snapshot failed")
	}
	if err := d.sim.tables[0].RestoreCore(be); err != nil {
		return DevSimReport{}, errs.WrapWarn(err, "restore simulator failed")
	}
	return d.Sim(round)
}

// Last 最近一次 Rounds / Sim 的前後快照（base64url）。
func (d *DevSimulator) Last() (before string, after string) {
	return d.before64, d.after64
}
