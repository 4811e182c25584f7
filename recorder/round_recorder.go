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

package recorder

import (
	"github.com/zintix-labs/cardlab/errs"
	"github.com/zintix-labs/cardlab/sdk/blackjack"
	"github.com/zintix-labs/cardlab/sdk/buf"
	"github.com/zintix-labs/cardlab/spec"
	"github.com/zintix-labs/cardlab/stats"
)

// RoundRecorder 牌局紀錄員
//
// RoundRecorder 負責紀錄每局結果，並透過Done輸出統計報表
type RoundRecorder struct {
	Setting  spec.TableSetting
	BetUnit  int
	InitBets int
	Basic    *BasicRecord
	Outcome  *OutcomeRecord
	Dist     *DistRecord
	Player   *PlayerRecord
}

// BasicRecord 基本牌局資料紀錄
type BasicRecord struct {
	TotalBet         int
	TotalReturn      int
	TotalReturnSqSum int // 平方和
	Rounds           int
}

// OutcomeRecord 勝負與事件次數
type OutcomeRecord struct {
	PlayerWins     int
	DealerWins     int
	Draws          int
	PlayerBusts    int
	DealerBusts    int
	PlayerNaturals int
	DealerNaturals int
}

// DistRecord 最終點數落點統計
type DistRecord struct {
	Bucket             *stats.ValueBuckets
	PlayerValueCollect []int
	DealerValueCollect []int
}

// PlayerRecord 玩家統計
type PlayerRecord struct {
	leaveLine   int
	InitBalance int
	Balance     int
	MaxBalance  int
	MinBalance  int
	Bust        bool
	Cashout     bool
	Alive       bool
}

// NewRoundRecorder 以牌桌設定建立紀錄員；initBets 為玩家帶入的注數（0 表示不追蹤資金）。
func NewRoundRecorder(ts *spec.TableSetting, initBets int) (*RoundRecorder, error) {
	s := new(RoundRecorder)

	if ts == nil {
		return s, errs.NewFatal("table setting is nil")
	}
	if ts.BetUnit <= 0 {
		return s, errs.Fatalf("bet unit err %d", ts.BetUnit)
	}
	if initBets < 0 {
		return s, errs.Fatalf("init bets must not negative integer, got: %d", initBets)
	}
	// 通過valid
	s.Setting = *ts
	s.BetUnit = ts.BetUnit
	s.InitBets = initBets
	s.Basic = new(BasicRecord)
	s.Outcome = new(OutcomeRecord)
	s.Dist = newDistRecord()
	s.Player = newPlayerRecord(s.BetUnit, s.InitBets)

	return s, nil
}

// MergeRoundRecorder 合併多個 worker 的紀錄（玩家資金不合併）。
func MergeRoundRecorder(r []*RoundRecorder) (*RoundRecorder, error) {
	if len(r) == 0 {
		return nil, errs.NewFatal("merge round record err : empty input")
	}
	r0 := r[0]
	s, err := NewRoundRecorder(&r0.Setting, r0.InitBets)
	if err != nil {
		return s, err
	}
	for _, v := range r {
		if v.Setting.TableID != r0.Setting.TableID || v.Setting.TableName != r0.Setting.TableName {
			return s, errs.NewFatal("merge round record err : different table")
		}
		if v.BetUnit != r0.BetUnit {
			return s, errs.NewFatal("merge round record err : different bet unit")
		}
		if v.InitBets != r0.InitBets {
			return s, errs.NewFatal("merge round record err : different init bets")
		}
		s.Basic.TotalBet += v.Basic.TotalBet
		s.Basic.TotalReturn += v.Basic.TotalReturn
		s.Basic.TotalReturnSqSum += v.Basic.TotalReturnSqSum
		s.Basic.Rounds += v.Basic.Rounds

		o := v.Outcome
		s.Outcome.PlayerWins += o.PlayerWins
		s.Outcome.DealerWins += o.DealerWins
		s.Outcome.Draws += o.Draws
		s.Outcome.PlayerBusts += o.PlayerBusts
		s.Outcome.DealerBusts += o.DealerBusts
		s.Outcome.PlayerNaturals += o.PlayerNaturals
		s.Outcome.DealerNaturals += o.DealerNaturals

		// 整合Dist
		for i := range len(v.Dist.PlayerValueCollect) {
			s.Dist.PlayerValueCollect[i] += v.Dist.PlayerValueCollect[i]
			s.Dist.DealerValueCollect[i] += v.Dist.DealerValueCollect[i]
		}
	}
	return s, nil
}

// Record 以單局 RoundResult 更新統計（不含玩家資金）
func (s *RoundRecorder) Record(rr *buf.RoundResult) {
	s.recordBasic(rr)
	s.recordOutcome(rr)
	s.recordDist(rr)
}

// RecordWithPlayer 在 Record 的基礎上，進一步更新玩家餘額／離場狀態，並回傳玩家是否停止遊戲。
func (s *RoundRecorder) RecordWithPlayer(rr *buf.RoundResult) bool {
	if s.Player.Balance < s.BetUnit {
		return true
	}
	s.Record(rr)
	return s.recordPlayer(rr)
}

func (s *RoundRecorder) Done() *stats.StatReport {
	bufloat := float64(s.BetUnit)
	bb := bufloat * bufloat
	ts := s.Setting

	report := &stats.StatReport{
		Summary: &stats.SummaryReport{
			TableName:   ts.TableName,
			TableID:     ts.TableID,
			Generator:   ts.Generator,
			Decks:       ts.Decks,
			DealerStand: ts.DealerStand,
			PlayerStand: ts.PlayerStand,
			BetUnit:     s.BetUnit,
			TotalBet:    s.Basic.TotalBet,
			TotalReturn: s.Basic.TotalReturn,
			Rounds:      s.Basic.Rounds,
		},
		Mult: &stats.MultReport{
			TotalReturnMult:      float64(s.Basic.TotalReturn) / bufloat,
			TotalReturnMultSqSum: float64(s.Basic.TotalReturnSqSum) / bb,
		},
		Outcome: &stats.OutcomeReport{
			PlayerWins:     s.Outcome.PlayerWins,
			DealerWins:     s.Outcome.DealerWins,
			Draws:          s.Outcome.Draws,
			PlayerBusts:    s.Outcome.PlayerBusts,
			DealerBusts:    s.Outcome.DealerBusts,
			PlayerNaturals: s.Outcome.PlayerNaturals,
			DealerNaturals: s.Outcome.DealerNaturals,
		},
		Dist: &stats.DistReport{
			ValueBucket:        s.Dist.Bucket.ValueBucketStr(),
			PlayerValueCollect: s.Dist.PlayerValueCollect,
			DealerValueCollect: s.Dist.DealerValueCollect,
		},
		Player: &stats.PlayerReport{
			InitBalance: s.Player.InitBalance,
			Balance:     s.Player.Balance,
			MaxBalance:  s.Player.MaxBalance,
			MinBalance:  s.Player.MinBalance,
			Bust:        s.Player.Bust,
			Cashout:     s.Player.Cashout,
		},
	}
	report.Done()
	return report
}

func (s *RoundRecorder) recordBasic(rr *buf.RoundResult) {
	ret := rr.Return
	s.Basic.TotalBet += rr.Bet
	s.Basic.TotalReturn += ret
	s.Basic.TotalReturnSqSum += ret * ret
	s.Basic.Rounds++
}

func (s *RoundRecorder) recordOutcome(rr *buf.RoundResult) {
	o := s.Outcome
	sum := &rr.Summary
	switch sum.Outcome {
	case blackjack.OutcomePlayer:
		o.PlayerWins++
	case blackjack.OutcomeDealer:
		o.DealerWins++
	default:
		o.Draws++
	}
	if sum.PlayerBust() {
		o.PlayerBusts++
	}
	if sum.DealerBust() {
		o.DealerBusts++
	}
	if sum.PlayerNatural {
		o.PlayerNaturals++
	}
	if sum.DealerNatural {
		o.DealerNaturals++
	}
}

func (s *RoundRecorder) recordDist(rr *buf.RoundResult) {
	d := s.Dist
	d.PlayerValueCollect[d.Bucket.Index(rr.Summary.PlayerValue)]++
	d.DealerValueCollect[d.Bucket.Index(rr.Summary.DealerValue)]++
}

func (s *RoundRecorder) recordPlayer(rr *buf.RoundResult) bool {
	p := s.Player
	b := s.BetUnit

	// 更新資金
	p.Balance -= rr.Bet
	p.Balance += rr.Return

	// 更新歷史最高資產
	if p.Balance > p.MaxBalance {
		p.MaxBalance = p.Balance
	}
	// 更新歷史最低資產
	if p.Balance < p.MinBalance {
		p.MinBalance = p.Balance
	}

	// 更新結局
	leave := false
	if p.Balance < b {
		p.Bust = true
		leave = true
	}
	if p.Balance >= p.leaveLine {
		p.Cashout = true
		leave = true
	}
	return leave
}

func newDistRecord() *DistRecord {
	d := new(DistRecord)
	d.Bucket = stats.Buckets
	d.PlayerValueCollect = make([]int, stats.Buckets.Len())
	d.DealerValueCollect = make([]int, stats.Buckets.Len())
	return d
}

func newPlayerRecord(bu int, initBets int) *PlayerRecord {

	p := new(PlayerRecord)

	b := bu * initBets // 初始帶入總金額(依 bet_unit 計)

	p.InitBalance = b
	p.Balance = b
	p.MaxBalance = b
	p.MinBalance = b
	p.Cashout = false
	p.Bust = false
	p.Alive = false
	p.leaveLine = 3 * b // 設定離場條件(3倍本金)

	return p
}
