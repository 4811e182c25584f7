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

package dto

import (
	"slices"

	"github.com/zintix-labs/cardlab/corefmt"
	"github.com/zintix-labs/cardlab/errs"
	"github.com/zintix-labs/cardlab/sdk/blackjack"
	"github.com/zintix-labs/cardlab/sdk/buf"
	"github.com/zintix-labs/cardlab/sdk/cards"
	"github.com/zintix-labs/cardlab/sdk/core"
	"github.com/zintix-labs/cardlab/spec"
)

type RoundResult struct {
	TableName string            `json:"table"`       // 牌桌名稱
	TableID   spec.TID          `json:"tid"`         // 牌桌編號
	Generator core.Kind         `json:"generator"`   // 產生器
	Bet       int               `json:"bet"`         // 本局押注
	Return    int               `json:"return"`      // 含本金的總返還
	Outcome   blackjack.Outcome `json:"outcome"`     // draw / dealer / player
	Player    HandDTO           `json:"player"`      // 玩家手牌
	Dealer    HandDTO           `json:"dealer"`      // 莊家手牌
	State     RoundState        `json:"round_state"` // 產生器快照
}

type HandDTO struct {
	Cards   []cards.Card `json:"cards"`
	Text    string       `json:"text"`  // [Ace of Hearts, 5 of Clubs]
	Value   int          `json:"value"` // 爆牌為 -1
	Natural bool         `json:"natural,omitempty"`
}

type RoundState struct {
	StartSnapB64U string `json:"start_b64u"` // 必回
	AfterSnapB64U string `json:"after_b64u"` // 必回
}

func NewRoundResultDTO(rr *buf.RoundResult) (RoundResult, error) {
	if rr == nil {
		return RoundResult{}, errs.NewWarn("round result is nil")
	}
	sum := rr.Summary
	return RoundResult{
		TableName: rr.TableName,
		TableID:   rr.TableID,
		Generator: rr.Generator,
		Bet:       rr.Bet,
		Return:    rr.Return,
		Outcome:   sum.Outcome,
		Player:    newHandDTO(sum.Player, sum.PlayerValue, sum.PlayerNatural),
		Dealer:    newHandDTO(sum.Dealer, sum.DealerValue, sum.DealerNatural),
		State: RoundState{
			StartSnapB64U: corefmt.EncodeBase64URL(rr.State.StartSnap),
			AfterSnapB64U: corefmt.EncodeBase64URL(rr.State.AfterSnap),
		},
	}, nil
}

func newHandDTO(cs []cards.Card, value int, natural bool) HandDTO {
	cs = slices.Clone(cs)
	return HandDTO{
		Cards:   cs,
		Text:    cards.FormatCards(cs),
		Value:   value,
		Natural: natural,
	}
}

// SessionView 互動牌局的對外視圖。
//
// 玩家回合中只揭露莊家明牌；牌局結束後才回傳完整莊家手牌與結果。
type SessionView struct {
	ID        string             `json:"id"`
	TableID   spec.TID           `json:"tid"`
	Phase     string             `json:"phase"`
	Bet       int                `json:"bet"`
	Player    HandDTO            `json:"player"`
	DealerUp  *cards.Card        `json:"dealer_up,omitempty"`
	Dealer    *HandDTO           `json:"dealer,omitempty"`
	Outcome   *blackjack.Outcome `json:"outcome,omitempty"`
	Return    *int               `json:"return,omitempty"`
	Remaining int                `json:"remaining"`
}

// NewSessionView 由牌局狀態組出視圖；bet 用於結束時計算返還。
func NewSessionView(id string, tid spec.TID, bet int, r *blackjack.Round) SessionView {
	pc := r.PlayerCards()
	v := SessionView{
		ID:        id,
		TableID:   tid,
		Phase:     r.Phase().String(),
		Bet:       bet,
		Player:    newHandDTO(pc, blackjack.HandValue(pc), blackjack.IsNatural(pc)),
		Remaining: r.Remaining(),
	}
	if up, ok := r.DealerUp(); ok {
		v.DealerUp = &up
	}
	if sum, err := r.Result(); err == nil {
		d := newHandDTO(sum.Dealer, sum.DealerValue, sum.DealerNatural)
		out := sum.Outcome
		ret := sum.Return(bet)
		v.Dealer = &d
		v.Outcome = &out
		v.Return = &ret
	}
	return v
}
