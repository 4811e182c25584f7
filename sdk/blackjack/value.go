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

// Package blackjack 實作簡化版 21 點：一位玩家對莊家，無分牌、無加倍、無保險。
package blackjack

import (
	"github.com/zintix-labs/cardlab/errs"
	"github.com/zintix-labs/cardlab/sdk/cards"
)

const (
	// Blackjack 最大合法點數
	Blackjack = 21
	// Bust 爆牌時 HandValue 的回傳值
	Bust = -1
)

// HandValue 回傳手牌的最佳點數；超過 21 回傳 Bust。
//
// 先把 Ace 都算 1，若有 Ace 且加 10 不超過 21 則加 10（最多只會有一張 Ace 算 11）。
func HandValue(cs []cards.Card) int {
	sum := 0
	hasAce := false
	for _, c := range cs {
		sum += c.Value()
		if c.IsAce() {
			hasAce = true
		}
	}
	if hasAce && sum+10 <= Blackjack {
		sum += 10
	}
	if sum > Blackjack {
		return Bust
	}
	return sum
}

// IsNatural 起手兩張即為 21
func IsNatural(cs []cards.Card) bool {
	return len(cs) == 2 && HandValue(cs) == Blackjack
}

type Outcome uint8

const (
	OutcomeDraw Outcome = iota
	OutcomeDealer
	OutcomePlayer
)

var outcomeNames = [...]string{"draw", "dealer", "player"}

func (o Outcome) String() string {
	if int(o) < len(outcomeNames) {
		return outcomeNames[o]
	}
	return "unknown"
}

func (o Outcome) MarshalText() ([]byte, error) {
	if int(o) >= len(outcomeNames) {
		return nil, errs.Warnf("invalid outcome: %d", o)
	}
	return []byte(outcomeNames[o]), nil
}

func (o *Outcome) UnmarshalText(b []byte) error {
	for i, n := range outcomeNames {
		if n == string(b) {
			*o = Outcome(i)
			return nil
		}
	}
	return errs.Warnf("invalid outcome: %q", b)
}

// Decide 比較雙方點數決定勝負，爆牌以 Bust(-1) 參與比較：
// 雙方都爆牌為平手，一方爆牌則另一方勝。
func Decide(player, dealer int) Outcome {
	switch {
	case dealer == player:
		return OutcomeDraw
	case dealer > player:
		return OutcomeDealer
	default:
		return OutcomePlayer
	}
}
