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

package blackjack

import "github.com/zintix-labs/cardlab/sdk/cards"

// Summary 一局結束後的結果
type Summary struct {
	Player        []cards.Card `json:"player"`
	Dealer        []cards.Card `json:"dealer"`
	PlayerValue   int          `json:"player_value"`
	DealerValue   int          `json:"dealer_value"`
	Outcome       Outcome      `json:"outcome"`
	PlayerNatural bool         `json:"player_natural"`
	DealerNatural bool         `json:"dealer_natural"`
}

func newSummary(player, dealer []cards.Card) Summary {
	pv := HandValue(player)
	dv := HandValue(dealer)
	return Summary{
		Player:        player,
		Dealer:        dealer,
		PlayerValue:   pv,
		DealerValue:   dv,
		Outcome:       Decide(pv, dv),
		PlayerNatural: IsNatural(player),
		DealerNatural: IsNatural(dealer),
	}
}

func (s Summary) PlayerBust() bool { return s.PlayerValue == Bust }

func (s Summary) DealerBust() bool { return s.DealerValue == Bust }

// Return 以 1:1 賠率計算下注 bet 的總返還（含本金）：贏 2*bet、平手 bet、輸 0。
func (s Summary) Return(bet int) int {
	switch s.Outcome {
	case OutcomePlayer:
		return 2 * bet
	case OutcomeDraw:
		return bet
	default:
		return 0
	}
}
