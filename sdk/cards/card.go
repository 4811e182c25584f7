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

// Package cards 定義撲克牌、牌堆與手牌。
//
// 牌堆的抽牌規則固定為 index = Uint32() % len，抽出後其餘牌保持原順序；
// 因此同一個產生器種子永遠抽出同一串牌。
package cards

import (
	"github.com/zintix-labs/cardlab/errs"
)

type Suit uint8

const (
	Hearts Suit = iota
	Diamonds
	Clubs
	Spades
)

var suitNames = [...]string{"Hearts", "Diamonds", "Clubs", "Spades"}

// Suits 為建牌時的花色順序。
var Suits = [...]Suit{Hearts, Diamonds, Clubs, Spades}

func (s Suit) String() string {
	if int(s) < len(suitNames) {
		return suitNames[s]
	}
	return "Suit(?)"
}

func (s Suit) MarshalText() ([]byte, error) {
	if int(s) >= len(suitNames) {
		return nil, errs.Warnf("invalid suit: %d", s)
	}
	return []byte(suitNames[s]), nil
}

func (s *Suit) UnmarshalText(b []byte) error {
	for i, n := range suitNames {
		if n == string(b) {
			*s = Suit(i)
			return nil
		}
	}
	return errs.Warnf("invalid suit: %q", b)
}

type Rank uint8

const (
	Ace Rank = iota + 1
	Two
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
)

var rankNames = [...]string{"", "Ace", "2", "3", "4", "5", "6", "7", "8", "9", "10", "J", "Q", "K"}

// Ranks 為建牌時的點數順序。
var Ranks = [...]Rank{Ace, Two, Three, Four, Five, Six, Seven, Eight, Nine, Ten, Jack, Queen, King}

func (r Rank) String() string {
	if r >= Ace && r <= King {
		return rankNames[r]
	}
	return "Rank(?)"
}

func (r Rank) MarshalText() ([]byte, error) {
	if r < Ace || r > King {
		return nil, errs.Warnf("invalid rank: %d", r)
	}
	return []byte(rankNames[r]), nil
}

func (r *Rank) UnmarshalText(b []byte) error {
	for i := int(Ace); i <= int(King); i++ {
		if rankNames[i] == string(b) {
			*r = Rank(i)
			return nil
		}
	}
	return errs.Warnf("invalid rank: %q", b)
}

// Card 一張牌
type Card struct {
	Suit Suit `json:"suit" yaml:"suit"`
	Rank Rank `json:"rank" yaml:"rank"`
}

// String 例如 "Ace of Hearts"
func (c Card) String() string {
	return c.Rank.String() + " of " + c.Suit.String()
}

// Value 回傳單張牌點數：Ace 固定為 1，J/Q/K 為 10，其餘為牌面數字。
//
// Ace 要不要算 11 由整手牌決定（見 blackjack.HandValue）。
func (c Card) Value() int {
	if c.Rank >= Ten {
		return 10
	}
	return int(c.Rank)
}

func (c Card) IsAce() bool {
	return c.Rank == Ace
}

func (c Card) Valid() bool {
	return int(c.Suit) < len(suitNames) && c.Rank >= Ace && c.Rank <= King
}
