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

package cards

import (
	"slices"
	"strings"

	"github.com/zintix-labs/cardlab/errs"
	"github.com/zintix-labs/cardlab/sdk/core"
)

const DeckSize = 52

// MaxDecks 單一牌靴最多幾副牌
const MaxDecks = 8

var ErrEmptyDeck = errs.NewWarn("deck is empty")

// Deck 未抽出的牌，順序有意義。
type Deck struct {
	cards []Card
}

// NewDeck 依 花色 x 點數 的順序建立一副 52 張牌。
func NewDeck() *Deck {
	d := &Deck{cards: make([]Card, 0, DeckSize)}
	d.appendDeck()
	return d
}

// NewShoe 串接 n 副牌，n 需介於 1 與 MaxDecks。
func NewShoe(n int) (*Deck, error) {
	if n < 1 || n > MaxDecks {
		return nil, errs.Warnf("invalid deck count: %d (want 1..%d)", n, MaxDecks)
	}
	d := &Deck{cards: make([]Card, 0, DeckSize*n)}
	for i := 0; i < n; i++ {
		d.appendDeck()
	}
	return d, nil
}

func (d *Deck) appendDeck() {
	for _, s := range Suits {
		for _, r := range Ranks {
			d.cards = append(d.cards, Card{Suit: s, Rank: r})
		}
	}
}

func (d *Deck) Len() int { return len(d.cards) }

// Cards 回傳剩餘牌的副本
func (d *Deck) Cards() []Card {
	return slices.Clone(d.cards)
}

// Draw 抽出 cards[src.Uint32() % len]，其餘牌保持原順序。
func (d *Deck) Draw(src core.Source32) (Card, error) {
	n := len(d.cards)
	if n == 0 {
		return Card{}, ErrEmptyDeck
	}
	i := int(src.Uint32() % uint32(n))
	c := d.cards[i]
	d.cards = slices.Delete(d.cards, i, i+1)
	return c, nil
}

// Hand 手牌
type Hand struct {
	cards []Card
}

func NewHand(cs ...Card) *Hand {
	return &Hand{cards: slices.Clone(cs)}
}

func (h *Hand) Add(c Card) { h.cards = append(h.cards, c) }

// DrawFrom 由牌堆抽一張加入手牌
func (h *Hand) DrawFrom(d *Deck, src core.Source32) (Card, error) {
	c, err := d.Draw(src)
	if err != nil {
		return Card{}, err
	}
	h.Add(c)
	return c, nil
}

func (h *Hand) Cards() []Card { return slices.Clone(h.cards) }

func (h *Hand) Len() int { return len(h.cards) }

// First 第一張牌（莊家明牌）；空手牌回傳 false。
func (h *Hand) First() (Card, bool) {
	if len(h.cards) == 0 {
		return Card{}, false
	}
	return h.cards[0], true
}

// String 例如 "[Ace of Hearts, 5 of Clubs]"
func (h *Hand) String() string {
	return FormatCards(h.cards)
}

func FormatCards(cs []Card) string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, c := range cs {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(c.String())
	}
	sb.WriteByte(']')
	return sb.String()
}
