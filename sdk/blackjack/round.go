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

import (
	"github.com/zintix-labs/cardlab/errs"
	"github.com/zintix-labs/cardlab/sdk/cards"
	"github.com/zintix-labs/cardlab/sdk/core"
)

// Rules 牌桌規則
//
// DealerStand / PlayerStand：點數 >= 此值即停牌（PlayerStand 只用於 AutoPlay）。
type Rules struct {
	Decks       int `json:"decks"        yaml:"decks"`
	DealerStand int `json:"dealer_stand" yaml:"dealer_stand"`
	PlayerStand int `json:"player_stand" yaml:"player_stand"`
}

func DefaultRules() Rules {
	return Rules{Decks: 1, DealerStand: 17, PlayerStand: 17}
}

func (r Rules) Valid() error {
	if r.Decks < 1 || r.Decks > cards.MaxDecks {
		return errs.Warnf("invalid decks: %d (want 1..%d)", r.Decks, cards.MaxDecks)
	}
	if r.DealerStand < 2 || r.DealerStand > Blackjack {
		return errs.Warnf("invalid dealer_stand: %d (want 2..21)", r.DealerStand)
	}
	if r.PlayerStand < 2 || r.PlayerStand > Blackjack {
		return errs.Warnf("invalid player_stand: %d (want 2..21)", r.PlayerStand)
	}
	return nil
}

type Phase uint8

const (
	PhaseNew    Phase = iota // 尚未發牌
	PhasePlayer              // 等待玩家 Hit / Stand
	PhaseDone                // 莊家已完成，結果可讀
)

func (p Phase) String() string {
	switch p {
	case PhaseNew:
		return "new"
	case PhasePlayer:
		return "player"
	case PhaseDone:
		return "done"
	default:
		return "unknown"
	}
}

var (
	ErrWrongPhase = errs.NewWarn("action not allowed in current phase")
	ErrNotDone    = errs.NewWarn("round is not finished")
)

// Round 一局牌：一副（或多副）新牌、一位玩家、一位莊家。
//
// Round 不是 goroutine-safe；src 由 Round 的擁有者獨佔。
type Round struct {
	src    core.Source32
	rules  Rules
	deck   *cards.Deck
	player *cards.Hand
	dealer *cards.Hand
	phase  Phase

	onDealerHit func(c cards.Card, dealer []cards.Card)
}

func NewRound(src core.Source32, rules Rules) (*Round, error) {
	if src == nil {
		return nil, errs.NewFatal("round: nil random source")
	}
	if err := rules.Valid(); err != nil {
		return nil, err
	}
	deck, err := cards.NewShoe(rules.Decks)
	if err != nil {
		return nil, err
	}
	return &Round{
		src:    src,
		rules:  rules,
		deck:   deck,
		player: cards.NewHand(),
		dealer: cards.NewHand(),
	}, nil
}

// OnDealerHit 註冊莊家每次補牌後的回呼（console 用來輸出過程）。
func (r *Round) OnDealerHit(fn func(c cards.Card, dealer []cards.Card)) {
	r.onDealerHit = fn
}

func (r *Round) Phase() Phase { return r.phase }

func (r *Round) Rules() Rules { return r.rules }

// Deal 發起手牌：玩家、莊家輪流各兩張。
func (r *Round) Deal() error {
	if r.phase != PhaseNew {
		return ErrWrongPhase
	}
	for i := 0; i < 2; i++ {
		if _, err := r.player.DrawFrom(r.deck, r.src); err != nil {
			return err
		}
		if _, err := r.dealer.DrawFrom(r.deck, r.src); err != nil {
			return err
		}
	}
	r.phase = PhasePlayer
	return nil
}

// Hit 玩家補一張；爆牌時自動結束玩家回合並由莊家完成補牌。
func (r *Round) Hit() (cards.Card, error) {
	if r.phase != PhasePlayer {
		return cards.Card{}, ErrWrongPhase
	}
	c, err := r.player.DrawFrom(r.deck, r.src)
	if err != nil {
		return cards.Card{}, err
	}
	if HandValue(r.player.Cards()) == Bust {
		if err := r.dealerPlay(); err != nil {
			return c, err
		}
	}
	return c, nil
}

// Stand 玩家停牌，莊家在 0 < 點數 < DealerStand 時持續補牌。
func (r *Round) Stand() error {
	if r.phase != PhasePlayer {
		return ErrWrongPhase
	}
	return r.dealerPlay()
}

// 玩家爆牌時莊家仍照常補牌，點數比較不受影響。
func (r *Round) dealerPlay() error {
	for {
		v := HandValue(r.dealer.Cards())
		if v <= 0 || v >= r.rules.DealerStand {
			break
		}
		c, err := r.dealer.DrawFrom(r.deck, r.src)
		if err != nil {
			return err
		}
		if r.onDealerHit != nil {
			r.onDealerHit(c, r.dealer.Cards())
		}
	}
	r.phase = PhaseDone
	return nil
}

// AutoPlay 以固定策略打完整局：玩家在 0 < 點數 < PlayerStand 時補牌。
func (r *Round) AutoPlay() (Summary, error) {
	if r.phase == PhaseNew {
		if err := r.Deal(); err != nil {
			return Summary{}, err
		}
	}
	for r.phase == PhasePlayer {
		v := HandValue(r.player.Cards())
		if v <= 0 || v >= r.rules.PlayerStand {
			if err := r.Stand(); err != nil {
				return Summary{}, err
			}
			break
		}
		if _, err := r.Hit(); err != nil {
			return Summary{}, err
		}
	}
	return r.Result()
}

func (r *Round) PlayerCards() []cards.Card { return r.player.Cards() }

func (r *Round) DealerCards() []cards.Card { return r.dealer.Cards() }

// DealerUp 莊家明牌
func (r *Round) DealerUp() (cards.Card, bool) { return r.dealer.First() }

func (r *Round) PlayerValue() int { return HandValue(r.player.Cards()) }

func (r *Round) DealerValue() int { return HandValue(r.dealer.Cards()) }

// Remaining 牌堆剩餘張數
func (r *Round) Remaining() int { return r.deck.Len() }

// Result 回傳已結束牌局的摘要。
func (r *Round) Result() (Summary, error) {
	if r.phase != PhaseDone {
		return Summary{}, ErrNotDone
	}
	return newSummary(r.player.Cards(), r.dealer.Cards()), nil
}
