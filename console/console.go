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

// Package console 在終端機上跑一局互動 21 點：玩家以 y/n 決定是否補牌，莊家依規則補牌。
//
// 所有輸出文字都經由 x/text 的 message.Printer；目前只提供英文。
package console

import (
	"bufio"
	"errors"
	"io"
	"slices"
	"strings"

	"github.com/zintix-labs/cardlab/errs"
	"github.com/zintix-labs/cardlab/sdk/blackjack"
	"github.com/zintix-labs/cardlab/sdk/cards"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// 訊息 key
const (
	msgShowing    = "The dealer is showing : %s"
	msgHand       = "Your hand is :%s"
	msgAsk        = "Would you like another card? (y/n):"
	msgPlayerBust = "You have gone bust!"
	msgDealerHas  = "The dealer has : %s"
	msgDealerHits = "The dealer hits"
	msgDealerBust = "The dealer has gone bust!"
	msgSticks     = "The dealer sticks with: %s"
	msgDraw       = "It's a draw!"
	msgDealerWon  = "The dealer won!"
	msgPlayerWon  = "You won!"
)

var ErrLanguage = errs.NewWarn("language not recognized or implemented")

var messages = map[language.Tag]map[string]string{
	language.English: {
		msgShowing:    "The dealer is showing : %s",
		msgHand:       "Your hand is :%s",
		msgAsk:        "Would you like another card? (y/n):",
		msgPlayerBust: "You have gone bust!",
		msgDealerHas:  "The dealer has : %s",
		msgDealerHits: "The dealer hits",
		msgDealerBust: "The dealer has gone bust!",
		msgSticks:     "The dealer sticks with: %s",
		msgDraw:       "It's a draw!",
		msgDealerWon:  "The dealer won!",
		msgPlayerWon:  "You won!",
	},
}

var supported = language.NewMatcher([]language.Tag{language.English})

// Game 綁定一組輸入輸出與語言。
type Game struct {
	in  *bufio.Reader
	out io.Writer
	p   *message.Printer
}

// New 驗證語言標籤（例如 "en"、"en-US"）並建立 Game。
func New(lang string, in io.Reader, out io.Writer) (*Game, error) {
	tag, err := language.Parse(strings.TrimSpace(lang))
	if err != nil {
		return nil, ErrLanguage
	}
	_, idx, conf := supported.Match(tag)
	if conf < language.High || idx != 0 {
		return nil, ErrLanguage
	}
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for t, msgs := range messages {
		for k, v := range msgs {
			if err := b.SetString(t, k, v); err != nil {
				return nil, errs.Wrap(err, "build message catalog")
			}
		}
	}
	return &Game{
		in:  bufio.NewReader(in),
		out: out,
		p:   message.NewPrinter(language.English, message.Catalog(b)),
	}, nil
}

// Play 打完一局。r 尚未發牌時會先發牌。
//
// 輸入結束（EOF）視同停牌。
func (g *Game) Play(r *blackjack.Round) (blackjack.Summary, error) {
	if r.Phase() == blackjack.PhaseNew {
		if err := r.Deal(); err != nil {
			return blackjack.Summary{}, err
		}
	}
	opening := r.DealerCards()

	// 玩家爆牌時莊家在 Hit 內就補完牌，先記下來，等玩家訊息印完再輸出
	var hits [][]cards.Card
	r.OnDealerHit(func(_ cards.Card, dealer []cards.Card) {
		hits = append(hits, slices.Clone(dealer))
	})

	g.display(r)
	for r.Phase() == blackjack.PhasePlayer {
		more, err := g.ask()
		if err != nil {
			return blackjack.Summary{}, err
		}
		if !more {
			if err := r.Stand(); err != nil {
				return blackjack.Summary{}, err
			}
			break
		}
		if _, err := r.Hit(); err != nil {
			return blackjack.Summary{}, err
		}
		g.display(r)
		if r.PlayerValue() == blackjack.Bust {
			g.println(msgPlayerBust)
		}
	}

	g.println(msgDealerHas, cards.FormatCards(opening))
	for _, h := range hits {
		g.println(msgDealerHits)
		g.println(msgDealerHas, cards.FormatCards(h))
	}

	sum, err := r.Result()
	if err != nil {
		return blackjack.Summary{}, err
	}
	if sum.DealerBust() {
		g.println(msgDealerBust)
	} else {
		g.println(msgSticks, cards.FormatCards(sum.Dealer))
	}
	switch sum.Outcome {
	case blackjack.OutcomeDraw:
		g.println(msgDraw)
	case blackjack.OutcomeDealer:
		g.println(msgDealerWon)
	default:
		g.println(msgPlayerWon)
	}
	return sum, nil
}

func (g *Game) display(r *blackjack.Round) {
	up, _ := r.DealerUp()
	g.println(msgShowing, up.String())
	g.println(msgHand, cards.FormatCards(r.PlayerCards()))
}

// ask 重複詢問直到輸入 y 或 n（不分大小寫）。
func (g *Game) ask() (bool, error) {
	for {
		g.p.Fprintf(g.out, msgAsk)
		line, err := g.in.ReadString('\n')
		ans := strings.ToLower(strings.TrimSpace(line))
		switch ans {
		case "y":
			return true, nil
		case "n":
			return false, nil
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return false, nil
			}
			return false, errs.Wrap(err, "read answer")
		}
	}
}

func (g *Game) println(key string, a ...any) {
	g.p.Fprintf(g.out, key, a...)
	io.WriteString(g.out, "\n")
}
