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

package console

import (
	"bytes"
	"strings"
	"testing"

	"github.com/zintix-labs/cardlab/sdk/blackjack"
	"github.com/zintix-labs/cardlab/sdk/core"
)

func newRound(t *testing.T, src core.Source32) *blackjack.Round {
	t.Helper()
	r, err := blackjack.NewRound(src, blackjack.DefaultRules())
	if err != nil {
		t.Fatalf("new round: %v", err)
	}
	return r
}

func TestLanguage(t *testing.T) {
	for _, lang := range []string{"en", "EN", "en-US"} {
		if _, err := New(lang, strings.NewReader(""), &bytes.Buffer{}); err != nil {
			t.Fatalf("%s should be accepted: %v", lang, err)
		}
	}
	for _, lang := range []string{"fr", "zh-TW", "", "not a tag"} {
		if _, err := New(lang, strings.NewReader(""), &bytes.Buffer{}); err != ErrLanguage {
			t.Fatalf("%q should be rejected, got %v", lang, err)
		}
	}
}

func TestPlayStandDealerHits(t *testing.T) {
	var out bytes.Buffer
	g, err := New("en", strings.NewReader("maybe\nN\n"), &out)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	sum, err := g.Play(newRound(t, core.NewMT19937(5489)))
	if err != nil {
		t.Fatalf("play: %v", err)
	}
	if sum.Outcome != blackjack.OutcomePlayer {
		t.Fatalf("want player win, got %s", sum.Outcome)
	}
	got := out.String()
	want := []string{
		"The dealer is showing : 2 of Hearts\n",
		"Your hand is :[Ace of Hearts, J of Clubs]\n",
		"The dealer has : [2 of Hearts, Ace of Spades]\n",
		"The dealer hits\nThe dealer has : [2 of Hearts, Ace of Spades, 5 of Clubs]\n",
		"The dealer sticks with: [2 of Hearts, Ace of Spades, 5 of Clubs]\n",
		"You won!\n",
	}
	for _, w := range want {
		if !strings.Contains(got, w) {
			t.Fatalf("output missing %q:\n%s", w, got)
		}
	}
	if n := strings.Count(got, "Would you like another card? (y/n):"); n != 2 {
		t.Fatalf("prompt must repeat until y/n, shown %d times", n)
	}
}

func TestPlayBustThenDealer(t *testing.T) {
	var out bytes.Buffer
	g, _ := New("en", strings.NewReader("y\n"), &out)
	sum, err := g.Play(newRound(t, core.NewLCG(42)))
	if err != nil {
		t.Fatalf("play: %v", err)
	}
	if !sum.PlayerBust() || sum.Outcome != blackjack.OutcomeDealer {
		t.Fatalf("unexpected summary: %+v", sum)
	}
	got := out.String()
	bust := strings.Index(got, "You have gone bust!")
	hits := strings.Index(got, "The dealer hits")
	if bust < 0 || hits < 0 || bust > hits {
		t.Fatalf("bust message must come before the dealer plays:\n%s", got)
	}
	if !strings.HasSuffix(got, "The dealer won!\n") {
		t.Fatalf("unexpected ending:\n%s", got)
	}
}

func TestPlayEOFStands(t *testing.T) {
	var out bytes.Buffer
	g, _ := New("en", strings.NewReader(""), &out)
	sum, err := g.Play(newRound(t, core.NewMT19937(1)))
	if err != nil {
		t.Fatalf("play: %v", err)
	}
	if len(sum.Player) != 2 || sum.Outcome != blackjack.OutcomeDraw {
		t.Fatalf("EOF should stand on the opening hand: %+v", sum)
	}
	if !strings.Contains(out.String(), "It's a draw!") {
		t.Fatalf("missing draw message:\n%s", out.String())
	}
}
