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

package main

import (
	"github.com/spf13/cobra"
	"github.com/zintix-labs/cardlab/console"
	"github.com/zintix-labs/cardlab/sdk/blackjack"
	"github.com/zintix-labs/cardlab/sdk/core"
	"github.com/zintix-labs/cardlab/spec"
)

func (c *cli) newPlayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play one round of blackjack on the console",
		Long: `Play one round of blackjack on the console.
With --rng the round uses a single deck and the default rules on the given
generator; otherwise it is dealt from the table chosen by --table.`,
		Args: cobra.NoArgs,
		RunE: c.runPlay,
	}
	f := cmd.Flags()
	f.String("language", "en", `the language to play blackjack in, e.g. "en"`)
	f.String("rng", "", "generator: lcg|mt19937 (overrides --table)")
	f.Int64("seed", 0, "generator seed (default: current time)")
	f.Uint("table", 1, "table id")
	return cmd
}

func (c *cli) runPlay(cmd *cobra.Command, _ []string) error {
	// 語言先檢查，避免建好牌桌才失敗
	g, err := console.New(c.v.GetString("language"), c.in, c.out)
	if err != nil {
		return err
	}
	r, err := c.newRound()
	if err != nil {
		return err
	}
	_, err = g.Play(r)
	return err
}

func (c *cli) newRound() (*blackjack.Round, error) {
	seed := c.seed()
	if rng := c.v.GetString("rng"); rng != "" {
		f, err := core.FactoryOf(rng)
		if err != nil {
			return nil, err
		}
		return blackjack.NewRound(core.New(f.New(seed)), blackjack.DefaultRules())
	}
	lab, err := c.lab()
	if err != nil {
		return nil, err
	}
	t, err := lab.NewTableWithSeed(spec.TID(c.v.GetUint("table")), seed)
	if err != nil {
		return nil, err
	}
	return t.Begin()
}
