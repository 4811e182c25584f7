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
	"time"

	"github.com/spf13/cobra"
	"github.com/zintix-labs/cardlab/errs"
	"github.com/zintix-labs/cardlab/sdk/perf"
	"github.com/zintix-labs/cardlab/spec"
	"github.com/zintix-labs/cardlab/stats"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	maxPlayers      = 100_000
	maxPlayerRounds = 15_000
	green           = "\033[1;32m"
	reset           = "\033[0m"
)

type simConfig struct {
	table  spec.TID
	rounds int
	worker int
	player int
	bets   int
	seed   int64
	pprof  string
	format stats.Format
}

func (c *cli) newSimCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sim",
		Short: "Simulate many rounds on one table and print the statistics",
		Long: `Simulate many rounds on one table and print the statistics.
--player > 1 simulates players with a bankroll of --bets bets each,
playing at most --rounds rounds (capped at 15,000).`,
		Args: cobra.NoArgs,
		RunE: c.runSim,
	}
	f := cmd.Flags()
	f.Uint("table", 1, "table id")
	f.Int("rounds", 1_000_000, "rounds (per worker with --worker, per player with --player)")
	f.Int("worker", 1, "number of workers")
	f.Int("player", 1, "number of players")
	f.Int("bets", 200, "initial bankroll of each player, in bets")
	f.Int64("seed", 0, "simulator seed (default: current time)")
	f.String("pprof", "", "profile the run: cpu|heap|allocs")
	f.String("format", "table", "output format: table|json|yaml")
	return cmd
}

func (c *cli) simConfig() (*simConfig, error) {
	cfg := &simConfig{
		table:  spec.TID(c.v.GetUint("table")),
		rounds: c.v.GetInt("rounds"),
		worker: c.v.GetInt("worker"),
		player: c.v.GetInt("player"),
		bets:   c.v.GetInt("bets"),
		seed:   c.seed(),
		pprof:  c.v.GetString("pprof"),
	}
	p := message.NewPrinter(language.English)
	switch {
	case cfg.worker < 1:
		return nil, errs.NewWarn("worker must > 0")
	case cfg.player < 1:
		return nil, errs.NewWarn("player must > 0")
	case cfg.rounds < 1:
		return nil, errs.NewWarn("rounds must > 0")
	case cfg.player > 1 && cfg.bets < 1:
		return nil, errs.NewWarn("bets must >= 1")
	}
	f, err := stats.ParseFormat(c.v.GetString("format"))
	if err != nil {
		return nil, err
	}
	cfg.format = f
	if _, err := perf.ParseMode(cfg.pprof); err != nil {
		return nil, err
	}
	// 玩家太多 / 每位玩家局數太長時縮小，長期體驗直接模擬牌桌即可
	if cfg.player > maxPlayers {
		p.Fprintf(c.stderr, "too many players: %d resized to 100k players\n", cfg.player)
		cfg.player = maxPlayers
	}
	if cfg.player > 1 && cfg.rounds > maxPlayerRounds {
		p.Fprintf(c.stderr, "too many rounds for each player: %d resized to 15k rounds\n", cfg.rounds)
		cfg.rounds = maxPlayerRounds
	}
	return cfg, nil
}

func (c *cli) runSim(cmd *cobra.Command, _ []string) error {
	cfg, err := c.simConfig()
	if err != nil {
		return err
	}
	lab, err := c.lab()
	if err != nil {
		return err
	}
	s, err := lab.NewSimulatorWithSeed(cfg.table, cfg.seed)
	if err != nil {
		return err
	}
	ent, _ := lab.EntryById(cfg.table)

	// 進度條只在表格輸出時顯示，json / yaml 保持可被管線處理
	showpb := cfg.format == stats.FormatTable
	p := message.NewPrinter(language.English)
	var (
		st   *stats.StatReport
		est  *stats.EstimatorPlayers
		used time.Duration
		serr error
	)
	exe := func() {
		switch {
		case cfg.player > 1:
			if showpb {
				p.Fprintf(c.out, "%s[WORKERS:%d] [TABLE:%s] [PLAYERS:%d BANKROLL:%d ROUNDS:%d] [SEED:%d]%s\n",
					green, cfg.worker, ent.Name, cfg.player, cfg.bets, cfg.rounds, cfg.seed, reset)
			}
			st, est, used, serr = s.SimPlayers(cfg.worker, cfg.player, cfg.bets, cfg.rounds, showpb)
		case cfg.worker > 1:
			if showpb {
				p.Fprintf(c.out, "%s[WORKERS:%d] [TABLE:%s] [ROUNDS:%d] [SEED:%d]%s\n",
					green, cfg.worker, ent.Name, cfg.worker*cfg.rounds, cfg.seed, reset)
			}
			st, used, serr = s.SimMP(cfg.rounds, cfg.worker, showpb)
		default:
			if showpb {
				p.Fprintf(c.out, "%s[TABLE:%s] [ROUNDS:%d] [SEED:%d]%s\n", green, ent.Name, cfg.rounds, cfg.seed, reset)
			}
			st, used, serr = s.Sim(cfg.rounds, showpb)
		}
	}
	path, err := perf.RunPProf(exe, cfg.pprof, "")
	if err != nil {
		return err
	}
	if serr != nil {
		return serr
	}
	if err := stats.WriteReport(c.out, cfg.format, st, est, used); err != nil {
		return err
	}
	if path != "" {
		p.Fprintf(c.stderr, "profile written to %s\n", path)
	}
	return nil
}
