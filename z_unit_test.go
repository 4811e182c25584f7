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

package cardlab

import (
	"context"
	"errors"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/zintix-labs/cardlab/dto"
	"github.com/zintix-labs/cardlab/errs"
	"github.com/zintix-labs/cardlab/sdk/blackjack"
	"github.com/zintix-labs/cardlab/sdk/buf"
	"github.com/zintix-labs/cardlab/sdk/core"
	"github.com/zintix-labs/cardlab/spec"
	"github.com/zintix-labs/cardlab/stats"
)

func testConfigs() fstest.MapFS {
	return fstest.MapFS{
		"classic.yaml": {Data: []byte("table_name: classic\ntable_id: 1\ngenerator: lcg\n")},
		"twister.yaml": {Data: []byte("table_name: twister\ntable_id: 2\ngenerator: mt19937\n")},
		"shoe.json":    {Data: []byte(`{"table_name":"shoe","table_id":3,"generator":"mt19937","decks":6,"player_stand":16,"bet_unit":5}`)},
		"README.md":    {Data: []byte("ignored")},
	}
}

func newTestLab(t *testing.T) *Lab {
	t.Helper()
	lab, err := NewAuto(Configs(testConfigs()))
	if err != nil {
		t.Fatalf("new lab: %v", err)
	}
	return lab
}

func newTestTable(t *testing.T, id spec.TID, seed int64) *Table {
	t.Helper()
	tb, err := newTestLab(t).NewTableWithSeed(id, seed)
	if err != nil {
		t.Fatalf("new table: %v", err)
	}
	return tb
}

func requireWarn(t *testing.T, err error, what string) {
	t.Helper()
	if err == nil {
		t.Fatalf("%s: expected error", what)
	}
	if errs.LevelOf(err) != errs.Warn {
		t.Fatalf("%s: expected warn level, got %v", what, err)
	}
}

func TestLabRegisterAll(t *testing.T) {
	lab := newTestLab(t)
	ids := lab.IDs()
	if len(ids) != 3 || ids[0] != 1 || ids[2] != 3 {
		t.Fatalf("unexpected ids: %v", ids)
	}
	if _, ok := lab.EntryByName("TWISTER"); !ok {
		t.Fatalf("name lookup should be case-insensitive")
	}
	sum, err := lab.Summary()
	if err != nil || len(sum) != 3 {
		t.Fatalf("summary: %v %d", err, len(sum))
	}
	ts, err := lab.TableSetting(3)
	if err != nil {
		t.Fatalf("setting: %v", err)
	}
	if ts.Generator != core.KindMT19937 || ts.Decks != 6 || ts.BetUnit != 5 {
		t.Fatalf("unexpected setting: %+v", ts)
	}
}

func TestLabRejectsBadConfigs(t *testing.T) {
	dup := fstest.MapFS{
		"a.yaml": {Data: []byte("table_name: a\ntable_id: 1\n")},
		"b.yaml": {Data: []byte("table_name: b\ntable_id: 1\n")},
	}
	if _, err := NewAuto(Configs(dup)); err == nil {
		t.Fatalf("expected error for duplicate table id")
	}
	badGen := fstest.MapFS{"a.yaml": {Data: []byte("table_name: a\ntable_id: 1\ngenerator: xorshift\n")}}
	if _, err := NewAuto(Configs(badGen)); err == nil {
		t.Fatalf("expected error for unknown generator")
	}
	if _, err := New(nil); err == nil {
		t.Fatalf("expected error for no configs")
	}

	lab, err := New(Configs(testConfigs()))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if _, err := lab.NewTable(1); err == nil {
		t.Fatalf("tables require a frozen catalog")
	}
}

func TestTablePlayKnownRounds(t *testing.T) {
	cases := []struct {
		name   string
		tid    spec.TID
		seed   int64
		out    blackjack.Outcome
		player int
		dealer int
	}{
		{"mt-5489", 2, 5489, blackjack.OutcomePlayer, 21, 18},
		{"lcg-1", 1, 1, blackjack.OutcomeDealer, 17, 21},
		{"lcg-42", 1, 42, blackjack.OutcomeDealer, blackjack.Bust, 18},
		{"mt-1", 2, 1, blackjack.OutcomeDraw, 17, 17},
	}
	for _, tc := range cases {
		tb := newTestTable(t, tc.tid, tc.seed)
		res, err := tb.Play(&dto.PlayRequest{TableID: tc.tid, Bet: 2})
		if err != nil {
			t.Fatalf("%s: play: %v", tc.name, err)
		}
		if res.Outcome != tc.out || res.Player.Value != tc.player || res.Dealer.Value != tc.dealer {
			t.Fatalf("%s: got %s %d vs %d", tc.name, res.Outcome, res.Player.Value, res.Dealer.Value)
		}
		if res.State.StartSnapB64U == "" || res.State.AfterSnapB64U == "" {
			t.Fatalf("%s: snapshots must always be returned", tc.name)
		}
	}

	tb := newTestTable(t, 2, 5489)
	res, _ := tb.Play(&dto.PlayRequest{TableID: 2, TableName: " Twister ", Bet: 3})
	if !res.Player.Natural || res.Return != 6 || len(res.Dealer.Cards) != 3 {
		t.Fatalf("unexpected natural round: %+v", res)
	}
}

func TestTablePlayReplay(t *testing.T) {
	a := newTestTable(t, 2, 7)
	req := &dto.PlayRequest{TableID: 2, Bet: 1}
	r1, err := a.Play(req)
	if err != nil {
		t.Fatalf("play: %v", err)
	}
	r2, _ := a.Play(req)
	if r2.State.StartSnapB64U != r1.State.AfterSnapB64U {
		t.Fatalf("next round must start where the previous ended")
	}

	// 回放第一局：結果相同，且不影響牌桌本身的序列
	replay, err := a.Play(&dto.PlayRequest{TableID: 2, Bet: 1, StartState: &dto.StartState{StartSnapB64U: r1.State.StartSnapB64U}})
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if replay.Player.Text != r1.Player.Text || replay.Dealer.Text != r1.Dealer.Text || replay.State.AfterSnapB64U != r1.State.AfterSnapB64U {
		t.Fatalf("replay differs: %+v vs %+v", replay, r1)
	}
	r3, _ := a.Play(req)

	b := newTestTable(t, 2, 7)
	for i := 0; i < 2; i++ {
		_, _ = b.Play(req)
	}
	want, _ := b.Play(req)
	if r3.Player.Text != want.Player.Text || r3.State.AfterSnapB64U != want.State.AfterSnapB64U {
		t.Fatalf("replay must restore the table generator")
	}
}

func TestTablePlayRejectsBadRequest(t *testing.T) {
	tb := newTestTable(t, 3, 1)
	requireWarn(t, func() error { _, err := tb.Play(nil); return err }(), "nil request")
	requireWarn(t, func() error { _, err := tb.Play(&dto.PlayRequest{TableID: 2, Bet: 5}); return err }(), "wrong id")
	requireWarn(t, func() error { _, err := tb.Play(&dto.PlayRequest{TableID: 3, TableName: "classic", Bet: 5}); return err }(), "wrong name")
	requireWarn(t, func() error { _, err := tb.Play(&dto.PlayRequest{TableID: 3, Bet: 0}); return err }(), "zero bet")
	requireWarn(t, func() error { _, err := tb.Play(&dto.PlayRequest{TableID: 3, Bet: 7}); return err }(), "bet not multiple of unit")
	bad := &dto.PlayRequest{TableID: 3, Bet: 5, StartState: &dto.StartState{StartSnapB64U: "TAAA"}}
	requireWarn(t, func() error { _, err := tb.Play(bad); return err }(), "bad snapshot")
}

func TestTableBeginSharesGenerator(t *testing.T) {
	tb := newTestTable(t, 2, 5489)
	r, err := tb.Begin()
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if r.Phase() != blackjack.PhasePlayer || len(r.PlayerCards()) != 2 || r.PlayerValue() != 21 {
		t.Fatalf("unexpected opening hand: %v", r.PlayerCards())
	}
	if err := r.Stand(); err != nil {
		t.Fatalf("stand: %v", err)
	}
	sum, _ := r.Result()
	if sum.Outcome != blackjack.OutcomePlayer || r.Remaining() != 47 {
		t.Fatalf("unexpected result %s remaining %d", sum.Outcome, r.Remaining())
	}
}

// brokenTable 沒有產生器，Play 一定 panic
func brokenTable(p *TablePool) *Table {
	return &Table{tableName: "broken", tableId: p.tableId, ts: p.ts, RoundResult: buf.NewRoundResult(p.ts)}
}

func TestTablePoolRecoversFromPanic(t *testing.T) {
	lab := newTestLab(t)
	ts, _ := lab.TableSetting(2)
	p, err := newTablePool(2, ts, 11)
	if err != nil {
		t.Fatalf("new pool: %v", err)
	}
	good := <-p.pool
	<-p.pool
	p.pool <- brokenTable(p)

	_, err = p.Play(context.Background(), &dto.PlayRequest{TableID: 2, Bet: 1})
	if err == nil || !errs.IsFatal(err) {
		t.Fatalf("panic must surface as fatal, got %v", err)
	}
	if p.Panics() != 1 || p.ReBuild() != 1 || p.Available() != 1 || p.Closed() {
		t.Fatalf("unexpected metrics: %+v", p.Metrics())
	}
	p.pool <- good
	if _, err := p.Play(context.Background(), &dto.PlayRequest{TableID: 2, Bet: 1}); err != nil {
		t.Fatalf("healthy pool should play: %v", err)
	}
	if m := p.Metrics(); m.PoolSize != 2 || m.BrokenBacklog != 1 || m.Inflight != 0 {
		t.Fatalf("unexpected metrics: %+v", m)
	}
}

func TestTablePoolWarnKeepsTable(t *testing.T) {
	lab := newTestLab(t)
	ts, _ := lab.TableSetting(1)
	p, _ := newTablePool(1, ts, 3)
	requireWarn(t, func() error {
		_, err := p.Play(context.Background(), &dto.PlayRequest{TableID: 1, Bet: -1})
		return err
	}(), "negative bet")
	if p.ReBuild() != 0 || p.Available() != 1 {
		t.Fatalf("warn must return the table to the pool: %+v", p.Metrics())
	}
}

func TestTablePoolRebuildFailureCloses(t *testing.T) {
	lab := newTestLab(t)
	ts, _ := lab.TableSetting(2)
	p, _ := newTablePool(1, ts, 5)
	<-p.pool
	p.pool <- brokenTable(p)
	p.build = func(*spec.TableSetting, int64) (*Table, error) {
		return nil, errs.NewFatal("no more tables")
	}
	if _, err := p.Play(context.Background(), &dto.PlayRequest{TableID: 2, Bet: 1}); !errs.IsFatal(err) {
		t.Fatalf("expected fatal, got %v", err)
	}
	if !p.Closed() || p.ClosedReason() != "rebuild_failed" {
		t.Fatalf("pool must close after rebuild failure: %q", p.ClosedReason())
	}
	if _, err := p.Play(context.Background(), &dto.PlayRequest{TableID: 2, Bet: 1}); !errs.IsFatal(err) {
		t.Fatalf("closed pool must reject play, got %v", err)
	}
}

func TestTablePoolContextCanceled(t *testing.T) {
	lab := newTestLab(t)
	ts, _ := lab.TableSetting(2)
	p, _ := newTablePool(1, ts, 5)
	<-p.pool // 唯一的牌桌被借走

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := p.Play(ctx, &dto.PlayRequest{TableID: 2, Bet: 1})
	requireWarn(t, err, "canceled")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("context error must stay reachable: %v", err)
	}
}

func TestRuntimePlayAndClose(t *testing.T) {
	rt, err := newTestLab(t).BuildRuntime(2)
	if err != nil {
		t.Fatalf("build runtime: %v", err)
	}
	res, err := rt.Play(context.Background(), &dto.PlayRequest{TableID: 3, Bet: 10})
	if err != nil {
		t.Fatalf("play: %v", err)
	}
	if res.TableName != "shoe" || res.Bet != 10 || res.Generator != core.KindMT19937 {
		t.Fatalf("unexpected result: %+v", res)
	}
	requireWarn(t, func() error {
		_, err := rt.Play(context.Background(), &dto.PlayRequest{TableID: 99, Bet: 1})
		return err
	}(), "unknown table")

	ms := rt.Metrics()
	if len(ms) != 3 || ms[0].TableID != 1 || ms[0].PoolSize != 2 {
		t.Fatalf("unexpected metrics: %+v", ms)
	}

	rt.Close()
	rt.Close()
	if !rt.Closed() || rt.ClosedReason() != "closed" {
		t.Fatalf("runtime must be closed")
	}
	if _, err := rt.Play(context.Background(), &dto.PlayRequest{TableID: 1, Bet: 1}); !errs.IsFatal(err) {
		t.Fatalf("closed runtime must reject play, got %v", err)
	}
	if tp, _ := rt.Pool(1); !tp.Closed() || !strings.HasPrefix(tp.ClosedReason(), "runtime_") {
		t.Fatalf("pools must close with the runtime")
	}
}

func TestSimulatorSim(t *testing.T) {
	lab := newTestLab(t)
	s, err := lab.NewSimulatorWithSeed(2, 5489)
	if err != nil {
		t.Fatalf("new simulator: %v", err)
	}
	rep, _, err := s.Sim(1, false)
	if err != nil {
		t.Fatalf("sim: %v", err)
	}
	// 第一局為玩家 21 點勝出
	if rep.Rtp() != 2 || rep.Outcome.PlayerWins != 1 || rep.Outcome.PlayerNaturals != 1 {
		t.Fatalf("unexpected first round report: rtp %.2f %+v", rep.Rtp(), rep.Outcome)
	}

	a, _ := lab.NewSimulatorWithSeed(1, 99)
	b, _ := lab.NewSimulatorWithSeed(1, 99)
	ra, _, _ := a.Sim(2000, false)
	rb, _, _ := b.Sim(2000, false)
	if ra.Summary.TotalReturn != rb.Summary.TotalReturn || ra.Outcome.Draws != rb.Outcome.Draws {
		t.Fatalf("same seed must give the same simulation")
	}
	o := ra.Outcome
	if ra.Summary.Rounds != 2000 || o.PlayerWins+o.DealerWins+o.Draws != 2000 {
		t.Fatalf("unexpected counts: %+v", o)
	}
	if _, _, err := a.Sim(0, false); err == nil {
		t.Fatalf("expected error for zero rounds")
	}
}

func TestSimulatorSimMP(t *testing.T) {
	s, _ := newTestLab(t).NewSimulatorWithSeed(3, 1)
	rep, _, err := s.SimMP(300, 4, false)
	if err != nil {
		t.Fatalf("sim mp: %v", err)
	}
	if rep.Summary.Rounds != 1200 || rep.Summary.TotalBet != 1200*5 {
		t.Fatalf("unexpected summary: %+v", rep.Summary)
	}
	if rep.Rtp() < 0.5 || rep.Rtp() > 1.5 {
		t.Fatalf("rtp out of range: %.3f", rep.Rtp())
	}
	if _, _, err := s.SimMP(10, 0, false); err == nil {
		t.Fatalf("expected error for zero workers")
	}
}

func TestSimulatorSimPlayers(t *testing.T) {
	s, _ := newTestLab(t).NewSimulatorWithSeed(2, 3)
	rep, est, _, err := s.SimPlayers(3, 40, 10, 100, false)
	if err != nil {
		t.Fatalf("sim players: %v", err)
	}
	if rep.Summary.Rounds == 0 || rep.Summary.Rounds > 40*100 {
		t.Fatalf("unexpected rounds: %d", rep.Summary.Rounds)
	}
	ss := est.SessionStat
	if sum := ss.Bust.Hat + ss.Cashout.Hat + ss.Alive.Hat; sum < 0.999 || sum > 1.001 {
		t.Fatalf("session outcomes must sum to 1, got %.4f", sum)
	}
	if _, _, _, err := s.SimPlayers(1, 0, 10, 10, false); err == nil {
		t.Fatalf("expected error for zero players")
	}
}

func TestDevSimulatorRounds(t *testing.T) {
	d, err := newTestLab(t).NewDevSimulator(2, 5489)
	if err != nil {
		t.Fatalf("new dev simulator: %v", err)
	}
	first, err := d.Rounds(5)
	if err != nil {
		t.Fatalf("rounds: %v", err)
	}
	if first.Round != 5 || first.Results[0].Outcome != blackjack.OutcomePlayer || first.TotalBet != 5 {
		t.Fatalf("unexpected report: %+v", first)
	}
	if first.PlayerWins+first.DealerWins+first.Draws != 5 {
		t.Fatalf("outcomes must add up")
	}
	again, err := d.RestoreRounds(first.Before, 5)
	if err != nil {
		t.Fatalf("restore rounds: %v", err)
	}
	if again.After != first.After || again.TotalReturn != first.TotalReturn {
		t.Fatalf("restored rounds must repeat")
	}
	if _, err := d.Rounds(5001); err == nil {
		t.Fatalf("expected error for too many rounds")
	}
	requireWarn(t, func() error { _, err := d.RestoreRounds("***", 1); return err }(), "bad snapshot")
}

func TestDevSimulatorSim(t *testing.T) {
	d, _ := newTestLab(t).NewDevSimulator(1, 8)
	first, err := d.Sim(500)
	if err != nil {
		t.Fatalf("sim: %v", err)
	}
	again, err := d.RestoreSim(first.Before, 500)
	if err != nil {
		t.Fatalf("restore sim: %v", err)
	}
	if again.After != first.After || again.Stat.Summary.TotalReturn != first.Stat.Summary.TotalReturn {
		t.Fatalf("restored sim must repeat")
	}
	if b, a := d.Last(); b != first.Before || a != first.After {
		t.Fatalf("last snapshots not tracked")
	}
}

func TestSeedMaker(t *testing.T) {
	a, b := newSeedMaker(42), newSeedMaker(42)
	seen := make(map[int64]bool, 1000)
	for i := 0; i < 1000; i++ {
		x := a.next()
		if x < 0 || seen[x] {
			t.Fatalf("seed %d repeated or negative", x)
		}
		seen[x] = true
		if y := b.next(); y != x {
			t.Fatalf("same start must give the same seeds")
		}
	}
}

func TestSessionStore(t *testing.T) {
	lab := newTestLab(t)
	st := lab.NewSessionStore(2, time.Minute)

	v, err := st.Start(2, 0)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if v.ID == "" || v.Bet != 1 || v.Phase != "player" || len(v.Player.Cards) != 2 || v.DealerUp == nil || v.Dealer != nil {
		t.Fatalf("unexpected opening view: %+v", v)
	}
	if v.Remaining != 48 {
		t.Fatalf("remaining want 48, got %d", v.Remaining)
	}

	done, err := st.Stand(v.ID)
	if err != nil {
		t.Fatalf("stand: %v", err)
	}
	if done.Phase != "done" || done.Outcome == nil || done.Return == nil || done.Dealer == nil {
		t.Fatalf("finished view must carry the result: %+v", done)
	}
	requireWarn(t, func() error { _, err := st.Hit(v.ID); return err }(), "hit after done")
	if got, _ := st.Get(v.ID); got.Phase != "done" {
		t.Fatalf("get must return the finished round")
	}

	requireWarn(t, func() error { _, err := st.Get("missing"); return err }(), "unknown session")
	requireWarn(t, func() error { _, err := st.Start(99, 1); return err }(), "unknown table")
	requireWarn(t, func() error { _, err := st.Start(3, 7); return err }(), "bad bet")

	if _, err := st.Start(1, 1); err != nil {
		t.Fatalf("second session: %v", err)
	}
	requireWarn(t, func() error { _, err := st.Start(1, 1); return err }(), "store full")

	// 過期後查不到，並騰出空間
	base := time.Now()
	st.now = func() time.Time { return base.Add(2 * time.Minute) }
	requireWarn(t, func() error { _, err := st.Get(v.ID); return err }(), "expired")
	if n := st.Sweep(); n != 1 || st.Len() != 0 {
		t.Fatalf("sweep removed %d, left %d", n, st.Len())
	}
}

func TestSessionHitUntilDone(t *testing.T) {
	st := newTestLab(t).NewSessionStore(0, 0)
	v, err := st.Start(1, 1)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	for i := 0; i < 12 && v.Phase == "player"; i++ {
		if v, err = st.Hit(v.ID); err != nil {
			t.Fatalf("hit: %v", err)
		}
	}
	// 一直補牌必定爆牌，牌局自動結束
	if v.Phase != "done" || v.Player.Value != blackjack.Bust || *v.Outcome == blackjack.OutcomePlayer {
		t.Fatalf("unexpected view after hits: %+v", v)
	}
	if !st.Delete(v.ID) || st.Delete(v.ID) {
		t.Fatalf("delete must report presence")
	}
}

func TestSimulatorSimMPReproducible(t *testing.T) {
	lab := newTestLab(t)
	run := func() *stats.StatReport {
		s, err := lab.NewSimulatorWithSeed(1, 2024)
		if err != nil {
			t.Fatalf("new simulator: %v", err)
		}
		rep, _, err := s.SimMP(250, 4, false)
		if err != nil {
			t.Fatalf("sim mp: %v", err)
		}
		return rep
	}
	a, b := run(), run()
	if a.Summary.TotalReturn != b.Summary.TotalReturn || a.Outcome.PlayerBusts != b.Outcome.PlayerBusts {
		t.Fatalf("per-worker seeds must be derived from the initial seed")
	}
}
