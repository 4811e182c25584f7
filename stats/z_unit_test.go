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

package stats_test

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/zintix-labs/cardlab/sdk/core"
	"github.com/zintix-labs/cardlab/spec"
	"github.com/zintix-labs/cardlab/stats"
)

// buildStatReport constructs a StatReport from a list of per-round returns.
// A return of 2*betUnit counts as a player win, betUnit as a draw, anything else as a dealer win.
func buildStatReport(betUnit int, returns []int) *stats.StatReport {
	L := stats.Buckets.Len()
	pvc := make([]int, L)
	dvc := make([]int, L)
	out := &stats.OutcomeReport{}

	var totalRet, totalRetSq int
	for _, r := range returns {
		totalRet += r
		totalRetSq += r * r
		switch r {
		case 2 * betUnit:
			out.PlayerWins++
			pvc[stats.Buckets.Index(20)]++
			dvc[stats.Buckets.Index(18)]++
		case betUnit:
			out.Draws++
			pvc[stats.Buckets.Index(19)]++
			dvc[stats.Buckets.Index(19)]++
		default:
			out.DealerWins++
			pvc[stats.Buckets.Index(-1)]++
			dvc[stats.Buckets.Index(17)]++
		}
	}

	report := &stats.StatReport{
		Summary: &stats.SummaryReport{
			TableName:   "TestTable",
			TableID:     spec.TID(0),
			Generator:   core.KindMT19937,
			Decks:       1,
			DealerStand: 17,
			PlayerStand: 17,
			BetUnit:     betUnit,
			TotalBet:    betUnit * len(returns),
			TotalReturn: totalRet,
			Rounds:      len(returns),
		},
		Mult: &stats.MultReport{
			TotalReturnMult:      float64(totalRet) / float64(betUnit),
			TotalReturnMultSqSum: float64(totalRetSq) / float64(betUnit*betUnit),
		},
		Outcome: out,
		Dist: &stats.DistReport{
			ValueBucket:        stats.Buckets.ValueBucketStr(),
			PlayerValueCollect: pvc,
			DealerValueCollect: dvc,
		},
		Player: &stats.PlayerReport{},
	}
	report.Done()
	return report
}

func TestValueBucketIndex(t *testing.T) {
	cases := map[int]string{-1: "bust", 22: "bust", 2: "<=16", 16: "<=16", 17: "17", 20: "20", 21: "21"}
	labels := stats.Buckets.ValueBucketStr()
	for v, want := range cases {
		if got := labels[stats.Buckets.Index(v)]; got != want {
			t.Fatalf("value %d: want bucket %s, got %s", v, want, got)
		}
	}
}

func TestStatReportCoreMetrics(t *testing.T) {
	bu := 40
	rep := buildStatReport(bu, []int{bu, 2 * bu})

	wantRTP := float64(bu+2*bu) / float64(2*bu)
	if got := rep.Rtp(); math.Abs(got-wantRTP) > 1e-12 {
		t.Fatalf("RTP got %.12f want %.12f", got, wantRTP)
	}

	m0 := float64(bu) / float64(bu)
	m1 := float64(2*bu) / float64(bu)
	variance := ((m0*m0 + m1*m1) - (m0+m1)*(m0+m1)/2) / (2 - 1)
	wantStd := math.Sqrt(max0(variance))
	if got := rep.Std(); math.Abs(got-wantStd) > 1e-12 {
		t.Fatalf("Std got %.12f want %.12f", got, wantStd)
	}

	wantCV := wantStd / wantRTP
	if got := rep.Cv(); math.Abs(got-wantCV) > 1e-12 {
		t.Fatalf("CV got %.12f want %.12f", got, wantCV)
	}

	// Distribution lengths and sums
	if len(rep.Dist.PlayerValueCollect) != len(rep.Dist.ValueBucket) {
		t.Fatalf("value buckets length mismatch")
	}
	sum := 0.0
	for _, p := range rep.Dist.PlayerValueDist {
		sum += p
	}
	if math.Abs(sum-1) > 1e-12 {
		t.Fatalf("player value distribution sums to %.6f", sum)
	}

	rep.Done() // idempotent
	if rep.Rtp() != wantRTP {
		t.Fatalf("RTP changed after second Done")
	}
}

func TestOutcomeRates(t *testing.T) {
	bu := 1
	returns := make([]int, 0, 100)
	for i := 0; i < 100; i++ {
		switch {
		case i < 40:
			returns = append(returns, 2)
		case i < 50:
			returns = append(returns, 1)
		default:
			returns = append(returns, 0)
		}
	}
	rep := buildStatReport(bu, returns)
	o := rep.Outcome
	if o.WinRate.Hat != 0.4 || o.DrawRate.Hat != 0.1 || o.LossRate.Hat != 0.5 {
		t.Fatalf("unexpected rates: win %.2f draw %.2f loss %.2f", o.WinRate.Hat, o.DrawRate.Hat, o.LossRate.Hat)
	}
	if !(o.WinRate.CI.Lo < 0.4 && 0.4 < o.WinRate.CI.Hi) {
		t.Fatalf("win rate CI must bracket the estimate: %+v", o.WinRate.CI)
	}
	if o.NaturalRate.Hat != 0 || o.NaturalRate.CI.Lo != 0 {
		t.Fatalf("zero naturals must give a zero lower bound: %+v", o.NaturalRate)
	}
	if math.Abs(rep.Rtp()-0.9) > 1e-12 {
		t.Fatalf("RTP got %.6f want 0.9", rep.Rtp())
	}
}

func TestWriteTable(t *testing.T) {
	rep := buildStatReport(1, []int{2, 0, 1})
	var b bytes.Buffer
	rep.WriteTable(&b, 1500*time.Millisecond)
	out := b.String()
	for _, want := range []string{"used: 1.50 seconds", "TestTable", "Generator", "mt19937", "Player Win", "Total RTP"} {
		if !strings.Contains(out, want) {
			t.Fatalf("table output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderers(t *testing.T) {
	rep := buildStatReport(1, []int{2, 0})

	var jb bytes.Buffer
	if err := rep.WriteWith(&jb, &stats.JsonStatReportRender{}); err != nil {
		t.Fatalf("json render: %v", err)
	}
	var back map[string]any
	if err := json.Unmarshal(jb.Bytes(), &back); err != nil {
		t.Fatalf("json output invalid: %v", err)
	}
	if _, ok := back["Outcome"]; !ok {
		t.Fatalf("json output missing Outcome: %s", jb.String())
	}

	var yb bytes.Buffer
	if err := rep.WriteWith(&yb, &stats.YAMLStatReportRender{}); err != nil {
		t.Fatalf("yaml render: %v", err)
	}
	if !strings.Contains(yb.String(), "valuebucket: [bust,") {
		t.Fatalf("yaml sequences must use flow style:\n%s", yb.String())
	}
}

func TestEstimatorRtpAndSession(t *testing.T) {
	// Build 100 reports with RTP from 0.00 to 0.99
	reports := make([]*stats.StatReport, 0, 100)
	bu := 100
	for i := 0; i < 100; i++ {
		ret := i // so RTP = i / 100
		reports = append(reports, buildStatReport(bu, []int{ret}))
	}

	est := stats.EstimatorPlayerExp(reports)
	if math.Abs(est.RtpStat.ExpMedian.Hat-0.5) > 0.05 {
		t.Fatalf("median RTP expected ~0.5, got %.3f", est.RtpStat.ExpMedian.Hat)
	}
	if math.Abs(est.RtpStat.ExpPerc.ExpP90.Hat-0.9) > 0.05 {
		t.Fatalf("P90 RTP expected ~0.9, got %.3f", est.RtpStat.ExpPerc.ExpP90.Hat)
	}
	// every report busted exactly once (dealer win), so the bust bucket is "1 time" for all players
	bust := est.EventStat.Bucket.BucketCount[stats.Buckets.Index(-1)]
	if bust.One.Hat != 1 {
		t.Fatalf("bust bucket 1x rate got %.2f want 1", bust.One.Hat)
	}
	if est.EventStat.Natural.Zero.Hat != 1 {
		t.Fatalf("natural 0x rate got %.2f want 1", est.EventStat.Natural.Zero.Hat)
	}

	// Session outcome: 3 bust, 2 cashout, 5 alive
	sessionSamples := make([]*stats.StatReport, 10)
	for i := 0; i < 10; i++ {
		r := buildStatReport(bu, []int{0})
		switch {
		case i < 3:
			r.Player.Bust = true
			r.Player.Alive = false
		case i < 5:
			r.Player.Cashout = true
			r.Player.Alive = false
		default:
			r.Player.Alive = true
		}
		sessionSamples[i] = r
	}
	est2 := stats.EstimatorPlayerExp(sessionSamples)
	if est2.SessionStat.Bust.Hat != 0.3 {
		t.Fatalf("Bust rate got %.2f want 0.30", est2.SessionStat.Bust.Hat)
	}
	if est2.SessionStat.Cashout.Hat != 0.2 {
		t.Fatalf("Cashout rate got %.2f want 0.20", est2.SessionStat.Cashout.Hat)
	}
	if est2.SessionStat.Alive.Hat != 0.5 {
		t.Fatalf("Alive rate got %.2f want 0.50", est2.SessionStat.Alive.Hat)
	}

	var b bytes.Buffer
	est2.Fprint(&b)
	if !strings.Contains(b.String(), "Session Outcome") {
		t.Fatalf("estimator text output missing section:\n%s", b.String())
	}
}

func TestUniformity(t *testing.T) {
	mt := core.NewMT19937(5489)
	samples := make([]uint32, 10000)
	for i := range samples {
		samples[i] = mt.Uint32()
	}
	rep, err := stats.Uniformity(samples, core.KindMT19937.Span(), 16)
	if err != nil {
		t.Fatalf("uniformity: %v", err)
	}
	// chi-square for these 10000 draws is about 8.2 with 15 degrees of freedom
	if rep.ChiSquare > 25 || rep.PValue < 0.05 {
		t.Fatalf("MT19937 output should look uniform: chi=%.3f p=%.4f", rep.ChiSquare, rep.PValue)
	}
	total := 0
	for _, c := range rep.Counts {
		total += c
	}
	if total != len(samples) || rep.DF != 15 {
		t.Fatalf("unexpected counts total %d df %d", total, rep.DF)
	}

	// LCG seed 0 never leaves 0: every sample lands in the first bucket
	zero := make([]uint32, 1000)
	rep, err = stats.Uniformity(zero, core.KindLCG.Span(), 8)
	if err != nil {
		t.Fatalf("uniformity: %v", err)
	}
	if rep.Counts[0] != 1000 || rep.PValue > 1e-6 {
		t.Fatalf("degenerate stream must fail the test: %+v", rep)
	}
}

func TestUniformityRejectsBadInput(t *testing.T) {
	if _, err := stats.Uniformity(make([]uint32, 10), 1<<32, 1); err == nil {
		t.Fatalf("expected error for k < 2")
	}
	if _, err := stats.Uniformity(make([]uint32, 3), 1<<32, 4); err == nil {
		t.Fatalf("expected error for too few samples")
	}
	if _, err := stats.Uniformity([]uint32{0, 1 << 31}, core.KindLCG.Span(), 2); err == nil {
		t.Fatalf("expected error for sample outside the LCG range")
	}
}

// --- helpers ---

func max0(x float64) float64 {
	if x < 0 {
		return 0
	}
	return x
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]stats.Format{"": stats.FormatTable, "JSON": stats.FormatJSON, " yaml ": stats.FormatYAML} {
		got, err := stats.ParseFormat(in)
		if err != nil || got != want {
			t.Fatalf("ParseFormat(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := stats.ParseFormat("xml"); err == nil {
		t.Fatalf("xml must be rejected")
	}
}

func TestWriteReport(t *testing.T) {
	rep := buildStatReport(1, []int{2, 0, 1})
	est := stats.EstimatorPlayerExp([]*stats.StatReport{buildStatReport(1, []int{2}), buildStatReport(1, []int{0})})

	var yb bytes.Buffer
	if err := stats.WriteReport(&yb, stats.FormatYAML, rep, est, 0); err != nil {
		t.Fatalf("yaml: %v", err)
	}
	if strings.Count(yb.String(), "---\n") != 1 || !strings.Contains(yb.String(), "tablename: TestTable") {
		t.Fatalf("unexpected yaml report:\n%s", yb.String())
	}

	var jb bytes.Buffer
	if err := stats.WriteReport(&jb, stats.FormatJSON, rep, nil, 0); err != nil {
		t.Fatalf("json: %v", err)
	}
	if !strings.Contains(jb.String(), `"TotalReturn": 3`) {
		t.Fatalf("unexpected json report:\n%s", jb.String())
	}

	if err := stats.WriteReport(&jb, stats.FormatTable, nil, nil, 0); err == nil {
		t.Fatalf("nil report must fail")
	}
}
