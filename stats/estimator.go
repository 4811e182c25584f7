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

package stats

import (
	"fmt"
	"io"
	"slices"
	"sort"

	"gonum.org/v1/gonum/stat/distuv"
)

// confidence 所有區間估計的信心水準
const confidence = 0.95

// EstimatorPlayers 玩家體驗評估：每位玩家一份 StatReport（SimPlayers 產生）
type EstimatorPlayers struct {
	Players     int         `json:"Players"`
	RtpStat     RtpStat     `json:"RtpStat"`
	EventStat   EventStat   `json:"EventStat"`
	SessionStat SessionStat `json:"SessionStat"`
}

// RtpStat 玩家 RTP 的分布
type RtpStat struct {
	ExpMedian PointStat `json:"ExpMedian"`
	ExpPerc   ExpPerc   `json:"ExpPerc"` // 最差 10% / 33% ... 玩家的 RTP
	RtpPerc   RtpPerc   `json:"RtpPerc"` // RTP 不超過 30% / 50% ... 的玩家比例
}

type ExpPerc struct {
	ExpP10 PointStat `json:"P10"`
	ExpP33 PointStat `json:"P33"`
	ExpP67 PointStat `json:"P67"`
	ExpP90 PointStat `json:"P90"`
}

type RtpPerc struct {
	Rtp30  PointStat `json:"Rtp30"`
	Rtp50  PointStat `json:"Rtp50"`
	Rtp70  PointStat `json:"Rtp70"`
	Rtp100 PointStat `json:"Rtp100"`
}

// PointStat 點估計與信賴區間
type PointStat struct {
	Hat float64 `json:"Hat"`
	CI  CI      `json:"CI"`
}

// EventStat 每位玩家遇到某事件的次數分布
type EventStat struct {
	Natural EventCount  `json:"Natural"`
	Bucket  BucketEvent `json:"Bucket"` // 玩家最終點數落在各桶
}

// EventCount 事件發生 0 / 1 / 2 / 3+ 次的玩家比例
type EventCount struct {
	Zero PointStat `json:"Zero"`
	One  PointStat `json:"One"`
	Two  PointStat `json:"Two"`
	More PointStat `json:"More"`
}

type BucketEvent struct {
	BucketLabel []string     `json:"BucketLabel"`
	BucketCount []EventCount `json:"BucketCount"`
}

// SessionStat 玩家離場原因的比例
type SessionStat struct {
	Bust    PointStat `json:"Bust"`    // 資金不足一注
	Cashout PointStat `json:"Cashout"` // 贏滿離場
	Alive   PointStat `json:"Alive"`   // 打完全部局數
}

// EstimatorPlayerExp 由每位玩家的報表估計整體玩家體驗。
func EstimatorPlayerExp(sts []*StatReport) *EstimatorPlayers {
	out := &EstimatorPlayers{Players: len(sts)}
	if len(sts) == 0 {
		return out
	}

	rtp := make([]float64, len(sts))
	for i, s := range sts {
		rtp[i] = s.Rtp()
	}
	slices.Sort(rtp)
	out.RtpStat = RtpStat{
		ExpMedian: quantileStat(rtp, 0.5),
		ExpPerc: ExpPerc{
			ExpP10: quantileStat(rtp, 0.10),
			ExpP33: quantileStat(rtp, 1.0/3.0),
			ExpP67: quantileStat(rtp, 2.0/3.0),
			ExpP90: quantileStat(rtp, 0.90),
		},
		RtpPerc: RtpPerc{
			Rtp30:  atMostStat(rtp, 0.30),
			Rtp50:  atMostStat(rtp, 0.50),
			Rtp70:  atMostStat(rtp, 0.70),
			Rtp100: atMostStat(rtp, 1.00),
		},
	}

	labels := Buckets.ValueBucketStr()
	out.EventStat = EventStat{
		Natural: countEvent(sts, func(s *StatReport) int {
			if s.Outcome == nil {
				return 0
			}
			return s.Outcome.PlayerNaturals
		}),
		Bucket: BucketEvent{BucketLabel: labels, BucketCount: make([]EventCount, len(labels))},
	}
	for bi := range labels {
		out.EventStat.Bucket.BucketCount[bi] = countEvent(sts, func(s *StatReport) int {
			if s.Dist == nil || bi >= len(s.Dist.PlayerValueCollect) {
				return 0
			}
			return s.Dist.PlayerValueCollect[bi]
		})
	}

	var bust, cash, alive int
	for _, s := range sts {
		if s.Player == nil {
			continue
		}
		if s.Player.Bust {
			bust++
		}
		if s.Player.Cashout {
			cash++
		}
		if s.Player.Alive {
			alive++
		}
	}
	n := len(sts)
	out.SessionStat = SessionStat{Bust: pointCP(bust, n), Cashout: pointCP(cash, n), Alive: pointCP(alive, n)}
	return out
}

func countEvent(sts []*StatReport, times func(*StatReport) int) EventCount {
	var c [4]int
	for _, s := range sts {
		c[min(max(times(s), 0), 3)]++
	}
	n := len(sts)
	return EventCount{Zero: pointCP(c[0], n), One: pointCP(c[1], n), Two: pointCP(c[2], n), More: pointCP(c[3], n)}
}

// proportionCICP Clopper-Pearson 二項比例區間（k 次成功 / n 次）
func proportionCICP(k int, n int, conf float64) (float64, CI) {
	if n == 0 {
		return 0, CI{0, 1}
	}
	alpha := 1 - conf
	ci := CI{Lo: 0, Hi: 1}
	if k > 0 {
		ci.Lo = distuv.Beta{Alpha: float64(k), Beta: float64(n - k + 1)}.Quantile(alpha / 2)
	}
	if k < n {
		ci.Hi = distuv.Beta{Alpha: float64(k + 1), Beta: float64(n - k)}.Quantile(1 - alpha/2)
	}
	return float64(k) / float64(n), ci
}

// atMostStat P(X <= x0) 的比例估計；sorted 需已排序
func atMostStat(sorted []float64, x0 float64) PointStat {
	k := sort.Search(len(sorted), func(i int) bool { return sorted[i] > x0 })
	return pointCP(k, len(sorted))
}

// quantileStat 第 q 分位（最近秩）與其無母數區間：
// 把秩視為二項，用 Beta 反推 p 的範圍再換回樣本位置。sorted 需已排序
func quantileStat(sorted []float64, q float64) PointStat {
	n := len(sorted)
	if n == 0 {
		return PointStat{}
	}
	clamp := func(i int) int { return min(max(i, 0), n-1) }
	hat := sorted[clamp(int(q*float64(n)))]

	k := min(max(int(q*float64(n)), 1), max(n-1, 1))
	alpha := 1 - confidence
	pLo := distuv.Beta{Alpha: float64(k), Beta: float64(n - k + 1)}.Quantile(alpha / 2)
	pHi := distuv.Beta{Alpha: float64(k + 1), Beta: float64(max(n-k, 1))}.Quantile(1 - alpha/2)
	lo := clamp(int(pLo * float64(n)))
	hi := clamp(int(pHi*float64(n)) - 1)
	return PointStat{Hat: hat, CI: CI{Lo: sorted[lo], Hi: sorted[hi]}}
}

// Fprint 以文字表格寫入 w
func (est *EstimatorPlayers) Fprint(w io.Writer) {
	r := est.RtpStat
	rtpKeys := []string{"Median RTP", "P10 RTP", "P33 RTP", "P67 RTP", "P90 RTP",
		"≤30% RTP (players)", "≤50% RTP (players)", "≤70% RTP (players)", "≤100% RTP (players)"}
	rtpVals := []PointStat{r.ExpMedian, r.ExpPerc.ExpP10, r.ExpPerc.ExpP33, r.ExpPerc.ExpP67, r.ExpPerc.ExpP90,
		r.RtpPerc.Rtp30, r.RtpPerc.Rtp50, r.RtpPerc.Rtp70, r.RtpPerc.Rtp100}
	fmt.Fprintln(w, fmtTable(fmt.Sprintf("RTP (%d players)", est.Players), rtpKeys, pointMsg(rtpKeys, rtpVals)))

	nt := est.EventStat.Natural
	natKeys := []string{"0 times", "1 time", "2 times", "3+ times"}
	fmt.Fprintln(w, fmtTable("Naturals per Player", natKeys,
		pointMsg(natKeys, []PointStat{nt.Zero, nt.One, nt.Two, nt.More})))

	b := est.EventStat.Bucket
	bucketMsg := make(map[string]string, len(b.BucketLabel))
	for i, label := range b.BucketLabel {
		bucketMsg[label] = fmtEventCount(b.BucketCount[i])
	}
	fmt.Fprintln(w, fmtTable("Final Value per Player", b.BucketLabel, bucketMsg))

	ss := est.SessionStat
	sesKeys := []string{"Bust", "Cashout", "Alive"}
	fmt.Fprintln(w, fmtTable("Session Outcome", sesKeys,
		pointMsg(sesKeys, []PointStat{ss.Bust, ss.Cashout, ss.Alive})))
}

func pointMsg(keys []string, vals []PointStat) map[string]string {
	m := make(map[string]string, len(keys))
	for i, k := range keys {
		m[k] = fmtHatCIpct01(vals[i])
	}
	return m
}

func fmtPct01(x float64) string {
	return fmt.Sprintf("%.2f%%", x*100)
}

func fmtHatCIpct01(ps PointStat) string {
	return fmt.Sprintf("%s [%s, %s]", fmtPct01(ps.Hat), fmtPct01(ps.CI.Lo), fmtPct01(ps.CI.Hi))
}

func fmtEventCount(ec EventCount) string {
	return fmt.Sprintf("0x %s | 1x %s | 2x %s | 3+x %s",
		fmtPct01(ec.Zero.Hat), fmtPct01(ec.One.Hat), fmtPct01(ec.Two.Hat), fmtPct01(ec.More.Hat))
}
