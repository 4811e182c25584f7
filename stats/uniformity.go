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
	"github.com/zintix-labs/cardlab/errs"
	"gonum.org/v1/gonum/stat/distuv"
)

// UniformityReport 產生器原始輸出的卡方均勻度檢定
type UniformityReport struct {
	Samples   int     `json:"samples" yaml:"samples"`
	Buckets   int     `json:"buckets" yaml:"buckets"`
	Counts    []int   `json:"counts" yaml:"counts"`
	Expected  float64 `json:"expected" yaml:"expected"`
	ChiSquare float64 `json:"chi_square" yaml:"chi_square"`
	DF        int     `json:"df" yaml:"df"`
	PValue    float64 `json:"p_value" yaml:"p_value"`
}

// Uniformity 把 [0,span) 的樣本等分成 k 桶，計算卡方統計量與 p 值。
//
// p 值過小（例如 < 0.001）代表輸出明顯不均勻。
func Uniformity(samples []uint32, span uint64, k int) (*UniformityReport, error) {
	if k < 2 {
		return nil, errs.Warnf("buckets must be >= 2, got %d", k)
	}
	if span == 0 {
		return nil, errs.NewWarn("span must be positive")
	}
	if len(samples) < k {
		return nil, errs.Warnf("need at least %d samples, got %d", k, len(samples))
	}

	counts := make([]int, k)
	for _, v := range samples {
		i := int(uint64(v) * uint64(k) / span)
		if i >= k {
			// 樣本超出宣告的範圍
			return nil, errs.Warnf("sample %d out of range [0,%d)", v, span)
		}
		counts[i]++
	}

	exp := float64(len(samples)) / float64(k)
	chi := 0.0
	for _, c := range counts {
		d := float64(c) - exp
		chi += d * d / exp
	}
	df := k - 1
	dist := distuv.ChiSquared{K: float64(df)}

	return &UniformityReport{
		Samples:   len(samples),
		Buckets:   k,
		Counts:    counts,
		Expected:  exp,
		ChiSquare: chi,
		DF:        df,
		PValue:    dist.Survival(chi),
	}, nil
}
