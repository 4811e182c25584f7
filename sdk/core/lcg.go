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

package core

import (
	"encoding/binary"

	"github.com/zintix-labs/cardlab/errs"
)

const (
	lcgMultiplier int64 = 65539
	lcgModulus    int64 = 1 << 31
	lcgFloatUnit        = 1.0 / (1 << 31)

	lcgSnapTag = 'L'
	lcgSnapLen = 1 + 4
)

// LCG 為 RANDU 形式的乘法同餘產生器：seed = |c*seed mod 2^31|，c = 65539。
//
// 輸出落在 [0, 2^31)。seed 為 0 時永遠輸出 0（演算法本身的不動點，保留原樣）。
type LCG struct {
	seed uint32
}

func NewLCG(seed uint32) *LCG {
	return &LCG{seed: seed}
}

// Uint32 推進一步並回傳新的 seed。
func (r *LCG) Uint32() uint32 {
	// c*seed 最大約 2^48，以 int64 計算不會溢位
	v := (lcgMultiplier * int64(r.seed)) % lcgModulus
	if v < 0 {
		v = -v
	}
	r.seed = uint32(v)
	return r.seed
}

// Uint64 以兩次 31-bit 輸出組成 62-bit 亂數。
func (r *LCG) Uint64() uint64 {
	hi := uint64(r.Uint32())
	lo := uint64(r.Uint32())
	return hi<<31 | lo
}

// Float64 回傳 [0,1) 的浮點亂數（31-bit 精度）。
func (r *LCG) Float64() float64 {
	return float64(r.Uint32()) * lcgFloatUnit
}

func (r *LCG) UintN(max uint) uint {
	return uintN(r, max)
}

func (r *LCG) IntN(max int) int {
	return intN(r, max)
}

// Snapshot 取得當下 seed
func (r *LCG) Snapshot() ([]byte, error) {
	b := make([]byte, 0, lcgSnapLen)
	b = append(b, lcgSnapTag)
	b = binary.BigEndian.AppendUint32(b, r.seed)
	return b, nil
}

// Restore 還原 Snapshot 的結果
func (r *LCG) Restore(data []byte) error {
	if len(data) != lcgSnapLen || data[0] != lcgSnapTag {
		return errs.Warnf("lcg snapshot: invalid payload (len=%d)", len(data))
	}
	r.seed = binary.BigEndian.Uint32(data[1:])
	return nil
}

// LCGFactory 建立 LCG；int64 seed 明確截斷為低 32 bits。
type LCGFactory struct{}

func (LCGFactory) New(seed int64) PRNG {
	return NewLCG(uint32(uint64(seed) & 0xFFFFFFFF))
}

func (LCGFactory) Kind() Kind { return KindLCG }
