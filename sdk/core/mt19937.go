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
	mtN          = 624
	mtM          = 397
	mtInitMult   = 1812433253
	mtMatrixA    = 0x9908B0DF
	mtUpperMask  = 0x80000000
	mtLowerMask  = 0x7FFFFFFF
	mtTemperB    = 0x9D2C5680
	mtTemperC    = 0xEFC60000
	mtFloatUnit  = 1.0 / (1 << 32)
	mtSnapTag    = 'M'
	mtSnapLen    = 1 + mtN*4 + 2
	mtSeedMask32 = 0xFFFFFFFF
)

// MT19937 為 32-bit Mersenne Twister。
//
// state 在 cursor 回到 0 時整批重算（twist），包含種子後的第一次抽取。
type MT19937 struct {
	state  [mtN]uint32
	cursor int    // 下一個要輸出的位置，永遠在 [0, mtN)
	twists uint64 // twist 次數（觀測用）
}

func NewMT19937(seed uint32) *MT19937 {
	r := &MT19937{}
	r.seed(seed)
	return r
}

// NewMT19937FromInt 以任意整數 seed 建立 MT19937。
//
// seed 只取低 32 bits；這裡明確遮罩，避免依賴轉型規則。
func NewMT19937FromInt(seed int64) *MT19937 {
	return NewMT19937(uint32(uint64(seed) & mtSeedMask32))
}

func (r *MT19937) seed(s uint32) {
	r.state[0] = s
	for i := 1; i < mtN; i++ {
		prev := r.state[i-1]
		r.state[i] = mtInitMult*(prev^(prev>>30)) + uint32(i)
	}
	r.cursor = 0
}

// twist 就地重算整個 state。
//
// 依序更新：i >= mtN-mtM 時 (i+mtM)%mtN 會讀到本輪已更新的值，這是標準 MT19937 的行為。
func (r *MT19937) twist() {
	s := &r.state
	for i := 0; i < mtN; i++ {
		y := (s[i] & mtUpperMask) | (s[(i+1)%mtN] & mtLowerMask)
		v := s[(i+mtM)%mtN] ^ (y >> 1)
		if y&1 != 0 {
			v ^= mtMatrixA
		}
		s[i] = v
	}
	r.twists++
}

// Uint32 回傳下一個 tempered 輸出。
func (r *MT19937) Uint32() uint32 {
	if r.cursor == 0 {
		r.twist()
	}
	y := r.state[r.cursor]
	y ^= y >> 11
	y ^= (y << 7) & mtTemperB
	y ^= (y << 15) & mtTemperC
	y ^= y >> 18
	r.cursor = (r.cursor + 1) % mtN
	return y
}

func (r *MT19937) Uint64() uint64 {
	hi := uint64(r.Uint32())
	lo := uint64(r.Uint32())
	return hi<<32 | lo
}

// Float64 回傳 [0,1) 的浮點亂數（32-bit 精度）。
func (r *MT19937) Float64() float64 {
	return float64(r.Uint32()) * mtFloatUnit
}

func (r *MT19937) UintN(max uint) uint {
	return uintN(r, max)
}

func (r *MT19937) IntN(max int) int {
	return intN(r, max)
}

// Snapshot 格式：tag(1) | state(624*4, big-endian) | cursor(2)
func (r *MT19937) Snapshot() ([]byte, error) {
	b := make([]byte, 0, mtSnapLen)
	b = append(b, mtSnapTag)
	for _, w := range r.state {
		b = binary.BigEndian.AppendUint32(b, w)
	}
	b = binary.BigEndian.AppendUint16(b, uint16(r.cursor))
	return b, nil
}

func (r *MT19937) Restore(data []byte) error {
	if len(data) != mtSnapLen || data[0] != mtSnapTag {
		return errs.Warnf("mt19937 snapshot: invalid payload (len=%d)", len(data))
	}
	cursor := int(binary.BigEndian.Uint16(data[mtSnapLen-2:]))
	if cursor >= mtN {
		return errs.Warnf("mt19937 snapshot: cursor out of range (%d)", cursor)
	}
	body := data[1 : mtSnapLen-2]
	for i := range r.state {
		r.state[i] = binary.BigEndian.Uint32(body[i*4:])
	}
	r.cursor = cursor
	return nil
}

// MT19937Factory 建立 MT19937；int64 seed 明確截斷為低 32 bits。
type MT19937Factory struct{}

func (MT19937Factory) New(seed int64) PRNG {
	return NewMT19937FromInt(seed)
}

func (MT19937Factory) Kind() Kind { return KindMT19937 }
