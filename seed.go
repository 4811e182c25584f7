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
	"crypto/rand"
	"math"
	"math/big"
	"sync/atomic"
	"time"

	"github.com/zintix-labs/cardlab/sdk/core"
)

const mask63 = uint64(1<<63) - 1

// seedMaker 由一個起始 seed 導出一串互不重複的非負 seed（模擬器加桌、TablePool 補桌、SessionStore 開局）。
type seedMaker struct {
	state atomic.Uint64 // [0, 2^63)
}

func newSeedMaker(seed int64) *seedMaker {
	s := &seedMaker{}
	s.state.Store(uint64(seed) & mask63)
	return s
}

// next 以 mod 2^63 的全週期 LCG 推進 state，再經可逆的 mix63 打散；CAS 保證併發下每次取得不同的 state。
func (s *seedMaker) next() int64 {
	for {
		old := s.state.Load()
		n := (old*6364136223846793005 + 1442695040888963407) & mask63
		if s.state.CompareAndSwap(old, n) {
			return int64(mix63(n))
		}
	}
}

// mix63 splitmix 的 finalizer 截成 63 位：xor-shift 與乘奇數都可逆，所以仍是一對一
func mix63(x uint64) uint64 {
	x &= mask63
	x ^= x >> 30
	x = (x * 0xBF58476D1CE4E5B9) & mask63
	x ^= x >> 27
	x = (x * 0x94D049BB133111EB) & mask63
	x ^= x >> 31
	return x & mask63
}

// cryptoSeed 對外服務的起始 seed（crypto/rand；失敗時退回時間 seed）
func cryptoSeed() int64 {
	n, err := rand.Int(rand.Reader, big.NewInt(math.MaxInt64))
	if err != nil {
		return core.TimeSeed(time.Now())
	}
	return n.Int64()
}
