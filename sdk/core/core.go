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

// Package core 提供牌局使用的決定性亂數產生器（LCG / MT19937）與其共用合約。
//
// 所有產生器都不是密碼學安全的，也不是 goroutine-safe：
// 每個實例只應由一個擁有者使用，需要併發時請各自建立實例。
package core

import (
	"math"
	"time"
)

// Source32 是產生器的最小合約：每次呼叫回傳下一個 uint32。
//
// 牌堆抽牌只依賴這個介面（index = Uint32() % len）。
type Source32 interface {
	Uint32() uint32
}

// Restorable 定義可快照與還原的狀態介面。
type Restorable interface {
	// Snapshot 回傳可用於還原的序列化狀態。
	Snapshot() ([]byte, error)
	// Restore 依序列化狀態還原內部狀態。
	Restore([]byte) error
}

// RAND 在 Source32 之上提供常用取樣。
//
// IntN / UintN 以取餘數取樣，與選牌規則 Uint32() % n 一致。
type RAND interface {
	Source32
	// Uint64 回傳非負 uint64 亂數（由多次 Uint32 組成）。
	Uint64() uint64
	// Float64 回傳 [0,1) 的浮點亂數。
	Float64() float64
	// UintN 回傳 [0,max) 的 uint 亂數，若 max == 0 回傳 0。
	UintN(uint) uint
	// IntN 回傳 [0,max) 的 int 亂數，若 max <= 0 回傳 -1。
	IntN(int) int
}

// PRNG 同時支援取樣與狀態保存/還原。
type PRNG interface {
	RAND
	Restorable
}

// PRNGFactory 以 seed 建立產生器。
//
// 合約：相同實作下 New(seed) 必須是決定性的。
// seed 超過產生器的種子寬度時，由實作明確截斷（不依賴隱式轉型）。
type PRNGFactory interface {
	New(int64) PRNG
	Kind() Kind
}

// Core 封裝 PRNG，提供牌局用的工具方法。
type Core struct {
	PRNG
}

func New(rng PRNG) *Core {
	return &Core{rng}
}

// Index 回傳 [0,n) 的索引，n <= 0 回傳 -1。
func (c *Core) Index(n int) int {
	return c.IntN(n)
}

// epochOffset 為 0001-01-01 UTC 到 Unix epoch 的秒數。
const epochOffset int64 = 62135596800

// TimeSeed 由時間導出預設 seed：自 0001-01-01 UTC 起的整數秒。
//
// 產生器本身從不讀時鐘；需要預設 seed 的呼叫端（CLI / lab）自行呼叫本函數。
func TimeSeed(t time.Time) int64 {
	return t.UTC().Unix() + epochOffset
}

// intN 以 r 的 32-bit 輸出做取餘數取樣；n 超過 32 bits 時改用 Uint64。
func intN(r RAND, n int) int {
	if n <= 0 {
		return -1
	}
	if uint64(n) <= math.MaxUint32 {
		return int(r.Uint32() % uint32(n))
	}
	return int(r.Uint64() % uint64(n))
}

func uintN(r RAND, n uint) uint {
	if n == 0 {
		return 0
	}
	if uint64(n) <= math.MaxUint32 {
		return uint(r.Uint32() % uint32(n))
	}
	return uint(r.Uint64() % uint64(n))
}
