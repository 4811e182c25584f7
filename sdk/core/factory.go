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
	"strings"

	"github.com/zintix-labs/cardlab/errs"
)

// Kind 為產生器名稱，出現在牌桌設定檔與 CLI 參數中。
type Kind string

const (
	KindLCG     Kind = "lcg"
	KindMT19937 Kind = "mt19937"
)

var factories = map[Kind]PRNGFactory{
	KindLCG:     LCGFactory{},
	KindMT19937: MT19937Factory{},
}

// Kinds 回傳所有支援的產生器（固定順序）。
func Kinds() []Kind {
	return []Kind{KindLCG, KindMT19937}
}

// Span 回傳 Uint32 的輸出範圍大小：LCG 為 2^31，MT19937 為 2^32，未知回傳 0。
func (k Kind) Span() uint64 {
	switch k {
	case KindLCG:
		return 1 << 31
	case KindMT19937:
		return 1 << 32
	default:
		return 0
	}
}

// ParseKind 解析產生器名稱（大小寫不敏感，接受 randu / mt 別名）。
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "lcg", "randu":
		return KindLCG, nil
	case "mt19937", "mt", "mersenne":
		return KindMT19937, nil
	default:
		return "", errs.Warnf("unknown generator %q (want lcg|mt19937)", s)
	}
}

// FactoryOf 依名稱取得工廠。
func FactoryOf(s string) (PRNGFactory, error) {
	k, err := ParseKind(s)
	if err != nil {
		return nil, err
	}
	return factories[k], nil
}

// Default 回傳預設工廠（MT19937）。
func Default() PRNGFactory {
	return MT19937Factory{}
}
