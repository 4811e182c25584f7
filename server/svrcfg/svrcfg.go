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

package svrcfg

import (
	"log/slog"
	"time"

	"github.com/zintix-labs/cardlab"
	"github.com/zintix-labs/cardlab/errs"
	"github.com/zintix-labs/cardlab/server/logger"
)

const defaultPlayTimeout = 3 * time.Second

// SvrCfg server 的全部外部依賴，由呼叫端明確注入。
type SvrCfg struct {
	Log          *slog.Logger
	Addr         string        // 空字串使用 ":5808"
	TableBufSize int           // 每張牌桌的 pool 大小，限制在 1..10
	Lab          *cardlab.Lab  // 必填
	MaxSessions  int           // <= 0 使用預設值
	SessionTTL   time.Duration // <= 0 使用預設值
	PlayTimeout  time.Duration // 單局請求等待 pool 的時限
	WriteTimeout time.Duration // http 寫出時限，需涵蓋最長的模擬請求；<= 0 使用預設值
	Dev          bool          // 是否掛載 /dev 路由
}

// Valid 檢查必要依賴並補上預設值。
func (sc *SvrCfg) Valid() error {
	if sc.Log != nil {
		if ah, ok := sc.Log.Handler().(*logger.AsyncHandler); ok && !ah.Ready() {
			return errs.NewFatal("nil default log handler: async handler is nil")
		}
	} else {
		sc.Log, _ = logger.NewAsync(1024, logger.ModeDev)
	}

	// 1 <= TableBufSize <= 10，資源管理
	sc.TableBufSize = max(1, sc.TableBufSize)
	sc.TableBufSize = min(10, sc.TableBufSize)
	if sc.PlayTimeout <= 0 {
		sc.PlayTimeout = defaultPlayTimeout
	}
	if sc.Lab == nil {
		return errs.NewFatal("lab is required")
	}
	return nil
}
