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

// Package logger 以 log/slog 組裝 server 與 CLI 的日誌：依模式選擇 handler，
// 並提供非阻塞的 AsyncHandler 讓請求路徑不被 I/O 拖慢。
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/zintix-labs/cardlab/errs"
)

// enum LogMode
type LogMode uint8

const (
	ModeDev     LogMode = iota // text + stderr，Debug 以上
	ModeProd                   // JSON + stdout，Info 以上
	ModeSilence                // 全部丟棄（測試用）
)

var modeNames = [...]string{"dev", "prod", "silence"}

func (m LogMode) String() string {
	if int(m) < len(modeNames) {
		return modeNames[m]
	}
	return "unknown"
}

// ParseMode 解析 CLI / 環境變數給的模式名稱（dev|prod|silence，不分大小寫，可帶 Mode 前綴）。
func ParseMode(s string) (LogMode, error) {
	k := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "mode")
	for i, n := range modeNames {
		if k == n {
			return LogMode(i), nil
		}
	}
	return ModeDev, errs.Warnf("unknown log mode: %q", s)
}

// NewDefaultLogger 同步 logger，dev 寫 stderr、prod 寫 stdout。
func NewDefaultLogger(mode LogMode) *slog.Logger {
	return slog.New(buildHandler(mode, nil))
}

// NewWithWriter 與 NewDefaultLogger 相同，但輸出到 w（silence 模式仍丟棄）。
func NewWithWriter(mode LogMode, w io.Writer) *slog.Logger {
	return slog.New(buildHandler(mode, w))
}

// NewAsync 以模式預設的 handler 包一層 AsyncHandler；結束前要呼叫 Close 把 buffer 寫完。
func NewAsync(buf int, mode LogMode) (*slog.Logger, *AsyncHandler) {
	ah := NewAsyncHandler(buildHandler(mode, nil), buf)
	return slog.New(ah), ah
}

// Dropped 回報 l 因 buffer 已滿或已關閉而丟棄的筆數；非 AsyncHandler 一律為 0。
func Dropped(l *slog.Logger) uint64 {
	if l == nil {
		return 0
	}
	if ah, ok := l.Handler().(*AsyncHandler); ok {
		return ah.Dropped()
	}
	return 0
}

// buildHandler 每筆紀錄都帶 service=cardlab，方便在集中式日誌中篩選。
func buildHandler(mode LogMode, w io.Writer) slog.Handler {
	var h slog.Handler
	switch mode {
	case ModeSilence:
		return slog.NewTextHandler(io.Discard, nil)
	case ModeProd:
		// 給 Loki / Promtail
		if w == nil {
			w = os.Stdout
		}
		h = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo})
	default:
		if w == nil {
			w = os.Stderr
		}
		h = slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug})
	}
	return h.WithAttrs([]slog.Attr{slog.String("service", "cardlab")})
}
