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

// Package errs 定義 cardlab 全域共用的分級錯誤。
//
// 分級讓最上層（CLI / HTTP）不必理解細節也能決定處置方式：
//   - Fatal：狀態不可信（牌桌需汰換、程序應中止）。
//   - Warn：請求或參數問題，可直接回報呼叫端。
//   - Log：僅供記錄。
package errs

import (
	"errors"
	"fmt"
)

// ErrLevel 錯誤嚴重度
type ErrLevel uint8

const (
	None ErrLevel = iota
	Fatal
	Warn
	Log
)

func (l ErrLevel) String() string {
	switch l {
	case Fatal:
		return "fatal"
	case Warn:
		return "warn"
	case Log:
		return "log"
	default:
		return ""
	}
}

// E 是統一的錯誤型別。
type E struct {
	Message string
	Extra   string // 呼叫端追加的上下文，不影響主訊息
	Cause   error
	ErrLv   ErrLevel
}

func (e *E) Error() string {
	base := fmt.Sprintf("errlv=%s %s", e.ErrLv, e.Message)
	if e.Extra != "" {
		base += " | extra: " + e.Extra
	}
	if e.Cause != nil {
		base += fmt.Sprintf(" (cause: %v)", e.Cause)
	}
	return base
}

// Unwrap 讓 errors.Is / errors.As 能夠向下展開。
func (e *E) Unwrap() error { return e.Cause }

func New(errLv ErrLevel, msg string) *E {
	return &E{Message: msg, ErrLv: errLv}
}

func NewFatal(msg string) *E { return New(Fatal, msg) }

func NewWarn(msg string) *E { return New(Warn, msg) }

func NewLog(msg string) *E { return New(Log, msg) }

func Fatalf(format string, a ...any) *E {
	return NewFatal(fmt.Sprintf(format, a...))
}

func Warnf(format string, a ...any) *E {
	return NewWarn(fmt.Sprintf(format, a...))
}

// WithExtra 附加上下文後回傳自身，方便鏈式呼叫。
func (e *E) WithExtra(extra string) *E {
	e.Extra = extra
	return e
}

// Wrap 以訊息包裝底層錯誤。
//
// ErrLevel 規則：
//   - cause 鏈上已有 *E：沿用其 ErrLv。
//   - 否則（標準庫或三方錯誤）一律視為 Fatal。
//
// 已知可預期、可處理的情境請直接用 NewWarn 建立，不要 Wrap。
func Wrap(cause error, msg string) *E {
	r := New(LevelOf(cause), msg)
	r.Cause = cause
	return r
}

// WrapWarn 以 Warn 等級包裝可預期的底層錯誤（例如 context 取消），保留 cause 供 errors.Is 判斷。
func WrapWarn(cause error, msg string) *E {
	r := NewWarn(msg)
	r.Cause = cause
	return r
}

// LevelOf 取出錯誤鏈上的分級；非本包錯誤視為 Fatal，nil 為 None。
func LevelOf(err error) ErrLevel {
	if err == nil {
		return None
	}
	var e *E
	if errors.As(err, &e) {
		return e.ErrLv
	}
	return Fatal
}

// IsFatal 回報錯誤是否代表狀態不可信。
//
// 與 LevelOf 不同：只有明確宣告為 Fatal 的 *E 才算，外部錯誤不算。
func IsFatal(err error) bool {
	var e *E
	if errors.As(err, &e) {
		return e.ErrLv == Fatal
	}
	return false
}

func AsErr(err error) (*E, bool) {
	var e *E
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
