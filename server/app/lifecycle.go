// Package app 定義應用程式根目錄用以管理長期運行元件的最小生命週期抽象。
package app

import "context"

// Component 抽象任何「可啟動 / 可關閉」的長生命週期元件。
// - Run() 應該是阻塞呼叫，直到元件停止為止（正常或錯誤）。
// - Shutdown(ctx) 用於要求優雅關閉；實作方應該尊重 ctx deadline/cancel。
// 典型實例：HTTP Server、Background Worker、Message Consumer 等。
type Component interface {
	Run() error
	Shutdown(ctx context.Context) error
}

// Hook 把一組關閉函式包成 Component：Run 阻塞到 Shutdown 被呼叫，Shutdown 依序執行 fns。
//
// 用來讓 TableRuntime、非同步 logger 等資源跟著 server 一起關閉。
type Hook struct {
	fns  []func()
	done chan struct{}
}

func NewHook(fns ...func()) *Hook {
	return &Hook{fns: fns, done: make(chan struct{})}
}

func (h *Hook) Run() error {
	<-h.done
	return nil
}

func (h *Hook) Shutdown(ctx context.Context) error {
	select {
	case <-h.done:
		return nil
	default:
	}
	close(h.done)
	for _, fn := range h.fns {
		if err := ctx.Err(); err != nil {
			return err
		}
		fn()
	}
	return nil
}
