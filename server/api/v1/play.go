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

package v1

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/zintix-labs/cardlab"
	"github.com/zintix-labs/cardlab/dto"
	"github.com/zintix-labs/cardlab/errs"
	"github.com/zintix-labs/cardlab/server/httperr"
	"github.com/zintix-labs/cardlab/server/logger"
	"github.com/zintix-labs/cardlab/server/svrcfg"
)

// ============================================================
// ** PlayHandler **
// ============================================================

type PlayHandler struct {
	lab     *cardlab.Lab
	rt      *cardlab.TableRuntime
	log     *slog.Logger
	timeout time.Duration
}

// NewPlayHandler 建立 runtime（每張牌桌一個 pool）。runtime 的關閉由呼叫端負責。
func NewPlayHandler(sCfg *svrcfg.SvrCfg) (*PlayHandler, error) {
	rt, err := sCfg.Lab.BuildRuntime(sCfg.TableBufSize)
	if err != nil {
		return nil, errs.Wrap(err, "build play handler error")
	}
	return &PlayHandler{lab: sCfg.Lab, rt: rt, log: sCfg.Log, timeout: sCfg.PlayTimeout}, nil
}

func (c *PlayHandler) Runtime() *cardlab.TableRuntime {
	return c.rt
}

func (c *PlayHandler) Play(w http.ResponseWriter, q *http.Request) {
	// 請求方法、結構體校驗
	if q.Method != http.MethodGet && q.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	req, err := dto.DecodePlayRequest(q)
	if err != nil {
		httperr.Errs(w, err)
		return
	}
	// 請求解析完成，設置超時 context
	ctx, cancel := context.WithTimeout(q.Context(), c.timeout)
	defer cancel()

	result, err := c.rt.Play(ctx, req)
	if err != nil {
		httperr.Log(c.log, "v1.play", err)
		httperr.Errs(w, err)
		return
	}
	httperr.JSON(w, result)
}

// Tables 列出所有牌桌設定摘要
func (c *PlayHandler) Tables(w http.ResponseWriter, q *http.Request) {
	sum, err := c.lab.Summary()
	if err != nil {
		httperr.Errs(w, err)
		return
	}
	httperr.JSON(w, sum)
}

// Metrics 每個 TablePool 的觀測快照
func (c *PlayHandler) Metrics(w http.ResponseWriter, q *http.Request) {
	type metricsResponse struct {
		Closed     bool                       `json:"closed"`
		Reason     string                     `json:"close_reason"`
		LogDropped uint64                     `json:"log_dropped"`
		Pools      []cardlab.TablePoolMetrics `json:"pools"`
	}
	httperr.JSON(w, metricsResponse{
		Closed:     c.rt.Closed(),
		Reason:     c.rt.ClosedReason(),
		LogDropped: logger.Dropped(c.log),
		Pools:      c.rt.Metrics(),
	})
}
