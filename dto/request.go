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

package dto

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/zintix-labs/cardlab/corefmt"
	"github.com/zintix-labs/cardlab/errs"
	"github.com/zintix-labs/cardlab/sdk/buf"
	"github.com/zintix-labs/cardlab/spec"
)

// 防止 body 過大（1MiB）
const maxBody = 1 << 20

type PlayRequest struct {
	UID        string      `json:"uid"`                   // 唯一識別碼
	TableName  string      `json:"table"`                 // 要玩的牌桌
	TableID    spec.TID    `json:"tid"`                   // 牌桌編號
	Bet        int         `json:"bet"`                   // 投注額（需為 bet_unit 的倍數）
	StartState *StartState `json:"start_state,omitempty"` // 可選：nil=新局；帶 start_b64u=回放/續玩
}

// StartState 是由呼叫端帶入的產生器快照（可選）。
//
//   - 回放：帶入當初回應中的 start_b64u，同一張牌桌會發出完全相同的牌。
//   - 續玩：帶入上一局回應的 after_b64u，延續同一條亂數序列。
//
// after_b64u 只會出現在回應，請求端不得填寫。
type StartState struct {
	StartSnapB64U string `json:"start_b64u,omitempty"`
}

func (ss *StartState) HasPayload() bool {
	return ss != nil && ss.StartSnapB64U != ""
}

// DecodePlayRequest 會把 HTTP 請求解碼成 PlayRequest。
//
// 支援：
//   - GET：從 query string 讀取參數（uid/table/tid/bet/start_b64u）。
//   - POST：從 JSON body 反序列化，未知欄位直接拒絕。
//
// 這裡只負責解碼與基本型別轉換；牌桌是否存在、bet 是否合法由 Table 決定。
func DecodePlayRequest(r *http.Request) (*PlayRequest, error) {
	if r == nil {
		return nil, errs.NewWarn("nil request")
	}

	req := new(PlayRequest)

	switch r.Method {
	case http.MethodGet:
		q := r.URL.Query()
		req.UID = q.Get("uid")
		req.TableName = q.Get("table")

		if s := q.Get("tid"); s != "" {
			u, err := strconv.ParseUint(s, 10, 0)
			if err != nil {
				return nil, errs.NewWarn(fmt.Sprintf("invalid tid: %v", err))
			}
			req.TableID = spec.TID(u)
		}

		if s := q.Get("bet"); s != "" {
			v, err := strconv.Atoi(s)
			if err != nil {
				return nil, errs.NewWarn(fmt.Sprintf("invalid bet: %v", err))
			}
			req.Bet = v
		}

		if s := q.Get("start_b64u"); s != "" {
			req.StartState = &StartState{StartSnapB64U: s}
		}
		return req, nil

	case http.MethodPost:
		if err := DecodeJSONBody(r, req); err != nil {
			return nil, err
		}
		return req, nil

	default:
		return nil, errs.NewWarn("method not allowed")
	}
}

// DecodeJSONBody 以嚴格模式解碼 JSON body（大小上限 1MiB、拒絕未知欄位）。
func DecodeJSONBody(r *http.Request, out any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return errs.NewWarn("invalid json: " + err.Error())
	}
	return nil
}

// Parse 轉成牌桌內部使用的請求（快照解碼為 []byte）。
func (pr *PlayRequest) Parse() (*buf.PlayRequest, error) {
	var state *buf.StartState
	if pr.StartState.HasPayload() {
		snap, err := corefmt.DecodeBase64URL(pr.StartState.StartSnapB64U)
		if err != nil {
			return nil, errs.Wrap(err, "start snapshot decode failed")
		}
		state = &buf.StartState{StartSnap: snap}
	}
	return &buf.PlayRequest{
		UID:        pr.UID,
		TableName:  pr.TableName,
		TableID:    pr.TableID,
		Bet:        pr.Bet,
		StartState: state,
	}, nil
}
