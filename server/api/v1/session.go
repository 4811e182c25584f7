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
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/zintix-labs/cardlab"
	"github.com/zintix-labs/cardlab/dto"
	"github.com/zintix-labs/cardlab/errs"
	"github.com/zintix-labs/cardlab/server/httperr"
	"github.com/zintix-labs/cardlab/server/svrcfg"
	"github.com/zintix-labs/cardlab/spec"
)

// ============================================================
// ** SessionHandler **
// ============================================================

// SessionHandler 互動牌局：開局後以 hit / stand 推進，玩家回合中只看得到莊家明牌。
type SessionHandler struct {
	store *cardlab.SessionStore
}

func NewSessionHandler(sCfg *svrcfg.SvrCfg) *SessionHandler {
	return &SessionHandler{store: sCfg.Lab.NewSessionStore(sCfg.MaxSessions, sCfg.SessionTTL)}
}

func (h *SessionHandler) Store() *cardlab.SessionStore {
	return h.store
}

// Start POST /v1/session {"tid":1,"bet":5}；bet 省略時為一個 bet_unit。
func (h *SessionHandler) Start(w http.ResponseWriter, r *http.Request) {
	type startRequest struct {
		TID spec.TID `json:"tid"`
		Bet int      `json:"bet"`
	}
	req := new(startRequest)
	if err := dto.DecodeJSONBody(r, req); err != nil {
		httperr.Errs(w, err)
		return
	}
	if req.Bet < 0 {
		httperr.Errs(w, errs.NewWarn("bet must be positive"))
		return
	}
	v, err := h.store.Start(req.TID, req.Bet)
	if err != nil {
		httperr.Errs(w, err)
		return
	}
	httperr.JSON(w, v)
}

func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	h.reply(w, h.store.Get)(chi.URLParam(r, "id"))
}

func (h *SessionHandler) Hit(w http.ResponseWriter, r *http.Request) {
	h.reply(w, h.store.Hit)(chi.URLParam(r, "id"))
}

func (h *SessionHandler) Stand(w http.ResponseWriter, r *http.Request) {
	h.reply(w, h.store.Stand)(chi.URLParam(r, "id"))
}

func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if !h.store.Delete(chi.URLParam(r, "id")) {
		httperr.Errs(w, errs.NewWarn("session not found"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// reply 執行 op 並回寫視圖；op 失敗時回錯誤（例如牌局已結束仍要補牌）。
func (h *SessionHandler) reply(w http.ResponseWriter, op func(string) (dto.SessionView, error)) func(string) {
	return func(id string) {
		if id == "" {
			httperr.Errs(w, errs.NewWarn("session id is required"))
			return
		}
		v, err := op(id)
		if err != nil {
			httperr.Errs(w, err)
			return
		}
		httperr.JSON(w, v)
	}
}
