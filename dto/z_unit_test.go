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
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/zintix-labs/cardlab/corefmt"
	"github.com/zintix-labs/cardlab/sdk/blackjack"
	"github.com/zintix-labs/cardlab/sdk/buf"
	"github.com/zintix-labs/cardlab/sdk/core"
)

func TestDecodePlayRequestGET(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/play?uid=u1&table=basic&tid=7&bet=10&start_b64u=TAAAAAE", nil)
	req, err := DecodePlayRequest(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.UID != "u1" || req.TableName != "basic" || req.TableID != 7 || req.Bet != 10 {
		t.Fatalf("unexpected request: %+v", req)
	}
	if !req.StartState.HasPayload() {
		t.Fatalf("expected start state")
	}
	in, err := req.Parse()
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !bytes.Equal(in.StartState.StartSnap, []byte{'L', 0, 0, 0, 1}) {
		t.Fatalf("unexpected snapshot bytes: %v", in.StartState.StartSnap)
	}
}

func TestDecodePlayRequestGETBadNumber(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/play?tid=x", nil)
	if _, err := DecodePlayRequest(r); err == nil {
		t.Fatalf("expected error for invalid tid")
	}
}

func TestDecodePlayRequestPOST(t *testing.T) {
	payload := map[string]any{
		"uid": "u2",
		"tid": 9,
		"bet": 5,
	}
	data, _ := json.Marshal(payload)
	r := httptest.NewRequest(http.MethodPost, "/play", bytes.NewReader(data))
	req, err := DecodePlayRequest(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.TableID != 9 || req.Bet != 5 || req.StartState != nil {
		t.Fatalf("unexpected request: %+v", req)
	}
	in, err := req.Parse()
	if err != nil || in.StartState != nil {
		t.Fatalf("new round must not carry a start state: %v", err)
	}
}

func TestDecodePlayRequestRejectsUnknownFields(t *testing.T) {
	data := []byte(`{"tid":1,"bet":1,"unknown":true}`)
	r := httptest.NewRequest(http.MethodPost, "/play", bytes.NewReader(data))
	if _, err := DecodePlayRequest(r); err == nil {
		t.Fatalf("expected error for unknown field")
	}
}

func TestParseRejectsBadSnapshot(t *testing.T) {
	req := &PlayRequest{TableID: 1, Bet: 1, StartState: &StartState{StartSnapB64U: "***"}}
	if _, err := req.Parse(); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestNewRoundResultDTO(t *testing.T) {
	r, _ := blackjack.NewRound(core.NewMT19937(5489), blackjack.DefaultRules())
	sum, err := r.AutoPlay()
	if err != nil {
		t.Fatalf("autoplay: %v", err)
	}
	rr := &buf.RoundResult{TableName: "basic", TableID: 1, Generator: core.KindMT19937}
	rr.Settle(10, sum)
	rr.State = buf.RoundState{StartSnap: []byte{1, 2}, AfterSnap: []byte{3}}
	d, err := NewRoundResultDTO(rr)
	if err != nil {
		t.Fatalf("dto: %v", err)
	}
	if d.Player.Text != "[Ace of Hearts, J of Clubs]" || !d.Player.Natural {
		t.Fatalf("unexpected player hand: %+v", d.Player)
	}
	if d.State.StartSnapB64U != corefmt.EncodeBase64URL([]byte{1, 2}) {
		t.Fatalf("unexpected start snapshot: %s", d.State.StartSnapB64U)
	}
	raw, _ := json.Marshal(d)
	if !strings.Contains(string(raw), `"outcome":"player"`) || !strings.Contains(string(raw), `"return":20`) {
		t.Fatalf("unexpected json: %s", raw)
	}
	if _, err := NewRoundResultDTO(nil); err == nil {
		t.Fatalf("expected error for nil result")
	}
}

func TestSessionViewHidesDealer(t *testing.T) {
	r, _ := blackjack.NewRound(core.NewMT19937(5489), blackjack.DefaultRules())
	_ = r.Deal()
	v := NewSessionView("s1", 1, 10, r)
	if v.Dealer != nil || v.Outcome != nil || v.DealerUp == nil {
		t.Fatalf("dealer hand must be hidden during player phase: %+v", v)
	}
	_ = r.Stand()
	v = NewSessionView("s1", 1, 10, r)
	if v.Dealer == nil || v.Outcome == nil || *v.Return != 20 {
		t.Fatalf("expected full result after stand: %+v", v)
	}
	if v.Phase != "done" {
		t.Fatalf("unexpected phase %s", v.Phase)
	}
}
