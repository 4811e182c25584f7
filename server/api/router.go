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

package api

import (
	"log/slog"
	"net/http"

	"github.com/zintix-labs/cardlab"
	"github.com/zintix-labs/cardlab/errs"
	"github.com/zintix-labs/cardlab/server/api/dev"
	v1 "github.com/zintix-labs/cardlab/server/api/v1"
	"github.com/zintix-labs/cardlab/server/httperr"
	"github.com/zintix-labs/cardlab/server/netsvr"
	"github.com/zintix-labs/cardlab/server/netsvr/middleware"
	"github.com/zintix-labs/cardlab/server/svrcfg"
)

// routes 首頁列出的路由
var routes = []string{
	"GET /v1/tables",
	"GET|POST /v1/play",
	"GET|POST /v1/sim",
	"GET|POST /v1/simplayer",
	"POST /v1/simbycfg",
	"GET /v1/draw",
	"GET /v1/metrics",
	"POST /v1/session",
	"GET|DELETE /v1/session/{id}",
	"POST /v1/session/{id}/hit",
	"POST /v1/session/{id}/stand",
}

// RegisterRoutes 註冊 middleware 與全部路由，回傳 v1 使用的 TableRuntime（由呼叫端負責 Close）。
//
// sCfg 需先通過 Valid()。
func RegisterRoutes(svr netsvr.NetRouter, sCfg *svrcfg.SvrCfg) (*cardlab.TableRuntime, error) {
	if sCfg == nil || sCfg.Lab == nil {
		return nil, errs.NewFatal("lab is required")
	}
	registerMiddleware(svr, sCfg.Log) // 1. 註冊 middleware
	svr.Get("/", index(sCfg.Dev))     // 2. 註冊主頁
	if sCfg.Dev {
		dev.Register(svr, sCfg) // 3. 開發者端點
	}
	return registerV1API(svr, sCfg) // 4. 註冊 v1 api
}

// 註冊 middleware
func registerMiddleware(svr netsvr.NetRouter, log *slog.Logger) {
	svr.Use(middleware.RequestID)
	svr.Use(middleware.AccessLog(log))
	svr.Use(middleware.Recover(log))
	svr.Use(middleware.Compression)
}

func index(withDev bool) http.HandlerFunc {
	type indexResponse struct {
		Service string   `json:"service"`
		Routes  []string `json:"routes"`
	}
	rs := routes
	if withDev {
		rs = append(append([]string{}, routes...), "GET /dev/meta", "POST /dev/rounds", "POST /dev/sim")
	}
	return func(w http.ResponseWriter, r *http.Request) {
		httperr.JSON(w, indexResponse{Service: "cardlab", Routes: rs})
	}
}

// 註冊 v1 api
func registerV1API(svr netsvr.NetRouter, sCfg *svrcfg.SvrCfg) (*cardlab.TableRuntime, error) {
	p, err := v1.NewPlayHandler(sCfg)
	if err != nil {
		return nil, err
	}
	s, err := v1.NewSimHandler(sCfg.Lab)
	if err != nil {
		p.Runtime().Close()
		return nil, err
	}
	ss := v1.NewSessionHandler(sCfg)

	svr.Group("/v1", func(vOne netsvr.NetRouter) {
		vOne.Get("/tables", p.Tables)
		vOne.Get("/metrics", p.Metrics)
		vOne.Get("/play", p.Play)
		vOne.Get("/sim", s.Sim)
		vOne.Get("/simplayer", s.SimPlayers)
		vOne.Get("/draw", v1.Draw)

		vOne.Post("/play", p.Play)
		vOne.Post("/sim", s.Sim)
		vOne.Post("/simplayer", s.SimPlayers)
		vOne.Post("/simbycfg", s.SimByCfg)

		vOne.Post("/session", ss.Start)
		vOne.Get("/session/{id}", ss.Get)
		vOne.Delete("/session/{id}", ss.Delete)
		vOne.Post("/session/{id}/hit", ss.Hit)
		vOne.Post("/session/{id}/stand", ss.Stand)
	})
	return p.Runtime(), nil
}
