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

// Package server 組裝 cardlab 的 HTTP 服務：chi 路由、middleware、v1 api 與生命週期管理。
package server

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/zintix-labs/cardlab/errs"
	"github.com/zintix-labs/cardlab/server/api"
	"github.com/zintix-labs/cardlab/server/app"
	"github.com/zintix-labs/cardlab/server/netsvr"
	"github.com/zintix-labs/cardlab/server/svrcfg"
)

// Run 是 server 套件的「組裝器（assembler）」與「啟動入口（runtime entry）」。
//
// 它負責：
//  1. 驗證 SvrCfg（包含必要依賴，例如 logger、Lab）。
//  2. 建立 HTTP server（netsvr，監聽 sCfg.Addr）。
//  3. 註冊路由與 middleware（api.RegisterRoutes）。
//  4. 啟動 app.Run()，收到 SIGINT/SIGTERM 後依序關閉 server 與 TableRuntime。
//
// Run 不綁定任何檔案路徑或環境變數策略；所有依賴都透過 SvrCfg 明確注入。
func Run(sCfg *svrcfg.SvrCfg) error {
	if err := sCfg.Valid(); err != nil {
		// 防止外層傳入的 logger 不可用
		fmt.Fprintln(os.Stderr, err)
		return err
	}
	svr := netsvr.NewChiServerWith(sCfg.Addr, netsvr.Timeouts{Write: sCfg.WriteTimeout})
	sCfg.Log.Info("[cardlab] listening on http://localhost" + svr.Address())
	return run(sCfg, svr)
}

// RunWithSvr 與 Run 相同，但由呼叫端注入自訂的 NetSvr（自訂 listener、TLS、timeout 等）。
//
// svr 必須非 nil；若是 ChiAdapter 會要求 Ready() 為 true。
func RunWithSvr(sCfg *svrcfg.SvrCfg, svr netsvr.NetSvr) error {
	if err := sCfg.Valid(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}
	if svr == nil {
		err := errs.NewFatal("svr is required")
		sCfg.Log.Error(err.Error())
		return err
	}
	if s, ok := svr.(*netsvr.ChiAdapter); ok && !s.Ready() {
		err := errs.NewFatal("default server is not ready")
		sCfg.Log.Error(err.Error())
		return err
	}
	sCfg.Log.Info("[cardlab] listening")
	return run(sCfg, svr)
}

func run(sCfg *svrcfg.SvrCfg, svr netsvr.NetSvr) error {
	rt, err := api.RegisterRoutes(svr, sCfg)
	if err != nil {
		sCfg.Log.Error("register routes failed", slog.Any("err", err))
		return err
	}
	// 關閉順序：先停 server（不再有新請求），再關 runtime
	a := app.NewWith(svr, app.NewHook(rt.Close))
	if err := a.Run(); err != nil {
		sCfg.Log.Error("app stopped:", slog.Any("err", err))
		return err
	}
	sCfg.Log.Info("[cardlab] stopped")
	return nil
}
