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

// Package demo 以內嵌的三張示範牌桌（classic / twister / shoe）組出可直接執行的 Lab 與 server 設定。
package demo

import (
	"github.com/zintix-labs/cardlab"
	"github.com/zintix-labs/cardlab/demo/demo_configs"
	"github.com/zintix-labs/cardlab/errs"
	"github.com/zintix-labs/cardlab/server/logger"
	"github.com/zintix-labs/cardlab/server/svrcfg"
)

func NewLab() (*cardlab.Lab, error) {
	return cardlab.NewAuto(cardlab.Configs(demo_configs.FS))
}

// NewServerConfig 以示範牌桌與非同步 logger 組出 SvrCfg；回傳的 AsyncHandler 需在結束時 Close。
func NewServerConfig(mode logger.LogMode) (*svrcfg.SvrCfg, *logger.AsyncHandler, error) {
	lab, err := NewLab()
	if err != nil {
		return nil, nil, errs.Wrap(err, "new lab failed")
	}
	log, ah := logger.NewAsync(8192, mode)
	scfg := &svrcfg.SvrCfg{
		Log:          log,
		TableBufSize: 1,
		Lab:          lab,
	}
	return scfg, ah, nil
}
