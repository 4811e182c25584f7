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

package main

import (
	"github.com/spf13/cobra"
	"github.com/zintix-labs/cardlab/server"
	"github.com/zintix-labs/cardlab/server/logger"
	"github.com/zintix-labs/cardlab/server/svrcfg"
)

func (c *cli) newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Args:  cobra.NoArgs,
		RunE:  c.runServe,
	}
	f := cmd.Flags()
	f.String("addr", ":5808", "listen address")
	f.String("log-mode", "dev", "log mode: dev|prod|silence")
	f.Int("buf", 1, "tables per pool (1..10)")
	f.Bool("dev", false, "mount the /dev endpoints")
	f.Int("max-sessions", 0, "max interactive sessions (0: default)")
	f.Duration("session-ttl", 0, "idle session expiry (0: default)")
	f.Duration("play-timeout", 0, "max wait for a free table per play request (0: default)")
	f.Duration("write-timeout", 0, "http write timeout, must cover the longest simulation (0: default)")
	return cmd
}

// serveConfig 由旗標組出 SvrCfg；回傳的 AsyncHandler 需在結束時 Close。
func (c *cli) serveConfig() (*svrcfg.SvrCfg, *logger.AsyncHandler, error) {
	mode, err := logger.ParseMode(c.v.GetString("log-mode"))
	if err != nil {
		return nil, nil, err
	}
	lab, err := c.lab()
	if err != nil {
		return nil, nil, err
	}
	log, ah := logger.NewAsync(8192, mode)
	return &svrcfg.SvrCfg{
		Log:          log,
		Addr:         c.v.GetString("addr"),
		TableBufSize: c.v.GetInt("buf"),
		Lab:          lab,
		MaxSessions:  c.v.GetInt("max-sessions"),
		SessionTTL:   c.v.GetDuration("session-ttl"),
		PlayTimeout:  c.v.GetDuration("play-timeout"),
		WriteTimeout: c.v.GetDuration("write-timeout"),
		Dev:          c.v.GetBool("dev"),
	}, ah, nil
}

func (c *cli) runServe(cmd *cobra.Command, _ []string) error {
	sCfg, ah, err := c.serveConfig()
	if err != nil {
		return err
	}
	// 等待非同步 logger 寫完最後幾筆
	defer ah.Close()
	return server.Run(sCfg)
}
