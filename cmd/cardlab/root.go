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
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/zintix-labs/cardlab"
	"github.com/zintix-labs/cardlab/demo"
	"github.com/zintix-labs/cardlab/errs"
	"github.com/zintix-labs/cardlab/sdk/core"
)

const envPrefix = "CARDLAB"

// cli 所有子命令共用的狀態；每個 root 一份 viper，方便測試。
type cli struct {
	v       *viper.Viper
	cfgFile string
	in      io.Reader
	out     io.Writer
	stderr  io.Writer
	now     func() time.Time
}

func newRootCmd(in io.Reader, out io.Writer) *cobra.Command {
	c := &cli{v: viper.New(), in: in, out: out, stderr: os.Stderr, now: time.Now}
	root := &cobra.Command{
		Use:   "cardlab",
		Short: "Blackjack lab on LCG (RANDU) and MT19937 generators.",
		Long: `Blackjack lab on LCG (RANDU) and MT19937 generators.
Flags can also come from the environment (CARDLAB_SEED, CARDLAB_LOG_MODE, ...)
or from a yaml file given by --config.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.initConfig,
	}
	root.SetIn(in)
	root.SetOut(out)
	root.PersistentFlags().StringVar(&c.cfgFile, "config", "", "config file (yaml)")
	root.PersistentFlags().String("tables", "", "directory of table configs (default: embedded demo tables)")

	root.AddCommand(
		c.newPlayCmd(),
		c.newSimCmd(),
		c.newServeCmd(),
		c.newDrawCmd(),
	)
	return root
}

// initConfig 綁定旗標、環境變數與設定檔，優先序：旗標 > 環境變數 > 設定檔 > 預設值。
func (c *cli) initConfig(cmd *cobra.Command, _ []string) error {
	c.v.SetEnvPrefix(envPrefix)
	c.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	c.v.AutomaticEnv()
	if err := c.v.BindPFlags(cmd.Flags()); err != nil {
		return errs.Fatalf("bind flags: %v", err)
	}
	if c.cfgFile != "" {
		c.v.SetConfigFile(c.cfgFile)
		if err := c.v.ReadInConfig(); err != nil {
			return errs.Warnf("read config %s: %v", c.cfgFile, err)
		}
	}
	return nil
}

// seed 未指定時退回時間 seed。
func (c *cli) seed() int64 {
	if c.v.IsSet("seed") {
		return c.v.GetInt64("seed")
	}
	return core.TimeSeed(c.now())
}

// lab 讀取 --tables 目錄，未指定時使用內嵌的示範牌桌。
func (c *cli) lab() (*cardlab.Lab, error) {
	if dir := c.v.GetString("tables"); dir != "" {
		return cardlab.NewAuto(cardlab.Configs(os.DirFS(dir)))
	}
	return demo.NewLab()
}
