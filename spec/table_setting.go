package spec

import (
	"fmt"
	"strings"

	"github.com/zintix-labs/cardlab/errs"
	"github.com/zintix-labs/cardlab/sdk/blackjack"
	"github.com/zintix-labs/cardlab/sdk/core"
)

// TID 牌桌編號
type TID uint

// TableSetting 包含開一張牌桌所需的所有設定。
type TableSetting struct {
	TableName   string    `yaml:"table_name"    json:"table_name"`
	TableID     TID       `yaml:"table_id"      json:"table_id"`
	Generator   core.Kind `yaml:"generator"     json:"generator"`
	Decks       int       `yaml:"decks"         json:"decks"`
	DealerStand int       `yaml:"dealer_stand"  json:"dealer_stand"`
	PlayerStand int       `yaml:"player_stand"  json:"player_stand"`
	BetUnit     int       `yaml:"bet_unit"      json:"bet_unit"`
}

// init 補預設值、正規化產生器名稱後檢查
func (ts *TableSetting) init() error {
	ts.TableName = strings.TrimSpace(ts.TableName)
	def := blackjack.DefaultRules()
	if ts.Decks == 0 {
		ts.Decks = def.Decks
	}
	if ts.DealerStand == 0 {
		ts.DealerStand = def.DealerStand
	}
	if ts.PlayerStand == 0 {
		ts.PlayerStand = def.PlayerStand
	}
	if ts.BetUnit == 0 {
		ts.BetUnit = 1
	}
	if ts.Generator == "" {
		ts.Generator = core.Default().Kind()
	}
	k, err := core.ParseKind(string(ts.Generator))
	if err != nil {
		return errs.NewFatal(fmt.Sprintf("table_name: %s err:%s", ts.TableName, err.Error()))
	}
	ts.Generator = k
	return ts.valid()
}

// valid 執行最基本的設定檔檢查
func (ts *TableSetting) valid() error {
	if ts.TableName == "" {
		return errs.NewFatal("table_name required")
	}
	if ts.BetUnit < 1 {
		return errs.NewFatal(fmt.Sprintf("table_name: %s err:invalid bet_unit", ts.TableName))
	}
	if err := ts.Rules().Valid(); err != nil {
		return errs.NewFatal(fmt.Sprintf("table_name: %s err:%s", ts.TableName, err.Error()))
	}
	return nil
}

func (ts *TableSetting) Rules() blackjack.Rules {
	return blackjack.Rules{
		Decks:       ts.Decks,
		DealerStand: ts.DealerStand,
		PlayerStand: ts.PlayerStand,
	}
}

// Factory 依設定取得產生器工廠
func (ts *TableSetting) Factory() (core.PRNGFactory, error) {
	return core.FactoryOf(string(ts.Generator))
}
