// Package buf 定義牌桌內部使用的請求與結果結構（不含任何對外序列化格式）。
//
// 對外 JSON 由 dto 轉換；這裡的欄位保持原始型別（快照為 []byte）。
package buf

import (
	"github.com/zintix-labs/cardlab/sdk/blackjack"
	"github.com/zintix-labs/cardlab/sdk/core"
	"github.com/zintix-labs/cardlab/spec"
)

// PlayRequest 一局自動牌局的輸入
type PlayRequest struct {
	UID        string
	TableName  string
	TableID    spec.TID
	Bet        int
	StartState *StartState // nil = 新局；有值 = 由快照回放 / 續玩
}

// StartState 由呼叫端帶入的產生器快照
type StartState struct {
	StartSnap []byte
}

// RoundState 一局前後的產生器快照：Start 可重現本局，After 可接續下一局。
type RoundState struct {
	StartSnap []byte
	AfterSnap []byte
}

// RoundResult 保存一局完整結果。
type RoundResult struct {
	TableName string
	TableID   spec.TID
	Generator core.Kind
	Bet       int
	Return    int // 含本金的總返還
	Summary   blackjack.Summary
	State     RoundState
}

// NewRoundResult 建立指定牌桌的 RoundResult
func NewRoundResult(ts *spec.TableSetting) *RoundResult {
	return &RoundResult{
		TableName: ts.TableName,
		TableID:   ts.TableID,
		Generator: ts.Generator,
	}
}

// Settle 填入結算結果
func (r *RoundResult) Settle(bet int, sum blackjack.Summary) {
	r.Bet = bet
	r.Summary = sum
	r.Return = sum.Return(bet)
}

// Reset 重置累積資料，保留牌桌識別欄位。
func (r *RoundResult) Reset() {
	r.Bet = 0
	r.Return = 0
	r.Summary = blackjack.Summary{}
	r.State = RoundState{}
}
