package stats

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/zintix-labs/cardlab/sdk/core"
	"github.com/zintix-labs/cardlab/spec"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var lang language.Tag = language.English

// 信賴區間
type CI struct {
	Lo float64 `json:"Lo"`
	Hi float64 `json:"Hi"`
}

// StatReport 牌桌統計報告
type StatReport struct {
	Summary *SummaryReport `json:"Summary"`
	Mult    *MultReport    `json:"Mult"`
	Outcome *OutcomeReport `json:"Outcome"`
	Dist    *DistReport    `json:"Dist"`
	Player  *PlayerReport  `json:"Player,omitzero"`
	isDone  bool
}

type SummaryReport struct {
	TableName   string    `json:"TableName"`
	TableID     spec.TID  `json:"TableID"`
	Generator   core.Kind `json:"Generator"`
	Decks       int       `json:"Decks"`
	DealerStand int       `json:"DealerStand"`
	PlayerStand int       `json:"PlayerStand"`
	BetUnit     int       `json:"BetUnit"`
	TotalBet    int       `json:"TotalBet"`
	TotalReturn int       `json:"TotalReturn"`
	RTP         float64   `json:"RTP"`
	RtpCI       CI        `json:"RtpCI"`
	Std         float64   `json:"Std"`
	Cv          float64   `json:"Cv"`
	Rounds      int       `json:"Rounds"`
}

// MultReport 返還倍數統計（以 BetUnit 為單位）
//
// 紀錄時不紀錄，避免轉型成本。紀錄完成後Done()會將結果整理填入
type MultReport struct {
	TotalReturnMult      float64 `json:"TotalReturnMult"`
	TotalReturnMultSqSum float64 `json:"TotalReturnMultSqSum"` // 平方和
}

// OutcomeReport 勝負統計
//
// 計數由紀錄員填入，比例與信賴區間（Clopper-Pearson 95%）在 Done 時計算。
type OutcomeReport struct {
	PlayerWins     int `json:"PlayerWins"`
	DealerWins     int `json:"DealerWins"`
	Draws          int `json:"Draws"`
	PlayerBusts    int `json:"PlayerBusts"`
	DealerBusts    int `json:"DealerBusts"`
	PlayerNaturals int `json:"PlayerNaturals"`
	DealerNaturals int `json:"DealerNaturals"`

	WinRate        PointStat `json:"WinRate"`
	LossRate       PointStat `json:"LossRate"`
	DrawRate       PointStat `json:"DrawRate"`
	PlayerBustRate PointStat `json:"PlayerBustRate"`
	DealerBustRate PointStat `json:"DealerBustRate"`
	NaturalRate    PointStat `json:"NaturalRate"`
}

// DistReport 最終點數落點統計
type DistReport struct {
	ValueBucket        []string  `json:"ValueBucket"`
	PlayerValueCollect []int     `json:"PlayerValueCollect"`
	DealerValueCollect []int     `json:"DealerValueCollect"`
	PlayerValueDist    []float64 `json:"PlayerValueDist"`
	DealerValueDist    []float64 `json:"DealerValueDist"`
}

// PlayerReport 玩家統計
//
// 需使用PlayerRecord 才會統計
type PlayerReport struct {
	InitBalance int  `json:"InitBalance"`
	Balance     int  `json:"Balance"`
	MaxBalance  int  `json:"MaxBalance"`
	MinBalance  int  `json:"MinBalance"`
	Bust        bool `json:"Bust"`
	Cashout     bool `json:"Cashout"`
	Alive       bool `json:"Alive"`
}

// ============================================================
// ** 公開方法 **
// ============================================================

// Done 將累積計數轉換為最終統計結果並鎖定 isDone 標記。
//
// 所有牌局統計過程因為性能原因只處理int的紀錄，所以統計完成後
//
// 請使用 Done 來通知 StatReport 統計已經完成，可以一次性計算統計結果
func (s *StatReport) Done() {
	if s.isDone {
		return
	}
	// Summary
	s.Summary.RTP = s.Rtp()
	s.Summary.RtpCI = s.Ci()
	s.Summary.Std = s.Std()
	s.Summary.Cv = s.Cv()

	// Outcome
	if o := s.Outcome; o != nil {
		n := s.Summary.Rounds
		o.WinRate = pointCP(o.PlayerWins, n)
		o.LossRate = pointCP(o.DealerWins, n)
		o.DrawRate = pointCP(o.Draws, n)
		o.PlayerBustRate = pointCP(o.PlayerBusts, n)
		o.DealerBustRate = pointCP(o.DealerBusts, n)
		o.NaturalRate = pointCP(o.PlayerNaturals, n)
	}

	// Dist
	if d := s.Dist; d != nil {
		d.PlayerValueDist = normalize(d.PlayerValueCollect, s.Summary.Rounds)
		d.DealerValueDist = normalize(d.DealerValueCollect, s.Summary.Rounds)
	}

	// Player
	if s.Player != nil {
		s.Player.Alive = !(s.Player.Bust || s.Player.Cashout)
	}

	s.isDone = true
}

// Rtp 回傳整體 RTP（總返還 / 總押注）
func (s *StatReport) Rtp() float64 {
	if s.Summary.Rounds == 0 || s.Summary.TotalBet == 0 {
		return 0
	}
	return (float64(s.Summary.TotalReturn) / float64(s.Summary.TotalBet))
}

// Std 回傳單局返還的標準差（以投注單位為基礎）
func (s *StatReport) Std() float64 {
	if s.Summary.Rounds < 2 || s.Summary.BetUnit == 0 {
		return 0
	}
	rounds := float64(s.Summary.Rounds)

	multPow := s.Mult.TotalReturnMult * s.Mult.TotalReturnMult
	variance := (s.Mult.TotalReturnMultSqSum - multPow/rounds) / (rounds - 1)

	if variance < 0 {
		variance = 0
	}

	std := math.Sqrt(variance)
	return std
}

// Cv 回傳單局返還的變異係數
func (s *StatReport) Cv() float64 {
	rtp := s.Rtp()
	std := s.Std()
	if rtp <= 0 {
		return 0
	}
	return (std / rtp)
}

// Ci 回傳(95% Rtp)信賴區間
func (s *StatReport) Ci() CI {
	rtp := s.Rtp()
	std := s.Std()
	rtpSe := float64(0)
	if s.Summary.Rounds > 1 {
		rtpSe = std / math.Sqrt(float64(s.Summary.Rounds))
	}
	ci := CI{
		Lo: max(rtp-1.96*rtpSe, 0.0),
		Hi: rtp + 1.96*rtpSe,
	}
	return ci
}

func (s *StatReport) WriteWith(w io.Writer, rep StatReportRender) error {
	s.Done()
	return rep.Write(w, s)
}

// WriteTable 把耗時與統計表寫入 w
func (s *StatReport) WriteTable(w io.Writer, ut time.Duration) {
	s.Done()
	formatDuration(w, ut, s.Summary.Rounds)
	sk, sm := s.fmtBasic()
	str := fmtTable(s.Summary.TableName, sk, sm)
	fmt.Fprintln(w, str)
}

// ============================================================
// ** 內部方法 **
// ============================================================

func pointCP(k, n int) PointStat {
	hat, ci := proportionCICP(k, n, confidence)
	return PointStat{Hat: hat, CI: ci}
}

func normalize(c []int, rounds int) []float64 {
	out := make([]float64, len(c))
	if rounds == 0 {
		return out
	}
	rf := float64(rounds)
	for i, v := range c {
		out[i] = float64(v) / rf
	}
	return out
}

func formatDuration(w io.Writer, d time.Duration, rounds int) {
	p := message.NewPrinter(lang)
	if d < 0 {
		d = -d
	}
	sec := d.Seconds()
	if sec <= 0 {
		sec = 1e-9
	}
	rps := int(float64(rounds) / sec)
	if sec < 60.0 {
		p.Fprintf(w, "used: %.2f seconds\nrps : %d rounds/sec\n", sec, rps)
		return
	}
	s := int(d.Seconds()) % 60
	m := int(d.Minutes()) % 60
	h := int(d.Hours())
	if h == 0 {
		p.Fprintf(w, "used: %dm %ds\nrps : %d rounds/sec\n", m, s, rps)
		return
	}
	p.Fprintf(w, "used: %dh:%dm:%ds\nrps : %d rounds/sec\n", h, m, s, rps)
}

func (s *StatReport) fmtBasic() ([]string, map[string]string) {
	p := message.NewPrinter(lang)
	sm := s.Summary
	basic := map[string]string{
		"Table Name":   p.Sprintf("%s", sm.TableName),
		"Table ID":     fmt.Sprintf("%d", sm.TableID),
		"Generator":    string(sm.Generator),
		"Rules":        fmt.Sprintf("decks %d / dealer %d / player %d", sm.Decks, sm.DealerStand, sm.PlayerStand),
		"Total Rounds": p.Sprintf("%d", sm.Rounds),
		"Total RTP":    p.Sprintf("%.2f %%", 100.0*sm.RTP),
		"RTP 95% CI":   p.Sprintf("[%.2f%%,%.2f%%]", 100.0*sm.RtpCI.Lo, 100.0*sm.RtpCI.Hi),
		"Total Bet":    p.Sprintf("%d", sm.TotalBet),
		"Total Return": p.Sprintf("%d", sm.TotalReturn),
		"STD":          p.Sprintf("%.3f", sm.Std),
		"CV":           p.Sprintf("%.3f", sm.Cv),
	}
	keys := []string{"Table Name", "Table ID", "Generator", "Rules", "Total Rounds", "Total RTP", "RTP 95% CI", "Total Bet", "Total Return"}

	if o := s.Outcome; o != nil {
		basic["Player Win"] = p.Sprintf("%d (%s)", o.PlayerWins, fmtPct01(o.WinRate.Hat))
		basic["Dealer Win"] = p.Sprintf("%d (%s)", o.DealerWins, fmtPct01(o.LossRate.Hat))
		basic["Draw"] = p.Sprintf("%d (%s)", o.Draws, fmtPct01(o.DrawRate.Hat))
		basic["Player Bust"] = p.Sprintf("%d", o.PlayerBusts)
		basic["Dealer Bust"] = p.Sprintf("%d", o.DealerBusts)
		basic["Natural"] = p.Sprintf("%d", o.PlayerNaturals)
		keys = append(keys, "Player Win", "Dealer Win", "Draw", "Player Bust", "Dealer Bust", "Natural")
	}
	keys = append(keys, "STD", "CV")
	return keys, basic
}

func fmtTable(title string, keys []string, msg map[string]string) string {
	p := message.NewPrinter(lang)
	maxKeyLen := 0
	maxValLen := 0
	for k, m := range msg {
		if w := runewidth.StringWidth(k); w > maxKeyLen {
			maxKeyLen = w
		}
		if w := runewidth.StringWidth(m); w > maxValLen {
			maxValLen = w
		}
	}
	maxKeyLen += 2
	maxValLen += 2

	divider := "+" + strings.Repeat("-", maxKeyLen) + "+" + strings.Repeat("-", maxValLen) + "+\n"
	top := "+" + strings.Repeat("-", maxKeyLen+1+maxValLen) + "+\n"

	totalInner := maxKeyLen + maxValLen + 1
	titleW := runewidth.StringWidth(title)

	left := (totalInner - titleW) / 2
	right := totalInner - titleW - left

	fmtStr := top
	fmtStr += p.Sprintf("|%s%s%s|\n", blank(left), title, blank(right))
	fmtStr += divider
	for _, k := range keys {
		fmtStr += p.Sprintf("| %s%s | %s%s |\n", k, blank(maxKeyLen-2-runewidth.StringWidth(k)), msg[k], blank(maxValLen-2-runewidth.StringWidth(msg[k])))
	}
	fmtStr += divider

	return fmtStr
}

func blank(w int) string {
	if w < 1 {
		return ""
	}
	return strings.Repeat(" ", w)
}
