package stats

import (
	"encoding/json"
	"io"
	"strings"
	"time"

	"github.com/zintix-labs/cardlab/errs"
	"gopkg.in/yaml.v3"
)

// Format 報表輸出格式
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// ParseFormat 不分大小寫；空字串視為 table
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatTable, nil
	case FormatTable, FormatJSON, FormatYAML:
		return f, nil
	default:
		return "", errs.Warnf("unknown format %q (want table|json|yaml)", s)
	}
}

// StatReportRender 定義輸出行為
type StatReportRender interface {
	Write(w io.Writer, r *StatReport) error
}

type EstimatorRender interface {
	Write(w io.Writer, e *EstimatorPlayers) error
}

type JsonStatReportRender struct{}

func (*JsonStatReportRender) Write(w io.Writer, r *StatReport) error { return writeJSON(w, r) }

type YAMLStatReportRender struct{}

func (*YAMLStatReportRender) Write(w io.Writer, r *StatReport) error { return writeYAML(w, r) }

type JsonEstimatorRender struct{}

func (*JsonEstimatorRender) Write(w io.Writer, e *EstimatorPlayers) error { return writeJSON(w, e) }

type YAMLEstimatorRender struct{}

func (*YAMLEstimatorRender) Write(w io.Writer, e *EstimatorPlayers) error { return writeYAML(w, e) }

// WriteReport 依格式輸出牌桌報表與（若有）玩家評估。
//
// yaml 兩份文件以 "---" 分隔；json 為連續兩個物件；table 才會印出耗時。
func WriteReport(w io.Writer, f Format, st *StatReport, est *EstimatorPlayers, used time.Duration) error {
	if st == nil {
		return errs.NewFatal("nil stat report")
	}
	switch f {
	case FormatJSON:
		if err := st.WriteWith(w, &JsonStatReportRender{}); err != nil {
			return err
		}
		if est != nil {
			return (&JsonEstimatorRender{}).Write(w, est)
		}
	case FormatYAML:
		if err := st.WriteWith(w, &YAMLStatReportRender{}); err != nil {
			return err
		}
		if est != nil {
			if _, err := io.WriteString(w, "---\n"); err != nil {
				return err
			}
			return (&YAMLEstimatorRender{}).Write(w, est)
		}
	default:
		st.WriteTable(w, used)
		if est != nil {
			est.Fprint(w)
		}
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeYAML 最內層的一維陣列（分桶、計數）以 flow style 輸出：[a, b, c]，其餘維持 block
func writeYAML(w io.Writer, v any) error {
	var node yaml.Node
	if err := node.Encode(v); err != nil {
		return err
	}
	flowLeafSequences(&node)
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	defer enc.Close()
	return enc.Encode(&node)
}

// flowLeafSequences 回報 n 是否為 sequence
func flowLeafSequences(n *yaml.Node) bool {
	if n == nil {
		return false
	}
	leaf := true
	for _, c := range n.Content {
		if flowLeafSequences(c) {
			leaf = false
		}
	}
	if n.Kind != yaml.SequenceNode {
		return false
	}
	if leaf {
		n.Style = yaml.FlowStyle
	}
	return true
}
