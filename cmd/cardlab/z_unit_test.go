package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/zintix-labs/cardlab/console"
)

func run(t *testing.T, input string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd(strings.NewReader(input), &out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestPlayWithRng(t *testing.T) {
	out, err := run(t, "n\n", "play", "--rng", "mt19937", "--seed", "5489")
	if err != nil {
		t.Fatalf("play: %v", err)
	}
	for _, want := range []string{"Your hand is :[Ace of Hearts, J of Clubs]", "The dealer hits", "You won!"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestPlayTableSeedFromEnv(t *testing.T) {
	t.Setenv("CARDLAB_SEED", "42")
	out, err := run(t, "y\n", "play", "--table", "1")
	if err != nil {
		t.Fatalf("play: %v", err)
	}
	for _, want := range []string{"You have gone bust!", "The dealer won!"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestPlayRejects(t *testing.T) {
	if _, err := run(t, "", "play", "--language", "fr", "--seed", "1"); !errors.Is(err, console.ErrLanguage) {
		t.Fatalf("want language error, got %v", err)
	}
	if _, err := run(t, "", "play", "--rng", "xorshift", "--seed", "1"); err == nil {
		t.Fatalf("unknown generator must fail")
	}
	if _, err := run(t, "", "play", "--table", "9", "--seed", "1"); err == nil {
		t.Fatalf("unknown table must fail")
	}
}

func TestDraw(t *testing.T) {
	out, err := run(t, "", "draw", "--rng", "lcg", "--seed", "1", "-n", "3")
	if err != nil {
		t.Fatalf("draw: %v", err)
	}
	if out != "65539\n393225\n1769499\n" {
		t.Fatalf("unexpected lcg output %q", out)
	}

	out, err = run(t, "", "draw", "--rng", "mt", "--seed", "5489", "-n", "2")
	if err != nil || out != "3499211612\n581869302\n" {
		t.Fatalf("unexpected mt output %q (%v)", out, err)
	}

	out, err = run(t, "", "draw", "--seed", "1", "-n", "1000", "--buckets", "4")
	if err != nil || !strings.Contains(out, "chi-square") || !strings.Contains(out, "1,000") {
		t.Fatalf("unexpected uniformity output %q (%v)", out, err)
	}
	if _, err := run(t, "", "draw", "-n", "0"); err == nil {
		t.Fatalf("n = 0 must fail")
	}
}

func TestDrawState(t *testing.T) {
	out, err := run(t, "", "draw", "--rng", "lcg", "--seed", "1", "-n", "1", "--state")
	if err != nil || out != "65539\nstate: 4c00010003\n" {
		t.Fatalf("unexpected state output %q (%v)", out, err)
	}
	out, err = run(t, "", "draw", "--rng", "lcg", "--from", "4c00010003", "-n", "2")
	if err != nil || out != "393225\n1769499\n" {
		t.Fatalf("restored sequence mismatch %q (%v)", out, err)
	}
	if _, err := run(t, "", "draw", "--rng", "mt19937", "--from", "4c00010003"); err == nil {
		t.Fatalf("lcg snapshot must not restore an mt19937 generator")
	}
	if _, err := run(t, "", "draw", "--from", "zz"); err == nil {
		t.Fatalf("invalid hex must fail")
	}
}

func TestConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cardlab.yaml")
	if err := os.WriteFile(path, []byte("rng: lcg\nseed: 1\nn: 2\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	out, err := run(t, "", "draw", "--config", path)
	if err != nil || out != "65539\n393225\n" {
		t.Fatalf("config values not applied: %q (%v)", out, err)
	}
	// 旗標優先於設定檔
	out, err = run(t, "", "draw", "--config", path, "-n", "1")
	if err != nil || out != "65539\n" {
		t.Fatalf("flag must override config: %q (%v)", out, err)
	}
	if _, err := run(t, "", "draw", "--config", filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("missing config must fail")
	}
}

func TestSimJSON(t *testing.T) {
	out, err := run(t, "", "sim", "--table", "2", "--rounds", "1", "--seed", "5489", "--format", "json")
	if err != nil {
		t.Fatalf("sim: %v", err)
	}
	var rep struct {
		Summary struct {
			TableName   string
			Rounds      int
			TotalReturn int
		}
	}
	if err := json.NewDecoder(strings.NewReader(out)).Decode(&rep); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if rep.Summary.TableName != "twister" || rep.Summary.Rounds != 1 || rep.Summary.TotalReturn != 2 {
		t.Fatalf("unexpected report: %+v", rep.Summary)
	}
}

func TestSimPlayersYAML(t *testing.T) {
	out, err := run(t, "", "sim", "--table", "3", "--rounds", "50", "--player", "20", "--bets", "10", "--worker", "2", "--seed", "7", "--format", "yaml")
	if err != nil {
		t.Fatalf("sim players: %v", err)
	}
	if !strings.Contains(out, "---\n") || !strings.Contains(out, "tablename: shoe") {
		t.Fatalf("unexpected yaml output:\n%s", out)
	}
}

func TestSimRejects(t *testing.T) {
	cases := [][]string{
		{"sim", "--format", "xml"},
		{"sim", "--worker", "0"},
		{"sim", "--pprof", "trace"},
		{"sim", "--table", "9", "--rounds", "1"},
	}
	for _, args := range cases {
		if _, err := run(t, "", args...); err == nil {
			t.Fatalf("%v must fail", args)
		}
	}
}
