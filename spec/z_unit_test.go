package spec

import (
	"testing"

	"github.com/zintix-labs/cardlab/sdk/core"
)

func TestTableSettingYAMLDefaults(t *testing.T) {
	raw := []byte("table_name: Basic\ntable_id: 7\ngenerator: RANDU\n")
	ts, err := GetTableSettingByYAML(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if ts.TableID != 7 || ts.TableName != "Basic" {
		t.Fatalf("unexpected identity: %+v", ts)
	}
	if ts.Generator != core.KindLCG {
		t.Fatalf("expected generator alias to normalize to lcg, got %s", ts.Generator)
	}
	if ts.Decks != 1 || ts.DealerStand != 17 || ts.PlayerStand != 17 || ts.BetUnit != 1 {
		t.Fatalf("defaults not applied: %+v", ts)
	}
	f, err := ts.Factory()
	if err != nil || f.Kind() != core.KindLCG {
		t.Fatalf("factory: %v", err)
	}
}

func TestTableSettingYAMLUnknownField(t *testing.T) {
	raw := []byte("table_name: Basic\ntable_id: 7\ndealer_stnad: 16\n")
	if _, err := GetTableSettingByYAML(raw); err == nil {
		t.Fatalf("expected error for misspelled field")
	}
}

func TestTableSettingJSON(t *testing.T) {
	raw := []byte(`{"table_name":"Shoe","table_id":3,"generator":"mt19937","decks":6,"dealer_stand":17,"player_stand":16,"bet_unit":5}`)
	ts, err := GetTableSettingByJSON(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	r := ts.Rules()
	if r.Decks != 6 || r.PlayerStand != 16 || ts.BetUnit != 5 {
		t.Fatalf("unexpected rules: %+v", r)
	}
}

func TestTableSettingInvalid(t *testing.T) {
	bad := [][]byte{
		[]byte(`{"table_id":1}`),
		[]byte(`{"table_name":"x","generator":"pcg"}`),
		[]byte(`{"table_name":"x","decks":9}`),
		[]byte(`{"table_name":"x","bet_unit":-1}`),
		[]byte(`{"table_name":"x","dealer_stand":30}`),
	}
	for _, raw := range bad {
		if _, err := GetTableSettingByJSON(raw); err == nil {
			t.Fatalf("expected error for %s", raw)
		}
	}
}
