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

package core

import (
	"math"
	"testing"
	"time"

	"github.com/zintix-labs/cardlab/errs"
)

func TestLCGKnownSequence(t *testing.T) {
	r := NewLCG(1)
	want := []uint32{65539, 393225, 1769499, 7077969, 26542323}
	for i, w := range want {
		if got := r.Uint32(); got != w {
			t.Fatalf("draw %d: want %d, got %d", i, w, got)
		}
	}
}

func TestLCGMaxSeed(t *testing.T) {
	r := NewLCG(math.MaxUint32)
	want := []uint32{2147418109, 2147090423, 2145714149}
	for i, w := range want {
		if got := r.Uint32(); got != w {
			t.Fatalf("draw %d: want %d, got %d", i, w, got)
		}
	}
}

func TestLCGZeroSeedIsFixedPoint(t *testing.T) {
	r := NewLCG(0)
	for i := 0; i < 1000; i++ {
		if got := r.Uint32(); got != 0 {
			t.Fatalf("draw %d: expected 0, got %d", i, got)
		}
	}
}

func TestMTKnownVector(t *testing.T) {
	r := NewMT19937(5489)
	want := []uint32{3499211612, 581869302, 3890346734, 3586334585, 545404204}
	for i, w := range want {
		if got := r.Uint32(); got != w {
			t.Fatalf("draw %d: want %d, got %d", i, w, got)
		}
	}
}

func TestMTTenThousandth(t *testing.T) {
	r := NewMT19937(5489)
	var v uint32
	for i := 0; i < 10000; i++ {
		v = r.Uint32()
	}
	if v != 4123659995 {
		t.Fatalf("10000th output: want 4123659995, got %d", v)
	}
}

func TestMTSmallSeeds(t *testing.T) {
	cases := map[uint32][]uint32{
		0: {2357136044, 2546248239, 3071714933},
		1: {1791095845, 4282876139, 3093770124},
	}
	for seed, want := range cases {
		r := NewMT19937(seed)
		for i, w := range want {
			if got := r.Uint32(); got != w {
				t.Fatalf("seed %d draw %d: want %d, got %d", seed, i, w, got)
			}
		}
	}
}

func TestMTRegenerationBoundary(t *testing.T) {
	r := NewMT19937(42)
	if r.twists != 0 {
		t.Fatalf("no twist expected before first draw")
	}
	r.Uint32()
	if r.twists != 1 {
		t.Fatalf("expected one twist after first draw, got %d", r.twists)
	}
	for i := 2; i <= mtN; i++ {
		r.Uint32()
	}
	if r.twists != 1 {
		t.Fatalf("expected one twist after %d draws, got %d", mtN, r.twists)
	}
	r.Uint32()
	if r.twists != 2 {
		t.Fatalf("expected second twist on draw %d, got %d", mtN+1, r.twists)
	}
}

func TestMTFromIntTruncates(t *testing.T) {
	a := NewMT19937FromInt(5489 + (1 << 32))
	b := NewMT19937(5489)
	for i := 0; i < 10; i++ {
		if a.Uint32() != b.Uint32() {
			t.Fatalf("expected high bits to be discarded (draw %d)", i)
		}
	}
	neg := NewMT19937FromInt(-1)
	top := NewMT19937(math.MaxUint32)
	if neg.Uint32() != top.Uint32() {
		t.Fatalf("expected -1 to truncate to 0xFFFFFFFF")
	}
}

func TestLongRunNoPanic(t *testing.T) {
	seeds := []uint32{0, 1, math.MaxUint32}
	for _, s := range seeds {
		l := NewLCG(s)
		m := NewMT19937(s)
		for i := 0; i < 10000; i++ {
			if v := l.Uint32(); v >= 1<<31 {
				t.Fatalf("lcg seed %d: output out of range: %d", s, v)
			}
			m.Uint32()
		}
		if m.cursor < 0 || m.cursor >= mtN {
			t.Fatalf("mt seed %d: cursor out of range: %d", s, m.cursor)
		}
	}
}

func TestDeterminism(t *testing.T) {
	for _, k := range Kinds() {
		f, err := FactoryOf(string(k))
		if err != nil {
			t.Fatalf("factory %s: %v", k, err)
		}
		c1 := New(f.New(7))
		c2 := New(f.New(7))
		for i := 0; i < 100; i++ {
			if c1.Uint64() != c2.Uint64() {
				t.Fatalf("%s: Uint64 mismatch at %d", k, i)
			}
		}
		if c1.IntN(10) != c2.IntN(10) {
			t.Fatalf("%s: IntN mismatch", k)
		}
		if c1.UintN(10) != c2.UintN(10) {
			t.Fatalf("%s: UintN mismatch", k)
		}
	}
}

func TestIntNIsModulo(t *testing.T) {
	a := NewMT19937(99)
	b := NewMT19937(99)
	for n := 1; n <= 52; n++ {
		if got, want := a.IntN(n), int(b.Uint32()%uint32(n)); got != want {
			t.Fatalf("IntN(%d): want %d, got %d", n, want, got)
		}
	}
	c := New(NewLCG(3))
	if c.Index(0) != -1 || c.IntN(-5) != -1 {
		t.Fatalf("expected -1 for non-positive n")
	}
	if c.UintN(0) != 0 {
		t.Fatalf("expected 0 for UintN(0)")
	}
}

func TestFloat64Range(t *testing.T) {
	for _, r := range []RAND{NewLCG(12345), NewMT19937(12345)} {
		for i := 0; i < 1000; i++ {
			f := r.Float64()
			if f < 0 || f >= 1 {
				t.Fatalf("Float64 out of range: %v", f)
			}
		}
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	for _, k := range Kinds() {
		f, _ := FactoryOf(string(k))
		r := f.New(2024)
		for i := 0; i < 700; i++ {
			r.Uint32()
		}
		snap, err := r.Snapshot()
		if err != nil {
			t.Fatalf("%s snapshot: %v", k, err)
		}
		want := make([]uint32, 10)
		for i := range want {
			want[i] = r.Uint32()
		}
		cp := f.New(1)
		if err := cp.Restore(snap); err != nil {
			t.Fatalf("%s restore: %v", k, err)
		}
		for i, w := range want {
			if got := cp.Uint32(); got != w {
				t.Fatalf("%s draw %d after restore: want %d, got %d", k, i, w, got)
			}
		}
	}
}

func TestRestoreRejectsForeignSnapshot(t *testing.T) {
	lsnap, _ := NewLCG(1).Snapshot()
	msnap, _ := NewMT19937(1).Snapshot()
	if err := NewMT19937(1).Restore(lsnap); err == nil || errs.LevelOf(err) != errs.Warn {
		t.Fatalf("expected warn error restoring lcg snapshot into mt, got %v", err)
	}
	if err := NewLCG(1).Restore(msnap); err == nil {
		t.Fatalf("expected error restoring mt snapshot into lcg")
	}
	bad := append([]byte(nil), msnap...)
	bad[len(bad)-2] = 0xFF
	if err := NewMT19937(1).Restore(bad); err == nil {
		t.Fatalf("expected cursor range error")
	}
}

func TestFactoryOf(t *testing.T) {
	for in, want := range map[string]Kind{"LCG": KindLCG, "randu": KindLCG, " mt ": KindMT19937, "mt19937": KindMT19937} {
		f, err := FactoryOf(in)
		if err != nil {
			t.Fatalf("FactoryOf(%q): %v", in, err)
		}
		if f.Kind() != want {
			t.Fatalf("FactoryOf(%q): want %s, got %s", in, want, f.Kind())
		}
	}
	if _, err := FactoryOf("pcg"); err == nil {
		t.Fatalf("expected error for unknown generator")
	}
	if Default().Kind() != KindMT19937 {
		t.Fatalf("unexpected default generator")
	}
}

func TestTimeSeed(t *testing.T) {
	if got := TimeSeed(time.Unix(0, 0)); got != 62135596800 {
		t.Fatalf("unix epoch: want 62135596800, got %d", got)
	}
	tp := time.Date(1, time.January, 1, 0, 0, 5, 0, time.UTC)
	if got := TimeSeed(tp); got != 5 {
		t.Fatalf("want 5 seconds since year 1, got %d", got)
	}
}

func TestKindSpan(t *testing.T) {
	if KindLCG.Span() != 1<<31 || KindMT19937.Span() != 1<<32 {
		t.Fatalf("unexpected spans: %d %d", KindLCG.Span(), KindMT19937.Span())
	}
	if Kind("x").Span() != 0 {
		t.Fatalf("unknown kind must have zero span")
	}
}
