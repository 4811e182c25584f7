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

// Package perf 以 runtime/pprof 包住一段執行（通常是模擬），輸出 cpu / heap / allocs profile。
package perf

import (
	"os"
	"path/filepath"
	"runtime"
	"runtime/pprof"
	"strings"

	"github.com/zintix-labs/cardlab/errs"
)

// DefaultDir pprof 檔案預設寫入路徑
const DefaultDir = "build/profiling"

// Modes 支援的 profile 種類（空字串代表不分析）
var Modes = []string{"", "cpu", "heap", "allocs"}

// ParseMode 檢查 mode 是否支援（不分大小寫）。
func ParseMode(mode string) (string, error) {
	m := strings.ToLower(strings.TrimSpace(mode))
	for _, v := range Modes {
		if m == v {
			return m, nil
		}
	}
	return "", errs.Warnf("unknown pprof mode %q (want cpu|heap|allocs)", mode)
}

// RunPProf 依 mode 執行 exe 並把 profile 寫到 dir（空字串使用 DefaultDir），回傳寫出的檔案路徑。
//
// mode 為空字串時只執行 exe，不寫檔。
func RunPProf(exe func(), mode string, dir string) (string, error) {
	m, err := ParseMode(mode)
	if err != nil {
		return "", err
	}
	if m == "" {
		exe()
		return "", nil
	}
	if dir == "" {
		dir = DefaultDir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errs.Fatalf("create profiling dir: %v", err)
	}
	path := filepath.Join(dir, m+".pprof")
	switch m {
	case "cpu":
		return path, PProfCPU(exe, path)
	case "heap":
		return path, PProfHeap(exe, path)
	default:
		return path, PProfAllocs(exe, path)
	}
}

// PProfCPU 在 exe 執行期間開啟 CPU profiling。
//
// 可以作性能分析，也可以拿來做構建時給 pgo 的優化 blueprint。
func PProfCPU(exe func(), path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errs.NewFatal("failed to create cpu profile: " + err.Error())
	}
	defer f.Close()
	if err := pprof.StartCPUProfile(f); err != nil {
		return errs.NewFatal("failed to start pprof: " + err.Error())
	}
	defer pprof.StopCPUProfile()

	exe()
	return nil
}

// PProfHeap 會在 exe() 執行完後，寫出一次 Heap Snapshot（in-use memory）。
// 寫出前先呼叫一次 runtime.GC()，以獲得較準確的 Live Objects 視圖。
func PProfHeap(exe func(), path string) error {
	exe()

	runtime.GC()
	f, err := os.Create(path)
	if err != nil {
		return errs.NewFatal("failed to create heap profile: " + err.Error())
	}
	defer f.Close()
	if err := pprof.WriteHeapProfile(f); err != nil {
		return errs.NewFatal("failed to write heap profile: " + err.Error())
	}
	return nil
}

// PProfAllocs 會在 exe() 後寫出「累積配置」(allocs) Profile，
// 需要搭配 -alloc_space / -alloc_objects 指標查看。
func PProfAllocs(exe func(), path string) error {
	exe()

	f, err := os.Create(path)
	if err != nil {
		return errs.NewFatal("failed to create allocs profile: " + err.Error())
	}
	defer f.Close()
	if prof := pprof.Lookup("allocs"); prof != nil {
		if err := prof.WriteTo(f, 0); err != nil {
			return errs.NewFatal("failed to write allocs profile: " + err.Error())
		}
	}
	return nil
}
