package catalog

import (
	"fmt"
	"io/fs"
	"maps"
	"slices"
	"strings"

	"github.com/zintix-labs/cardlab/errs"
	"github.com/zintix-labs/cardlab/spec"
)

// sources 多個平面設定來源；同一檔名只能出現在一個來源
type sources struct {
	src   []fs.FS
	index map[string]int // 檔名 -> src 索引
}

func newSources(src ...fs.FS) (*sources, error) {
	if len(src) == 0 {
		return nil, errs.NewFatal("no fs provided")
	}
	s := &sources{src: src, index: make(map[string]int, 16)}
	for i, f := range src {
		if f == nil {
			return nil, errs.NewFatal(fmt.Sprintf("fs[%d] is nil", i))
		}
		err := fs.WalkDir(f, ".", func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if p == "." {
				return nil
			}
			if d.IsDir() || strings.Contains(p, "/") {
				return errs.NewFatal(fmt.Sprintf("config FS must be flat (no subdirectories): %q", p))
			}
			// 其他檔案略過
			if !isConfigFile(p) {
				return nil
			}
			if prev, ok := s.index[p]; ok {
				return errs.NewFatal(fmt.Sprintf("duplicate config %q in fs[%d] and fs[%d]", p, prev, i))
			}
			s.index[p] = i
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *sources) has(name string) bool {
	_, ok := s.index[name]
	return ok
}

// names 全部設定檔名（排序）
func (s *sources) names() []string {
	return slices.Sorted(maps.Keys(s.index))
}

func (s *sources) load(name string) (*spec.TableSetting, error) {
	i, ok := s.index[name]
	if !ok {
		return nil, errs.NewWarn("config file does not exist in catalog")
	}
	raw, err := fs.ReadFile(s.src[i], name)
	if err != nil {
		return nil, errs.Wrap(err, "catalog read file error")
	}
	return ParseTableSettingByExt(name, raw)
}
