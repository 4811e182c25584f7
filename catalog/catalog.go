// Package catalog 牌桌目錄：一或多個平面設定來源（fs.FS）裡的 yaml/json 牌桌設定，
// 依 TableID 與名稱索引。Freeze 之後只讀。
package catalog

import (
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strings"

	"github.com/zintix-labs/cardlab/errs"
	"github.com/zintix-labs/cardlab/sdk/core"
	"github.com/zintix-labs/cardlab/spec"
)

var (
	ErrDupID   = errs.NewFatal("duplicate table id")
	ErrDupName = errs.NewFatal("duplicate table name")
)

type Entry struct {
	TID        spec.TID
	Name       string
	ConfigName string
}

type Summary struct {
	TID         spec.TID  `json:"tid"          yaml:"tid"`
	Name        string    `json:"name"         yaml:"name"`
	Generator   core.Kind `json:"generator"    yaml:"generator"`
	Decks       int       `json:"decks"        yaml:"decks"`
	DealerStand int       `json:"dealer_stand" yaml:"dealer_stand"`
	PlayerStand int       `json:"player_stand" yaml:"player_stand"`
	BetUnit     int       `json:"bet_unit"     yaml:"bet_unit"`
}

func NewSummary(ts *spec.TableSetting) Summary {
	return Summary{
		TID:         ts.TableID,
		Name:        ts.TableName,
		Generator:   ts.Generator,
		Decks:       ts.Decks,
		DealerStand: ts.DealerStand,
		PlayerStand: ts.PlayerStand,
		BetUnit:     ts.BetUnit,
	}
}

type Catalog struct {
	byID   map[spec.TID]Entry
	byName map[string]Entry // key 為小寫名稱
	byFile map[string]spec.TID
	ids    []spec.TID // 遞增
	src    *sources
	frozen bool
}

func New(cfg ...fs.FS) (*Catalog, error) {
	src, err := newSources(cfg...)
	if err != nil {
		return nil, errs.Wrap(err, "can not create catalog")
	}
	return &Catalog{
		byID:   map[spec.TID]Entry{},
		byName: map[string]Entry{},
		byFile: map[string]spec.TID{},
		src:    src,
	}, nil
}

func nameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Register 全部通過檢查才寫入；任何一筆失敗都不會留下部分結果
func (c *Catalog) Register(ents ...Entry) error {
	if c.frozen {
		return errs.NewWarn("can not register when catalog already frozen")
	}
	ents = slices.Clone(ents)
	batch := &Catalog{byID: map[spec.TID]Entry{}, byName: map[string]Entry{}, byFile: map[string]spec.TID{}}
	for i := range ents {
		e := &ents[i]
		e.Name = nameKey(e.Name)
		if err := c.check(*e); err != nil {
			return err
		}
		if err := batch.check(*e); err != nil {
			return err
		}
		batch.put(*e)
	}
	for _, e := range ents {
		c.put(e)
	}
	slices.Sort(c.ids)
	return nil
}

// check 只檢查 e 與 c 已有內容是否衝突
func (c *Catalog) check(e Entry) error {
	if e.Name == "" {
		return errs.NewFatal("table name required")
	}
	if err := validFileName(e.ConfigName); err != nil {
		return err
	}
	if c.src != nil && !c.src.has(e.ConfigName) {
		return errs.NewFatal(fmt.Sprintf("config file not found: %s", e.ConfigName))
	}
	if _, ok := c.byID[e.TID]; ok {
		return ErrDupID
	}
	if _, ok := c.byName[e.Name]; ok {
		return ErrDupName
	}
	if _, ok := c.byFile[e.ConfigName]; ok {
		return errs.NewFatal(fmt.Sprintf("duplicate config name: %s", e.ConfigName))
	}
	return nil
}

func (c *Catalog) put(e Entry) {
	c.byID[e.TID] = e
	c.byName[e.Name] = e
	c.byFile[e.ConfigName] = e.TID
	c.ids = append(c.ids, e.TID)
}

// Discover 解析所有來源中尚未註冊的設定檔，回傳對應的 Entry（依檔名排序）。
//
// 任何一個檔案解析失敗、或 ID / 名稱與其他檔案或已註冊的牌桌重複，都直接回傳 error。
func (c *Catalog) Discover() ([]Entry, error) {
	files := c.src.names()
	ents := make([]Entry, 0, len(files))
	fileOfID := map[spec.TID]string{}
	fileOfName := map[string]string{}
	for _, file := range files {
		if _, ok := c.byFile[file]; ok {
			continue
		}
		ts, err := c.src.load(file)
		if err != nil {
			return nil, errs.NewFatal(fmt.Sprintf("parse table setting failed: %s: %v", file, err))
		}
		if prev, ok := fileOfID[ts.TableID]; ok {
			return nil, errs.NewFatal(fmt.Sprintf("duplicate table id: %d (config=%s and %s)", ts.TableID, prev, file))
		}
		if _, ok := c.byID[ts.TableID]; ok {
			return nil, errs.NewFatal(fmt.Sprintf("table id already registered: %d (config=%s)", ts.TableID, file))
		}
		key := nameKey(ts.TableName)
		if prev, ok := fileOfName[key]; ok {
			return nil, errs.NewFatal(fmt.Sprintf("duplicate table name: %s (config=%s and %s)", key, prev, file))
		}
		if _, ok := c.byName[key]; ok {
			return nil, errs.NewFatal(fmt.Sprintf("table name already registered: %s (config=%s)", key, file))
		}
		fileOfID[ts.TableID] = file
		fileOfName[key] = file
		ents = append(ents, Entry{TID: ts.TableID, Name: ts.TableName, ConfigName: file})
	}
	return ents, nil
}

func (c *Catalog) GetByID(id spec.TID) (Entry, bool) {
	e, ok := c.byID[id]
	return e, ok
}

func (c *Catalog) GetByName(name string) (Entry, bool) {
	e, ok := c.byName[nameKey(name)]
	return e, ok
}

func (c *Catalog) IDs() []spec.TID {
	if len(c.ids) == 0 {
		return nil
	}
	return slices.Clone(c.ids)
}

func (c *Catalog) All() []Entry {
	out := make([]Entry, 0, len(c.ids))
	for _, id := range c.ids {
		out = append(out, c.byID[id])
	}
	return out
}

func (c *Catalog) Freeze() {
	c.frozen = true
}

func (c *Catalog) IsFrozen() bool {
	return c.frozen
}

// TableSettingById 每次都重新讀檔解析，回傳的設定可自由修改
func (c *Catalog) TableSettingById(id spec.TID) (*spec.TableSetting, error) {
	e, ok := c.GetByID(id)
	if !ok {
		return nil, errs.NewWarn("table id does not exist in catalog")
	}
	return c.src.load(e.ConfigName)
}

func (c *Catalog) TableSettingByName(name string) (*spec.TableSetting, error) {
	e, ok := c.GetByName(name)
	if !ok {
		return nil, errs.NewWarn("table name does not exist in catalog")
	}
	return c.src.load(e.ConfigName)
}

// ParseTableSettingByExt 依副檔名選擇 yaml 或 json 解碼
func ParseTableSettingByExt(filename string, raw []byte) (*spec.TableSetting, error) {
	switch strings.ToLower(path.Ext(filename)) {
	case ".yaml", ".yml":
		return spec.GetTableSettingByYAML(raw)
	case ".json":
		return spec.GetTableSettingByJSON(raw)
	default:
		return nil, errs.NewFatal(fmt.Sprintf("unsupported config format: %q", filename))
	}
}

func isConfigFile(name string) bool {
	switch strings.ToLower(path.Ext(name)) {
	case ".yaml", ".yml", ".json":
		return !strings.HasPrefix(name, ".")
	}
	return false
}

func validFileName(file string) error {
	switch {
	case file == "":
		return errs.NewFatal("empty config filename")
	case strings.ContainsAny(file, `/\:`):
		return errs.NewFatal(fmt.Sprintf("invalid config filename: %q (must be a basename)", file))
	case !isConfigFile(file):
		return errs.NewFatal(fmt.Sprintf("invalid config filename: %q (want a .yaml, .yml or .json file not starting with '.')", file))
	}
	return nil
}
