package spec

import (
	"encoding/json"

	"github.com/zintix-labs/cardlab/errs"
)

// GetTableSettingByYAML
// 會讀取 YAML 設定（嚴格欄位）、補預設值並執行基本檢查後回傳。
func GetTableSettingByYAML(data []byte) (*TableSetting, error) {
	ts := &TableSetting{}
	if err := decodeStrictYAML(data, ts); err != nil {
		return nil, err
	}

	// 設定檔初始化
	if err := ts.init(); err != nil {
		return nil, errs.Wrap(err, "table setting initialized err")
	}

	return ts, nil
}

// GetTableSettingByJSON
// 會讀取 Json 設定、補預設值並執行基本檢查後回傳
func GetTableSettingByJSON(data []byte) (*TableSetting, error) {
	ts := &TableSetting{}
	if err := json.Unmarshal(data, ts); err != nil {
		return nil, errs.Wrap(err, "can not unmarshall json byte")
	}

	// 設定檔初始化
	if err := ts.init(); err != nil {
		return nil, errs.Wrap(err, "table setting initialized err")
	}

	return ts, nil
}
