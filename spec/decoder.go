package spec

import (
	"bytes"

	"github.com/zintix-labs/cardlab/errs"
	"gopkg.in/yaml.v3"
)

// decodeStrictYAML 把 YAML bytes 解到 out。
// 嚴格檢查：多寫/拼錯欄位就報錯（例如 dealer_stnad）。
func decodeStrictYAML[T any](raw []byte, out *T) error {
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil {
		return errs.Wrap(err, "spec.decoder : decode failed")
	}
	return nil
}
