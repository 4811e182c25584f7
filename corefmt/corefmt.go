// Package corefmt 負責產生器快照（[]byte）的文字與檔案編碼。
//
//   - HTTP / JSON：Base64URL（無 padding），見 dto 的 start_b64u / after_b64u。
//   - CLI / log：Hex，方便複製貼上（cardlab draw --state / --from）。
package corefmt

import (
	"encoding/base64"
	"encoding/hex"
	"strings"

	"github.com/zintix-labs/cardlab/errs"
)

// MaxSnapBytes 單份快照的上限（MT19937 快照約 2.5KiB）
const MaxSnapBytes = 64 << 10

func EncodeBase64URL(b []byte) string {
	return base64.RawURLEncoding.EncodeToString(b)
}

func DecodeBase64URL(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if base64.RawURLEncoding.DecodedLen(len(s)) > MaxSnapBytes {
		return nil, errs.NewWarn("decode base64url failed: snapshot exceeds limit")
	}
	b, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return nil, errs.NewWarn("decode base64url failed: " + err.Error())
	}
	return b, nil
}

func EncodeHex(b []byte) string {
	return hex.EncodeToString(b)
}

func DecodeHex(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if hex.DecodedLen(len(s)) > MaxSnapBytes {
		return nil, errs.NewWarn("decode hex failed: snapshot exceeds limit")
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, errs.NewWarn("decode hex failed: " + err.Error())
	}
	return b, nil
}
