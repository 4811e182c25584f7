package middleware

import (
	"bufio"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// CompressConfig
//
// 模擬報表（StatReport / DevRoundReport）動輒數百 KB，JSON 壓縮比很高。
type CompressConfig struct {
	GzipLevel int
	ZstdLevel zstd.EncoderLevel
}

var DefaultCompressConfig = CompressConfig{
	GzipLevel: gzip.DefaultCompression,
	ZstdLevel: zstd.SpeedFastest,
}

// Compression 以 DefaultCompressConfig 壓縮回應（zstd 優先，其次 gzip）。
var Compression = NewCompression(DefaultCompressConfig)

// encoder gzip.Writer 與 zstd.Encoder 的共同行為
type encoder interface {
	io.WriteCloser
	Reset(w io.Writer)
	Flush() error
}

// codec 一種 Content-Encoding 與它的 encoder pool
type codec struct {
	name string
	pool sync.Pool
}

func (c *codec) get(w io.Writer) encoder {
	enc := c.pool.Get().(encoder)
	enc.Reset(w)
	return enc
}

// put 回收前必須 Close（寫出 footer）；skip 時改寫到 io.Discard
func (c *codec) put(enc encoder, skip bool) {
	if skip {
		enc.Reset(io.Discard)
	}
	_ = enc.Close()
	c.pool.Put(enc)
}

// NewCompression 以指定設定建立壓縮 middleware。gzip level 不合法時退回預設值。
func NewCompression(cfg CompressConfig) func(http.Handler) http.Handler {
	if cfg.GzipLevel < gzip.HuffmanOnly || cfg.GzipLevel > gzip.BestCompression {
		cfg.GzipLevel = gzip.DefaultCompression
	}
	zc := &codec{name: "zstd"}
	zc.pool.New = func() any {
		// 參數已固定，只剩記憶體不足會失敗
		zw, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(cfg.ZstdLevel), zstd.WithEncoderConcurrency(1))
		if err != nil {
			panic(err)
		}
		return zw
	}
	gc := &codec{name: "gzip"}
	gc.pool.New = func() any {
		gw, _ := gzip.NewWriterLevel(nil, cfg.GzipLevel)
		return gw
	}
	codecs := []*codec{zc, gc}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c := negotiate(codecs, r)
			// 已經壓縮過的不再處理
			if c == nil || w.Header().Get("Content-Encoding") != "" {
				next.ServeHTTP(w, r)
				return
			}
			w.Header().Set("Content-Encoding", c.name)
			w.Header().Add("Vary", "Accept-Encoding")
			cw := &compressWriter{ResponseWriter: w, enc: c.get(w)}
			defer func() { c.put(cw.enc, cw.bypass) }()
			next.ServeHTTP(cw, r)
		})
	}
}

// negotiate 依 codecs 的順序挑第一個被 Accept-Encoding 接受（q != 0）的編碼；
// HEAD 與 websocket upgrade 一律不壓縮。
func negotiate(codecs []*codec, r *http.Request) *codec {
	if r.Method == http.MethodHead || r.Header.Get("Upgrade") != "" ||
		strings.Contains(strings.ToLower(r.Header.Get("Connection")), "upgrade") {
		return nil
	}
	accepted := map[string]bool{}
	for _, part := range strings.Split(r.Header.Get("Accept-Encoding"), ",") {
		name, params, _ := strings.Cut(strings.TrimSpace(part), ";")
		q := strings.ReplaceAll(params, " ", "")
		accepted[strings.ToLower(name)] = q != "q=0" && q != "q=0.0"
	}
	for _, c := range codecs {
		if accepted[c.name] {
			return c
		}
	}
	return nil
}

type compressWriter struct {
	http.ResponseWriter
	enc    encoder
	bypass bool // 無 body 的狀態碼：直接寫底層
}

func (cw *compressWriter) WriteHeader(code int) {
	cw.Header().Del("Content-Length")
	// 1xx / 204 / 304 不能帶壓縮 footer
	if code < 200 || code == http.StatusNoContent || code == http.StatusNotModified {
		cw.bypass = true
		cw.Header().Del("Content-Encoding")
		cw.Header().Del("Vary")
	}
	cw.ResponseWriter.WriteHeader(code)
}

func (cw *compressWriter) Write(b []byte) (int, error) {
	if cw.bypass {
		return cw.ResponseWriter.Write(b)
	}
	h := cw.Header()
	h.Del("Content-Length")
	if h.Get("Content-Type") == "" {
		h.Set("Content-Type", http.DetectContentType(b))
	}
	return cw.enc.Write(b)
}

func (cw *compressWriter) Flush() {
	if !cw.bypass {
		_ = cw.enc.Flush()
	}
	if f, ok := cw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (cw *compressWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := cw.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("underlying response writer does not support Hijacker")
	}
	return hj.Hijack()
}
