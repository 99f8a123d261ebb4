// 包 render：把组织区记录注入 HTML 模板并写出页面
package render

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"os"
	"path/filepath"
)

// Placeholder：模板中被替换为记录 JSON 的标记
const Placeholder = "DISTRICTS_DATA_PLACEHOLDER"

// TitlePlaceholder：可选的页面标题标记
const TitlePlaceholder = "MAP_TITLE_PLACEHOLDER"

// ErrNoPlaceholder：模板中找不到数据标记
var ErrNoPlaceholder = errors.New("template has no " + Placeholder)

//go:embed templates/map.html
var defaultTemplate []byte

// DefaultTemplate：内置 Leaflet 页面
func DefaultTemplate() []byte {
	return append([]byte(nil), defaultTemplate...)
}

// LoadTemplate：path 为空时使用内置模板
func LoadTemplate(path string) ([]byte, error) {
	if path == "" {
		return DefaultTemplate(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read template: %w", err)
	}
	return b, nil
}

// 文档注释：注入数据
// 背景：页面脚本以 const districtsData = <JSON>; 读取数据；非 ASCII 字符原样输出，不做 \u 转义。
// 约束：不转义 < > &；仅把 "</" 写成 "<\/"，避免数据中的 </script> 提前结束脚本块。
func Inject(tmpl []byte, records any) ([]byte, error) {
	if !bytes.Contains(tmpl, []byte(Placeholder)) {
		return nil, ErrNoPlaceholder
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(records); err != nil {
		return nil, fmt.Errorf("encode records: %w", err)
	}
	data := bytes.TrimRight(buf.Bytes(), "\n")
	data = bytes.ReplaceAll(data, []byte("</"), []byte(`<\/`))
	return bytes.ReplaceAll(tmpl, []byte(Placeholder), data), nil
}

// SetTitle：替换标题标记；模板无该标记时原样返回
func SetTitle(tmpl []byte, title string) []byte {
	return bytes.ReplaceAll(tmpl, []byte(TitlePlaceholder), []byte(html.EscapeString(title)))
}

// 文档注释：原子写文件
// 背景：页面与 GeoJSON 可能被静态服务器同时读取，不能暴露写了一半的文件。
// 约束：临时文件与目标位于同一目录，保证 rename 不跨文件系统。
func WriteFile(path string, b []byte) error {
	dir := filepath.Dir(path)
	f, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	tmp := f.Name()
	if _, err := f.Write(b); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Chmod(tmp, 0o644); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}
