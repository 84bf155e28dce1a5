package lookup

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

type fileDoc struct {
	Lookups []*Definition `yaml:"lookups"`
}

// 文档注释：从 YAML 文件加载查询定义并与内置定义合并
// 背景：同名定义整体替换内置项，新名称追加为新的端点；未知字段视为错误，避免拼写错误被静默忽略。
// 返回：合并后的定义列表；path 为空时返回内置定义。
func LoadDefinitions(path string) ([]*Definition, error) {
	if path == "" {
		return Builtin(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("lookup: open %s: %w", path, err)
	}
	defer f.Close()
	extra, err := ParseDefinitions(f)
	if err != nil {
		return nil, fmt.Errorf("lookup: %s: %w", path, err)
	}
	return Merge(Builtin(), extra), nil
}

// ParseDefinitions：解析 {lookups: [...]} 文档并补齐默认值
func ParseDefinitions(r io.Reader) ([]*Definition, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	var doc fileDoc
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && err != io.EOF {
		return nil, err
	}
	for _, d := range doc.Lookups {
		d.applyDefaults()
		if err := d.Validate(); err != nil {
			return nil, err
		}
	}
	return doc.Lookups, nil
}

// Merge：按名称覆盖，保持 base 的顺序
func Merge(base, extra []*Definition) []*Definition {
	idx := make(map[string]int, len(base))
	out := make([]*Definition, 0, len(base)+len(extra))
	for _, d := range base {
		idx[d.Name] = len(out)
		out = append(out, d)
	}
	for _, d := range extra {
		if i, ok := idx[d.Name]; ok {
			out[i] = d
			continue
		}
		idx[d.Name] = len(out)
		out = append(out, d)
	}
	return out
}
