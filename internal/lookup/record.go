package lookup

import (
	"bytes"
	"encoding/json"
	"strings"

	"clubip-api/internal/store"
)

// KV：对外记录中的一个字段
type KV struct {
	Key   string
	Value any
}

// Record：有序的扁平记录，序列化时保持定义中的字段顺序
type Record []KV

// Get：按对外字段名取值
func (r Record) Get(key string) (any, bool) {
	for _, kv := range r {
		if kv.Key == key {
			return kv.Value, true
		}
	}
	return nil, false
}

func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, kv := range r {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(kv.Key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(kv.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// 文档注释：结果映射
// 背景：纯重命名，不计算不过滤；定义中的每个字段都会输出，源列缺失时为 null。
func MapRow(fields []Field, row store.Row) Record {
	rec := make(Record, 0, len(fields))
	for _, f := range fields {
		v := row[strings.ToUpper(f.Source)]
		if b, ok := v.([]byte); ok {
			v = string(b)
		}
		rec = append(rec, KV{Key: f.Name, Value: v})
	}
	return rec
}
