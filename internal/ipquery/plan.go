package ipquery

import (
	"errors"
	"strings"
)

// Mode：匹配方式
type Mode string

const (
	ModeExact  Mode = "exact"
	ModePrefix Mode = "prefix"
	ModeList   Mode = "list"
	ModeSearch Mode = "search"
)

// Policy：完整 IPv4 输入的处理策略
type Policy string

const (
	// PolicyExact：完整地址严格等值匹配
	PolicyExact Policy = "exact"
	// PolicyPrefix：完整地址也按前 N 段做 LIKE 匹配（放宽查询）
	PolicyPrefix Policy = "prefix"
)

const defaultNarrow = 3

var (
	ErrInvalid = errors.New("ipquery: invalid ipv4 or prefix")
	ErrNotFull = errors.New("ipquery: full ipv4 address required")
)

// Options：单个查询定义的计划参数
type Options struct {
	FullIPv4     Policy
	NarrowOctets int
	RequireFull  bool
}

// Plan：查询计划，Bind 为唯一绑定值
type Plan struct {
	Mode        Mode
	Bind        string
	Approximate bool
}

// 文档注释：根据分类结果构建查询计划
// 背景：存储端没有 CIDR 包含运算，前缀模式退化为点分十进制字符串的前缀比较，因此前缀计划一律标记为近似。
// 约束：前缀绑定值总以 "." 结尾，避免 "4.14" 误中 "4.140.x.x"；NarrowOctets 为 0 表示不收窄。
// 异常：非法输入返回 ErrInvalid；要求完整地址但输入为前缀时返回 ErrNotFull。
func Build(c Classification, opts Options) (Plan, error) {
	switch c.Kind {
	case FullIPv4:
		if opts.FullIPv4 == PolicyPrefix && !opts.RequireFull {
			n := opts.NarrowOctets
			if n <= 0 || n > 3 {
				n = defaultNarrow
			}
			return Plan{Mode: ModePrefix, Bind: PrefixBind(c.octets, n), Approximate: true}, nil
		}
		return Plan{Mode: ModeExact, Bind: c.Query}, nil
	case Prefix:
		if opts.RequireFull {
			return Plan{}, ErrNotFull
		}
		n := len(c.octets)
		if opts.NarrowOctets > 0 && opts.NarrowOctets < n {
			n = opts.NarrowOctets
		}
		return Plan{Mode: ModePrefix, Bind: PrefixBind(c.octets, n), Approximate: true}, nil
	}
	return Plan{}, ErrInvalid
}

// PrefixBind：取前 n 段拼接并补齐结尾分隔符
func PrefixBind(octets []string, n int) string {
	if n > len(octets) {
		n = len(octets)
	}
	if n <= 0 {
		return ""
	}
	s := strings.Join(octets[:n], ".")
	if !strings.HasSuffix(s, ".") {
		s += "."
	}
	return s
}

// Search：列表端点的计划；空查询列出全部
func Search(q string) Plan {
	q = strings.TrimSpace(q)
	if q == "" {
		return Plan{Mode: ModeList}
	}
	return Plan{Mode: ModeSearch, Bind: q}
}
