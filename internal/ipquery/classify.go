// 包 ipquery：IPv4 与 IPv4 前缀的输入分类及查询计划构建；纯函数，不涉及数据库与网络
package ipquery

import (
	"regexp"
	"strconv"
	"strings"
)

// Kind：输入分类结果
type Kind int

const (
	Invalid Kind = iota
	FullIPv4
	Prefix
)

func (k Kind) String() string {
	switch k {
	case FullIPv4:
		return "full-ipv4"
	case Prefix:
		return "prefix"
	}
	return "invalid"
}

var (
	fullRe   = regexp.MustCompile(`^\d{1,3}(\.\d{1,3}){3}$`)
	prefixRe = regexp.MustCompile(`^\d{1,3}(\.\d{1,3}){0,2}$`)
)

// Classification：一次输入的分类结果，生成后不可变
type Classification struct {
	Kind   Kind
	Query  string
	octets []string
}

// 文档注释：对查询串分类
// 背景：完整地址走精确匹配，1~3 段前缀走 LIKE 前缀匹配；其余一律视为非法，不允许进入数据层。
// 约束：先去除首尾空白；正则仅匹配 ASCII 数字，每段再做 0~255 范围校验。
func Classify(s string) Classification {
	q := strings.TrimSpace(s)
	c := Classification{Kind: Invalid, Query: q}
	if q == "" {
		return c
	}
	var k Kind
	switch {
	case fullRe.MatchString(q):
		k = FullIPv4
	case prefixRe.MatchString(q):
		k = Prefix
	default:
		return c
	}
	parts := strings.Split(q, ".")
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 || n > 255 {
			return c
		}
	}
	c.Kind = k
	c.octets = parts
	return c
}

// Octets：返回分段副本；非法输入返回 nil
func (c Classification) Octets() []string {
	if c.octets == nil {
		return nil
	}
	out := make([]string, len(c.octets))
	copy(out, c.octets)
	return out
}

// N：有效分段数
func (c Classification) N() int { return len(c.octets) }

func (c Classification) Valid() bool { return c.Kind != Invalid }

func (c Classification) String() string {
	if c.Kind == Prefix {
		return "prefix(" + strconv.Itoa(len(c.octets)) + ")"
	}
	return c.Kind.String()
}
