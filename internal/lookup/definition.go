// 包 lookup：以声明式定义驱动的统一查询组件；每个 HTTP 端点对应一个 Definition，不再复制粘贴处理逻辑
package lookup

import (
	"errors"
	"fmt"
	"strings"

	"clubip-api/internal/ipquery"
)

type Kind string

const (
	// KindMatch：按 IP / 前缀匹配
	KindMatch Kind = "match"
	// KindSearch：可选关键字的列表检索
	KindSearch Kind = "search"
)

// Envelope：响应外壳
type Envelope string

const (
	EnvelopeMatches Envelope = "matches" // {query, mode, approximate, note, matches}
	EnvelopeRecords Envelope = "records" // {query, matches}
	EnvelopeListing Envelope = "listing" // {count, sites}
)

// Table：FROM/JOIN 中的一张表或视图；首个表的 On 为空
type Table struct {
	Name  string `yaml:"name"`
	Alias string `yaml:"alias"`
	On    string `yaml:"on"`
}

// Field：源列到对外字段名的映射；Expr 为空时直接选择 Source
type Field struct {
	Expr   string `yaml:"expr"`
	Source string `yaml:"source"`
	Name   string `yaml:"name"`
}

// Definition：一个查询端点的全部可变部分
type Definition struct {
	Name           string         `yaml:"name"`
	Path           string         `yaml:"path"`
	Kind           Kind           `yaml:"kind"`
	Param          string         `yaml:"param"`
	Tables         []Table        `yaml:"tables"`
	Filter         string         `yaml:"filter"`
	MatchColumn    string         `yaml:"match_column"`
	StripMask      bool           `yaml:"strip_mask"`
	SearchColumns  []string       `yaml:"search_columns"`
	Fields         []Field        `yaml:"fields"`
	OrderBy        []string       `yaml:"order_by"`
	Limit          int            `yaml:"limit"`
	FullIPv4       ipquery.Policy `yaml:"full_ipv4"`
	NarrowOctets   int            `yaml:"narrow_octets"`
	RequireFull    bool           `yaml:"require_full"`
	ExactMode      string         `yaml:"exact_mode"`
	Note           string         `yaml:"note"`
	ExactNote      string         `yaml:"exact_note"`
	Envelope       Envelope       `yaml:"envelope"`
	MissingMessage string         `yaml:"missing_message"`
	InvalidMessage string         `yaml:"invalid_message"`
}

const (
	defaultMissing = "Missing required query param: %s"
	defaultInvalid = "Enter a valid IPv4 (x.x.x.x) or IPv4 prefix (x, x.x, x.x.x)"
)

// 文档注释：补齐默认值
// 背景：YAML 中只需写出与默认不同的部分；参数名、信封与提示信息按 Kind 推导。
func (d *Definition) applyDefaults() {
	if d.Kind == "" {
		d.Kind = KindMatch
	}
	if d.Path == "" && d.Name != "" {
		d.Path = "/" + d.Name
	}
	if d.Param == "" {
		if d.Kind == KindSearch {
			d.Param = "q"
		} else {
			d.Param = "ip"
		}
	}
	if d.Envelope == "" {
		if d.Kind == KindSearch {
			d.Envelope = EnvelopeListing
		} else {
			d.Envelope = EnvelopeMatches
		}
	}
	if d.FullIPv4 == "" {
		d.FullIPv4 = ipquery.PolicyExact
	}
	if d.ExactMode == "" {
		d.ExactMode = string(ipquery.ModeExact)
	}
	if d.MissingMessage == "" {
		d.MissingMessage = fmt.Sprintf(defaultMissing, d.Param)
	}
	if d.InvalidMessage == "" {
		d.InvalidMessage = defaultInvalid
	}
	for i := range d.Fields {
		if d.Fields[i].Source == "" {
			d.Fields[i].Source = d.Fields[i].Expr
		}
	}
}

// Validate：定义合法性检查，加载时调用；失败的定义不得注册
func (d *Definition) Validate() error {
	var errs []error
	if d.Name == "" {
		errs = append(errs, errors.New("name is required"))
	}
	if !strings.HasPrefix(d.Path, "/") {
		errs = append(errs, fmt.Errorf("path %q must start with /", d.Path))
	}
	switch d.Kind {
	case KindMatch:
		if d.MatchColumn == "" {
			errs = append(errs, errors.New("match_column is required for match lookups"))
		}
	case KindSearch:
	default:
		errs = append(errs, fmt.Errorf("unknown kind %q", d.Kind))
	}
	switch d.Envelope {
	case EnvelopeMatches, EnvelopeRecords, EnvelopeListing:
	default:
		errs = append(errs, fmt.Errorf("unknown envelope %q", d.Envelope))
	}
	switch d.FullIPv4 {
	case ipquery.PolicyExact, ipquery.PolicyPrefix:
	default:
		errs = append(errs, fmt.Errorf("unknown full_ipv4 policy %q", d.FullIPv4))
	}
	if d.NarrowOctets < 0 || d.NarrowOctets > 3 {
		errs = append(errs, fmt.Errorf("narrow_octets %d out of range 0-3", d.NarrowOctets))
	}
	if d.Limit <= 0 {
		errs = append(errs, fmt.Errorf("limit must be positive, got %d", d.Limit))
	}
	if len(d.Tables) == 0 || d.Tables[0].Name == "" {
		errs = append(errs, errors.New("at least one table is required"))
	}
	for i, t := range d.Tables {
		if i > 0 && t.On == "" {
			errs = append(errs, fmt.Errorf("table %q needs a join condition", t.Name))
		}
	}
	if len(d.Fields) == 0 {
		errs = append(errs, errors.New("at least one field is required"))
	}
	for _, f := range d.Fields {
		if f.Source == "" || f.Name == "" {
			errs = append(errs, fmt.Errorf("field %+v needs source and name", f))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("lookup %q: %w", d.Name, err)
	}
	return nil
}

func (d *Definition) planOptions() ipquery.Options {
	return ipquery.Options{FullIPv4: d.FullIPv4, NarrowOctets: d.NarrowOctets, RequireFull: d.RequireFull}
}
