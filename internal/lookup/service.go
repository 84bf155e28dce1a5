package lookup

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"clubip-api/internal/geo"
	"clubip-api/internal/ipquery"
	"clubip-api/internal/logger"
	"clubip-api/internal/metrics"
	"clubip-api/internal/store"
)

var ErrUnknownLookup = errors.New("lookup: unknown definition")

// Querier：执行单条只读查询的仓库会话；*store.Store 实现该接口
type Querier interface {
	Query(ctx context.Context, sqlText string, binds ...any) ([]store.Row, error)
	Dialect() store.Dialect
}

// GeoEnricher：可选的地理信息补充；*geo.Enricher 实现该接口
type GeoEnricher interface {
	Lookup(ip string) *geo.Info
}

// InputError：用户输入错误，对外以 400 返回 Message
type InputError struct {
	Lookup  string
	Message string
	Err     error
}

func (e *InputError) Error() string { return e.Message }

func (e *InputError) Unwrap() error { return e.Err }

// Service：按定义执行查询
type Service struct {
	q      Querier
	geo    GeoEnricher
	defs   []*Definition
	byName map[string]*Definition
}

type Option func(*Service)

// WithGeo：为完整 IPv4 查询附加地理信息
func WithGeo(g GeoEnricher) Option { return func(s *Service) { s.geo = g } }

// 文档注释：构建查询服务
// 约束：定义逐个补齐默认值并校验；名称或路径重复视为配置错误。
func NewService(q Querier, defs []*Definition, opts ...Option) (*Service, error) {
	s := &Service{q: q, byName: make(map[string]*Definition, len(defs))}
	paths := make(map[string]string, len(defs))
	for _, d := range defs {
		d.applyDefaults()
		if err := d.Validate(); err != nil {
			return nil, err
		}
		if _, dup := s.byName[d.Name]; dup {
			return nil, fmt.Errorf("lookup %q: duplicate name", d.Name)
		}
		if other, dup := paths[d.Path]; dup {
			return nil, fmt.Errorf("lookup %q: path %s already used by %q", d.Name, d.Path, other)
		}
		paths[d.Path] = d.Name
		s.byName[d.Name] = d
		s.defs = append(s.defs, d)
	}
	for _, o := range opts {
		o(s)
	}
	return s, nil
}

// Definitions：按注册顺序返回
func (s *Service) Definitions() []*Definition { return s.defs }

func (s *Service) Definition(name string) (*Definition, bool) {
	d, ok := s.byName[name]
	return d, ok
}

// 文档注释：仅做输入校验与计划，不访问仓库
// 返回：查询计划与分类；输入错误返回 *InputError。
func (s *Service) Plan(d *Definition, raw string) (ipquery.Plan, ipquery.Classification, error) {
	q := strings.TrimSpace(raw)
	if d.Kind == KindSearch {
		return ipquery.Search(q), ipquery.Classification{Query: q}, nil
	}
	if q == "" {
		return ipquery.Plan{}, ipquery.Classification{}, &InputError{Lookup: d.Name, Message: d.MissingMessage}
	}
	c := ipquery.Classify(q)
	p, err := ipquery.Build(c, d.planOptions())
	if err != nil {
		return ipquery.Plan{}, c, &InputError{Lookup: d.Name, Message: d.InvalidMessage, Err: err}
	}
	return p, c, nil
}

// 文档注释：执行一次查询
// 背景：校验 -> 计划 -> 单连接单查询 -> 映射；非法输入在计划阶段即返回，绝不进入数据层。
// 异常：输入错误返回 *InputError；仓库错误包装后返回（含 store.ErrConnect / store.ErrQuery），细节只应记录日志。
func (s *Service) Run(ctx context.Context, name, raw string) (*Result, error) {
	d, ok := s.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownLookup, name)
	}
	p, c, err := s.Plan(d, raw)
	if err != nil {
		metrics.LookupRejectedTotal.WithLabelValues(d.Name).Inc()
		return nil, err
	}
	sqlText, binds := BuildSQL(d, p, s.q.Dialect())
	logger.L().Debug("lookup_plan", "lookup", d.Name, "mode", p.Mode, "binds", len(binds))

	begin := time.Now()
	rows, err := s.q.Query(ctx, sqlText, binds...)
	metrics.LookupDurationMs.WithLabelValues(d.Name).Observe(float64(time.Since(begin).Milliseconds()))
	if err != nil {
		metrics.LookupErrorsTotal.WithLabelValues(d.Name).Inc()
		return nil, fmt.Errorf("lookup %s: %w", d.Name, err)
	}
	metrics.LookupRequestsTotal.WithLabelValues(d.Name, string(p.Mode)).Inc()

	if len(rows) > d.Limit {
		rows = rows[:d.Limit]
	}
	res := &Result{
		Def:         d,
		Query:       c.Query,
		Mode:        modeName(d, p.Mode),
		Approximate: p.Approximate,
		Records:     make([]Record, 0, len(rows)),
	}
	if p.Approximate {
		res.Note = d.Note
	} else if p.Mode == ipquery.ModeExact {
		res.Note = d.ExactNote
	}
	for _, r := range rows {
		res.Records = append(res.Records, MapRow(d.Fields, r))
	}
	if len(res.Records) == 0 {
		metrics.EmptyResultsTotal.WithLabelValues(d.Name).Inc()
	}
	if s.geo != nil && c.Kind == ipquery.FullIPv4 {
		res.Geo = s.geo.Lookup(c.Query)
	}
	return res, nil
}

func modeName(d *Definition, m ipquery.Mode) string {
	if m == ipquery.ModeExact {
		return d.ExactMode
	}
	return string(m)
}
