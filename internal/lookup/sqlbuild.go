package lookup

import (
	"strconv"
	"strings"

	"clubip-api/internal/ipquery"
	"clubip-api/internal/store"
)

// 文档注释：根据定义与查询计划生成参数化 SQL
// 背景：用户输入只会出现在绑定值中；表名、列名与排序来自受信任的定义。
// 返回：SQL 文本与按占位符顺序排列的绑定值。
func BuildSQL(d *Definition, p ipquery.Plan, dl store.Dialect) (string, []any) {
	var b strings.Builder
	var binds []any
	next := func(v string) string {
		binds = append(binds, v)
		return dl.Bind(len(binds))
	}

	b.WriteString("SELECT ")
	for i, f := range d.Fields {
		if i > 0 {
			b.WriteString(", ")
		}
		if f.Expr != "" && f.Expr != f.Source {
			b.WriteString(f.Expr + " AS " + f.Source)
		} else {
			b.WriteString(f.Source)
		}
	}

	b.WriteString(" FROM ")
	for i, t := range d.Tables {
		if i > 0 {
			b.WriteString(" JOIN ")
		}
		b.WriteString(dl.Table(t.Name))
		if t.Alias != "" {
			b.WriteString(" " + t.Alias)
		}
		if i > 0 {
			b.WriteString(" ON " + t.On)
		}
	}

	var where []string
	if d.Filter != "" {
		where = append(where, d.Filter)
	}
	col := d.MatchColumn
	if d.StripMask && col != "" {
		col = dl.BaseAddr(col)
	}
	switch p.Mode {
	case ipquery.ModeExact:
		where = append(where, col+" = "+next(p.Bind))
	case ipquery.ModePrefix:
		where = append(where, dl.StartsWith(col, next(p.Bind)))
	case ipquery.ModeSearch:
		esc := store.EscapeLike(p.Bind)
		ors := make([]string, 0, len(d.SearchColumns))
		for _, c := range d.SearchColumns {
			ors = append(ors, "("+dl.ContainsFold(c, next(esc))+")")
		}
		if len(ors) > 0 {
			where = append(where, "("+strings.Join(ors, " OR ")+")")
		}
	}
	if len(where) > 0 {
		b.WriteString(" WHERE " + strings.Join(where, " AND "))
	}
	if len(d.OrderBy) > 0 {
		b.WriteString(" ORDER BY " + strings.Join(d.OrderBy, ", "))
	}
	b.WriteString(" LIMIT " + strconv.Itoa(d.Limit))
	return b.String(), binds
}
