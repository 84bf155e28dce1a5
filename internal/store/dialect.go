package store

import (
	"strconv"
	"strings"
)

// Dialect：不同仓库驱动在占位符、表限定名与字符串函数上的差异
type Dialect struct {
	Name      string
	numbered  bool
	qualifier string
}

// 文档注释：构造驱动对应的方言
// 背景：Snowflake 使用 ? 占位并以 DATABASE.SCHEMA 限定对象；PostgreSQL 使用 $n；SQLite 无库级限定。
func NewDialect(driver, database, schema string) Dialect {
	switch driver {
	case "postgres":
		return Dialect{Name: driver, numbered: true}
	case "sqlite":
		return Dialect{Name: driver}
	}
	d := Dialect{Name: "snowflake"}
	var parts []string
	for _, p := range []string{database, schema} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	d.qualifier = strings.Join(parts, ".")
	return d
}

// Bind：第 n 个（从 1 开始）绑定占位符
func (d Dialect) Bind(n int) string {
	if d.numbered {
		// 绑定值均为文本，显式转换避免与 || 拼接时参数类型推断失败
		return "$" + strconv.Itoa(n) + "::text"
	}
	return "?"
}

// Table：返回带库/模式限定的对象名；已含 "." 的名称原样返回
func (d Dialect) Table(name string) string {
	if d.qualifier == "" || strings.Contains(name, ".") {
		return name
	}
	return d.qualifier + "." + name
}

// BaseAddr：从 "address/mask" 形式的列中取出地址部分
func (d Dialect) BaseAddr(col string) string {
	if d.Name == "sqlite" {
		return "CASE WHEN instr(" + col + ", '/') > 0 THEN substr(" + col + ", 1, instr(" + col + ", '/') - 1) ELSE " + col + " END"
	}
	return "split_part(" + col + ", '/', 1)"
}

// ContainsFold：大小写不敏感的包含匹配，绑定值需先经 EscapeLike 处理
func (d Dialect) ContainsFold(col, bind string) string {
	if d.Name == "sqlite" {
		return "lower(" + col + ") LIKE '%' || lower(" + bind + ") || '%' ESCAPE '!'"
	}
	return col + " ILIKE '%' || " + bind + " || '%' ESCAPE '!'"
}

// StartsWith：字符串前缀匹配
func (d Dialect) StartsWith(col, bind string) string {
	return col + " LIKE " + bind + " || '%'"
}

// EscapeLike：转义 LIKE 通配符，转义符为 "!"
func EscapeLike(s string) string {
	r := strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")
	return r.Replace(s)
}
