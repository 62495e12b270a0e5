package sqlgen

import (
	"errors"
	"fmt"
	"strings"

	"marketdata_backend/internal/platform/frame"
)

// ErrEmptyInsert は挿入対象の行が1件もない場合に返されます。
// 空のVALUES句は不正なSQLになるため、文を生成せずに失敗させます。
var ErrEmptyInsert = errors.New("sqlgen: no rows to insert")

// BuildCreateTable はCREATE TABLE文を生成します。列は宣言順のまま出力されます。
// 主キーや制約は付けません（上流スキーマに合わせた寛容なテーブル定義）。
func BuildCreateTable(table string, cols []frame.Column) (string, error) {
	defs := make([]string, 0, len(cols))
	for _, c := range cols {
		sqlType, err := SQLType(c.Type)
		if err != nil {
			return "", err
		}
		defs = append(defs, fmt.Sprintf("%s %s", c.Name, sqlType))
	}
	return fmt.Sprintf("CREATE TABLE %s (%s)", table, strings.Join(defs, ", ")), nil
}

// BuildInsert は複数行を1文にまとめたINSERT文を生成します。
// 各VALUESタプルの値は列定義と同じ順序で位置的に揃えられます。
func BuildInsert(table string, f *frame.Frame) (string, error) {
	if f.Len() == 0 {
		return "", ErrEmptyInsert
	}

	cols := f.Columns()
	names := make([]string, 0, len(cols))
	literals := make([]LiteralFunc, 0, len(cols))
	for _, c := range cols {
		fn, err := Literal(c.Type)
		if err != nil {
			return "", err
		}
		names = append(names, c.Name)
		literals = append(literals, fn)
	}

	tuples := make([]string, 0, f.Len())
	for _, row := range f.Rows() {
		values := make([]string, 0, len(row))
		for i, v := range row {
			lit, err := literals[i](v)
			if err != nil {
				return "", fmt.Errorf("row %d column %s: %w", len(tuples), cols[i].Name, err)
			}
			values = append(values, lit)
		}
		tuples = append(tuples, "("+strings.Join(values, ", ")+")")
	}

	return fmt.Sprintf("INSERT INTO %s (%s) VALUES %s",
		table, strings.Join(names, ", "), strings.Join(tuples, ", ")), nil
}
