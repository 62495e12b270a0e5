// Package frame は列順・行順が保証されたインメモリの表形式データを提供します。
// 取引所から取得したローソク足バッチとSQLクエリ結果の両方をこの型で受け渡しします。
package frame

import (
	"fmt"
	"strconv"
	"time"
)

// Type は列の意味型タグです。SQL型キーワードとリテラル変換の選択に使われます。
type Type int

const (
	TypeText Type = iota
	TypeInteger
	TypeReal
	TypeBool
	TypeTimestamp
)

// String はタグ名を返します。未知のタグはエラーメッセージ用に数値表現で返します。
func (t Type) String() string {
	switch t {
	case TypeText:
		return "text"
	case TypeInteger:
		return "integer"
	case TypeReal:
		return "real"
	case TypeBool:
		return "boolean"
	case TypeTimestamp:
		return "timestamp"
	default:
		return fmt.Sprintf("type(%d)", int(t))
	}
}

// Column は名前付きの型付き列です。
type Column struct {
	Name string
	Type Type
}

// Frame は列定義と行データを保持します。列順は生成時の順序を常に維持します。
type Frame struct {
	cols []Column
	rows [][]any
}

// New は指定された列定義で空のFrameを生成します。
func New(cols ...Column) *Frame {
	return &Frame{cols: cols}
}

// Columns は列定義を宣言順で返します。
func (f *Frame) Columns() []Column {
	return f.cols
}

// Len は行数を返します。
func (f *Frame) Len() int {
	return len(f.rows)
}

// Rows は全行を挿入順で返します。各行の値は列定義と位置が揃っています。
func (f *Frame) Rows() [][]any {
	return f.rows
}

// Append は1行追加します。値の個数が列数と一致しない場合はエラーを返します。
func (f *Frame) Append(values ...any) error {
	if len(values) != len(f.cols) {
		return fmt.Errorf("frame: row has %d values, want %d", len(values), len(f.cols))
	}
	f.rows = append(f.rows, values)
	return nil
}

// Extend は別のFrameの全行を末尾に連結します。列数が一致しない場合はエラーを返します。
func (f *Frame) Extend(other *Frame) error {
	if other == nil || other.Len() == 0 {
		return nil
	}
	if len(other.cols) != len(f.cols) {
		return fmt.Errorf("frame: cannot extend %d columns with %d columns", len(f.cols), len(other.cols))
	}
	f.rows = append(f.rows, other.rows...)
	return nil
}

// index は列名から列位置を引きます。
func (f *Frame) index(name string) (int, bool) {
	for i, c := range f.cols {
		if c.Name == name {
			return i, true
		}
	}
	return 0, false
}

// Value は指定行・指定列の生の値を返します。
func (f *Frame) Value(row int, col string) (any, bool) {
	i, ok := f.index(col)
	if !ok || row < 0 || row >= len(f.rows) {
		return nil, false
	}
	return f.rows[row][i], true
}

// ColumnValues は指定列の全値を行順で返します。
func (f *Frame) ColumnValues(col string) ([]any, bool) {
	i, ok := f.index(col)
	if !ok {
		return nil, false
	}
	out := make([]any, 0, len(f.rows))
	for _, r := range f.rows {
		out = append(out, r[i])
	}
	return out, true
}

// Float64 は値をfloat64として返します。SQLドライバが返す数値表現の揺れを吸収します。
func (f *Frame) Float64(row int, col string) (float64, bool) {
	v, ok := f.Value(row, col)
	if !ok {
		return 0, false
	}
	return AsFloat64(v)
}

// Int64 は値をint64として返します。
func (f *Frame) Int64(row int, col string) (int64, bool) {
	v, ok := f.Value(row, col)
	if !ok {
		return 0, false
	}
	return AsInt64(v)
}

// String は値を文字列として返します。[]byteを返すドライバにも対応します。
func (f *Frame) String(row int, col string) (string, bool) {
	v, ok := f.Value(row, col)
	if !ok {
		return "", false
	}
	return AsString(v)
}

// AsFloat64 converts a scanned SQL value to float64.
func AsFloat64(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int64:
		return float64(x), true
	case int:
		return float64(x), true
	case []byte:
		n, err := strconv.ParseFloat(string(x), 64)
		return n, err == nil
	case string:
		n, err := strconv.ParseFloat(x, 64)
		return n, err == nil
	default:
		return 0, false
	}
}

// AsInt64 converts a scanned SQL value to int64.
func AsInt64(v any) (int64, bool) {
	switch x := v.(type) {
	case int64:
		return x, true
	case int:
		return int64(x), true
	case float64:
		return int64(x), true
	case []byte:
		n, err := strconv.ParseInt(string(x), 10, 64)
		return n, err == nil
	case string:
		n, err := strconv.ParseInt(x, 10, 64)
		return n, err == nil
	default:
		return 0, false
	}
}

// AsString converts a scanned SQL value to string.
func AsString(v any) (string, bool) {
	switch x := v.(type) {
	case string:
		return x, true
	case []byte:
		return string(x), true
	case time.Time:
		return x.UTC().Format("2006-01-02 15:04"), true
	default:
		return "", false
	}
}
