// Package sqlgen は意味型タグからSQL型キーワードとリテラル表現への変換、
// および CREATE TABLE / INSERT 文の生成を提供します。
// ストアは名前付きバインドを持たない前提のため、文は位置揃えのテキストとして組み立てます。
package sqlgen

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"marketdata_backend/internal/platform/frame"
)

// SchemaError はスキーマ定義の矛盾（未知の型タグ、テーブルの重複など）を表します。
type SchemaError struct {
	Reason string
}

func (e *SchemaError) Error() string {
	return "sqlgen: " + e.Reason
}

// LiteralFunc は値を1つのSQLリテラルテキストに変換します。
type LiteralFunc func(v any) (string, error)

// SQLType は型タグに対応するSQL型キーワードを返します。
// 未知のタグはSchemaErrorになります。暗黙のTEXTフォールバックは行いません。
func SQLType(t frame.Type) (string, error) {
	switch t {
	case frame.TypeInteger:
		return "INTEGER", nil
	case frame.TypeReal:
		return "REAL", nil
	case frame.TypeBool, frame.TypeTimestamp, frame.TypeText:
		return "TEXT", nil
	default:
		return "", &SchemaError{Reason: fmt.Sprintf("unknown type tag %s", t)}
	}
}

// Literal は型タグに対応するリテラル変換関数を返します。
func Literal(t frame.Type) (LiteralFunc, error) {
	switch t {
	case frame.TypeInteger:
		return castInt, nil
	case frame.TypeReal:
		return castReal, nil
	case frame.TypeBool:
		return castBool, nil
	case frame.TypeTimestamp:
		return castTimestamp, nil
	case frame.TypeText:
		return castText, nil
	default:
		return nil, &SchemaError{Reason: fmt.Sprintf("unknown type tag %s", t)}
	}
}

func castInt(v any) (string, error) {
	switch x := v.(type) {
	case int:
		return strconv.Itoa(x), nil
	case int32:
		return strconv.FormatInt(int64(x), 10), nil
	case int64:
		return strconv.FormatInt(x, 10), nil
	case uint64:
		return strconv.FormatUint(x, 10), nil
	default:
		return "", fmt.Errorf("sqlgen: integer column cannot serialize %T", v)
	}
}

func castReal(v any) (string, error) {
	switch x := v.(type) {
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), nil
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32), nil
	case int:
		return strconv.Itoa(x), nil
	case int64:
		return strconv.FormatInt(x, 10), nil
	default:
		return "", fmt.Errorf("sqlgen: real column cannot serialize %T", v)
	}
}

func castBool(v any) (string, error) {
	b, ok := v.(bool)
	if !ok {
		return "", fmt.Errorf("sqlgen: boolean column cannot serialize %T", v)
	}
	if b {
		return "'TRUE'", nil
	}
	return "'FALSE'", nil
}

// castTimestamp は分精度（秒切り捨て）のUTCテキストとして整形します。
func castTimestamp(v any) (string, error) {
	t, ok := v.(time.Time)
	if !ok {
		return "", fmt.Errorf("sqlgen: timestamp column cannot serialize %T", v)
	}
	return "'" + t.UTC().Format("2006-01-02 15:04") + "'", nil
}

// castText はシングルクォートを二重化してエスケープします。
func castText(v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("sqlgen: text column cannot serialize %T", v)
	}
	return "'" + strings.ReplaceAll(s, "'", "''") + "'", nil
}
