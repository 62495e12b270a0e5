package db

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"marketdata_backend/internal/platform/frame"
	"marketdata_backend/internal/platform/sqlgen"
)

// Gateway はストアとの唯一の接点です。生成済みSQL文の実行と任意の読み取りを担います。
// 書き込みは1プロセス1ライターの前提で、各呼び出しは単一文として即時コミットされます。
type Gateway struct {
	db *gorm.DB
}

// NewGateway はGatewayの新しいインスタンスを生成します。
func NewGateway(db *gorm.DB) *Gateway {
	return &Gateway{db: db}
}

// HasTable はテーブルの存在を確認します。
func (g *Gateway) HasTable(table string) bool {
	return g.db.Migrator().HasTable(table)
}

// CreateTable は列定義どおりのテーブルを作成します。
// すでに存在する場合はSchemaErrorを返します。
func (g *Gateway) CreateTable(ctx context.Context, table string, cols []frame.Column) error {
	if g.HasTable(table) {
		return &sqlgen.SchemaError{Reason: fmt.Sprintf("table %s already exists", table)}
	}
	stmt, err := sqlgen.BuildCreateTable(table, cols)
	if err != nil {
		return err
	}
	if err := g.db.WithContext(ctx).Exec(stmt).Error; err != nil {
		return fmt.Errorf("create table %s: %w", table, err)
	}
	return nil
}

// DropTable はテーブルを削除します。存在しない場合は何もしません。
func (g *Gateway) DropTable(ctx context.Context, table string) error {
	if !g.HasTable(table) {
		return nil
	}
	if err := g.db.WithContext(ctx).Exec("DROP TABLE " + table).Error; err != nil {
		return fmt.Errorf("drop table %s: %w", table, err)
	}
	return nil
}

// InsertRows は全行を1つのINSERT文で書き込みます。
// 単一文のため途中失敗による部分挿入は起こりません。失敗時は1行も書かれていません。
func (g *Gateway) InsertRows(ctx context.Context, table string, f *frame.Frame) error {
	stmt, err := sqlgen.BuildInsert(table, f)
	if err != nil {
		return err
	}
	if err := g.db.WithContext(ctx).Exec(stmt).Error; err != nil {
		return fmt.Errorf("insert into %s: %w", table, err)
	}
	return nil
}

// Upload はdrop（replace時のみ）、create、insertを1つの論理操作として実行します。
// replaceがfalseでテーブルが既存の場合はCreateTableのSchemaErrorがそのまま返ります。
func (g *Gateway) Upload(ctx context.Context, table string, f *frame.Frame, replace bool) error {
	if replace {
		if err := g.DropTable(ctx, table); err != nil {
			return err
		}
	}
	if err := g.CreateTable(ctx, table, f.Columns()); err != nil {
		return err
	}
	return g.InsertRows(ctx, table, f)
}

// Query は任意の読み取りクエリを実行し、結果を列指向のFrameに詰めて返します。
// 列は結果セットから発見するため、事前のスキーマ知識は不要です。行順は結果のまま保持します。
func (g *Gateway) Query(ctx context.Context, raw string) (*frame.Frame, error) {
	rows, err := g.db.WithContext(ctx).Raw(raw).Rows()
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	names, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("query columns: %w", err)
	}

	cols := make([]frame.Column, 0, len(names))
	for _, n := range names {
		cols = append(cols, frame.Column{Name: n, Type: frame.TypeText})
	}
	f := frame.New(cols...)

	for rows.Next() {
		values := make([]any, len(names))
		ptrs := make([]any, len(names))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("query scan: %w", err)
		}
		for i, v := range values {
			// ドライバによっては文字列が[]byteで返るため揃えておく
			if b, ok := v.([]byte); ok {
				values[i] = string(b)
			}
		}
		if err := f.Append(values...); err != nil {
			return nil, err
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query rows: %w", err)
	}
	return f, nil
}
