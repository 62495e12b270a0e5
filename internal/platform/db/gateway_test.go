package db

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"marketdata_backend/internal/platform/frame"
	"marketdata_backend/internal/platform/sqlgen"
)

// setupTestGateway prepares a gateway over an in-memory SQLite database.
func setupTestGateway(t *testing.T) *Gateway {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to initialize test database")

	return NewGateway(gdb)
}

func testColumns() []frame.Column {
	return []frame.Column{
		{Name: "dt", Type: frame.TypeTimestamp},
		{Name: "dt_timestamp", Type: frame.TypeInteger},
		{Name: "price", Type: frame.TypeReal},
		{Name: "symbol", Type: frame.TypeText},
	}
}

func testFrame(t *testing.T, times ...time.Time) *frame.Frame {
	t.Helper()

	f := frame.New(testColumns()...)
	for i, tm := range times {
		require.NoError(t, f.Append(tm, tm.Unix(), 100.5+float64(i), "BTCUSD"))
	}
	return f
}

func TestGateway_CreateTable(t *testing.T) {
	t.Parallel()

	gw := setupTestGateway(t)
	ctx := context.Background()

	require.NoError(t, gw.CreateTable(ctx, "candles", testColumns()))
	assert.True(t, gw.HasTable("candles"))

	// 既存テーブルの再作成はSchemaError
	err := gw.CreateTable(ctx, "candles", testColumns())
	var schemaErr *sqlgen.SchemaError
	require.ErrorAs(t, err, &schemaErr)
}

func TestGateway_InsertAndQuery(t *testing.T) {
	t.Parallel()

	gw := setupTestGateway(t)
	ctx := context.Background()
	base := time.Date(1999, 2, 22, 4, 30, 0, 0, time.UTC)

	require.NoError(t, gw.CreateTable(ctx, "candles", testColumns()))
	require.NoError(t, gw.InsertRows(ctx, "candles", testFrame(t, base, base.Add(time.Hour))))

	f, err := gw.Query(ctx, "SELECT * FROM candles")
	require.NoError(t, err)

	// 列は結果セットから発見され、テーブル定義順で返る
	names := make([]string, 0, len(f.Columns()))
	for _, c := range f.Columns() {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"dt", "dt_timestamp", "price", "symbol"}, names)
	require.Equal(t, 2, f.Len())

	// timestampリテラルはストアに保存した後も同じ分精度の時刻として読み戻せる
	dt, ok := f.String(0, "dt")
	require.True(t, ok)
	assert.Equal(t, "1999-02-22 04:30", dt)
	parsed, err := time.Parse("2006-01-02 15:04", dt)
	require.NoError(t, err)
	assert.True(t, parsed.UTC().Equal(base.Truncate(time.Minute)))

	ts, ok := f.Int64(0, "dt_timestamp")
	require.True(t, ok)
	assert.Equal(t, base.Unix(), ts)

	price, ok := f.Float64(1, "price")
	require.True(t, ok)
	assert.Equal(t, 101.5, price)
}

func TestGateway_InsertRows_Empty(t *testing.T) {
	t.Parallel()

	gw := setupTestGateway(t)
	ctx := context.Background()

	require.NoError(t, gw.CreateTable(ctx, "candles", testColumns()))
	err := gw.InsertRows(ctx, "candles", frame.New(testColumns()...))
	assert.ErrorIs(t, err, sqlgen.ErrEmptyInsert)
}

func TestGateway_Upload(t *testing.T) {
	t.Parallel()

	gw := setupTestGateway(t)
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	// 初回はテーブルが無いのでreplaceなしでも成功する
	require.NoError(t, gw.Upload(ctx, "candles", testFrame(t, base, base.Add(time.Hour), base.Add(2*time.Hour)), false))

	// replace=falseで既存テーブルに再uploadするとSchemaErrorが伝播する
	err := gw.Upload(ctx, "candles", testFrame(t, base), false)
	var schemaErr *sqlgen.SchemaError
	require.ErrorAs(t, err, &schemaErr)

	// replace=trueは全置換
	require.NoError(t, gw.Upload(ctx, "candles", testFrame(t, base), true))
	f, err := gw.Query(ctx, "SELECT COUNT(*) AS n FROM candles")
	require.NoError(t, err)
	n, ok := f.Int64(0, "n")
	require.True(t, ok)
	assert.Equal(t, int64(1), n)
}

func TestGateway_DropTable_Missing(t *testing.T) {
	t.Parallel()

	gw := setupTestGateway(t)

	// 存在しないテーブルのdropはエラーにしない
	assert.NoError(t, gw.DropTable(context.Background(), "missing_table"))
}

func TestGateway_Query_MalformedSQL(t *testing.T) {
	t.Parallel()

	gw := setupTestGateway(t)

	_, err := gw.Query(context.Background(), "SELECT FROM nowhere")
	assert.Error(t, err)
}
