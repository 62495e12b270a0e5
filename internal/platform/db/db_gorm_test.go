package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
)

// TestBuildDialector はドライバ名ごとのDialector選択を検証します。
func TestBuildDialector(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cfg  Config
		want any
	}{
		{name: "sqlite", cfg: Config{Driver: "sqlite", DSN: "./marketdata.db"}, want: &sqlite.Dialector{}},
		{name: "postgres", cfg: Config{Driver: "postgres", DSN: "host=localhost"}, want: postgres.Dialector{}},
		{name: "unknown falls back to sqlite", cfg: Config{Driver: "mysql", DSN: "x"}, want: &sqlite.Dialector{}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := BuildDialector(tt.cfg)
			assert.IsType(t, tt.want, got)
		})
	}
}
