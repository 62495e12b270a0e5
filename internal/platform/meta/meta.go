// Package meta は初回起動フラグファイルの読み書きを提供します。
// ファイルの有無と内容が、フル初期化か差分更新かの選択を決めます。
package meta

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"
)

// Meta は初回起動メタデータです。ファイル形式はJSONオブジェクト1つです。
type Meta struct {
	IsFirstLaunch   bool  `json:"is_first_launch"`
	FirstLaunchTime int64 `json:"first_launch_time"` // Unix秒
}

// FirstLaunch は初回起動時刻をUTCのtime.Timeで返します。
func (m Meta) FirstLaunch() time.Time {
	return time.Unix(m.FirstLaunchTime, 0).UTC()
}

// LoadOrInit はメタファイルを読み込みます。ファイルが存在しない場合は
// 「今回が初回起動」とみなし、次回以降の起動が差分更新になるよう
// is_first_launch=false のファイルを書き残します。
func LoadOrInit(path string, now time.Time) (Meta, error) {
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		m := Meta{IsFirstLaunch: true, FirstLaunchTime: now.UTC().Unix()}
		if err := write(path, Meta{IsFirstLaunch: false, FirstLaunchTime: m.FirstLaunchTime}); err != nil {
			return Meta{}, err
		}
		return m, nil
	}
	if err != nil {
		return Meta{}, fmt.Errorf("read meta file %s: %w", path, err)
	}

	var m Meta
	if err := json.Unmarshal(b, &m); err != nil {
		return Meta{}, fmt.Errorf("parse meta file %s: %w", path, err)
	}
	return m, nil
}

func write(path string, m Meta) error {
	b, err := json.Marshal(m)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write meta file %s: %w", path, err)
	}
	return nil
}

// Path は環境変数META_PATHからファイルパスを返します。未指定時は ./.meta です。
func Path() string {
	if p := os.Getenv("META_PATH"); p != "" {
		return p
	}
	return "./.meta"
}
