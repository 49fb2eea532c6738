// Package localstore はリモートAPIを優先しつつローカルキャッシュへ
// フォールバックするエンティティコレクションの読み書き層を提供する。
//
// コレクション（clients, projects, websites, ideas, finances）ごとに
// レコード列を保持し、リモート障害時もローカルの値で応答し続ける。
package localstore

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/cockroachdb/pebble"
)

// 管理対象のコレクション名。
const (
	CollectionClients  = "clients"
	CollectionProjects = "projects"
	CollectionWebsites = "websites"
	CollectionIdeas    = "ideas"
	CollectionFinances = "finances"
)

// Collections は管理対象の全コレクション名。
var Collections = []string{
	CollectionClients,
	CollectionProjects,
	CollectionWebsites,
	CollectionIdeas,
	CollectionFinances,
}

// Record はコレクションに格納される1レコード。
// スキーマはコレクションごとに異なるため素のJSONオブジェクトとして扱う。
type Record map[string]any

// ID はレコードのid文字列を返す。未設定の場合は空文字列。
func (r Record) ID() string {
	id, _ := r["id"].(string)
	return id
}

// LocalStore はpebbleを使った組み込みローカルキャッシュ。
// キーは collection/<名前>/<id> の形式で、値はレコードのJSON表現。
type LocalStore struct {
	db     *pebble.DB
	logger *slog.Logger
}

// NewLocalStore は指定パスにpebbleデータベースを開く（存在しなければ作成する）。
func NewLocalStore(path string, logger *slog.Logger) (*LocalStore, error) {
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("ローカルストアのオープンに失敗しました: %w", err)
	}
	return &LocalStore{db: db, logger: logger}, nil
}

// Close はデータベースを閉じる。
func (s *LocalStore) Close() error {
	return s.db.Close()
}

func recordKey(collection, id string) []byte {
	return []byte("collection/" + collection + "/" + id)
}

func collectionPrefix(collection string) []byte {
	return []byte("collection/" + collection + "/")
}

// Get はコレクションの全レコードをキー順に返す。
// 一度も書き込まれていないコレクションは空スライスを返し、エラーにはしない。
func (s *LocalStore) Get(collection string) ([]Record, error) {
	prefix := collectionPrefix(collection)
	iter, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: prefix,
		UpperBound: upperBound(prefix),
	})
	if err != nil {
		return nil, fmt.Errorf("ローカルストアのイテレータ作成に失敗しました: %w", err)
	}
	defer iter.Close()

	records := make([]Record, 0)
	for iter.First(); iter.Valid(); iter.Next() {
		var rec Record
		if err := json.Unmarshal(iter.Value(), &rec); err != nil {
			// 壊れたレコードは読み飛ばす
			s.logger.Warn("ローカルレコードのパースに失敗しました",
				slog.String("collection", collection),
				slog.String("key", string(iter.Key())),
				slog.String("error", err.Error()),
			)
			continue
		}
		records = append(records, rec)
	}
	if err := iter.Error(); err != nil {
		return nil, fmt.Errorf("ローカルストアの走査に失敗しました: %w", err)
	}
	return records, nil
}

// Put はレコードを書き込む（同一idは上書き）。
func (s *LocalStore) Put(collection string, rec Record) error {
	id := rec.ID()
	if id == "" {
		return fmt.Errorf("レコードにidがありません: collection=%s", collection)
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("レコードのJSON化に失敗しました: %w", err)
	}
	if err := s.db.Set(recordKey(collection, id), data, pebble.Sync); err != nil {
		return fmt.Errorf("ローカルストアへの書き込みに失敗しました: %w", err)
	}
	return nil
}

// Delete は指定idのレコードを削除する。存在しないidの削除もエラーにならない。
func (s *LocalStore) Delete(collection, id string) error {
	if err := s.db.Delete(recordKey(collection, id), pebble.Sync); err != nil {
		return fmt.Errorf("ローカルストアからの削除に失敗しました: %w", err)
	}
	return nil
}

// Replace はコレクションの内容をまるごと置き換える。
// リモートから取得した正のデータをミラーリングするために使う。
func (s *LocalStore) Replace(collection string, records []Record) error {
	prefix := collectionPrefix(collection)
	batch := s.db.NewBatch()
	defer batch.Close()

	if err := batch.DeleteRange(prefix, upperBound(prefix), nil); err != nil {
		return fmt.Errorf("コレクションのクリアに失敗しました: %w", err)
	}
	for _, rec := range records {
		id := rec.ID()
		if id == "" {
			continue
		}
		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("レコードのJSON化に失敗しました: %w", err)
		}
		if err := batch.Set(recordKey(collection, id), data, nil); err != nil {
			return fmt.Errorf("バッチへの書き込みに失敗しました: %w", err)
		}
	}
	if err := batch.Commit(pebble.Sync); err != nil {
		return fmt.Errorf("バッチのコミットに失敗しました: %w", err)
	}
	return nil
}

// upperBound はプレフィックス走査の排他的上限キーを返す。
func upperBound(prefix []byte) []byte {
	end := make([]byte, len(prefix))
	copy(end, prefix)
	for i := len(end) - 1; i >= 0; i-- {
		end[i]++
		if end[i] != 0 {
			return end[:i+1]
		}
	}
	return nil
}
