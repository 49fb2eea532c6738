package localstore

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/AidenBurnzy/AuctusAPP-sub000/internal/metrics"
)

// Mode はキャッシュの動作モードを表す。
type Mode string

const (
	// ModeRemote はリモートAPIを優先するモード。初期状態。
	ModeRemote Mode = "remote"
	// ModeLocal はローカルキャッシュのみで動作するモード。
	ModeLocal Mode = "local"
)

// Cache はリモート優先・ローカルフォールバックのコレクションアクセス層。
//
// ModeRemoteで開始し、リモートへの書き込みが1回でも失敗するとModeLocalへ
// 不可逆に遷移する（タイマーによるリモート復帰は行わない）。読み取りの失敗は
// その呼び出しに限りローカルへフォールバックし、モードは変えない。
// Getは呼び出し元へエラーを返さず、常に得られる範囲のデータで応答する。
type Cache struct {
	remote  Remote
	local   *LocalStore
	logger  *slog.Logger
	metrics metrics.MetricsCollector

	mu   sync.Mutex
	mode Mode
}

// NewCache はModeRemoteで開始するCacheを生成する。
// collectorはnilを許容する。
func NewCache(remote Remote, local *LocalStore, logger *slog.Logger, collector metrics.MetricsCollector) *Cache {
	return &Cache{
		remote:  remote,
		local:   local,
		logger:  logger,
		metrics: collector,
		mode:    ModeRemote,
	}
}

// Mode は現在の動作モードを返す。
func (c *Cache) Mode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// Get はコレクションの全レコードを返す。エラーは返さない。
// リモート取得に失敗した場合はその呼び出しに限りローカルの値で応答し、
// モードは変更しない。ローカルにも値がなければ空スライスを返す。
func (c *Cache) Get(ctx context.Context, collection string) []Record {
	if c.Mode() == ModeRemote {
		records, err := c.remote.Get(ctx, collection)
		if err == nil {
			// 正のデータをローカルへミラーリングしておく
			if merr := c.local.Replace(collection, records); merr != nil {
				c.logger.Warn("ローカルミラーの更新に失敗しました",
					slog.String("collection", collection),
					slog.String("error", merr.Error()),
				)
			}
			return records
		}
		c.logger.Warn("リモート取得に失敗したためローカルの値で応答します",
			slog.String("collection", collection),
			slog.String("error", err.Error()),
		)
		c.recordFallback(collection)
	}

	records, err := c.local.Get(collection)
	if err != nil {
		c.logger.Error("ローカルキャッシュの読み取りに失敗しました",
			slog.String("collection", collection),
			slog.String("error", err.Error()),
		)
		return []Record{}
	}
	return records
}

// Add は新規レコードを作成する。リモート失敗時はModeLocalへ遷移し、
// local-<unixnano>形式のidとローカルタイムスタンプを付与して
// ローカルキャッシュに書き込む。
func (c *Cache) Add(ctx context.Context, collection string, rec Record) (Record, error) {
	if c.Mode() == ModeRemote {
		created, err := c.remote.Add(ctx, collection, rec)
		if err == nil {
			c.mirrorPut(collection, created)
			return created, nil
		}
		c.switchToLocal(collection, "add", err)
	}

	now := time.Now()
	rec["id"] = mintLocalID(now)
	rec["created_at"] = now.Format(time.RFC3339Nano)
	rec["updated_at"] = now.Format(time.RFC3339Nano)

	if err := c.local.Put(collection, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// Update は既存レコードを上書きする。リモート失敗時はModeLocalへ遷移し、
// ローカルタイムスタンプを付与してローカルキャッシュを更新する。
func (c *Cache) Update(ctx context.Context, collection string, rec Record) (Record, error) {
	if rec.ID() == "" {
		return nil, fmt.Errorf("レコードにidがありません: collection=%s", collection)
	}

	if c.Mode() == ModeRemote {
		updated, err := c.remote.Update(ctx, collection, rec)
		if err == nil {
			c.mirrorPut(collection, updated)
			return updated, nil
		}
		c.switchToLocal(collection, "update", err)
	}

	rec["updated_at"] = time.Now().Format(time.RFC3339Nano)

	if err := c.local.Put(collection, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// Delete は指定idのレコードを削除する。リモート失敗時はModeLocalへ遷移し、
// ローカルキャッシュから削除する。
func (c *Cache) Delete(ctx context.Context, collection, id string) error {
	if c.Mode() == ModeRemote {
		err := c.remote.Delete(ctx, collection, id)
		if err == nil {
			if merr := c.local.Delete(collection, id); merr != nil {
				c.logger.Warn("ローカルミラーからの削除に失敗しました",
					slog.String("collection", collection),
					slog.String("error", merr.Error()),
				)
			}
			return nil
		}
		c.switchToLocal(collection, "delete", err)
	}

	return c.local.Delete(collection, id)
}

// switchToLocal はModeLocalへの不可逆な遷移を行う。
func (c *Cache) switchToLocal(collection, operation string, cause error) {
	c.mu.Lock()
	alreadyLocal := c.mode == ModeLocal
	c.mode = ModeLocal
	c.mu.Unlock()

	if !alreadyLocal {
		c.logger.Warn("リモート書き込みに失敗したためローカルモードへ切り替えます",
			slog.String("collection", collection),
			slog.String("operation", operation),
			slog.String("error", cause.Error()),
		)
	}
	c.recordFallback(collection)
}

// mirrorPut は成功したリモート応答をローカルへ書き戻す。失敗はログのみ。
func (c *Cache) mirrorPut(collection string, rec Record) {
	if rec.ID() == "" {
		return
	}
	if err := c.local.Put(collection, rec); err != nil {
		c.logger.Warn("ローカルミラーの更新に失敗しました",
			slog.String("collection", collection),
			slog.String("error", err.Error()),
		)
	}
}

func (c *Cache) recordFallback(collection string) {
	if c.metrics != nil {
		c.metrics.RecordCacheFallback(collection)
	}
}

// mintLocalID はローカル生成レコードの時刻ベースidを発行する。
func mintLocalID(now time.Time) string {
	return fmt.Sprintf("local-%d", now.UnixNano())
}
