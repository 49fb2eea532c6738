package thread

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/AidenBurnzy/AuctusAPP-sub000/internal/metrics"
	"github.com/AidenBurnzy/AuctusAPP-sub000/internal/model"
)

// DefaultPollInterval はポーリングの既定間隔。
const DefaultPollInterval = 5 * time.Second

// DisplayHints はスレッドを開く際に渡す表示用の識別情報。
// 送信元推定のプールと、送信時に付与する送信者ラベルを与える。
type DisplayHints struct {
	ClientName    string
	ClientCompany string
	ContactName   string
	AdminName     string
	ActorLabel    string
}

// identityPools は推定用の識別子プールに変換する。
func (h DisplayHints) identityPools() IdentityPools {
	return IdentityPools{
		ClientAliases: []string{h.ClientName, h.ClientCompany, h.ContactName},
		AdminNames:    []string{h.AdminName},
	}
}

// Config はControllerの動作設定。ゼロ値のフィールドには既定値が適用される。
type Config struct {
	PollInterval time.Duration
	Location     *time.Location
}

// Controller は1クライアント分の会話スレッドを制御する。
//
// Openで初回リフレッシュとポーリングを開始し、Closeで確定的に停止する。
// リフレッシュはin-flightガードにより直列化され、実行中に来たtickは
// キューイングせずスキップする。Openごとに世代番号を進め、Close後に完了した
// 呼び出しの結果は世代チェックで破棄する。
//
// 複数クライアントのスレッドを同時に開く場合はクライアントごとに
// 別々のControllerを使う。インスタンス間で共有する状態はない。
type Controller struct {
	store         MessageStore
	sink          ViewSink
	refreshSignal func()
	logger        *slog.Logger
	metrics       metrics.MetricsCollector
	pollInterval  time.Duration
	location      *time.Location

	mu         sync.Mutex
	open       bool
	generation uint64
	inFlight   bool
	dirty      bool
	clientID   string
	pools      IdentityPools
	actorLabel string
	messages   []model.Message
	ticker     *time.Ticker
	stopCh     chan struct{}
}

// NewController はControllerの新しいインスタンスを生成する。
// refreshSignalは未読数サマリの再取得を促すコールバックで、nilを許容する。
// collectorもnilを許容する（メトリクス収集なしで動作する）。
func NewController(
	store MessageStore,
	sink ViewSink,
	refreshSignal func(),
	logger *slog.Logger,
	collector metrics.MetricsCollector,
	cfg Config,
) *Controller {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	return &Controller{
		store:         store,
		sink:          sink,
		refreshSignal: refreshSignal,
		logger:        logger,
		metrics:       collector,
		pollInterval:  cfg.PollInterval,
		location:      cfg.Location,
	}
}

// Open はスレッドを開き、初回リフレッシュを同期実行した上でポーリングを開始する。
// 初回リフレッシュの失敗はログに残すのみで、ポーリングは継続する。
// 既に開いているスレッドを再度開くことはできない。
func (c *Controller) Open(ctx context.Context, clientID string, hints DisplayHints) error {
	c.mu.Lock()
	if c.open {
		c.mu.Unlock()
		return fmt.Errorf("スレッドは既に開かれています: %s", c.clientID)
	}
	c.generation++
	gen := c.generation
	c.open = true
	c.dirty = false
	c.clientID = clientID
	c.pools = hints.identityPools()
	c.actorLabel = hints.ActorLabel
	c.messages = nil
	c.ticker = time.NewTicker(c.pollInterval)
	c.stopCh = make(chan struct{})
	ticker := c.ticker
	stopCh := c.stopCh
	c.mu.Unlock()

	if err := c.refresh(ctx, gen); err != nil {
		c.logger.Warn("スレッドの初回リフレッシュに失敗しました",
			slog.String("client_id", clientID),
			slog.String("error", err.Error()),
		)
	}

	go c.pollLoop(gen, ticker, stopCh)

	return nil
}

// Close はスレッドを閉じる。ポーリングタイマーを同期的に停止し、
// 既読化または送信が発生していた場合に限りrefreshSignalを1回だけ呼び出す。
// 実行中のストア呼び出しは完了を待たず、その結果は世代チェックで破棄される。
// 閉じているスレッドへのCloseは何もしない。
func (c *Controller) Close() {
	c.mu.Lock()
	if !c.open {
		c.mu.Unlock()
		return
	}
	c.open = false
	c.generation++
	c.ticker.Stop()
	close(c.stopCh)
	wasDirty := c.dirty
	c.dirty = false
	c.mu.Unlock()

	if wasDirty && c.refreshSignal != nil {
		c.refreshSignal()
	}
}

// Send は現在のアクターのラベルでメッセージを作成し、全件リフレッシュする。
// 空白のみの本文は送信前に拒否する。作成後のローカル追記は行わず、
// 確定したID・タイムスタンプをストアから取り直す。
func (c *Controller) Send(ctx context.Context, subject, body string) error {
	if strings.TrimSpace(body) == "" {
		return model.NewEmptyMessageBodyError()
	}

	c.mu.Lock()
	if !c.open {
		c.mu.Unlock()
		return fmt.Errorf("スレッドが開かれていません")
	}
	gen := c.generation
	clientID := c.clientID
	author := c.actorLabel
	c.mu.Unlock()

	if _, err := c.store.CreateMessage(ctx, clientID, subject, body, author); err != nil {
		return fmt.Errorf("メッセージの送信に失敗しました: %w", err)
	}

	c.mu.Lock()
	if c.open && gen == c.generation {
		c.dirty = true
	}
	c.mu.Unlock()

	if err := c.refresh(ctx, gen); err != nil {
		// 送信自体は成功している。リフレッシュ失敗は次回ポーリングで回復する
		c.logger.Warn("送信後のリフレッシュに失敗しました",
			slog.String("client_id", clientID),
			slog.String("error", err.Error()),
		)
	}

	return nil
}

// pollLoop はstopChが閉じられるまで一定間隔でリフレッシュを繰り返す。
func (c *Controller) pollLoop(gen uint64, ticker *time.Ticker, stopCh chan struct{}) {
	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			if err := c.refresh(context.Background(), gen); err != nil {
				c.mu.Lock()
				clientID := c.clientID
				c.mu.Unlock()
				// 1回のtickの失敗でポーリングは止めない
				c.logger.Warn("スレッドのポーリング更新に失敗しました",
					slog.String("client_id", clientID),
					slog.String("error", err.Error()),
				)
			}
		}
	}
}

// refresh はメッセージ全件を取得し直し、ビューを描画した後に既読化を行う。
// 別のリフレッシュが実行中の場合は何もせずに戻る（tickのスキップ）。
// ストア呼び出しから戻った時点でスレッドが閉じられているか世代が進んでいた場合、
// 結果は破棄する。
func (c *Controller) refresh(ctx context.Context, gen uint64) error {
	c.mu.Lock()
	if !c.open || gen != c.generation || c.inFlight {
		c.mu.Unlock()
		return nil
	}
	c.inFlight = true
	clientID := c.clientID
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.inFlight = false
		c.mu.Unlock()
	}()

	msgs, err := c.store.ListMessages(ctx, clientID)

	c.mu.Lock()
	if !c.open || gen != c.generation {
		// クローズ後に完了した呼び出しの結果は破棄する
		c.mu.Unlock()
		return nil
	}
	if err != nil {
		c.mu.Unlock()
		return fmt.Errorf("メッセージ一覧の取得に失敗しました: %w", err)
	}

	c.messages = msgs
	view := buildView(clientID, msgs, c.pools, c.location)

	var unread []string
	for _, m := range msgs {
		if m.ClientID == clientID && !m.IsRead {
			unread = append(unread, m.ID)
		}
	}
	c.mu.Unlock()

	// 描画が先。既読化はその後に非同期的整合で行う
	if c.sink != nil {
		c.sink.Render(view)
	}

	c.reconcileRead(ctx, gen, unread)

	if c.metrics != nil {
		c.metrics.RecordPollCycle()
	}

	return nil
}

// reconcileRead は未読メッセージの既読フラグをストアへ書き戻し、
// メモリ上のコピーを楽観的に更新する。個々の更新失敗はログに残すのみで、
// リフレッシュ全体を中断しない。
func (c *Controller) reconcileRead(ctx context.Context, gen uint64, ids []string) {
	if len(ids) == 0 {
		return
	}

	read := true
	for _, id := range ids {
		if _, err := c.store.SetMessageFlags(ctx, id, &read, nil); err != nil {
			c.logger.Warn("既読フラグの更新に失敗しました",
				slog.String("message_id", id),
				slog.String("error", err.Error()),
			)
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.open || gen != c.generation {
		return
	}
	for i := range c.messages {
		for _, id := range ids {
			if c.messages[i].ID == id {
				c.messages[i].IsRead = true
			}
		}
	}
	// 未読数が変わったのでクローズ時にサマリ再取得を要求する
	c.dirty = true
}
