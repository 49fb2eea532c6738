package check

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/AidenBurnzy/AuctusAPP-sub000/internal/model"
)

// --- モック定義 ---

type mockChecker struct {
	mu         sync.Mutex
	checkFn    func(ctx context.Context, w *model.Website) error
	checked    []string
	concurrent int
	maxSeen    int
}

var _ WebsiteCheckerService = (*mockChecker)(nil)

func (m *mockChecker) Check(ctx context.Context, w *model.Website) error {
	m.mu.Lock()
	m.checked = append(m.checked, w.ID)
	m.concurrent++
	if m.concurrent > m.maxSeen {
		m.maxSeen = m.concurrent
	}
	fn := m.checkFn
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		m.concurrent--
		m.mu.Unlock()
	}()

	if fn != nil {
		return fn(ctx, w)
	}
	return nil
}

type schedulerRepo struct {
	mockWebsiteRepo
	dueFn func(ctx context.Context) ([]*model.Website, error)
}

func (r *schedulerRepo) ListDueForCheck(ctx context.Context) ([]*model.Website, error) {
	if r.dueFn != nil {
		return r.dueFn(ctx)
	}
	return nil, nil
}

func dueWebsites(n int) []*model.Website {
	sites := make([]*model.Website, 0, n)
	for i := 0; i < n; i++ {
		sites = append(sites, &model.Website{
			ID:  string(rune('a' + i)),
			URL: "https://example.com",
		})
	}
	return sites
}

// --- RunOnce のテスト ---

// TestRunOnce_ChecksAllDueWebsites は対象サイト全件がチェックされることを検証する。
func TestRunOnce_ChecksAllDueWebsites(t *testing.T) {
	repo := &schedulerRepo{
		dueFn: func(ctx context.Context) ([]*model.Website, error) {
			return dueWebsites(5), nil
		},
	}
	checker := &mockChecker{}
	s := NewScheduler(repo, checker, checkTestLogger(), 3)

	if err := s.RunOnce(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	checker.mu.Lock()
	defer checker.mu.Unlock()
	if len(checker.checked) != 5 {
		t.Errorf("checked count = %d, want 5", len(checker.checked))
	}
}

// TestRunOnce_RespectsMaxConcurrency は並列数が上限を超えないことを検証する。
func TestRunOnce_RespectsMaxConcurrency(t *testing.T) {
	repo := &schedulerRepo{
		dueFn: func(ctx context.Context) ([]*model.Website, error) {
			return dueWebsites(10), nil
		},
	}
	block := make(chan struct{})
	started := make(chan struct{}, 10)
	checker := &mockChecker{
		checkFn: func(ctx context.Context, w *model.Website) error {
			started <- struct{}{}
			<-block
			return nil
		},
	}
	s := NewScheduler(repo, checker, checkTestLogger(), 2)

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.RunOnce(context.Background())
	}()

	// 2件が開始されるのを待ってから解放する
	<-started
	<-started
	close(block)
	<-done

	checker.mu.Lock()
	defer checker.mu.Unlock()
	if checker.maxSeen > 2 {
		t.Errorf("max concurrent checks = %d, want <= 2", checker.maxSeen)
	}
	if len(checker.checked) != 10 {
		t.Errorf("checked count = %d, want 10", len(checker.checked))
	}
}

// TestRunOnce_NoDueWebsites は対象なしのサイクルが何もせず成功することを検証する。
func TestRunOnce_NoDueWebsites(t *testing.T) {
	repo := &schedulerRepo{}
	checker := &mockChecker{}
	s := NewScheduler(repo, checker, checkTestLogger(), 3)

	if err := s.RunOnce(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(checker.checked) != 0 {
		t.Errorf("checked count = %d, want 0", len(checker.checked))
	}
}

// TestRunOnce_RepoError_ReturnsError は対象取得の失敗がエラーとして返ることを検証する。
func TestRunOnce_RepoError_ReturnsError(t *testing.T) {
	repo := &schedulerRepo{
		dueFn: func(ctx context.Context) ([]*model.Website, error) {
			return nil, errors.New("db down")
		},
	}
	s := NewScheduler(repo, &mockChecker{}, checkTestLogger(), 3)

	if err := s.RunOnce(context.Background()); err == nil {
		t.Error("expected error when listing due websites fails")
	}
}

// TestRunOnce_CheckerFailure_ContinuesOthers は1サイトの失敗が他サイトの
// チェックを妨げないことを検証する。
func TestRunOnce_CheckerFailure_ContinuesOthers(t *testing.T) {
	repo := &schedulerRepo{
		dueFn: func(ctx context.Context) ([]*model.Website, error) {
			return dueWebsites(3), nil
		},
	}
	checker := &mockChecker{
		checkFn: func(ctx context.Context, w *model.Website) error {
			if w.ID == "a" {
				return errors.New("probe failed")
			}
			return nil
		},
	}
	s := NewScheduler(repo, checker, checkTestLogger(), 3)

	if err := s.RunOnce(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	checker.mu.Lock()
	defer checker.mu.Unlock()
	if len(checker.checked) != 3 {
		t.Errorf("checked count = %d, want 3", len(checker.checked))
	}
}

// TestNewScheduler_DefaultConcurrency は0以下の並列数にデフォルト値が
// 適用されることを検証する。
func TestNewScheduler_DefaultConcurrency(t *testing.T) {
	s := NewScheduler(&schedulerRepo{}, &mockChecker{}, checkTestLogger(), 0)
	if s.maxConcurrency != 10 {
		t.Errorf("maxConcurrency = %d, want 10", s.maxConcurrency)
	}
}
