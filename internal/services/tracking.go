package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"

	"ajei/internal/domain"
	"ajei/internal/i18n"
	"ajei/internal/metrics"
	"ajei/internal/session"
	"ajei/internal/util"
)

var (
	// ErrTrackingQueueFull is returned when the async writer cannot accept more views.
	ErrTrackingQueueFull = errors.New("page view queue full")
	// ErrTrackerClosed is returned after AsyncViewRecorder.Close.
	ErrTrackerClosed = errors.New("page view recorder closed")
)

// Paths under these prefixes, or equal to a prefix without its trailing
// slash, are never recorded.
var trackingExcludedPrefixes = []string{
	"/admin/",
	"/static/",
	"/media/",
	"/dashboard/",
	"/rosetta/",
	"/accounts/",
}

var pageTitles = map[string]string{
	"/":      "الصفحة الرئيسية",
	"/ajei/": "صفحة أجيء",
}

const recordTimeout = 5 * time.Second

// ViewRecorder persists one page view. Callers of Record on the request path
// must log and discard the error; it never reaches the visitor.
type ViewRecorder interface {
	Record(ctx context.Context, view *domain.PageView) error
}

// GormViewLog appends page views to the page_views table.
type GormViewLog struct {
	db *gorm.DB
}

// NewGormViewLog creates the synchronous view log.
func NewGormViewLog(db *gorm.DB) *GormViewLog {
	return &GormViewLog{db: db}
}

// Record inserts view.
func (l *GormViewLog) Record(ctx context.Context, view *domain.PageView) error {
	if err := l.db.WithContext(ctx).Create(view).Error; err != nil {
		return fmt.Errorf("insert page view: %w", err)
	}
	metrics.RecordPageView()
	return nil
}

// AsyncViewRecorder hands views to worker goroutines so inserts stay off the
// response path. Order between views is not preserved.
type AsyncViewRecorder struct {
	next   ViewRecorder
	queue  chan *domain.PageView
	wg     sync.WaitGroup
	mu     sync.RWMutex
	closed bool
	log    *slog.Logger
}

// NewAsyncViewRecorder starts workers draining a queue of the given size.
func NewAsyncViewRecorder(next ViewRecorder, queueSize, workers int) *AsyncViewRecorder {
	if queueSize <= 0 {
		queueSize = 1
	}
	if workers <= 0 {
		workers = 1
	}
	a := &AsyncViewRecorder{
		next:  next,
		queue: make(chan *domain.PageView, queueSize),
		log:   slog.Default().With("component", "tracking"),
	}
	for i := 0; i < workers; i++ {
		a.wg.Add(1)
		go a.work()
	}
	return a
}

// Record enqueues view without blocking.
func (a *AsyncViewRecorder) Record(_ context.Context, view *domain.PageView) error {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		return ErrTrackerClosed
	}
	select {
	case a.queue <- view:
		return nil
	default:
		return ErrTrackingQueueFull
	}
}

func (a *AsyncViewRecorder) work() {
	defer a.wg.Done()
	for view := range a.queue {
		ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
		if err := a.next.Record(ctx, view); err != nil {
			metrics.RecordPageViewError("store")
			a.log.Error("page view not recorded", "path", view.PagePath, "error", err)
		}
		cancel()
	}
}

// Close stops accepting views and waits for queued ones to be written.
func (a *AsyncViewRecorder) Close(ctx context.Context) error {
	a.mu.Lock()
	if !a.closed {
		a.closed = true
		close(a.queue)
	}
	a.mu.Unlock()

	done := make(chan struct{})
	go func() {
		a.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ShouldTrack is the recording predicate: successful GETs outside the
// excluded prefixes.
func ShouldTrack(method string, status int, path string) bool {
	if method != http.MethodGet || status != http.StatusOK {
		return false
	}
	for _, prefix := range trackingExcludedPrefixes {
		if strings.HasPrefix(path, prefix) || path == strings.TrimSuffix(prefix, "/") {
			return false
		}
	}
	return true
}

// PageTitle returns the friendly title for path, or path itself.
func PageTitle(path string) string {
	if title, ok := pageTitles[path]; ok {
		return title
	}
	return path
}

// PageViewTracker records one PageView per qualifying response.
type PageViewTracker struct {
	recorder ViewRecorder
	now      func() time.Time
	log      *slog.Logger
}

// NewPageViewTracker creates the tracking interceptor.
func NewPageViewTracker(recorder ViewRecorder) *PageViewTracker {
	return &PageViewTracker{
		recorder: recorder,
		now:      time.Now,
		log:      slog.Default().With("component", "tracking"),
	}
}

// Middleware wraps page handlers. The wrapped response is passed through
// untouched; tracking runs after the handler returns.
func (t *PageViewTracker) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)
		status := rec.status
		if status == 0 {
			status = http.StatusOK
		}
		if !ShouldTrack(r.Method, status, r.URL.Path) {
			return
		}
		if err := t.track(r); err != nil {
			metrics.RecordPageViewError(trackingErrorReason(err))
			t.log.Warn("error tracking page view", "path", r.URL.Path, "error", err)
		}
	})
}

func (t *PageViewTracker) track(r *http.Request) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic while tracking: %v", p)
		}
	}()
	return t.recorder.Record(context.WithoutCancel(r.Context()), t.buildView(r))
}

func (t *PageViewTracker) buildView(r *http.Request) *domain.PageView {
	lang := i18n.LanguageFromContext(r.Context())
	if lang == "" {
		lang = i18n.Fallback
	}
	path := r.URL.Path
	return &domain.PageView{
		PagePath:   util.Truncate(path, util.MaxMetaLength),
		PageTitle:  util.Truncate(PageTitle(path), 200),
		IPAddress:  util.StringPtr(util.ClientIP(r)),
		UserAgent:  util.UserAgent(r),
		Referrer:   util.Referrer(r),
		SessionKey: session.FromContext(r.Context()).Key(),
		Language:   lang,
		ViewedAt:   t.now().UTC(),
	}
}

func trackingErrorReason(err error) string {
	switch {
	case errors.Is(err, ErrTrackingQueueFull):
		return "queue_full"
	case errors.Is(err, ErrTrackerClosed):
		return "closed"
	default:
		return "store"
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	if r.status == 0 {
		r.status = code
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.ResponseWriter.Write(b)
}

// Unwrap exposes the underlying writer to http.ResponseController.
func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}
