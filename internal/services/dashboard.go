package services

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"gorm.io/gorm"

	"ajei/internal/domain"
	apperrors "ajei/pkg/errors"
)

const (
	recentSubmissionsLimit = 10
	topPagesLimit          = 10
)

// StatusCount is one row of the by-status breakdown.
type StatusCount struct {
	Status domain.Status `gorm:"column:status"`
	Total  int64         `gorm:"column:total"`
}

// InvestmentTypeCount is one row of the by-investment-type breakdown.
type InvestmentTypeCount struct {
	InvestmentType domain.InvestmentType `gorm:"column:investment_type"`
	Total          int64                 `gorm:"column:total"`
}

// PageCount is one row of the top pages list.
type PageCount struct {
	PagePath string `gorm:"column:page_path"`
	Total    int64  `gorm:"column:total"`
}

// LanguageCount is one row of the by-language breakdown.
type LanguageCount struct {
	Language string `gorm:"column:language"`
	Total    int64  `gorm:"column:total"`
}

// DailyCount is the number of views on one calendar date.
type DailyCount struct {
	Date  time.Time
	Total int64
}

// HourlyCount is the number of views in one calendar hour.
type HourlyCount struct {
	Hour  time.Time
	Total int64
}

// DashboardStats is the snapshot shown on /dashboard/.
type DashboardStats struct {
	TotalSubmissions  int64
	NewSubmissions    int64
	SubmissionsToday  int64
	SubmissionsWeek   int64
	SubmissionsMonth  int64
	RecentSubmissions []domain.Submission
	ByStatus          []StatusCount
	ByInvestmentType  []InvestmentTypeCount

	TotalViews          int64
	ViewsToday          int64
	ViewsWeek           int64
	ViewsMonth          int64
	UniqueVisitorsToday int64
	UniqueVisitorsWeek  int64
	TopPages            []PageCount
	DailyViews          []DailyCount
	HourlyViews         []HourlyCount
	ByLanguage          []LanguageCount
}

// DashboardService computes dashboard statistics.
type DashboardService struct {
	db  *gorm.DB
	loc *time.Location
	now func() time.Time
	log *slog.Logger
}

// NewDashboardService creates the aggregator. Calendar days and hours are
// taken in loc.
func NewDashboardService(db *gorm.DB, loc *time.Location) *DashboardService {
	if loc == nil {
		loc = time.UTC
	}
	return &DashboardService{
		db:  db,
		loc: loc,
		now: time.Now,
		log: slog.Default().With("component", "dashboard"),
	}
}

// window holds the time boundaries of one Stats call, all in UTC.
type window struct {
	todayStart time.Time
	todayEnd   time.Time
	week       time.Time
	month      time.Time
	day        time.Time
}

func (s *DashboardService) window() window {
	now := s.now().In(s.loc)
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.loc)
	return window{
		todayStart: midnight.UTC(),
		todayEnd:   midnight.AddDate(0, 0, 1).UTC(),
		week:       now.Add(-7 * 24 * time.Hour).UTC(),
		month:      now.Add(-30 * 24 * time.Hour).UTC(),
		day:        now.Add(-24 * time.Hour).UTC(),
	}
}

// Stats reads the current statistics. All queries see the same "now".
func (s *DashboardService) Stats(ctx context.Context) (*DashboardStats, error) {
	w := s.window()
	stats := &DashboardStats{}

	if err := s.submissionStats(ctx, w, stats); err != nil {
		s.log.Error("submission stats failed", "error", err)
		return nil, apperrors.Wrap(apperrors.ErrCodeInternalError, "failed to compute submission statistics", err)
	}
	if err := s.viewStats(ctx, w, stats); err != nil {
		s.log.Error("view stats failed", "error", err)
		return nil, apperrors.Wrap(apperrors.ErrCodeInternalError, "failed to compute view statistics", err)
	}
	return stats, nil
}

func (s *DashboardService) submissions(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).Model(&domain.Submission{})
}

func (s *DashboardService) views(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).Model(&domain.PageView{})
}

func (s *DashboardService) submissionStats(ctx context.Context, w window, stats *DashboardStats) error {
	counts := []struct {
		dest  *int64
		query *gorm.DB
	}{
		{&stats.TotalSubmissions, s.submissions(ctx)},
		{&stats.NewSubmissions, s.submissions(ctx).Where("status = ?", domain.StatusNew)},
		{&stats.SubmissionsToday, s.submissions(ctx).Where("created_at >= ? AND created_at < ?", w.todayStart, w.todayEnd)},
		{&stats.SubmissionsWeek, s.submissions(ctx).Where("created_at >= ?", w.week)},
		{&stats.SubmissionsMonth, s.submissions(ctx).Where("created_at >= ?", w.month)},
	}
	for _, c := range counts {
		if err := c.query.Count(c.dest).Error; err != nil {
			return err
		}
	}

	stats.RecentSubmissions = []domain.Submission{}
	err := s.db.WithContext(ctx).
		Order("created_at DESC").Order("id DESC").
		Limit(recentSubmissionsLimit).
		Find(&stats.RecentSubmissions).Error
	if err != nil {
		return err
	}

	stats.ByStatus = []StatusCount{}
	err = s.submissions(ctx).
		Select("status, COUNT(*) AS total").
		Group("status").
		Order("total DESC, status ASC").
		Scan(&stats.ByStatus).Error
	if err != nil {
		return err
	}

	stats.ByInvestmentType = []InvestmentTypeCount{}
	return s.submissions(ctx).
		Select("investment_type, COUNT(*) AS total").
		Where("investment_type IS NOT NULL AND investment_type <> ''").
		Group("investment_type").
		Order("total DESC, investment_type ASC").
		Scan(&stats.ByInvestmentType).Error
}

func (s *DashboardService) viewStats(ctx context.Context, w window, stats *DashboardStats) error {
	counts := []struct {
		dest  *int64
		query *gorm.DB
	}{
		{&stats.TotalViews, s.views(ctx)},
		{&stats.ViewsToday, s.views(ctx).Where("viewed_at >= ? AND viewed_at < ?", w.todayStart, w.todayEnd)},
		{&stats.ViewsWeek, s.views(ctx).Where("viewed_at >= ?", w.week)},
		{&stats.ViewsMonth, s.views(ctx).Where("viewed_at >= ?", w.month)},
		{&stats.UniqueVisitorsToday, s.views(ctx).Where("viewed_at >= ? AND viewed_at < ?", w.todayStart, w.todayEnd).Distinct("ip_address")},
		{&stats.UniqueVisitorsWeek, s.views(ctx).Where("viewed_at >= ?", w.week).Distinct("ip_address")},
	}
	for _, c := range counts {
		if err := c.query.Count(c.dest).Error; err != nil {
			return err
		}
	}

	stats.TopPages = []PageCount{}
	err := s.views(ctx).
		Select("page_path, COUNT(*) AS total").
		Group("page_path").
		Order("total DESC, page_path ASC").
		Limit(topPagesLimit).
		Scan(&stats.TopPages).Error
	if err != nil {
		return err
	}

	stats.ByLanguage = []LanguageCount{}
	err = s.views(ctx).
		Select("language, COUNT(*) AS total").
		Where("language <> ''").
		Group("language").
		Order("total DESC, language ASC").
		Scan(&stats.ByLanguage).Error
	if err != nil {
		return err
	}

	// Calendar buckets depend on the configured zone, so rows are streamed and
	// folded here rather than grouped with dialect-specific date functions.
	buckets := newViewBuckets(s.loc, w.day)
	rows, err := s.views(ctx).Select("viewed_at").Where("viewed_at >= ?", w.week).Rows()
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var viewedAt time.Time
		if err := rows.Scan(&viewedAt); err != nil {
			return err
		}
		buckets.add(viewedAt)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	stats.DailyViews = buckets.daily()
	stats.HourlyViews = buckets.hourly()
	return nil
}

// viewBuckets counts views per local day and per local hour. Memory is
// bounded by the number of buckets, not by the number of views.
type viewBuckets struct {
	loc       *time.Location
	hourSince time.Time
	days      map[int64]int64
	hours     map[int64]int64
}

func newViewBuckets(loc *time.Location, hourSince time.Time) *viewBuckets {
	return &viewBuckets{
		loc:       loc,
		hourSince: hourSince,
		days:      map[int64]int64{},
		hours:     map[int64]int64{},
	}
}

func (b *viewBuckets) add(t time.Time) {
	lt := t.In(b.loc)
	b.days[time.Date(lt.Year(), lt.Month(), lt.Day(), 0, 0, 0, 0, b.loc).Unix()]++
	if !t.Before(b.hourSince) {
		b.hours[time.Date(lt.Year(), lt.Month(), lt.Day(), lt.Hour(), 0, 0, 0, b.loc).Unix()]++
	}
}

func (b *viewBuckets) daily() []DailyCount {
	out := []DailyCount{}
	for _, key := range sortedKeys(b.days) {
		out = append(out, DailyCount{Date: time.Unix(key, 0).In(b.loc), Total: b.days[key]})
	}
	return out
}

func (b *viewBuckets) hourly() []HourlyCount {
	out := []HourlyCount{}
	for _, key := range sortedKeys(b.hours) {
		out = append(out, HourlyCount{Hour: time.Unix(key, 0).In(b.loc), Total: b.hours[key]})
	}
	return out
}

func sortedKeys(m map[int64]int64) []int64 {
	keys := make([]int64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
