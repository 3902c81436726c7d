package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ajei/internal/database"
	"ajei/internal/domain"
	apperrors "ajei/pkg/errors"
)

func TestStatsEmptyStore(t *testing.T) {
	svc := NewDashboardService(newTestDB(t), time.UTC)

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)

	assert.Zero(t, stats.TotalSubmissions)
	assert.Zero(t, stats.NewSubmissions)
	assert.Zero(t, stats.SubmissionsToday)
	assert.Zero(t, stats.TotalViews)
	assert.Zero(t, stats.UniqueVisitorsToday)
	assert.Zero(t, stats.UniqueVisitorsWeek)

	assert.NotNil(t, stats.RecentSubmissions)
	assert.Empty(t, stats.RecentSubmissions)
	assert.NotNil(t, stats.ByStatus)
	assert.Empty(t, stats.ByStatus)
	assert.NotNil(t, stats.ByInvestmentType)
	assert.Empty(t, stats.ByInvestmentType)
	assert.NotNil(t, stats.TopPages)
	assert.Empty(t, stats.TopPages)
	assert.NotNil(t, stats.DailyViews)
	assert.Empty(t, stats.DailyViews)
	assert.NotNil(t, stats.HourlyViews)
	assert.Empty(t, stats.HourlyViews)
	assert.NotNil(t, stats.ByLanguage)
	assert.Empty(t, stats.ByLanguage)
}

func TestStatsCountsAndBreakdowns(t *testing.T) {
	db := newTestDB(t)
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	svc := NewDashboardService(db, time.UTC)
	svc.now = fixedClock(now)

	seedSubmission(t, db, domain.Submission{Name: "a", CreatedAt: now.Add(-1 * time.Hour), InvestmentType: investment(domain.InvestmentMedical)})
	seedSubmission(t, db, domain.Submission{Name: "b", CreatedAt: now.Add(-2 * time.Hour), Status: domain.StatusContacted, InvestmentType: investment(domain.InvestmentMedical)})
	seedSubmission(t, db, domain.Submission{Name: "c", CreatedAt: now.AddDate(0, 0, -3), InvestmentType: investment(domain.InvestmentPharmacy)})
	seedSubmission(t, db, domain.Submission{Name: "d", CreatedAt: now.AddDate(0, 0, -20)})
	seedSubmission(t, db, domain.Submission{Name: "e", CreatedAt: now.AddDate(0, 0, -40), Status: domain.StatusClosed})

	seedView(t, db, "/", "10.0.0.1", "ar", time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC))
	seedView(t, db, "/", "10.0.0.1", "ar", time.Date(2026, 3, 10, 11, 0, 0, 0, time.UTC))
	seedView(t, db, "/ajei/", "10.0.0.2", "en", time.Date(2026, 3, 10, 11, 30, 0, 0, time.UTC))
	seedView(t, db, "/", "10.0.0.3", "ar", time.Date(2026, 3, 8, 9, 0, 0, 0, time.UTC))
	seedView(t, db, "/ajei/", "10.0.0.4", "ar", now.AddDate(0, 0, -10))
	seedView(t, db, "/", "", "", now.AddDate(0, 0, -40))

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(5), stats.TotalSubmissions)
	assert.Equal(t, int64(3), stats.NewSubmissions)
	assert.Equal(t, int64(2), stats.SubmissionsToday)
	assert.Equal(t, int64(3), stats.SubmissionsWeek)
	assert.Equal(t, int64(4), stats.SubmissionsMonth)

	require.Len(t, stats.RecentSubmissions, 5)
	assert.Equal(t, "a", stats.RecentSubmissions[0].Name)
	assert.Equal(t, "e", stats.RecentSubmissions[4].Name)

	assert.Equal(t, []StatusCount{
		{Status: domain.StatusNew, Total: 3},
		{Status: domain.StatusClosed, Total: 1},
		{Status: domain.StatusContacted, Total: 1},
	}, stats.ByStatus)
	assert.Equal(t, []InvestmentTypeCount{
		{InvestmentType: domain.InvestmentMedical, Total: 2},
		{InvestmentType: domain.InvestmentPharmacy, Total: 1},
	}, stats.ByInvestmentType)

	assert.Equal(t, int64(6), stats.TotalViews)
	assert.Equal(t, int64(3), stats.ViewsToday)
	assert.Equal(t, int64(4), stats.ViewsWeek)
	assert.Equal(t, int64(5), stats.ViewsMonth)
	assert.Equal(t, int64(2), stats.UniqueVisitorsToday)
	assert.Equal(t, int64(3), stats.UniqueVisitorsWeek)

	assert.Equal(t, []PageCount{{PagePath: "/", Total: 4}, {PagePath: "/ajei/", Total: 2}}, stats.TopPages)
	assert.Equal(t, []LanguageCount{{Language: "ar", Total: 4}, {Language: "en", Total: 1}}, stats.ByLanguage)

	require.Len(t, stats.DailyViews, 2)
	assert.Equal(t, time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC), stats.DailyViews[0].Date)
	assert.Equal(t, int64(1), stats.DailyViews[0].Total)
	assert.Equal(t, time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), stats.DailyViews[1].Date)
	assert.Equal(t, int64(3), stats.DailyViews[1].Total)

	require.Len(t, stats.HourlyViews, 2)
	assert.Equal(t, time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC), stats.HourlyViews[0].Hour)
	assert.Equal(t, int64(1), stats.HourlyViews[0].Total)
	assert.Equal(t, time.Date(2026, 3, 10, 11, 0, 0, 0, time.UTC), stats.HourlyViews[1].Hour)
	assert.Equal(t, int64(2), stats.HourlyViews[1].Total)
}

func TestStatsTotalsMatchBreakdownSums(t *testing.T) {
	db := newTestDB(t)
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	svc := NewDashboardService(db, time.UTC)
	svc.now = fixedClock(now)

	for i, st := range []domain.Status{domain.StatusNew, domain.StatusNew, domain.StatusQualified, domain.StatusConverted} {
		seedSubmission(t, db, domain.Submission{CreatedAt: now.Add(-time.Duration(i) * time.Hour), Status: st})
	}
	for i := 0; i < 4; i++ {
		seedView(t, db, "/", "10.0.0.9", "ar", now.Add(-time.Duration(i)*30*time.Minute))
	}

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)

	var byStatus int64
	for _, c := range stats.ByStatus {
		byStatus += c.Total
	}
	assert.Equal(t, stats.TotalSubmissions, byStatus)

	var daily int64
	for _, d := range stats.DailyViews {
		daily += d.Total
	}
	assert.Equal(t, stats.ViewsWeek, daily)
	assert.Equal(t, int64(1), stats.UniqueVisitorsToday)
}

func TestStatsUsesConfiguredTimeZone(t *testing.T) {
	db := newTestDB(t)
	riyadh := time.FixedZone("AST", 3*60*60)
	// 01:30 on 11 March in Riyadh.
	now := time.Date(2026, 3, 10, 22, 30, 0, 0, time.UTC)
	svc := NewDashboardService(db, riyadh)
	svc.now = fixedClock(now)

	seedView(t, db, "/", "10.0.0.1", "ar", time.Date(2026, 3, 10, 21, 30, 0, 0, time.UTC)) // 00:30 local, today
	seedView(t, db, "/", "10.0.0.2", "ar", time.Date(2026, 3, 10, 20, 0, 0, 0, time.UTC))  // 23:00 local, yesterday

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(1), stats.ViewsToday)
	assert.Equal(t, int64(1), stats.UniqueVisitorsToday)
	require.Len(t, stats.DailyViews, 2)
	assert.True(t, stats.DailyViews[0].Date.Equal(time.Date(2026, 3, 10, 0, 0, 0, 0, riyadh)))
	assert.True(t, stats.DailyViews[1].Date.Equal(time.Date(2026, 3, 11, 0, 0, 0, 0, riyadh)))
}

func TestStatsStoreFailure(t *testing.T) {
	db := newTestDB(t)
	svc := NewDashboardService(db, time.UTC)
	require.NoError(t, database.Close(db))

	_, err := svc.Stats(context.Background())
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeInternalError, apperrors.CodeOf(err))
}

func TestViewBucketsFoldByLocalDayAndHour(t *testing.T) {
	riyadh := time.FixedZone("AST", 3*60*60)
	b := newViewBuckets(riyadh, time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC))

	b.add(time.Date(2026, 3, 10, 10, 45, 0, 0, time.UTC)) // 13:45 local
	b.add(time.Date(2026, 3, 9, 20, 0, 0, 0, time.UTC))   // 23:00 local on the 9th
	b.add(time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC))   // before the hourly window
	b.add(time.Date(2026, 3, 10, 10, 15, 0, 0, time.UTC)) // 13:15 local
	b.add(time.Date(2026, 3, 9, 22, 0, 0, 0, time.UTC))   // 01:00 local on the 10th

	daily := b.daily()
	require.Len(t, daily, 2)
	assert.True(t, daily[0].Date.Equal(time.Date(2026, 3, 9, 0, 0, 0, 0, riyadh)))
	assert.Equal(t, int64(1), daily[0].Total)
	assert.True(t, daily[1].Date.Equal(time.Date(2026, 3, 10, 0, 0, 0, 0, riyadh)))
	assert.Equal(t, int64(4), daily[1].Total)

	hourly := b.hourly()
	require.Len(t, hourly, 1)
	assert.True(t, hourly[0].Hour.Equal(time.Date(2026, 3, 10, 13, 0, 0, 0, riyadh)))
	assert.Equal(t, int64(2), hourly[0].Total)

	empty := newViewBuckets(time.UTC, time.Time{})
	assert.NotNil(t, empty.daily())
	assert.Empty(t, empty.hourly())
}

func TestStatsStreamsManyViews(t *testing.T) {
	db := newTestDB(t)
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	svc := NewDashboardService(db, time.UTC)
	svc.now = fixedClock(now)

	for i := 0; i < 48; i++ {
		seedView(t, db, "/", "10.0.0.1", "ar", now.Add(-time.Duration(i)*30*time.Minute))
	}

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)

	var daily, hourly int64
	for _, d := range stats.DailyViews {
		daily += d.Total
	}
	for i, h := range stats.HourlyViews {
		hourly += h.Total
		if i > 0 {
			assert.True(t, stats.HourlyViews[i-1].Hour.Before(h.Hour))
		}
	}
	assert.Equal(t, int64(48), daily)
	assert.Equal(t, stats.ViewsWeek, daily)
	// 48 half-hour steps back from noon reach exactly 24h ago.
	assert.Equal(t, int64(48), hourly)
}
