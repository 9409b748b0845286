package services

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"streamdash/internal/core/domain"
	"streamdash/pkg/cache"
)

// AnalyticsService serves read-only demonstration reports. None of the data
// comes from the registries; the report shape is what matters to the
// dashboard widgets.
type AnalyticsService interface {
	Report(ctx context.Context) domain.AnalyticsReport
	Realtime() domain.RealtimeStats
	Channel(ctx context.Context, id domain.ChannelID) domain.ChannelAnalytics
	ExportCSV(ctx context.Context) []byte
}

type analyticsService struct {
	reports *cache.Cache
}

const reportCacheKey = "analytics:report"

// NewAnalyticsService builds the analytics surface. The overview report is
// cached for the configured TTL so dashboard polling does not regenerate it
// on every request.
func NewAnalyticsService(reportTTL time.Duration) AnalyticsService {
	return &analyticsService{
		reports: cache.NewCache(reportTTL),
	}
}

func (s *analyticsService) Report(ctx context.Context) domain.AnalyticsReport {
	if cached, ok := s.reports.Get(reportCacheKey); ok {
		return cached.(domain.AnalyticsReport)
	}

	report := buildReport()
	s.reports.Set(reportCacheKey, report)
	return report
}

func buildReport() domain.AnalyticsReport {
	return domain.AnalyticsReport{
		Overview: domain.AnalyticsOverview{
			TotalViews:    12543,
			ActiveUsers:   156,
			TotalChannels: 24,
			Bandwidth:     "4.2 GB",
			Uptime:        "99.8%",
		},
		Viewership: domain.ViewershipSeries{
			Labels: []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"},
			Data:   []int{1200, 1900, 3000, 5000, 2000, 3000, 4500},
		},
		TopChannels: []domain.TopChannel{
			{Name: "beIN MAX 1", Views: 2450, Growth: "+12%"},
			{Name: "Rakuten Movies", Views: 1980, Growth: "+8%"},
			{Name: "EL BILAD TV", Views: 1560, Growth: "+15%"},
			{Name: "Action Movies", Views: 1320, Growth: "+5%"},
			{Name: "Algerie 6", Views: 980, Growth: "+3%"},
		},
		PeakHours: []domain.PeakHour{
			{Hour: "00:00", Viewers: 100},
			{Hour: "02:00", Viewers: 150},
			{Hour: "04:00", Viewers: 200},
			{Hour: "06:00", Viewers: 300},
			{Hour: "08:00", Viewers: 500},
			{Hour: "10:00", Viewers: 800},
			{Hour: "12:00", Viewers: 1200},
			{Hour: "14:00", Viewers: 1800},
			{Hour: "16:00", Viewers: 2200},
			{Hour: "18:00", Viewers: 2500},
			{Hour: "20:00", Viewers: 2100},
			{Hour: "22:00", Viewers: 1500},
		},
		Geographic: []domain.GeographicShare{
			{Country: "Algeria", Viewers: 4500, Percentage: 36},
			{Country: "Morocco", Viewers: 2800, Percentage: 22},
			{Country: "Tunisia", Viewers: 1900, Percentage: 15},
			{Country: "Egypt", Viewers: 1500, Percentage: 12},
			{Country: "Saudi Arabia", Viewers: 900, Percentage: 7},
			{Country: "Other", Viewers: 943, Percentage: 8},
		},
		QualityStats: []domain.QualityShare{
			{Quality: "4K", Percentage: 15},
			{Quality: "FHD", Percentage: 35},
			{Quality: "HD", Percentage: 40},
			{Quality: "SD", Percentage: 10},
		},
		UpdatedAt: time.Now().UTC(),
	}
}

func (s *analyticsService) Realtime() domain.RealtimeStats {
	return domain.RealtimeStats{
		ActiveStreams:  5 + rand.Intn(20),
		CurrentViewers: 100 + rand.Intn(500),
		Bandwidth:      fmt.Sprintf("%.2f Mbps", rand.Float64()*10),
		ServerLoad:     fmt.Sprintf("%.1f%%", rand.Float64()*100),
		Timestamp:      time.Now().UTC(),
	}
}

func (s *analyticsService) Channel(ctx context.Context, id domain.ChannelID) domain.ChannelAnalytics {
	daily := make([]int, 7)
	for i := range daily {
		daily[i] = rand.Intn(1000)
	}

	return domain.ChannelAnalytics{
		ChannelID:         id,
		DailyViews:        daily,
		AudienceRetention: fmt.Sprintf("%d%%", 20+rand.Intn(60)),
		PeakTimes:         []string{"19:00", "21:00", "23:00"},
		Geographic: []domain.GeographicShare{
			{Country: "Algeria", Percentage: 30 + rand.Intn(50)},
			{Country: "France", Percentage: 10 + rand.Intn(30)},
			{Country: "Canada", Percentage: 5 + rand.Intn(20)},
		},
		DeviceUsage: []domain.DeviceShare{
			{Device: "Mobile", Percentage: 45},
			{Device: "Desktop", Percentage: 35},
			{Device: "TV", Percentage: 20},
		},
		UpdatedAt: time.Now().UTC(),
	}
}

// ExportCSV renders the overview block as a two-column CSV. The row set and
// order are fixed; consumers parse it positionally.
func (s *analyticsService) ExportCSV(ctx context.Context) []byte {
	report := s.Report(ctx)

	var b strings.Builder
	b.WriteString("Metric,Value\n")
	fmt.Fprintf(&b, "Total Views,%d\n", report.Overview.TotalViews)
	fmt.Fprintf(&b, "Active Users,%d\n", report.Overview.ActiveUsers)
	fmt.Fprintf(&b, "Total Channels,%d\n", report.Overview.TotalChannels)
	fmt.Fprintf(&b, "Bandwidth,%s\n", report.Overview.Bandwidth)
	return []byte(b.String())
}
