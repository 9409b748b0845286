package domain

import "time"

// AnalyticsOverview is the headline block of the analytics report.
type AnalyticsOverview struct {
	TotalViews    int    `json:"totalViews"`
	ActiveUsers   int    `json:"activeUsers"`
	TotalChannels int    `json:"totalChannels"`
	Bandwidth     string `json:"bandwidth"`
	Uptime        string `json:"uptime"`
}

type ViewershipSeries struct {
	Labels []string `json:"labels"`
	Data   []int    `json:"data"`
}

type TopChannel struct {
	Name   string `json:"name"`
	Views  int    `json:"views"`
	Growth string `json:"growth"`
}

type PeakHour struct {
	Hour    string `json:"hour"`
	Viewers int    `json:"viewers"`
}

type GeographicShare struct {
	Country    string `json:"country"`
	Viewers    int    `json:"viewers,omitempty"`
	Percentage int    `json:"percentage"`
}

type QualityShare struct {
	Quality    string `json:"quality"`
	Percentage int    `json:"percentage"`
}

// AnalyticsReport is a read-only snapshot. Values are demonstration data
// generated without touching registry state.
type AnalyticsReport struct {
	Overview     AnalyticsOverview `json:"overview"`
	Viewership   ViewershipSeries  `json:"viewership"`
	TopChannels  []TopChannel      `json:"topChannels"`
	PeakHours    []PeakHour        `json:"peakHours"`
	Geographic   []GeographicShare `json:"geographic"`
	QualityStats []QualityShare    `json:"qualityStats"`
	UpdatedAt    time.Time         `json:"updatedAt"`
}

// RealtimeStats is the ad-hoc realtime analytics snapshot.
type RealtimeStats struct {
	ActiveStreams  int       `json:"activeStreams"`
	CurrentViewers int       `json:"currentViewers"`
	Bandwidth      string    `json:"bandwidth"`
	ServerLoad     string    `json:"serverLoad"`
	Timestamp      time.Time `json:"timestamp"`
}

// ChannelAnalytics is a per-channel synthetic report.
type ChannelAnalytics struct {
	ChannelID         ChannelID         `json:"channelId"`
	DailyViews        []int             `json:"dailyViews"`
	AudienceRetention string            `json:"audienceRetention"`
	PeakTimes         []string          `json:"peakTimes"`
	Geographic        []GeographicShare `json:"geographic"`
	DeviceUsage       []DeviceShare     `json:"deviceUsage"`
	UpdatedAt         time.Time         `json:"updatedAt"`
}

type DeviceShare struct {
	Device     string `json:"device"`
	Percentage int    `json:"percentage"`
}

// LiveStats is the periodic telemetry snapshot pushed to stats subscribers.
type LiveStats struct {
	ActiveUsers   int       `json:"activeUsers"`
	ActiveStreams int       `json:"activeStreams"`
	Bandwidth     string    `json:"bandwidth"`
	Timestamp     time.Time `json:"timestamp"`
}

// ChannelDelta is the periodic registry-activity snapshot pushed to channel
// feed subscribers.
type ChannelDelta struct {
	NewChannels     int       `json:"newChannels"`
	UpdatedChannels int       `json:"updatedChannels"`
	Timestamp       time.Time `json:"timestamp"`
}
