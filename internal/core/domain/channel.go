package domain

import "time"

type ChannelID int64

type ChannelStatus string

const (
	ChannelStatusActive   ChannelStatus = "active"
	ChannelStatusInactive ChannelStatus = "inactive"
)

// Channel is a streaming channel entry managed through the dashboard.
type Channel struct {
	ID          ChannelID     `json:"id"`
	Name        string        `json:"name"`
	URL         string        `json:"url"`
	Type        string        `json:"type"`
	Quality     string        `json:"quality"`
	Country     string        `json:"country"`
	Language    string        `json:"language"`
	Status      ChannelStatus `json:"status"`
	Views       int           `json:"views"`
	Logo        string        `json:"logo"`
	Description string        `json:"description"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

// ChannelPatch carries a partial update. Nil fields are preserved on merge.
type ChannelPatch struct {
	Name        *string        `json:"name"`
	URL         *string        `json:"url"`
	Type        *string        `json:"type"`
	Quality     *string        `json:"quality"`
	Country     *string        `json:"country"`
	Language    *string        `json:"language"`
	Status      *ChannelStatus `json:"status"`
	Views       *int           `json:"views"`
	Logo        *string        `json:"logo"`
	Description *string        `json:"description"`
}

// Apply merges the patch over the channel, leaving nil fields untouched.
func (p ChannelPatch) Apply(c *Channel) {
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.URL != nil {
		c.URL = *p.URL
	}
	if p.Type != nil {
		c.Type = *p.Type
	}
	if p.Quality != nil {
		c.Quality = *p.Quality
	}
	if p.Country != nil {
		c.Country = *p.Country
	}
	if p.Language != nil {
		c.Language = *p.Language
	}
	if p.Status != nil {
		c.Status = *p.Status
	}
	if p.Views != nil {
		c.Views = *p.Views
	}
	if p.Logo != nil {
		c.Logo = *p.Logo
	}
	if p.Description != nil {
		c.Description = *p.Description
	}
}

// ChannelFilter narrows channel listings.
type ChannelFilter struct {
	Type   string
	Status ChannelStatus
	Search string // case-insensitive match against name or description
}

// StreamTestResult is the outcome of a (simulated) channel reachability test.
type StreamTestResult struct {
	ChannelID      ChannelID `json:"channelId"`
	ChannelName    string    `json:"channelName"`
	URL            string    `json:"url"`
	IsWorking      bool      `json:"isWorking"`
	ResponseTimeMs int       `json:"responseTime"`
	Quality        string    `json:"quality"`
	TestedAt       time.Time `json:"testedAt"`
}

// ChannelStats is a synthetic per-channel viewership snapshot.
type ChannelStats struct {
	ChannelID        ChannelID `json:"channelId"`
	ChannelName      string    `json:"channelName"`
	TotalViews       int       `json:"totalViews"`
	DailyViews       int       `json:"dailyViews"`
	PeakHour         string    `json:"peakHour"`
	AverageWatchTime string    `json:"averageWatchTime"`
	LastWeekViews    []int     `json:"lastWeekViews"`
	UpdatedAt        time.Time `json:"updatedAt"`
}
