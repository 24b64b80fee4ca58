package pulse

import (
	"database/sql"
	"time"
)

// Platform identifies the external network an account lives on.
// The value is stored verbatim in the account registry.
type Platform string

const (
	PlatformShortVideo   Platform = "ShortVideo"
	PlatformImageVideoA  Platform = "ImageVideo-A"
	PlatformImageVideoB  Platform = "ImageVideo-B"
	PlatformVideoChannel Platform = "VideoChannel"
)

// Platforms lists every platform the engine knows how to sync.
var Platforms = []Platform{
	PlatformShortVideo,
	PlatformImageVideoA,
	PlatformImageVideoB,
	PlatformVideoChannel,
}

// Known reports whether p is one of the supported platforms.
func (p Platform) Known() bool {
	for _, known := range Platforms {
		if p == known {
			return true
		}
	}
	return false
}

// ConnectionStatus is the registry's view of an account's link health.
type ConnectionStatus string

const (
	StatusConnected    ConnectionStatus = "Connected"
	StatusDisconnected ConnectionStatus = "Disconnected"
	StatusError        ConnectionStatus = "Error"
)

// Account is a tracked external presence owned by a client.
// Platform never changes after creation.
type Account struct {
	ID                string
	ClientID          string
	Platform          Platform
	ExternalAccountID string
	AccessCredential  sql.NullString // sealed form, see CredentialSource
	IsActive          bool
	LastSync          sql.NullTime
	ConnectionStatus  ConnectionStatus
	CreatedAt         time.Time
}

// HealthStatus is the banded form of a health score.
type HealthStatus string

const (
	HealthGrowing        HealthStatus = "Growing"
	HealthStable         HealthStatus = "Stable"
	HealthNeedsAttention HealthStatus = "NeedsAttention"
)

// ContentType classifies the top-performing item of a snapshot.
type ContentType string

const (
	ContentPost  ContentType = "post"
	ContentVideo ContentType = "video"
)

// DateLayout is the storage format of MetricRecord.Date.
const DateLayout = "2006-01-02"

// MetricRecord is one normalized, immutable observation of an account on a calendar day.
type MetricRecord struct {
	ID        int64 // insertion sequence, assigned by the store
	ClientID  string
	AccountID string
	Platform  Platform
	Date      string // YYYY-MM-DD, UTC

	Reach          int64
	EngagementRate float64 // 0-100
	// FollowerCount is the absolute follower/subscriber count at observation time.
	FollowerCount     int64
	FollowersLost     int64 // always 0
	NetFollowerChange int64

	LinkClicks    int64
	ProfileVisits int64
	Saves         int64
	Shares        int64
	Comments      int64
	Likes         int64
	Impressions   int64

	TopPostReach int64
	TopPostURL   sql.NullString
	TopPostType  sql.NullString

	HealthScore  int
	HealthStatus HealthStatus
	InsightText  string

	CreatedAt time.Time
}

// Calibration holds the saturation thresholds one platform scores against.
type Calibration struct {
	// ReachSaturation is the reach at which the reach component maxes out.
	ReachSaturation int64
	// VolumeSaturation is the interaction count at which the volume component maxes out.
	VolumeSaturation int64
}

// TopItem is the best-performing recent content item of a snapshot.
type TopItem struct {
	URL   string
	Type  ContentType
	Reach int64
}

// Snapshot is the transient, platform-neutral result of one adapter fetch.
type Snapshot struct {
	Platform      Platform
	Reach         int64
	Impressions   int64
	FollowerCount int64
	TotalLikes    int64
	TotalComments int64
	TotalShares   int64
	TotalSaves    int64
	TotalViews    int64
	ProfileVisits int64
	LinkClicks    int64

	// Engagement is the interaction total as the platform itself defines it.
	Engagement  int64
	Calibration Calibration
	TopItem     *TopItem
}

// SyncResult is the per-account outcome of one sync attempt.
type SyncResult struct {
	AccountID string        `json:"account_id"`
	Platform  Platform      `json:"platform"`
	Success   bool          `json:"success"`
	Error     string        `json:"error,omitempty"`
	Metrics   *MetricRecord `json:"-"`
}

// SyncFilter narrows the accounts of a SyncMany pass. Empty fields match everything.
type SyncFilter struct {
	ClientID string
	Platform Platform
}

// BatchSyncResult aggregates one SyncMany pass.
// Results holds only successes and Errors only failures.
type BatchSyncResult struct {
	Synced  int
	Failed  int
	Results []SyncResult
	Errors  []SyncResult
}

// Total returns the number of accounts the batch covered.
func (b *BatchSyncResult) Total() int {
	return len(b.Results) + len(b.Errors)
}
