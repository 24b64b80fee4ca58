package httpapi

import (
	"time"

	"pulse-go/internal/pulse"
)

type syncManyRequest struct {
	ClientID string `json:"client_id"`
	Platform string `json:"platform"`
}

type metricRecordResponse struct {
	ID                int64   `json:"id"`
	ClientID          string  `json:"client_id"`
	AccountID         string  `json:"account_id"`
	Platform          string  `json:"platform"`
	Date              string  `json:"metric_date"`
	Reach             int64   `json:"reach"`
	EngagementRate    float64 `json:"engagement_rate"`
	FollowerCount     int64   `json:"follower_count"`
	FollowersLost     int64   `json:"followers_lost"`
	NetFollowerChange int64   `json:"net_follower_change"`
	LinkClicks        int64   `json:"link_clicks"`
	ProfileVisits     int64   `json:"profile_visits"`
	Saves             int64   `json:"saves"`
	Shares            int64   `json:"shares"`
	Comments          int64   `json:"comments"`
	Likes             int64   `json:"likes"`
	Impressions       int64   `json:"impressions"`
	TopPostURL        *string `json:"top_post_url"`
	TopPostType       *string `json:"top_post_type"`
	TopPostReach      int64   `json:"top_post_reach"`
	HealthScore       int     `json:"health_score"`
	HealthStatus      string  `json:"health_status"`
	InsightText       string  `json:"insight_text"`
	CreatedAt         string  `json:"created_at"`
}

type syncOneResponse struct {
	Success bool                  `json:"success"`
	Metrics *metricRecordResponse `json:"metrics"`
}

type syncResultResponse struct {
	AccountID string                `json:"account_id"`
	Platform  string                `json:"platform"`
	Success   bool                  `json:"success"`
	Error     string                `json:"error,omitempty"`
	Metrics   *metricRecordResponse `json:"metrics,omitempty"`
}

type syncManyResponse struct {
	Success bool                 `json:"success"`
	Synced  int                  `json:"synced"`
	Failed  int                  `json:"failed"`
	Results []syncResultResponse `json:"results"`
	Errors  []syncResultResponse `json:"errors"`
}

type listMetricsResponse struct {
	Success bool                   `json:"success"`
	Metrics []metricRecordResponse `json:"metrics"`
}

func toMetricResponse(r *pulse.MetricRecord) *metricRecordResponse {
	if r == nil {
		return nil
	}
	out := &metricRecordResponse{
		ID:                r.ID,
		ClientID:          r.ClientID,
		AccountID:         r.AccountID,
		Platform:          string(r.Platform),
		Date:              r.Date,
		Reach:             r.Reach,
		EngagementRate:    r.EngagementRate,
		FollowerCount:     r.FollowerCount,
		FollowersLost:     r.FollowersLost,
		NetFollowerChange: r.NetFollowerChange,
		LinkClicks:        r.LinkClicks,
		ProfileVisits:     r.ProfileVisits,
		Saves:             r.Saves,
		Shares:            r.Shares,
		Comments:          r.Comments,
		Likes:             r.Likes,
		Impressions:       r.Impressions,
		TopPostReach:      r.TopPostReach,
		HealthScore:       r.HealthScore,
		HealthStatus:      string(r.HealthStatus),
		InsightText:       r.InsightText,
		CreatedAt:         r.CreatedAt.UTC().Format(time.RFC3339),
	}
	if r.TopPostURL.Valid {
		out.TopPostURL = &r.TopPostURL.String
	}
	if r.TopPostType.Valid {
		out.TopPostType = &r.TopPostType.String
	}
	return out
}

func toSyncResults(in []pulse.SyncResult) []syncResultResponse {
	out := make([]syncResultResponse, 0, len(in))
	for _, r := range in {
		out = append(out, syncResultResponse{
			AccountID: r.AccountID,
			Platform:  string(r.Platform),
			Success:   r.Success,
			Error:     r.Error,
			Metrics:   toMetricResponse(r.Metrics),
		})
	}
	return out
}
