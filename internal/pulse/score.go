package pulse

import (
	"database/sql"
	"fmt"
	"math"
)

// Health score weights. Reach and volume scale linearly up to their cap as the
// metric approaches the platform's saturation threshold.
const (
	engagementWeight = 0.3
	reachWeight      = 30.0
	growthPoints     = 20.0
	volumeWeight     = 20.0

	growingThreshold = 70
	stableThreshold  = 50
)

// Score turns a snapshot into the metric fields of a MetricRecord.
// previous is the latest stored record for the same account and platform, or nil.
// Identity fields (client, account, date) are left for the caller.
func Score(s *Snapshot, previous *MetricRecord) MetricRecord {
	rate := EngagementRate(s.Engagement, s.Reach)

	net := int64(0)
	if previous != nil {
		net = s.FollowerCount - previous.FollowerCount
	}

	score := HealthScore(rate, s.Reach, s.Engagement, net, s.Calibration)

	rec := MetricRecord{
		Platform:          s.Platform,
		Reach:             s.Reach,
		EngagementRate:    rate,
		FollowerCount:     s.FollowerCount,
		FollowersLost:     0,
		NetFollowerChange: net,
		LinkClicks:        s.LinkClicks,
		ProfileVisits:     s.ProfileVisits,
		Saves:             s.TotalSaves,
		Shares:            s.TotalShares,
		Comments:          s.TotalComments,
		Likes:             s.TotalLikes,
		Impressions:       s.Impressions,
		HealthScore:       score,
		HealthStatus:      StatusFor(score),
	}
	if s.TopItem != nil {
		rec.TopPostReach = s.TopItem.Reach
		rec.TopPostURL = sql.NullString{String: s.TopItem.URL, Valid: s.TopItem.URL != ""}
		rec.TopPostType = sql.NullString{String: string(s.TopItem.Type), Valid: s.TopItem.Type != ""}
	}
	rec.InsightText = Insight(rec.Reach, rate, net, s.FollowerCount, previous == nil)
	return rec
}

// EngagementRate returns engagement as a percentage of reach, bounded to
// [0,100]; 0 when reach is 0.
func EngagementRate(engagement, reach int64) float64 {
	if reach <= 0 || engagement <= 0 {
		return 0
	}
	return math.Min(float64(engagement)/float64(reach)*100, 100)
}

// HealthScore computes the bounded 0-100 heuristic.
func HealthScore(rate float64, reach, engagement, netFollowerChange int64, cal Calibration) int {
	total := rate*engagementWeight +
		saturate(reach, cal.ReachSaturation, reachWeight) +
		saturate(engagement, cal.VolumeSaturation, volumeWeight)
	if netFollowerChange > 0 {
		total += growthPoints
	}

	score := int(math.Round(total))
	switch {
	case score < 0:
		return 0
	case score > 100:
		return 100
	}
	return score
}

// StatusFor maps a health score onto its band. Lower bounds are inclusive.
func StatusFor(score int) HealthStatus {
	switch {
	case score >= growingThreshold:
		return HealthGrowing
	case score >= stableThreshold:
		return HealthStable
	default:
		return HealthNeedsAttention
	}
}

func saturate(value, threshold int64, weight float64) float64 {
	if value <= 0 || threshold <= 0 {
		return 0
	}
	return math.Min(float64(value)/float64(threshold), 1) * weight
}

// Insight renders the human-readable summary stored with each record.
func Insight(reach int64, rate float64, net, followers int64, firstSync bool) string {
	head := fmt.Sprintf("Reached %s people with a %.1f%% engagement rate.", groupDigits(reach), rate)

	var tail string
	switch {
	case firstSync:
		tail = fmt.Sprintf("First sync recorded a baseline of %s followers.", groupDigits(followers))
	case net > 0:
		tail = fmt.Sprintf("Gained %s followers since the last sync.", groupDigits(net))
	case net < 0:
		tail = fmt.Sprintf("Lost %s followers since the last sync.", groupDigits(-net))
	default:
		tail = fmt.Sprintf("Follower count held steady at %s.", groupDigits(followers))
	}
	return head + " " + tail
}

// groupDigits formats n with comma thousands separators.
func groupDigits(n int64) string {
	sign := ""
	if n < 0 {
		sign = "-"
		n = -n
	}
	s := fmt.Sprintf("%d", n)
	for i := len(s) - 3; i > 0; i -= 3 {
		s = s[:i] + "," + s[i:]
	}
	return sign + s
}
