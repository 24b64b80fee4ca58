package platform

import (
	"context"
	"net/url"
	"strconv"

	"pulse-go/internal/config"
	"pulse-go/internal/pulse"
)

const (
	imageVideoABaseURL  = "https://graph.facebook.com/v19.0"
	imageVideoAMaxItems = 20
)

var imageVideoACalibration = pulse.Calibration{ReachSaturation: 1000, VolumeSaturation: 100}

// ImageVideoA reads a Graph-style business profile: follower count, daily
// insights and recent media. Engagement is likes plus comments.
type ImageVideoA struct {
	client *client
}

func NewImageVideoA(cfg config.PlatformConfig) *ImageVideoA {
	return &ImageVideoA{client: newClient(pulse.PlatformImageVideoA, imageVideoABaseURL, authQuery, cfg)}
}

func (a *ImageVideoA) Platform() pulse.Platform { return pulse.PlatformImageVideoA }

func (a *ImageVideoA) Fetch(ctx context.Context, account *pulse.Account, credential string) (*pulse.Snapshot, error) {
	if err := checkExternalID(a.Platform(), account, credential); err != nil {
		return nil, err
	}
	id := "/" + url.PathEscape(account.ExternalAccountID)

	profile, err := a.client.get(ctx, credential, id, url.Values{"fields": {"followers_count,media_count"}})
	if err != nil {
		return nil, err
	}

	insights, err := a.client.get(ctx, credential, id+"/insights", url.Values{
		"metric": {"reach,impressions,profile_views,website_clicks"},
		"period": {"day"},
	})
	if err != nil {
		return nil, err
	}

	media, err := a.client.get(ctx, credential, id+"/media", url.Values{
		"fields": {"id,media_type,permalink,like_count,comments_count"},
		"limit":  {strconv.Itoa(imageVideoAMaxItems)},
	})
	if err != nil {
		return nil, err
	}

	snap := &pulse.Snapshot{
		Platform:      pulse.PlatformImageVideoA,
		FollowerCount: profile.Get("followers_count").Int(),
		Reach:         insightValue(insights, "reach"),
		Impressions:   insightValue(insights, "impressions"),
		ProfileVisits: insightValue(insights, "profile_views"),
		LinkClicks:    insightValue(insights, "website_clicks"),
		Calibration:   imageVideoACalibration,
	}

	var top topPicker
	for _, m := range capItems(media.Get("data").Array(), imageVideoAMaxItems) {
		likes := m.Get("like_count").Int()
		comments := m.Get("comments_count").Int()
		snap.TotalLikes += likes
		snap.TotalComments += comments

		kind := pulse.ContentPost
		switch m.Get("media_type").String() {
		case "VIDEO", "REELS":
			kind = pulse.ContentVideo
		}
		top.offer(likes+comments, pulse.TopItem{URL: m.Get("permalink").String(), Type: kind, Reach: likes + comments})
	}

	snap.Engagement = snap.TotalLikes + snap.TotalComments
	snap.TopItem = top.best
	return snap, nil
}

var _ pulse.Adapter = (*ImageVideoA)(nil)
