package platform

import (
	"context"
	"net/url"
	"strconv"

	"pulse-go/internal/config"
	"pulse-go/internal/pulse"
)

const (
	imageVideoBBaseURL  = "https://graph.facebook.com/v19.0"
	imageVideoBMaxItems = 10
)

var imageVideoBCalibration = pulse.Calibration{ReachSaturation: 1000, VolumeSaturation: 100}

// ImageVideoB reads a Graph-style page: follower count, page insights and
// recent posts. Engagement is reactions plus comments plus shares.
type ImageVideoB struct {
	client *client
}

func NewImageVideoB(cfg config.PlatformConfig) *ImageVideoB {
	return &ImageVideoB{client: newClient(pulse.PlatformImageVideoB, imageVideoBBaseURL, authQuery, cfg)}
}

func (a *ImageVideoB) Platform() pulse.Platform { return pulse.PlatformImageVideoB }

func (a *ImageVideoB) Fetch(ctx context.Context, account *pulse.Account, credential string) (*pulse.Snapshot, error) {
	if err := checkExternalID(a.Platform(), account, credential); err != nil {
		return nil, err
	}
	id := "/" + url.PathEscape(account.ExternalAccountID)

	page, err := a.client.get(ctx, credential, id, url.Values{"fields": {"followers_count,fan_count"}})
	if err != nil {
		return nil, err
	}

	insights, err := a.client.get(ctx, credential, id+"/insights", url.Values{
		"metric": {"page_impressions_unique,page_impressions,page_views_total,page_total_actions"},
		"period": {"day"},
	})
	if err != nil {
		return nil, err
	}

	posts, err := a.client.get(ctx, credential, id+"/posts", url.Values{
		"fields": {"id,permalink_url,reactions.summary(true),comments.summary(true),shares"},
		"limit":  {strconv.Itoa(imageVideoBMaxItems)},
	})
	if err != nil {
		return nil, err
	}

	followers := page.Get("followers_count")
	if !followers.Exists() {
		followers = page.Get("fan_count")
	}

	snap := &pulse.Snapshot{
		Platform:      pulse.PlatformImageVideoB,
		FollowerCount: followers.Int(),
		Reach:         insightValue(insights, "page_impressions_unique"),
		Impressions:   insightValue(insights, "page_impressions"),
		ProfileVisits: insightValue(insights, "page_views_total"),
		LinkClicks:    insightValue(insights, "page_total_actions"),
		Calibration:   imageVideoBCalibration,
	}

	var top topPicker
	for _, p := range capItems(posts.Get("data").Array(), imageVideoBMaxItems) {
		reactions := p.Get("reactions.summary.total_count").Int()
		comments := p.Get("comments.summary.total_count").Int()
		shares := p.Get("shares.count").Int()
		snap.TotalLikes += reactions
		snap.TotalComments += comments
		snap.TotalShares += shares

		signal := reactions + comments + shares
		top.offer(signal, pulse.TopItem{URL: p.Get("permalink_url").String(), Type: pulse.ContentPost, Reach: signal})
	}

	snap.Engagement = snap.TotalLikes + snap.TotalComments + snap.TotalShares
	snap.TopItem = top.best
	return snap, nil
}

var _ pulse.Adapter = (*ImageVideoB)(nil)
