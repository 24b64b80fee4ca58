package platform

import (
	"context"
	"net/url"

	"pulse-go/internal/config"
	"pulse-go/internal/pulse"
)

const (
	shortVideoBaseURL  = "https://open.tiktokapis.com"
	shortVideoMaxItems = 20
)

var shortVideoCalibration = pulse.Calibration{ReachSaturation: 10000, VolumeSaturation: 500}

// ShortVideo reads profile stats and the most recent videos of a short-video account.
// Reach and impressions are both the total views of the recent videos.
type ShortVideo struct {
	client *client
}

func NewShortVideo(cfg config.PlatformConfig) *ShortVideo {
	return &ShortVideo{client: newClient(pulse.PlatformShortVideo, shortVideoBaseURL, authBearer, cfg)}
}

func (a *ShortVideo) Platform() pulse.Platform { return pulse.PlatformShortVideo }

func (a *ShortVideo) Fetch(ctx context.Context, account *pulse.Account, credential string) (*pulse.Snapshot, error) {
	if err := checkAccount(a.Platform(), account, credential); err != nil {
		return nil, err
	}

	profile, err := a.client.get(ctx, credential, "/v2/user/info/", url.Values{
		"fields": {"open_id,follower_count,likes_count,video_count"},
	})
	if err != nil {
		return nil, err
	}

	videos, err := a.client.post(ctx, credential, "/v2/video/list/", url.Values{
		"fields": {"id,share_url,view_count,like_count,comment_count,share_count"},
	}, map[string]int{"max_count": shortVideoMaxItems})
	if err != nil {
		return nil, err
	}

	snap := &pulse.Snapshot{
		Platform:      pulse.PlatformShortVideo,
		FollowerCount: profile.Get("data.user.follower_count").Int(),
		Calibration:   shortVideoCalibration,
	}

	var top topPicker
	for _, v := range capItems(videos.Get("data.videos").Array(), shortVideoMaxItems) {
		views := v.Get("view_count").Int()
		snap.TotalViews += views
		snap.TotalLikes += v.Get("like_count").Int()
		snap.TotalComments += v.Get("comment_count").Int()
		snap.TotalShares += v.Get("share_count").Int()
		top.offer(views, pulse.TopItem{URL: v.Get("share_url").String(), Type: pulse.ContentVideo, Reach: views})
	}

	snap.Reach = snap.TotalViews
	snap.Impressions = snap.TotalViews
	snap.Engagement = snap.TotalLikes + snap.TotalComments + snap.TotalShares
	snap.TopItem = top.best
	return snap, nil
}

var _ pulse.Adapter = (*ShortVideo)(nil)
