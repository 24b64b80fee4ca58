package platform

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"pulse-go/internal/config"
	"pulse-go/internal/pulse"
)

const (
	videoChannelBaseURL  = "https://www.googleapis.com/youtube/v3"
	videoChannelWatchURL = "https://www.youtube.com/watch?v="
	videoChannelMaxItems = 10
)

var videoChannelCalibration = pulse.Calibration{ReachSaturation: 10000, VolumeSaturation: 500}

// VideoChannel reads channel statistics and the latest uploads. Reach and
// impressions are both the total views of those uploads.
type VideoChannel struct {
	client *client
}

func NewVideoChannel(cfg config.PlatformConfig) *VideoChannel {
	return &VideoChannel{client: newClient(pulse.PlatformVideoChannel, videoChannelBaseURL, authBearer, cfg)}
}

func (a *VideoChannel) Platform() pulse.Platform { return pulse.PlatformVideoChannel }

func (a *VideoChannel) Fetch(ctx context.Context, account *pulse.Account, credential string) (*pulse.Snapshot, error) {
	if err := checkExternalID(a.Platform(), account, credential); err != nil {
		return nil, err
	}

	channels, err := a.client.get(ctx, credential, "/channels", url.Values{
		"part": {"statistics"},
		"id":   {account.ExternalAccountID},
	})
	if err != nil {
		return nil, err
	}
	channel := channels.Get("items.0")
	if !channel.Exists() {
		return nil, pulse.UpstreamError(a.Platform(), "channel "+account.ExternalAccountID+" not found")
	}

	snap := &pulse.Snapshot{
		Platform:      pulse.PlatformVideoChannel,
		FollowerCount: channel.Get("statistics.subscriberCount").Int(),
		Calibration:   videoChannelCalibration,
	}

	search, err := a.client.get(ctx, credential, "/search", url.Values{
		"part":       {"id"},
		"channelId":  {account.ExternalAccountID},
		"order":      {"date"},
		"type":       {"video"},
		"maxResults": {strconv.Itoa(videoChannelMaxItems)},
	})
	if err != nil {
		return nil, err
	}

	var ids []string
	for _, item := range capItems(search.Get("items").Array(), videoChannelMaxItems) {
		if id := item.Get("id.videoId").String(); id != "" {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return snap, nil
	}

	videos, err := a.client.get(ctx, credential, "/videos", url.Values{
		"part": {"statistics"},
		"id":   {strings.Join(ids, ",")},
	})
	if err != nil {
		return nil, err
	}

	var top topPicker
	for _, v := range capItems(videos.Get("items").Array(), videoChannelMaxItems) {
		views := v.Get("statistics.viewCount").Int()
		snap.TotalViews += views
		snap.TotalLikes += v.Get("statistics.likeCount").Int()
		snap.TotalComments += v.Get("statistics.commentCount").Int()
		top.offer(views, pulse.TopItem{URL: videoChannelWatchURL + v.Get("id").String(), Type: pulse.ContentVideo, Reach: views})
	}

	snap.Reach = snap.TotalViews
	snap.Impressions = snap.TotalViews
	snap.Engagement = snap.TotalLikes + snap.TotalComments
	snap.TopItem = top.best
	return snap, nil
}

var _ pulse.Adapter = (*VideoChannel)(nil)
