package platform

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"pulse-go/internal/pulse"
)

func TestVideoChannel_Fetch(t *testing.T) {
	var videoIDs string
	u := newUpstream(t, map[string]http.HandlerFunc{
		"GET /channels": jsonBody(`{"items":[{"id":"ext-1","statistics":{"subscriberCount":"8800","viewCount":"1000000"}}]}`),
		"GET /search": jsonBody(`{"items":[
			{"id":{"kind":"youtube#video","videoId":"a1"}},
			{"id":{"kind":"youtube#video","videoId":"b2"}}
		]}`),
		"GET /videos": func(w http.ResponseWriter, r *http.Request) {
			videoIDs = r.URL.Query().Get("id")
			jsonBody(`{"items":[
				{"id":"a1","statistics":{"viewCount":"1200","likeCount":"80","commentCount":"9"}},
				{"id":"b2","statistics":{"viewCount":"5000","likeCount":"300"}}
			]}`)(w, r)
		},
	})

	snap, err := NewVideoChannel(u.config()).Fetch(context.Background(), testAccount(pulse.PlatformVideoChannel), "tok")
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}

	if videoIDs != "a1,b2" {
		t.Errorf("video ids = %q, want %q", videoIDs, "a1,b2")
	}
	if snap.FollowerCount != 8800 {
		t.Errorf("FollowerCount = %d, want 8800", snap.FollowerCount)
	}
	if snap.TotalViews != 6200 || snap.Reach != 6200 || snap.Impressions != 6200 {
		t.Errorf("views/reach/impressions = %d/%d/%d, want 6200 each", snap.TotalViews, snap.Reach, snap.Impressions)
	}
	if snap.Engagement != 389 {
		t.Errorf("Engagement = %d, want 389", snap.Engagement)
	}
	if snap.TopItem == nil || snap.TopItem.URL != videoChannelWatchURL+"b2" || snap.TopItem.Reach != 5000 {
		t.Errorf("TopItem = %+v, want b2", snap.TopItem)
	}
}

func TestVideoChannel_NoUploadsSkipsVideoLookup(t *testing.T) {
	u := newUpstream(t, map[string]http.HandlerFunc{
		"GET /channels": jsonBody(`{"items":[{"statistics":{"subscriberCount":"12"}}]}`),
		"GET /search":   jsonBody(`{"items":[]}`),
	})

	snap, err := NewVideoChannel(u.config()).Fetch(context.Background(), testAccount(pulse.PlatformVideoChannel), "tok")
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if snap.TopItem != nil || snap.Reach != 0 {
		t.Errorf("snapshot = %+v, want zero aggregates", snap)
	}
	if snap.FollowerCount != 12 {
		t.Errorf("FollowerCount = %d, want 12", snap.FollowerCount)
	}
	if got := u.calls.Load(); got != 2 {
		t.Errorf("upstream calls = %d, want 2", got)
	}
}

func TestVideoChannel_UnknownChannel(t *testing.T) {
	u := newUpstream(t, map[string]http.HandlerFunc{
		"GET /channels": jsonBody(`{"kind":"youtube#channelListResponse","items":[]}`),
	})

	_, err := NewVideoChannel(u.config()).Fetch(context.Background(), testAccount(pulse.PlatformVideoChannel), "tok")
	if !errors.Is(err, pulse.ErrUpstream) {
		t.Fatalf("Fetch() error = %v, want upstream error", err)
	}
}

func TestVideoChannel_QuotaExceeded(t *testing.T) {
	u := newUpstream(t, map[string]http.HandlerFunc{
		"GET /channels": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
			w.Write([]byte(`{"error":{"code":403,"message":"The request cannot be completed because you have exceeded your quota.","errors":[{"reason":"quotaExceeded"}]}}`))
		},
	})

	_, err := NewVideoChannel(u.config()).Fetch(context.Background(), testAccount(pulse.PlatformVideoChannel), "tok")
	if !errors.Is(err, pulse.ErrUpstream) {
		t.Fatalf("Fetch() error = %v, want upstream error", err)
	}
	if !pulse.Retryable(err) {
		t.Error("quota errors should be retryable")
	}
}
