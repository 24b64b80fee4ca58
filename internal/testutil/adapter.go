package testutil

import (
	"context"
	"sync/atomic"

	"pulse-go/internal/pulse"
)

// FakeAdapter is an in-memory pulse.Adapter that counts its calls.
type FakeAdapter struct {
	platform pulse.Platform
	calls    atomic.Int32

	// Snapshot is returned (as a copy) when Err and FetchFunc are unset.
	Snapshot *pulse.Snapshot
	Err      error
	// FetchFunc, when set, replaces Snapshot and Err.
	FetchFunc func(ctx context.Context, account *pulse.Account, credential string) (*pulse.Snapshot, error)
}

// NewFakeAdapter returns an adapter for platform that succeeds with snapshot.
func NewFakeAdapter(platform pulse.Platform, snapshot *pulse.Snapshot) *FakeAdapter {
	return &FakeAdapter{platform: platform, Snapshot: snapshot}
}

func (f *FakeAdapter) Platform() pulse.Platform { return f.platform }

func (f *FakeAdapter) Fetch(ctx context.Context, account *pulse.Account, credential string) (*pulse.Snapshot, error) {
	f.calls.Add(1)
	if f.FetchFunc != nil {
		return f.FetchFunc(ctx, account, credential)
	}
	if f.Err != nil {
		return nil, f.Err
	}
	snap := *f.Snapshot
	snap.Platform = f.platform
	return &snap, nil
}

// Calls returns how many times Fetch was invoked.
func (f *FakeAdapter) Calls() int {
	return int(f.calls.Load())
}

// SampleSnapshot is the ImageVideo-A fixture: reach 1000, 20 likes, 10 comments, 520 followers.
func SampleSnapshot(followers int64) *pulse.Snapshot {
	return &pulse.Snapshot{
		Platform:      pulse.PlatformImageVideoA,
		Reach:         1000,
		Impressions:   1800,
		FollowerCount: followers,
		TotalLikes:    20,
		TotalComments: 10,
		Engagement:    30,
		Calibration:   pulse.Calibration{ReachSaturation: 1000, VolumeSaturation: 100},
		TopItem:       &pulse.TopItem{URL: "https://iv.example/p/1", Type: pulse.ContentPost, Reach: 15},
	}
}

var _ pulse.Adapter = (*FakeAdapter)(nil)
