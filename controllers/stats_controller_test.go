package controller

import (
	"encoding/json"
	"testing"
	"time"

	"maildraft/models"
)

func draftAt(created time.Time, status, tone string) models.Draft {
	return models.Draft{
		Prompt:    "p",
		Recipient: "bob@example.com",
		Status:    status,
		Tone:      tone,
		CreatedAt: created,
	}
}

func TestComputeStats_EmptySet(t *testing.T) {
	now := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)

	stats := ComputeStats(nil, now)

	if stats.SuccessRate != 0 {
		t.Errorf("SuccessRate: got %v, want 0", stats.SuccessRate)
	}
	if stats.TotalSent != 0 || stats.TotalDrafts != 0 || stats.TotalFailed != 0 {
		t.Errorf("totals: got %d/%d/%d, want 0/0/0",
			stats.TotalSent, stats.TotalDrafts, stats.TotalFailed)
	}
	if stats.RecentActivity != 0 {
		t.Errorf("RecentActivity: got %d, want 0", stats.RecentActivity)
	}
	if len(stats.MonthlyStats) != 6 {
		t.Errorf("MonthlyStats: got %d entries, want 6", len(stats.MonthlyStats))
	}
	if len(stats.PopularTones) != 0 {
		t.Errorf("PopularTones: got %d entries, want 0", len(stats.PopularTones))
	}
}

func TestComputeStats_CountsAndRate(t *testing.T) {
	now := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)
	drafts := []models.Draft{
		draftAt(now.Add(-time.Hour), models.StatusSent, models.ToneFormal),
		draftAt(now.Add(-2*time.Hour), models.StatusDraft, models.ToneFriendly),
		draftAt(now.Add(-3*time.Hour), models.StatusFailed, models.ToneFriendly),
	}

	stats := ComputeStats(drafts, now)

	if stats.TotalSent != 1 || stats.TotalDrafts != 1 || stats.TotalFailed != 1 {
		t.Errorf("totals: got %d/%d/%d, want 1/1/1",
			stats.TotalSent, stats.TotalDrafts, stats.TotalFailed)
	}
	// 1/3 * 100 rounded to one decimal
	if stats.SuccessRate != 33.3 {
		t.Errorf("SuccessRate: got %v, want 33.3", stats.SuccessRate)
	}
}

func TestComputeStats_RecentActivityInclusiveWindow(t *testing.T) {
	now := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)
	weekAgo := now.Add(-7 * 24 * time.Hour)

	drafts := []models.Draft{
		draftAt(now.Add(-time.Hour), models.StatusDraft, models.ToneFriendly),
		draftAt(weekAgo, models.StatusDraft, models.ToneFriendly),                  // boundary, included
		draftAt(weekAgo.Add(-time.Second), models.StatusDraft, models.ToneFriendly), // just outside
	}

	stats := ComputeStats(drafts, now)

	if stats.RecentActivity != 2 {
		t.Errorf("RecentActivity: got %d, want 2", stats.RecentActivity)
	}
}

func TestComputeStats_PopularTonesOrdering(t *testing.T) {
	now := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)
	drafts := []models.Draft{
		draftAt(now, models.StatusDraft, models.ToneFormal),
		draftAt(now, models.StatusDraft, models.ToneFriendly),
		draftAt(now, models.StatusDraft, models.ToneCasual),
		draftAt(now, models.StatusDraft, models.ToneFormal),
		draftAt(now, models.StatusDraft, models.ToneFriendly),
	}

	stats := ComputeStats(drafts, now)

	want := ToneCounts{
		{Tone: models.ToneFormal, Count: 2},
		{Tone: models.ToneFriendly, Count: 2},
		{Tone: models.ToneCasual, Count: 1},
	}
	if len(stats.PopularTones) != len(want) {
		t.Fatalf("PopularTones: got %d entries, want %d", len(stats.PopularTones), len(want))
	}
	for i := range want {
		if stats.PopularTones[i] != want[i] {
			t.Errorf("PopularTones[%d]: got %+v, want %+v", i, stats.PopularTones[i], want[i])
		}
	}

	// Serialized object keeps the descending-count key order.
	raw, err := json.Marshal(stats.PopularTones)
	if err != nil {
		t.Fatalf("marshaling tones: %v", err)
	}
	if got := string(raw); got != `{"formal":2,"friendly":2,"casual":1}` {
		t.Errorf("marshaled tones: got %s", got)
	}
}

func TestComputeStats_MonthlyBuckets(t *testing.T) {
	now := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)
	drafts := []models.Draft{
		draftAt(time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC), models.StatusSent, models.ToneFriendly),
		draftAt(time.Date(2025, 3, 12, 9, 0, 0, 0, time.UTC), models.StatusDraft, models.ToneFriendly),
		draftAt(time.Date(2024, 12, 15, 9, 0, 0, 0, time.UTC), models.StatusSent, models.ToneFriendly),
	}

	stats := ComputeStats(drafts, now)

	if len(stats.MonthlyStats) != 6 {
		t.Fatalf("MonthlyStats: got %d entries, want 6", len(stats.MonthlyStats))
	}

	// 30-day offsets from Mar 1 land on Jan 30, Dec 31, Dec 1, Nov 1 and
	// Oct 2, so the label sequence has a doubled Dec and no Feb.
	wantLabels := []string{"Oct", "Nov", "Dec", "Dec", "Jan", "Mar"}
	for i, want := range wantLabels {
		if stats.MonthlyStats[i].Month != want {
			t.Errorf("MonthlyStats[%d].Month: got %q, want %q", i, stats.MonthlyStats[i].Month, want)
		}
	}

	for i, entry := range stats.MonthlyStats {
		if entry.Sent < 0 || entry.Drafts < 0 {
			t.Errorf("MonthlyStats[%d]: negative counts %+v", i, entry)
		}
	}

	last := stats.MonthlyStats[5]
	if last.Sent != 1 || last.Drafts != 1 {
		t.Errorf("current month: got sent=%d drafts=%d, want 1/1", last.Sent, last.Drafts)
	}

	// Dec 15 falls in the full-December bucket, not the one-day Dec 31 one.
	if got := stats.MonthlyStats[2]; got.Sent != 1 {
		t.Errorf("first Dec bucket: got sent=%d, want 1", got.Sent)
	}
	if got := stats.MonthlyStats[3]; got.Sent != 0 {
		t.Errorf("second Dec bucket: got sent=%d, want 0", got.Sent)
	}
}
