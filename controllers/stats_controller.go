package controller

import (
	"bytes"
	"encoding/json"
	"log"
	"math"
	"sort"
	"time"

	"github.com/gofiber/fiber/v2"

	"maildraft/models"
	"maildraft/storage"
	"maildraft/utils"
)

type StatsController struct {
	Store  *storage.DraftStore
	Logger *log.Logger
}

func NewStatsController(store *storage.DraftStore, logger *log.Logger) *StatsController {
	return &StatsController{
		Store:  store,
		Logger: logger,
	}
}

// MonthlyStat is one month bucket of the six-month rollup.
type MonthlyStat struct {
	Month  string `json:"month"`
	Sent   int    `json:"sent"`
	Drafts int    `json:"drafts"`
}

type ToneCount struct {
	Tone  string
	Count int
}

// ToneCounts serializes as a JSON object whose keys keep the slice order, so
// clients see tones most-used first.
type ToneCounts []ToneCount

func (tc ToneCounts) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, t := range tc {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(t.Tone)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		count, err := json.Marshal(t.Count)
		if err != nil {
			return nil, err
		}
		buf.Write(count)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

type EmailStats struct {
	TotalSent      int           `json:"total_sent"`
	TotalDrafts    int           `json:"total_drafts"`
	TotalFailed    int           `json:"total_failed"`
	SuccessRate    float64       `json:"success_rate"`
	RecentActivity int           `json:"recent_activity"`
	PopularTones   ToneCounts    `json:"popular_tones"`
	MonthlyStats   []MonthlyStat `json:"monthly_stats"`
}

// GetStats computes the aggregate freshly from the full draft set; no
// incremental state is kept.
func (sc *StatsController) GetStats(c *fiber.Ctx) error {
	drafts, err := sc.Store.ListAll()
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Error calculating stats", err)
	}
	return c.JSON(utils.SuccessResponse(ComputeStats(drafts, time.Now().UTC())))
}

// ComputeStats aggregates counts, rates and time-bucketed rollups over the
// given drafts, evaluated at instant now.
//
// The month buckets step back from the first of the current month in 30-day
// offsets rather than true calendar months. That approximation can skip or
// repeat a month label and is kept deliberately for parity with the
// historical behavior of the stats endpoint.
func ComputeStats(drafts []models.Draft, now time.Time) EmailStats {
	now = now.UTC()

	stats := EmailStats{}
	for _, d := range drafts {
		switch d.Status {
		case models.StatusSent:
			stats.TotalSent++
		case models.StatusDraft:
			stats.TotalDrafts++
		case models.StatusFailed:
			stats.TotalFailed++
		}
	}

	if total := len(drafts); total > 0 {
		rate := float64(stats.TotalSent) / float64(total) * 100
		stats.SuccessRate = math.Round(rate*10) / 10
	}

	weekAgo := now.Add(-7 * 24 * time.Hour)
	for _, d := range drafts {
		if !d.CreatedAt.UTC().Before(weekAgo) {
			stats.RecentActivity++
		}
	}

	stats.PopularTones = popularTones(drafts)
	stats.MonthlyStats = monthlyStats(drafts, now)
	return stats
}

// popularTones counts drafts per tone, most used first; ties keep first-seen
// order.
func popularTones(drafts []models.Draft) ToneCounts {
	counts := make(map[string]int)
	var order []string
	for _, d := range drafts {
		if _, seen := counts[d.Tone]; !seen {
			order = append(order, d.Tone)
		}
		counts[d.Tone]++
	}

	tones := make(ToneCounts, 0, len(order))
	for _, tone := range order {
		tones = append(tones, ToneCount{Tone: tone, Count: counts[tone]})
	}
	sort.SliceStable(tones, func(i, j int) bool {
		return tones[i].Count > tones[j].Count
	})
	return tones
}

// monthlyStats buckets sent and draft counts into the trailing six months,
// oldest first. Bounds are inclusive and carry the anchor's time-of-day.
func monthlyStats(drafts []models.Draft, now time.Time) []MonthlyStat {
	firstOfMonth := time.Date(now.Year(), now.Month(), 1,
		now.Hour(), now.Minute(), now.Second(), now.Nanosecond(), time.UTC)

	stats := make([]MonthlyStat, 0, 6)
	for i := 0; i < 6; i++ {
		start := firstOfMonth.AddDate(0, 0, -30*i)
		anchor := time.Date(start.Year(), start.Month(), 1,
			start.Hour(), start.Minute(), start.Second(), start.Nanosecond(), time.UTC)
		end := anchor.AddDate(0, 0, 32)
		end = time.Date(end.Year(), end.Month(), 1,
			end.Hour(), end.Minute(), end.Second(), end.Nanosecond(), time.UTC).AddDate(0, 0, -1)

		entry := MonthlyStat{Month: start.Format("Jan")}
		for _, d := range drafts {
			created := d.CreatedAt.UTC()
			if created.Before(start) || created.After(end) {
				continue
			}
			switch d.Status {
			case models.StatusSent:
				entry.Sent++
			case models.StatusDraft:
				entry.Drafts++
			}
		}
		stats = append(stats, entry)
	}

	// Oldest to newest.
	for i, j := 0, len(stats)-1; i < j; i, j = i+1, j-1 {
		stats[i], stats[j] = stats[j], stats[i]
	}
	return stats
}
