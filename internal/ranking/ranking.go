// Package ranking orders candidate appointment slots from closest match to
// least relevant. It is a pure transformation: inputs are copied, never
// mutated, and malformed time or date strings degrade to score zero instead
// of failing, because ranking sits in the reply path of a live conversation.
package ranking

import (
	"math"
	"sort"
	"time"

	"salonflow/internal/models"
)

const (
	exactScore = 100.0

	// minuteHalf distance in minutes at which a time score halves
	minuteHalf = 30.0

	// preferBoost lifts an exact match above any blended score
	preferBoost = 1000.0

	timeWeight = 0.6
	dateWeight = 0.4
)

// Criteria describes which proximity signals participate in combined
// ranking. Empty fields are non-discriminating and contribute zero.
type Criteria struct {
	TargetTime     string // 15:04
	TargetDate     string // 2006-01-02
	PreferSameTime bool
	PreferSameDay  bool
}

// RankByTimeProximity orders slots by minute distance from targetTime.
// The result is always a permutation of the input: slots with unparseable
// times keep score zero and sink to the bottom in their original order.
func RankByTimeProximity(slots []models.SlotSuggestion, targetTime string, lang models.Language) []models.SlotSuggestion {
	ranked := copySlots(slots)
	for i := range ranked {
		ranked[i].Score = timeScore(ranked[i].StartTime, targetTime)
	}
	sortAndRank(ranked)
	return ranked
}

// RankByDateProximity orders slots by day distance from targetDate.
// Same-day slots score highest.
func RankByDateProximity(slots []models.SlotSuggestion, targetDate string, lang models.Language) []models.SlotSuggestion {
	ranked := copySlots(slots)
	for i := range ranked {
		ranked[i].Score = dateScore(ranked[i].Date, targetDate)
	}
	sortAndRank(ranked)
	return ranked
}

// RankByCombinedCriteria blends time and date proximity into one score.
// PreferSameTime makes exact time matches dominate regardless of date
// distance; PreferSameDay does the same for same-day slots.
func RankByCombinedCriteria(slots []models.SlotSuggestion, c Criteria) []models.SlotSuggestion {
	ranked := copySlots(slots)
	for i := range ranked {
		var ts, ds float64
		if c.TargetTime != "" {
			ts = timeScore(ranked[i].StartTime, c.TargetTime)
		}
		if c.TargetDate != "" {
			ds = dateScore(ranked[i].Date, c.TargetDate)
		}

		score := timeWeight*ts + dateWeight*ds
		if c.PreferSameTime && ts == exactScore {
			score += preferBoost
		}
		if c.PreferSameDay && ds == exactScore {
			score += preferBoost
		}
		ranked[i].Score = score
	}
	sortAndRank(ranked)
	return ranked
}

// AddVisualIndicators annotates ranked slots for display: the first
// TopRankedStars entries get a star, and slots within three hours of the
// requested time get a localized proximity hint plus a display line.
func AddVisualIndicators(ranked []models.SlotSuggestion, targetTime string, lang models.Language) []models.SlotSuggestion {
	out := copySlots(ranked)
	target, targetOK := parseClock(targetTime)

	for i := range out {
		out[i].ShowStar = i < models.TopRankedStars

		if targetOK {
			if start, ok := parseClock(out[i].StartTime); ok {
				delta := start - target
				if abs(delta) <= int(models.ProximityTextMaxDelta.Minutes()) {
					out[i].ProximityText = proximityPhrase(delta, lang)
					localized := make(map[models.Language]string, len(models.SupportedLanguages))
					for _, l := range models.SupportedLanguages {
						localized[l] = proximityPhrase(delta, l)
					}
					out[i].ProximityTextLocalized = localized
				}
			}
		}

		out[i].DisplayText = displayText(out[i])
	}
	return out
}

func displayText(s models.SlotSuggestion) string {
	text := s.StartTime
	if s.ShowStar {
		text = "⭐ " + text
	}
	if s.ProximityText != "" {
		text += " (" + s.ProximityText + ")"
	}
	return text
}

func timeScore(startTime, targetTime string) float64 {
	start, ok1 := parseClock(startTime)
	target, ok2 := parseClock(targetTime)
	if !ok1 || !ok2 {
		return 0
	}
	dist := float64(abs(start - target))
	if dist == 0 {
		return exactScore
	}
	return exactScore / (1 + dist/minuteHalf)
}

func dateScore(date, targetDate string) float64 {
	d1, err1 := time.Parse("2006-01-02", date)
	d2, err2 := time.Parse("2006-01-02", targetDate)
	if err1 != nil || err2 != nil {
		return 0
	}
	days := math.Abs(d1.Sub(d2).Hours() / 24)
	if days == 0 {
		return exactScore
	}
	return exactScore / (1 + days)
}

// parseClock converts "HH:MM" to minutes since midnight.
func parseClock(s string) (int, bool) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, false
	}
	return t.Hour()*60 + t.Minute(), true
}

// sortAndRank orders by score descending, ties kept in input order, and
// assigns 1-based ranks.
func sortAndRank(slots []models.SlotSuggestion) {
	sort.SliceStable(slots, func(i, j int) bool {
		return slots[i].Score > slots[j].Score
	})
	for i := range slots {
		slots[i].Rank = i + 1
	}
}

func copySlots(slots []models.SlotSuggestion) []models.SlotSuggestion {
	out := make([]models.SlotSuggestion, len(slots))
	copy(out, slots)
	return out
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
