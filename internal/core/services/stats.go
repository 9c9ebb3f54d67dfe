package services

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/custodia-labs/medforum-cli/internal/core/domain"
	"github.com/custodia-labs/medforum-cli/internal/core/ports/driven"
	"github.com/custodia-labs/medforum-cli/internal/core/ports/driving"
	"github.com/custodia-labs/medforum-cli/internal/logger"
)

// Ensure StatsService implements the interface.
var _ driving.StatsService = (*StatsService)(nil)

// topLikedSize is the length of the most-liked leaderboard.
const topLikedSize = 5

// agePattern reads the age out of the Thai demographic line,
// e.g. "หญิง อายุ 25 ปี".
var agePattern = regexp.MustCompile(`อายุ\s*(\d+)`)

// StatsService aggregates corpus statistics over the content store.
type StatsService struct {
	store driven.ThreadStore
}

// NewStatsService creates a new stats service.
func NewStatsService(store driven.ThreadStore) *StatsService {
	return &StatsService{store: store}
}

// Snapshot computes aggregate counts over the content store. Records
// with missing optional fields land in "unknown" buckets.
func (s *StatsService) Snapshot(ctx context.Context) (*domain.CorpusStats, error) {
	records, malformed, err := s.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load threads: %w", err)
	}
	if malformed > 0 {
		logger.Warn("Skipped %d malformed stored records", malformed)
	}

	stats := &domain.CorpusStats{
		TotalThreads:     len(records),
		MalformedRecords: malformed,
		TagCounts:        make(map[string]int),
		ThreadsPerDay:    make(map[string]int),
		CommentCountDist: make(map[int]int),
		GenderCounts:     make(map[string]int),
	}

	var ageSum int
	for i := range records {
		record := &records[i]

		if record.HasDoctorReply() {
			stats.ThreadsWithDoctorReply++
		}

		if len(record.Tags) == 0 {
			stats.TagCounts[domain.UnknownBucket]++
		}
		for _, tag := range record.Tags {
			stats.TagCounts[tag]++
		}

		day := domain.UnknownBucket
		if !record.PostedAt.IsZero() {
			day = record.PostedAt.Format("2006-01-02")
		}
		stats.ThreadsPerDay[day]++

		stats.CommentCountDist[len(record.Comments)]++
		stats.GenderCounts[detectGender(record.GenderAge)]++

		if age, ok := parseAge(record.GenderAge); ok {
			if stats.Ages.Count == 0 || age < stats.Ages.Min {
				stats.Ages.Min = age
			}
			if age > stats.Ages.Max {
				stats.Ages.Max = age
			}
			ageSum += age
			stats.Ages.Count++
		}
	}
	if stats.Ages.Count > 0 {
		stats.Ages.Mean = float64(ageSum) / float64(stats.Ages.Count)
	}

	stats.TopLiked = topLiked(records)
	return stats, nil
}

// detectGender reads the gender word from the demographic line.
func detectGender(genderAge string) string {
	switch {
	case strings.Contains(genderAge, "หญิง"):
		return "female"
	case strings.Contains(genderAge, "ชาย"):
		return "male"
	default:
		return domain.UnknownBucket
	}
}

func parseAge(genderAge string) (int, bool) {
	m := agePattern.FindStringSubmatch(genderAge)
	if m == nil {
		return 0, false
	}
	age, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return age, true
}

// topLiked returns the five most-liked threads. The sort is stable so
// equally-liked threads keep their store order.
func topLiked(records []domain.ThreadRecord) []domain.LikedThread {
	ranked := make([]domain.LikedThread, 0, len(records))
	for i := range records {
		ranked = append(ranked, domain.LikedThread{
			ThreadID: records[i].ThreadID,
			Title:    records[i].Title,
			Likes:    records[i].Likes,
		})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Likes > ranked[j].Likes
	})
	if len(ranked) > topLikedSize {
		ranked = ranked[:topLikedSize]
	}
	return ranked
}
