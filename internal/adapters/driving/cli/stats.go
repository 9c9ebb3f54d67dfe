package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

var statsJSON bool

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show corpus statistics",
	Long: `Aggregates the stored threads: tag frequencies, doctor-reply
coverage, demographics and the most-liked threads.`,
	RunE: runStats,
}

func init() {
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "output the statistics as JSON")
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, _ []string) error {
	if statsService == nil {
		return errors.New("stats service not configured")
	}

	stats, err := statsService.Snapshot(context.Background())
	if err != nil {
		return fmt.Errorf("stats failed: %w", err)
	}

	if statsJSON {
		data, err := json.MarshalIndent(stats, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal stats: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Printf("Threads: %d (%d with a doctor reply)\n", stats.TotalThreads, stats.ThreadsWithDoctorReply)
	if stats.MalformedRecords > 0 {
		cmd.Printf("Malformed records skipped: %d\n", stats.MalformedRecords)
	}

	if stats.Ages.Count > 0 {
		cmd.Printf("Ages: %d-%d (mean %.1f, from %d threads)\n",
			stats.Ages.Min, stats.Ages.Max, stats.Ages.Mean, stats.Ages.Count)
	}
	if len(stats.GenderCounts) > 0 {
		cmd.Printf("Gender: %s\n", formatCounts(stats.GenderCounts))
	}

	if len(stats.TagCounts) > 0 {
		cmd.Println()
		cmd.Println("Top tags:")
		for _, line := range topCounts(stats.TagCounts, 10) {
			cmd.Printf("  %s\n", line)
		}
	}

	if len(stats.TopLiked) > 0 {
		cmd.Println()
		cmd.Println("Most liked:")
		for i, thread := range stats.TopLiked {
			cmd.Printf("  [%d] %s (%d likes)\n", i+1, thread.Title, thread.Likes)
		}
	}
	return nil
}

// formatCounts renders a small count map deterministically.
func formatCounts(counts map[string]int) string {
	keys := make([]string, 0, len(counts))
	for key := range counts {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	out := ""
	for i, key := range keys {
		if i > 0 {
			out += ", "
		}
		out += fmt.Sprintf("%s %d", key, counts[key])
	}
	return out
}

// topCounts returns up to n "label: count" lines, descending by count,
// ties broken alphabetically.
func topCounts(counts map[string]int, n int) []string {
	type entry struct {
		label string
		count int
	}
	entries := make([]entry, 0, len(counts))
	for label, count := range counts {
		entries = append(entries, entry{label, count})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].count != entries[j].count {
			return entries[i].count > entries[j].count
		}
		return entries[i].label < entries[j].label
	})
	if len(entries) > n {
		entries = entries[:n]
	}

	lines := make([]string, len(entries))
	for i, e := range entries {
		lines[i] = fmt.Sprintf("%s: %d", e.label, e.count)
	}
	return lines
}
