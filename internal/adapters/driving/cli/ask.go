package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/medforum-cli/internal/core/domain"
)

var (
	askTopK int
	askJSON bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a health question grounded on the forum corpus",
	Long: `Answers a free-text health question, in Thai or English, grounded
on the most similar forum threads. The answer cites its sources and
reports extracted symptoms and likely conditions.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().IntVarP(&askTopK, "top-k", "k", 0, "number of passages to retrieve (0 = default)")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the result as JSON")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if answerService == nil {
		return errors.New("answer service not configured")
	}

	result, err := answerService.Answer(context.Background(), args[0], askTopK)
	if err != nil {
		return fmt.Errorf("answer failed: %w", err)
	}

	if askJSON {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal result: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Println(result.Answer)
	cmd.Println()

	if len(result.Symptoms) > 0 {
		cmd.Printf("Symptoms: %s\n", strings.Join(result.Symptoms, ", "))
	}
	if len(result.Conditions) > 0 {
		labels := make([]string, len(result.Conditions))
		for i, condition := range result.Conditions {
			labels[i] = fmt.Sprintf("%s (%d)", condition.Label, condition.Score)
		}
		cmd.Printf("Possible conditions: %s\n", strings.Join(labels, ", "))
	}
	cmd.Printf("Confidence: %.0f%%\n", result.Confidence*100)

	if len(result.References) > 0 {
		cmd.Println()
		cmd.Println("References:")
		for i, ref := range result.References {
			title := ref.Title
			if title == "" {
				title = ref.ThreadID
			}
			cmd.Printf("  [%d] %s (%s, %.2f)\n", i+1, title, roleLabel(ref.Role), ref.Relevance)
			if ref.URL != "" {
				cmd.Printf("      %s\n", ref.URL)
			}
		}
	}
	return nil
}

func roleLabel(role domain.Role) string {
	if role == domain.RoleDoctor {
		return "doctor reply"
	}
	return "patient post"
}
