package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/adoready/pkg/application"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show a chronological view of scan and migration activity",
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := openRepo()
		if err != nil {
			return MapError(err)
		}

		events, err := application.NewAuditService(repo).GetTimeline()
		if err != nil {
			return fmt.Errorf("failed to load history: %w", err)
		}

		fmt.Println("Activity History")
		fmt.Println("------------------")
		if len(events) == 0 {
			fmt.Println(dimText.Render("nothing recorded yet — run 'adoready scan' to get started"))
			return nil
		}

		// Newest first: the most recent activity is what the user came for.
		for i := len(events) - 1; i >= 0; i-- {
			e := events[i]
			fmt.Printf("[%s] %-4s %-20s%s\n",
				e.Timestamp.Format("2006-01-02 15:04"),
				e.Actor,
				e.Action,
				formatEventMeta(e.Metadata))
		}
		return nil
	},
}

// formatEventMeta renders metadata as sorted key=value pairs.
func formatEventMeta(meta map[string]interface{}) string {
	if len(meta) == 0 {
		return ""
	}

	keys := make([]string, 0, len(meta))
	for k := range meta {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, fmt.Sprintf("%s=%v", k, meta[k]))
	}
	return "  " + dimText.Render(strings.Join(pairs, " "))
}

func init() {
	RootCmd.AddCommand(historyCmd)
}
