package cli

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/felixgeelhaar/adoready/internal/infrastructure/gei"
	"github.com/felixgeelhaar/adoready/internal/infrastructure/github"
	"github.com/felixgeelhaar/adoready/pkg/application"
	"github.com/felixgeelhaar/adoready/pkg/domain/migration"
	"github.com/felixgeelhaar/adoready/pkg/domain/progress"
)

var (
	migrateRepos      []string
	migrateTargetOrg  string
	migrateVisibility string
	migratePreflight  bool
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Migrate repositories to GitHub through the importer",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := loadServices()
		if err != nil {
			return MapError(err)
		}

		// Repos resolve against the latest scan; a fresh CLI process
		// has to warm it from the cache first.
		cached, err := svc.Repo.LoadScanCache()
		if err != nil {
			return MapError(err)
		}
		svc.Scans.SetResult(cached)

		if migratePreflight {
			if err := runPreflight(cmd.Context(), svc, migrateRepos, migrateTargetOrg); err != nil {
				return err
			}
		}

		// Subscribe before starting so the first events are not lost.
		events, unsubscribe := svc.Hub.Subscribe()
		defer unsubscribe()

		req := migration.Request{
			Repos:      migrateRepos,
			TargetOrg:  migrateTargetOrg,
			Visibility: migrateVisibility,
		}
		if err := svc.Migrations.StartMigration(req); err != nil {
			return MapError(err)
		}

		fmt.Printf("Migrating %d repositories to %s...\n", len(migrateRepos), migrateTargetOrg)

		failed, err := followMigration(svc.Migrations, events)
		if err != nil {
			return MapError(err)
		}
		if failed > 0 {
			return NewCLIError(
				fmt.Sprintf("%d of %d repositories failed to migrate", failed, len(migrateRepos)),
				"Fix the causes above, then rerun the failed repos",
				nil,
			)
		}
		fmt.Println(okText.Render("✅ Migration batch completed!"))
		return nil
	},
}

// followMigration prints item transitions until the batch reaches a
// terminal status and returns how many items failed.
func followMigration(migrations *application.MigrationService, events <-chan progress.Event) (int, error) {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	printed := map[string]string{}
	for {
		select {
		case _, ok := <-events:
			if !ok {
				events = nil
			}
		case <-ticker.C:
		}

		st := migrations.Status()
		printTransitions(st, printed)
		switch st.Status {
		case application.MigrationCompleted:
			return countFailed(st), nil
		case application.MigrationFailed:
			return countFailed(st), fmt.Errorf("migration failed: %s", st.Error)
		}
	}
}

// printTransitions emits one line per item state change, in stable
// name order.
func printTransitions(st application.MigrationStatus, printed map[string]string) {
	names := make([]string, 0, len(st.Repos))
	for name := range st.Repos {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		item := st.Repos[name]
		key := string(item.Status) + "|" + item.Message
		if printed[name] == key {
			continue
		}
		printed[name] = key
		fmt.Printf("  %s %-30s %s\n", statusGlyph(item.Status), name, item.Message)
	}
}

func statusGlyph(s migration.Status) string {
	switch s {
	case migration.StatusCompleted:
		return okText.Render("✔")
	case migration.StatusFailed:
		return failText.Render("✖")
	case migration.StatusInProgress:
		return warnText.Render("➤")
	default:
		return dimText.Render("•")
	}
}

func countFailed(st application.MigrationStatus) int {
	n := 0
	for _, item := range st.Repos {
		if item.Status == migration.StatusFailed {
			n++
		}
	}
	return n
}

// runPreflight verifies the GitHub side before the batch starts:
// token, organization, importer tooling, and free target names.
func runPreflight(ctx context.Context, svc *services, repos []string, targetOrg string) error {
	fmt.Println("Running preflight checks...")

	ghCfg, err := svc.Repo.LoadGitHubConfig()
	if err != nil {
		return MapError(fmt.Errorf("load GitHub configuration: %w", err))
	}
	checker := github.New(ghCfg.Token)

	hasIssues := false
	check := func(name string, fn func() error) {
		fmt.Printf("Checking %s... ", name)
		if err := fn(); err != nil {
			fmt.Printf("FAIL\n  Error: %v\n", err)
			hasIssues = true
		} else {
			fmt.Printf("PASS\n")
		}
	}

	check("GitHub Target", func() error {
		target, err := checker.VerifyTarget(ctx, targetOrg)
		if err != nil {
			return err
		}
		fmt.Printf("(authenticated as %s) ", target.Login)
		return nil
	})

	check("Importer Tooling", func() error {
		return gei.New(zap.NewNop()).CheckInstalled(ctx)
	})

	for _, repo := range repos {
		repo := repo
		check(fmt.Sprintf("Target Name %s/%s", targetOrg, repo), func() error {
			taken, err := checker.RepoExists(ctx, targetOrg, repo)
			if err != nil {
				return err
			}
			if taken {
				return fmt.Errorf("repository already exists in %s", targetOrg)
			}
			return nil
		})
	}

	if hasIssues {
		return NewCLIError(
			"preflight found problems",
			"Resolve the failures above, or rerun without --preflight to let the importer decide",
			nil,
		)
	}
	fmt.Println()
	return nil
}

func init() {
	migrateCmd.Flags().StringArrayVarP(&migrateRepos, "repo", "r", nil, "repository to migrate (repeatable)")
	migrateCmd.Flags().StringVar(&migrateTargetOrg, "target-org", "", "GitHub organization to migrate into")
	migrateCmd.Flags().StringVar(&migrateVisibility, "visibility", "private", "visibility for migrated repositories: private, public, or internal")
	migrateCmd.Flags().BoolVar(&migratePreflight, "preflight", false, "verify the GitHub target before starting")
	_ = migrateCmd.MarkFlagRequired("repo")
	_ = migrateCmd.MarkFlagRequired("target-org")
	RootCmd.AddCommand(migrateCmd)
}
