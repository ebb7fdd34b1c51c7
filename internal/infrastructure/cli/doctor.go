package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/felixgeelhaar/adoready/internal/infrastructure/ado"
	"github.com/felixgeelhaar/adoready/internal/infrastructure/gei"
	"github.com/felixgeelhaar/adoready/internal/infrastructure/github"
	"github.com/felixgeelhaar/adoready/pkg/application"
	"github.com/felixgeelhaar/adoready/pkg/domain"
	"github.com/felixgeelhaar/adoready/pkg/storage"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the health of the adoready environment",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("Running Adoready Doctor...")

		repo, err := openRepo()
		if err != nil {
			return MapError(err)
		}

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

		var adoCfg *domain.ADOConfig
		check("Configuration", func() error {
			if !repo.HasADOConfig() {
				return fmt.Errorf("no Azure DevOps configuration (run 'adoready configure')")
			}
			cfg, err := repo.LoadADOConfig()
			if err != nil {
				return err
			}
			adoCfg = cfg
			fmt.Printf("(%s) ", cfg.OrganizationURL)
			return nil
		})

		check("Azure DevOps Connection", func() error {
			if adoCfg == nil {
				fmt.Printf("(skipped, not configured) ")
				return nil
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			projects, err := ado.New(adoCfg.OrganizationURL, adoCfg.PAT).ListProjects(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("(%d projects) ", len(projects))
			return nil
		})

		check("GitHub Credentials", func() error {
			ghCfg, err := repo.LoadGitHubConfig()
			if errors.Is(err, storage.ErrConfigNotFound) {
				fmt.Printf("(not configured) ")
				return nil
			}
			if err != nil {
				return err
			}
			if ghCfg.Org == "" {
				fmt.Printf("(token only, no organization) ")
				return nil
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			target, err := github.New(ghCfg.Token).VerifyTarget(ctx, ghCfg.Org)
			if err != nil {
				return err
			}
			fmt.Printf("(authenticated as %s) ", target.Login)
			return nil
		})

		check("Importer Tooling", func() error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			return gei.New(zap.NewNop()).CheckInstalled(ctx)
		})

		check("Scan Cache", func() error {
			if !repo.HasScanCache() {
				fmt.Printf("(none yet) ")
				return nil
			}
			result, err := repo.LoadScanCache()
			if err != nil {
				return err
			}
			fmt.Printf("(%d projects, scanned %s) ", len(result.Projects), result.ScannedAt.Format("2006-01-02"))
			return nil
		})

		check("Audit Integrity", func() error {
			violations, err := application.NewAuditService(repo).VerifyIntegrity()
			if err != nil {
				return err
			}
			if len(violations) > 0 {
				return fmt.Errorf("%d integrity violations found", len(violations))
			}
			return nil
		})

		check("Usage Counters", func() error {
			stats, _ := repo.LoadUsage()
			if stats != nil && (stats.TotalScans > 0 || stats.TotalMigrations > 0) {
				fmt.Printf("(%d scans, %d migrations) ", stats.TotalScans, stats.TotalMigrations)
			}
			return nil
		})

		if hasIssues {
			fmt.Println("\nissues found! Please fix them before continuing.")
			return fmt.Errorf("doctor found issues")
		}
		fmt.Println("\nEverything looks good!")
		return nil
	},
}

func init() {
	RootCmd.AddCommand(doctorCmd)
}
