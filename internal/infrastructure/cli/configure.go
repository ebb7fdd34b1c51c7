package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/adoready/pkg/domain"
)

var (
	configureOrg     string
	configurePAT     string
	configureProject string
)

var configureCmd = &cobra.Command{
	Use:   "configure",
	Short: "Store the Azure DevOps connection settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := openRepo()
		if err != nil {
			return MapError(err)
		}

		reader := bufio.NewReader(cmd.InOrStdin())

		orgURL := configureOrg
		if orgURL == "" {
			orgURL = promptLine(reader, "Azure DevOps organization URL")
		}
		if orgURL == "" {
			return NewCLIError("organization URL is required", "Pass --org or enter a value at the prompt", nil)
		}
		orgURL = normalizeOrgURL(orgURL)

		pat := configurePAT
		if pat == "" {
			pat, err = promptSecret(reader, "Personal Access Token")
			if err != nil {
				return fmt.Errorf("read token: %w", err)
			}
		}
		if pat == "" {
			return NewCLIError("a Personal Access Token is required", "Pass --pat or enter a value at the prompt", nil)
		}

		if err := repo.Initialize(); err != nil {
			return fmt.Errorf("initialize settings directory: %w", err)
		}
		cfg := &domain.ADOConfig{
			OrganizationURL: orgURL,
			PAT:             pat,
			DefaultProject:  configureProject,
		}
		if err := repo.SaveADOConfig(cfg); err != nil {
			return MapError(fmt.Errorf("save configuration: %w", err))
		}

		fmt.Println(okText.Render("✅ Configuration saved!"))
		fmt.Println(dimText.Render("   Organization: " + orgURL))
		fmt.Println("\nNext step: Run 'adoready test-connection' to verify.")
		return nil
	},
}

var (
	configureGitHubToken string
	configureGitHubOrg   string
)

var configureGitHubCmd = &cobra.Command{
	Use:   "github",
	Short: "Store the GitHub token and target organization",
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := openRepo()
		if err != nil {
			return MapError(err)
		}

		reader := bufio.NewReader(cmd.InOrStdin())

		token := configureGitHubToken
		if token == "" {
			token, err = promptSecret(reader, "GitHub Personal Access Token")
			if err != nil {
				return fmt.Errorf("read token: %w", err)
			}
		}
		if token == "" {
			return NewCLIError("a GitHub token is required", "Pass --token or enter a value at the prompt", nil)
		}

		org := configureGitHubOrg
		if org == "" {
			org = promptLine(reader, "GitHub organization")
		}

		if err := repo.Initialize(); err != nil {
			return fmt.Errorf("initialize settings directory: %w", err)
		}
		if err := repo.SaveGitHubConfig(&domain.GitHubConfig{Token: token, Org: org}); err != nil {
			return MapError(fmt.Errorf("save GitHub configuration: %w", err))
		}

		fmt.Println(okText.Render("✅ GitHub configuration saved!"))
		fmt.Println("\nNext step: Run 'adoready migrate --preflight' before your first batch.")
		return nil
	},
}

// promptLine asks for one line of input and returns the trimmed text.
func promptLine(reader *bufio.Reader, label string) string {
	fmt.Printf("%s: ", label)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

// promptSecret reads a value without echoing it when stdin is a
// terminal. Piped input falls back to a plain line read.
func promptSecret(reader *bufio.Reader, label string) (string, error) {
	fmt.Printf("%s: ", label)
	if term.IsTerminal(os.Stdin.Fd()) {
		value, err := term.ReadPassword(os.Stdin.Fd())
		fmt.Println()
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(value)), nil
	}
	input, err := reader.ReadString('\n')
	fmt.Println()
	if err != nil && input == "" {
		return "", err
	}
	return strings.TrimSpace(input), nil
}

// normalizeOrgURL expands a bare organization name into its
// dev.azure.com URL, leaving full URLs untouched.
func normalizeOrgURL(org string) string {
	org = strings.TrimSpace(org)
	if strings.HasPrefix(org, "http://") || strings.HasPrefix(org, "https://") {
		return strings.TrimRight(org, "/")
	}
	return "https://dev.azure.com/" + org
}

func init() {
	configureCmd.Flags().StringVar(&configureOrg, "org", "", "Azure DevOps organization URL or name")
	configureCmd.Flags().StringVar(&configurePAT, "pat", "", "Azure DevOps Personal Access Token")
	configureCmd.Flags().StringVar(&configureProject, "project", "", "default project for scans")
	configureGitHubCmd.Flags().StringVar(&configureGitHubToken, "token", "", "GitHub token with repo and org scopes")
	configureGitHubCmd.Flags().StringVar(&configureGitHubOrg, "org", "", "target GitHub organization")
	configureCmd.AddCommand(configureGitHubCmd)
	RootCmd.AddCommand(configureCmd)
}
