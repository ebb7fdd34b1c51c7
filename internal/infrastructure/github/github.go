// Package github verifies the migration target before the importer
// runs: a usable token, a visible organization, and free repo names.
package github

import (
	"context"
	"fmt"
	"net/http"
	"time"

	gh "github.com/google/go-github/v69/github"
	"golang.org/x/oauth2"
)

// Checker validates a GitHub token and target organization. Its
// findings are advisory; the importer remains the authority on whether
// a migration actually succeeds.
type Checker struct {
	client *gh.Client
}

// Target describes a verified migration target.
type Target struct {
	// Login is the user the token authenticates as.
	Login string
	// Org is the resolved organization login.
	Org string
}

// New creates a checker authenticating with the given token.
func New(token string) *Checker {
	source := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	httpClient := &http.Client{
		Transport: &oauth2.Transport{Source: source},
		Timeout:   30 * time.Second,
	}
	return &Checker{client: gh.NewClient(httpClient)}
}

// VerifyTarget confirms the token authenticates and the organization
// is visible to it.
func (c *Checker) VerifyTarget(ctx context.Context, org string) (*Target, error) {
	user, _, err := c.client.Users.Get(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("failed to authenticate with GitHub: %w", err)
	}

	resolved, _, err := c.client.Organizations.Get(ctx, org)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve organization %q: %w", org, err)
	}

	return &Target{Login: user.GetLogin(), Org: resolved.GetLogin()}, nil
}

// RepoExists reports whether a repository name is already taken in the
// target organization. The importer refuses to overwrite an existing
// repo, so a taken name is worth flagging before the batch starts.
func (c *Checker) RepoExists(ctx context.Context, org, repo string) (bool, error) {
	_, resp, err := c.client.Repositories.Get(ctx, org, repo)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return false, nil
		}
		return false, fmt.Errorf("failed to look up %s/%s: %w", org, repo, err)
	}
	return true, nil
}
