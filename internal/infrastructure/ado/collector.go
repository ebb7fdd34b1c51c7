package ado

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/felixgeelhaar/adoready/pkg/domain/assessment"
)

// Wire shapes for the subset of ADO resources the inventory reads.
// Domain types carry their own JSON tags for the cache format, so API
// payloads decode into these and get mapped explicitly.

type projectResource struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type repositoryResource struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Size   int64  `json:"size"`
	WebURL string `json:"webUrl"`
}

type namedResource struct {
	Name string `json:"name"`
}

type buildDefinitionResource struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

type workItemTypeResource struct {
	Name   string `json:"name"`
	Custom bool   `json:"isCustomType"`
}

// ListProjects returns every project in the organization.
func (c *Client) ListProjects(ctx context.Context) ([]assessment.ProjectRef, error) {
	resources, err := getAll[projectResource](ctx, c, "", "projects")
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	refs := make([]assessment.ProjectRef, 0, len(resources))
	for _, r := range resources {
		refs = append(refs, assessment.ProjectRef{Name: r.Name, Description: r.Description})
	}
	return refs, nil
}

// ListRepositories returns the Git repositories of a project.
func (c *Client) ListRepositories(ctx context.Context, project string) ([]assessment.Repository, error) {
	resources, err := getAll[repositoryResource](ctx, c, project, "git/repositories")
	if err != nil {
		return nil, fmt.Errorf("failed to list repositories: %w", err)
	}

	repos := make([]assessment.Repository, 0, len(resources))
	for _, r := range resources {
		repos = append(repos, assessment.Repository{
			ID:   r.ID,
			Name: r.Name,
			Size: r.Size,
			URL:  r.WebURL,
		})
	}
	return repos, nil
}

// HasTFVC reports whether the project carries any TFVC content.
func (c *Client) HasTFVC(ctx context.Context, project string) (bool, error) {
	path := "tfvc/items?scopePath=" + url.QueryEscape("$/"+project)

	var page struct {
		Value []json.RawMessage `json:"value"`
	}
	if err := c.get(ctx, c.apiURL(project, path), &page); err != nil {
		return false, fmt.Errorf("failed to probe TFVC: %w", err)
	}
	return len(page.Value) > 0, nil
}

// ListPipelines returns the names of YAML pipelines in a project.
func (c *Client) ListPipelines(ctx context.Context, project string) ([]string, error) {
	resources, err := getAll[namedResource](ctx, c, project, "pipelines")
	if err != nil {
		return nil, fmt.Errorf("failed to list pipelines: %w", err)
	}
	return names(resources), nil
}

// ListBuildDefinitions returns the build definitions of a project with
// their process type, used to tell designer builds from YAML ones.
func (c *Client) ListBuildDefinitions(ctx context.Context, project string) ([]assessment.BuildDefinition, error) {
	resources, err := getAll[buildDefinitionResource](ctx, c, project, "build/definitions")
	if err != nil {
		return nil, fmt.Errorf("failed to list build definitions: %w", err)
	}

	defs := make([]assessment.BuildDefinition, 0, len(resources))
	for _, r := range resources {
		defs = append(defs, assessment.BuildDefinition{Name: r.Name, Type: r.Type})
	}
	return defs, nil
}

// ListReleaseDefinitions returns classic release pipeline names. Not
// every organization has the release service enabled, so a 404 means
// none rather than an error.
func (c *Client) ListReleaseDefinitions(ctx context.Context, project string) ([]string, error) {
	var page struct {
		Value []namedResource `json:"value"`
	}
	err := c.get(ctx, c.apiURL(project, "release/definitions"), &page)
	if err != nil {
		var status *statusError
		if errors.As(err, &status) && status.code == http.StatusNotFound {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list release definitions: %w", err)
	}
	return names(page.Value), nil
}

// ListWorkItemTypes returns the work item types of a project.
func (c *Client) ListWorkItemTypes(ctx context.Context, project string) ([]assessment.WorkItemType, error) {
	resources, err := getAll[workItemTypeResource](ctx, c, project, "wit/workitemtypes")
	if err != nil {
		return nil, fmt.Errorf("failed to list work item types: %w", err)
	}

	types := make([]assessment.WorkItemType, 0, len(resources))
	for _, r := range resources {
		types = append(types, assessment.WorkItemType{Name: r.Name, Custom: r.Custom})
	}
	return types, nil
}

// CountWorkItemsByType counts work items per type via WIQL. A type
// whose query fails counts as zero; one bad type must not sink the
// whole inventory.
func (c *Client) CountWorkItemsByType(ctx context.Context, project string) (map[string]int, error) {
	types, err := c.ListWorkItemTypes(ctx, project)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int, len(types))
	for _, t := range types {
		query := fmt.Sprintf(
			"SELECT [System.Id] FROM WorkItems WHERE [System.TeamProject] = '%s' AND [System.WorkItemType] = '%s'",
			project, t.Name,
		)

		var result struct {
			WorkItems []json.RawMessage `json:"workItems"`
		}
		body := map[string]string{"query": query}
		if err := c.post(ctx, c.apiURL(project, "wit/wiql"), body, &result); err != nil {
			counts[t.Name] = 0
			continue
		}
		counts[t.Name] = len(result.WorkItems)
	}
	return counts, nil
}

// CountCustomFields counts fields outside the System namespace.
func (c *Client) CountCustomFields(ctx context.Context, project string) (int, error) {
	resources, err := getAll[namedResource](ctx, c, project, "wit/fields")
	if err != nil {
		return 0, fmt.Errorf("failed to list fields: %w", err)
	}

	custom := 0
	for _, r := range resources {
		if !strings.HasPrefix(r.Name, "System.") {
			custom++
		}
	}
	return custom, nil
}

// ListTeams returns the team names of a project. Teams live under the
// organization-level projects resource, not the project-scoped _apis.
func (c *Client) ListTeams(ctx context.Context, project string) ([]string, error) {
	path := "projects/" + url.PathEscape(project) + "/teams"
	resources, err := getAll[namedResource](ctx, c, "", path)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	return names(resources), nil
}

// ListServiceConnections returns the service connection names of a project.
func (c *Client) ListServiceConnections(ctx context.Context, project string) ([]string, error) {
	resources, err := getAll[namedResource](ctx, c, project, "serviceendpoint/endpoints")
	if err != nil {
		return nil, fmt.Errorf("failed to list service connections: %w", err)
	}
	return names(resources), nil
}

// ListVariableGroups returns the variable group names of a project.
func (c *Client) ListVariableGroups(ctx context.Context, project string) ([]string, error) {
	resources, err := getAll[namedResource](ctx, c, project, "distributedtask/variablegroups")
	if err != nil {
		return nil, fmt.Errorf("failed to list variable groups: %w", err)
	}
	return names(resources), nil
}

// ListTestPlans returns the test plan names of a project.
func (c *Client) ListTestPlans(ctx context.Context, project string) ([]string, error) {
	resources, err := getAll[namedResource](ctx, c, project, "testplan/plans")
	if err != nil {
		return nil, fmt.Errorf("failed to list test plans: %w", err)
	}
	return names(resources), nil
}

func names(resources []namedResource) []string {
	out := make([]string, 0, len(resources))
	for _, r := range resources {
		out = append(out, r.Name)
	}
	return out
}
