package assessment

import "context"

// ProjectRef identifies a team project in the organization.
type ProjectRef struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// BuildDefinition is a build pipeline definition. Type is "build" for
// classic designer definitions.
type BuildDefinition struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// WorkItemType is a work item type configured in a project.
type WorkItemType struct {
	Name   string `json:"name"`
	Custom bool   `json:"custom"`
}

// Collector supplies the per-project asset inventories the scan
// aggregates. Implementations return explicit errors; the scan
// orchestrator decides which failures abort the scan and which fold
// into empty categories.
type Collector interface {
	ListProjects(ctx context.Context) ([]ProjectRef, error)
	ListRepositories(ctx context.Context, project string) ([]Repository, error)
	HasTFVC(ctx context.Context, project string) (bool, error)
	ListPipelines(ctx context.Context, project string) ([]string, error)
	ListBuildDefinitions(ctx context.Context, project string) ([]BuildDefinition, error)
	ListReleaseDefinitions(ctx context.Context, project string) ([]string, error)
	ListWorkItemTypes(ctx context.Context, project string) ([]WorkItemType, error)
	CountWorkItemsByType(ctx context.Context, project string) (map[string]int, error)
	CountCustomFields(ctx context.Context, project string) (int, error)
	ListTeams(ctx context.Context, project string) ([]string, error)
	ListServiceConnections(ctx context.Context, project string) ([]string, error)
	ListVariableGroups(ctx context.Context, project string) ([]string, error)
	ListTestPlans(ctx context.Context, project string) ([]string, error)
}
