// Package assessment holds the scan data model and the migration
// complexity scoring rules.
package assessment

import "time"

// Repository is a single Git repository discovered during a scan.
type Repository struct {
	Name string `json:"name"`
	ID   string `json:"id"`
	Size int64  `json:"size"`
	URL  string `json:"url"`
}

// RepositorySection summarizes the repositories of one project.
type RepositorySection struct {
	Count    int          `json:"count"`
	TFVCUsed bool         `json:"tfvc_used"`
	Items    []Repository `json:"items"`
}

// PipelineSection summarizes the pipelines of one project. YAMLCount is
// the number of YAML pipelines, ClassicCount the number of classic build
// definitions (type "build").
type PipelineSection struct {
	YAMLCount          int `json:"yaml_count"`
	BuildDefinitions   int `json:"build_definitions"`
	ReleaseDefinitions int `json:"release_definitions"`
	ClassicCount       int `json:"classic_count"`
}

// WorkItemSection summarizes the work items of one project.
type WorkItemSection struct {
	Total        int            `json:"total"`
	ByType       map[string]int `json:"by_type"`
	CustomTypes  []string       `json:"custom_types"`
	CustomFields int            `json:"custom_fields"`
}

// TeamSection holds the team count of one project.
type TeamSection struct {
	Count int `json:"count"`
}

// DependencySection counts external dependencies of one project.
type DependencySection struct {
	ServiceConnections int `json:"service_connections"`
	VariableGroups     int `json:"variable_groups"`
}

// TestPlanSection holds the test plan count of one project.
type TestPlanSection struct {
	Count int `json:"count"`
}

// Project is the scan record of a single team project. It is immutable
// once produced and owned by the scan that created it.
type Project struct {
	Name         string            `json:"name"`
	Repositories RepositorySection `json:"repositories"`
	Pipelines    PipelineSection   `json:"pipelines"`
	WorkItems    WorkItemSection   `json:"work_items"`
	Teams        TeamSection       `json:"teams"`
	Dependencies DependencySection `json:"dependencies"`
	TestPlans    TestPlanSection   `json:"test_plans"`
}

// Result is the full outcome of one organization scan. Summary is always
// derived from Projects via Summarize, never edited by hand.
type Result struct {
	OrganizationURL string    `json:"organization_url"`
	ScannedAt       time.Time `json:"scanned_at"`
	Projects        []Project `json:"projects"`
	Summary         Summary   `json:"summary"`
}

// RepoRef locates a repository inside a scan result.
type RepoRef struct {
	Project    string     `json:"project"`
	Repository Repository `json:"repository"`
}

// FindRepo returns the first repository with the given name, searching
// projects in scan order.
func (r *Result) FindRepo(name string) (RepoRef, bool) {
	for _, p := range r.Projects {
		for _, repo := range p.Repositories.Items {
			if repo.Name == name {
				return RepoRef{Project: p.Name, Repository: repo}, true
			}
		}
	}
	return RepoRef{}, false
}

// FlatRepo is one row of the flattened repository listing.
type FlatRepo struct {
	Project string `json:"project"`
	Name    string `json:"name"`
	ID      string `json:"id"`
	Size    int64  `json:"size"`
	URL     string `json:"url"`
}

// FlattenRepos lists every repository of every project in scan order.
func (r *Result) FlattenRepos() []FlatRepo {
	repos := make([]FlatRepo, 0)
	for _, p := range r.Projects {
		for _, repo := range p.Repositories.Items {
			repos = append(repos, FlatRepo{
				Project: p.Name,
				Name:    repo.Name,
				ID:      repo.ID,
				Size:    repo.Size,
				URL:     repo.URL,
			})
		}
	}
	return repos
}
