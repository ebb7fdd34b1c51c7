package assessment

import (
	"fmt"
	"math"

	"github.com/montanaflynn/stats"
)

// Rating buckets a complexity score into a coarse effort tier.
type Rating string

const (
	RatingLow    Rating = "Low"
	RatingMedium Rating = "Medium"
	RatingHigh   Rating = "High"
)

// Score thresholds shared by ratings and effort estimates.
const (
	mediumThreshold = 35
	highThreshold   = 65
)

// RatingFor maps a score to its rating tier: below 35 Low, below 65
// Medium, otherwise High.
func RatingFor(score int) Rating {
	switch {
	case score < mediumThreshold:
		return RatingLow
	case score < highThreshold:
		return RatingMedium
	default:
		return RatingHigh
	}
}

// EffortFor maps a score to a human effort estimate using the rating
// thresholds.
func EffortFor(score int) string {
	switch {
	case score < mediumThreshold:
		return "1-2 days"
	case score < highThreshold:
		return "1-2 weeks"
	default:
		return "2+ weeks"
	}
}

// CategoryScore is the scored complexity of one asset category.
type CategoryScore struct {
	Score  int    `json:"score"`
	Rating Rating `json:"rating"`
	Effort string `json:"effort"`
}

// Complexity aggregates the category scores and the overall verdict.
type Complexity struct {
	Repositories CategoryScore `json:"repositories"`
	Pipelines    CategoryScore `json:"pipelines"`
	WorkItems    CategoryScore `json:"work_items"`
	Overall      int           `json:"overall"`
	Rating       Rating        `json:"rating"`
}

// SizeStats describes the repository size distribution across the
// organization. All byte figures are zero when no repositories exist.
type SizeStats struct {
	TotalBytes   int64  `json:"total_bytes"`
	MeanBytes    int64  `json:"mean_bytes"`
	MedianBytes  int64  `json:"median_bytes"`
	P95Bytes     int64  `json:"p95_bytes"`
	LargestName  string `json:"largest_name,omitempty"`
	LargestBytes int64  `json:"largest_bytes"`
}

// Summary is the organization-wide aggregate computed from the project
// records. It is a pure function of the records; see Summarize.
type Summary struct {
	TotalProjects           int        `json:"total_projects"`
	TotalRepositories       int        `json:"total_repositories"`
	TFVCProjects            int        `json:"tfvc_projects"`
	TotalPipelines          int        `json:"total_pipelines"`
	ClassicPipelines        int        `json:"classic_pipelines"`
	TotalWorkItems          int        `json:"total_work_items"`
	TotalTestPlans          int        `json:"total_test_plans"`
	TotalServiceConnections int        `json:"total_service_connections"`
	RepositorySizes         SizeStats  `json:"repository_sizes"`
	Complexity              Complexity `json:"complexity"`
	Blockers                []string   `json:"blockers"`
}

// Summarize computes the organization summary from the project records.
// Deterministic, no I/O.
func Summarize(projects []Project) Summary {
	s := Summary{
		TotalProjects: len(projects),
		Blockers:      []string{},
	}

	totalCustomFields := 0
	customTypes := map[string]struct{}{}
	for _, p := range projects {
		s.TotalRepositories += p.Repositories.Count
		if p.Repositories.TFVCUsed {
			s.TFVCProjects++
		}
		// Total pipelines count YAML pipelines plus classic release
		// definitions; classic build definitions are reported per
		// project but do not feed the summary.
		s.TotalPipelines += p.Pipelines.YAMLCount + p.Pipelines.ReleaseDefinitions
		s.ClassicPipelines += p.Pipelines.ReleaseDefinitions
		s.TotalWorkItems += p.WorkItems.Total
		s.TotalTestPlans += p.TestPlans.Count
		s.TotalServiceConnections += p.Dependencies.ServiceConnections
		totalCustomFields += p.WorkItems.CustomFields
		for _, t := range p.WorkItems.CustomTypes {
			customTypes[t] = struct{}{}
		}
	}

	s.RepositorySizes = sizeStats(projects)

	repoScore := scoreRepositories(s.TFVCProjects, s.TotalRepositories)
	pipelineScore := scorePipelines(s.ClassicPipelines, s.TotalPipelines)
	workItemScore := scoreWorkItems(totalCustomFields, s.TotalWorkItems)
	overall := (repoScore + pipelineScore + workItemScore) / 3

	s.Complexity = Complexity{
		Repositories: categoryScore(repoScore),
		Pipelines:    categoryScore(pipelineScore),
		WorkItems:    categoryScore(workItemScore),
		Overall:      overall,
		Rating:       RatingFor(overall),
	}

	if s.TFVCProjects > 0 {
		s.Blockers = append(s.Blockers, fmt.Sprintf("%d project(s) use TFVC - requires special handling", s.TFVCProjects))
	}
	if s.ClassicPipelines > 0 {
		s.Blockers = append(s.Blockers, fmt.Sprintf("%d Classic release pipeline(s) need manual conversion", s.ClassicPipelines))
	}
	if len(customTypes) > 0 {
		s.Blockers = append(s.Blockers, fmt.Sprintf("%d custom work item type(s) need mapping", len(customTypes)))
	}

	return s
}

func categoryScore(score int) CategoryScore {
	return CategoryScore{
		Score:  score,
		Rating: RatingFor(score),
		Effort: EffortFor(score),
	}
}

// scoreRepositories starts at 20, adds 40 when TFVC is in use anywhere,
// and adds 20/10 for more than 50/20 repositories.
func scoreRepositories(tfvcProjects, totalRepositories int) int {
	score := 20
	if tfvcProjects > 0 {
		score += 40
	}
	switch {
	case totalRepositories > 50:
		score += 20
	case totalRepositories > 20:
		score += 10
	}
	return clampScore(score)
}

// scorePipelines starts at 30, adds up to 50 proportional to the classic
// share, and adds 20/10 for more than 100/50 pipelines.
func scorePipelines(classicPipelines, totalPipelines int) int {
	score := 30
	if classicPipelines > 0 {
		score += 50 * classicPipelines / max(totalPipelines, 1)
	}
	switch {
	case totalPipelines > 100:
		score += 20
	case totalPipelines > 50:
		score += 10
	}
	return clampScore(score)
}

// scoreWorkItems starts at 25, adds 30/15 for more than 20/10 custom
// fields, and adds 25/15/5 for more than 10000/5000/1000 work items.
func scoreWorkItems(customFields, totalWorkItems int) int {
	score := 25
	switch {
	case customFields > 20:
		score += 30
	case customFields > 10:
		score += 15
	}
	switch {
	case totalWorkItems > 10000:
		score += 25
	case totalWorkItems > 5000:
		score += 15
	case totalWorkItems > 1000:
		score += 5
	}
	return clampScore(score)
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

func sizeStats(projects []Project) SizeStats {
	var sizes []float64
	out := SizeStats{}
	for _, p := range projects {
		for _, repo := range p.Repositories.Items {
			sizes = append(sizes, float64(repo.Size))
			out.TotalBytes += repo.Size
			if repo.Size > out.LargestBytes || out.LargestName == "" {
				out.LargestBytes = repo.Size
				out.LargestName = repo.Name
			}
		}
	}
	if len(sizes) == 0 {
		return SizeStats{}
	}
	mean, _ := stats.Mean(sizes)
	median, _ := stats.Median(sizes)
	p95, _ := stats.Percentile(sizes, 95)
	out.MeanBytes = int64(math.Round(mean))
	out.MedianBytes = int64(math.Round(median))
	out.P95Bytes = int64(math.Round(p95))
	return out
}
