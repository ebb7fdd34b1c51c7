package report

import (
	"html/template"
	"io"
	"strings"

	"github.com/felixgeelhaar/adoready/pkg/domain/assessment"
)

// WriteHTML renders the standalone HTML report document.
func WriteHTML(w io.Writer, result *assessment.Result) error {
	return htmlTemplate.Execute(w, newHTMLReport(result))
}

type htmlCategory struct {
	Name   string
	Count  string
	Rating assessment.Rating
	Class  string
	Score  int
	Color  string
	Effort string
}

type htmlProject struct {
	Name      string
	Repos     int
	Pipelines int
	WorkItems string
	Notes     string
}

type htmlReport struct {
	Organization  string
	Scanned       string
	OverallScore  int
	OverallRating assessment.Rating
	OverallClass  string
	TotalProjects int
	TotalRepos    int
	Pipelines     int
	WorkItems     string
	Categories    []htmlCategory
	Projects      []htmlProject
	Blockers      []string
}

func newHTMLReport(result *assessment.Result) htmlReport {
	s := result.Summary

	r := htmlReport{
		Organization:  result.OrganizationURL,
		Scanned:       result.ScannedAt.Format("2006-01-02 15:04"),
		OverallScore:  s.Complexity.Overall,
		OverallRating: s.Complexity.Rating,
		OverallClass:  ratingClass(s.Complexity.Rating),
		TotalProjects: s.TotalProjects,
		TotalRepos:    s.TotalRepositories,
		Pipelines:     s.TotalPipelines,
		WorkItems:     comma(s.TotalWorkItems),
		Categories: []htmlCategory{
			htmlCat("Repositories", s.TotalRepositories, s.Complexity.Repositories),
			htmlCat("Pipelines", s.TotalPipelines, s.Complexity.Pipelines),
			htmlCat("Work Items", s.TotalWorkItems, s.Complexity.WorkItems),
		},
		Blockers: s.Blockers,
	}

	for _, p := range result.Projects {
		r.Projects = append(r.Projects, htmlProject{
			Name:      p.Name,
			Repos:     p.Repositories.Count,
			Pipelines: pipelineCount(p),
			WorkItems: comma(p.WorkItems.Total),
			Notes:     projectNotes(p),
		})
	}
	return r
}

func htmlCat(name string, count int, cs assessment.CategoryScore) htmlCategory {
	return htmlCategory{
		Name:   name,
		Count:  comma(count),
		Rating: cs.Rating,
		Class:  ratingClass(cs.Rating),
		Score:  cs.Score,
		Color:  scoreColor(cs.Score),
		Effort: cs.Effort,
	}
}

func ratingClass(r assessment.Rating) string {
	return strings.ToLower(string(r))
}

func scoreColor(score int) string {
	switch assessment.RatingFor(score) {
	case assessment.RatingLow:
		return "#00d26a"
	case assessment.RatingMedium:
		return "#ffb830"
	default:
		return "#ff6b6b"
	}
}

var htmlTemplate = template.Must(template.New("report").Parse(reportHTML))

const reportHTML = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>ADO Migration Readiness Report</title>
    <style>
        :root {
            --bg-color: #1a1a2e;
            --card-bg: #16213e;
            --text-color: #eee;
            --accent-color: #0f4c75;
            --success: #00d26a;
            --warning: #ffb830;
            --danger: #ff6b6b;
        }
        * { box-sizing: border-box; margin: 0; padding: 0; }
        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Oxygen, Ubuntu, sans-serif;
            background: var(--bg-color);
            color: var(--text-color);
            line-height: 1.6;
            padding: 2rem;
        }
        .container { max-width: 1200px; margin: 0 auto; }
        h1 { color: #3498db; margin-bottom: 0.5rem; }
        h2 { color: #3498db; margin: 2rem 0 1rem; border-bottom: 2px solid var(--accent-color); padding-bottom: 0.5rem; }
        .subtitle { color: #888; margin-bottom: 2rem; }
        .card {
            background: var(--card-bg);
            border-radius: 8px;
            padding: 1.5rem;
            margin-bottom: 1.5rem;
            box-shadow: 0 4px 6px rgba(0,0,0,0.3);
        }
        .score-card {
            text-align: center;
            padding: 2rem;
        }
        .score { font-size: 4rem; font-weight: bold; }
        .score.low { color: var(--success); }
        .score.medium { color: var(--warning); }
        .score.high { color: var(--danger); }
        table { width: 100%; border-collapse: collapse; }
        th, td { padding: 0.75rem; text-align: left; border-bottom: 1px solid #333; }
        th { color: #3498db; font-weight: 600; }
        .badge {
            display: inline-block;
            padding: 0.25rem 0.75rem;
            border-radius: 20px;
            font-size: 0.875rem;
            font-weight: 500;
        }
        .badge.low { background: var(--success); color: #000; }
        .badge.medium { background: var(--warning); color: #000; }
        .badge.high { background: var(--danger); color: #fff; }
        .progress-bar {
            background: #333;
            border-radius: 4px;
            height: 8px;
            overflow: hidden;
        }
        .progress-fill {
            height: 100%;
            border-radius: 4px;
            transition: width 0.3s ease;
        }
        .blocker {
            background: rgba(255,107,107,0.1);
            border-left: 4px solid var(--danger);
            padding: 1rem;
            margin: 0.5rem 0;
        }
        .recommendation {
            background: rgba(52,152,219,0.1);
            border-left: 4px solid #3498db;
            padding: 1rem;
            margin: 0.5rem 0;
        }
        .grid { display: grid; grid-template-columns: repeat(auto-fit, minmax(200px, 1fr)); gap: 1rem; }
        .stat { text-align: center; }
        .stat-value { font-size: 2rem; font-weight: bold; color: #3498db; }
        .stat-label { color: #888; font-size: 0.875rem; }
        footer { text-align: center; margin-top: 3rem; color: #666; }
    </style>
</head>
<body>
    <div class="container">
        <h1>🔍 ADO Migration Readiness Report</h1>
        <p class="subtitle">
            Organization: {{.Organization}}<br>
            Scanned: {{.Scanned}}
        </p>

        <div class="card score-card">
            <div class="score {{.OverallClass}}">{{.OverallScore}}/100</div>
            <div>Overall Complexity: <span class="badge {{.OverallClass}}">{{.OverallRating}}</span></div>
        </div>

        <h2>📊 Summary</h2>
        <div class="grid">
            <div class="card stat">
                <div class="stat-value">{{.TotalProjects}}</div>
                <div class="stat-label">Projects</div>
            </div>
            <div class="card stat">
                <div class="stat-value">{{.TotalRepos}}</div>
                <div class="stat-label">Repositories</div>
            </div>
            <div class="card stat">
                <div class="stat-value">{{.Pipelines}}</div>
                <div class="stat-label">Pipelines</div>
            </div>
            <div class="card stat">
                <div class="stat-value">{{.WorkItems}}</div>
                <div class="stat-label">Work Items</div>
            </div>
        </div>

        <h2>📈 Complexity Breakdown</h2>
        <div class="card">
            <table>
                <tr>
                    <th>Category</th>
                    <th>Count</th>
                    <th>Complexity</th>
                    <th>Score</th>
                    <th>Est. Effort</th>
                </tr>
                {{range .Categories}}<tr>
                    <td>{{.Name}}</td>
                    <td>{{.Count}}</td>
                    <td><span class="badge {{.Class}}">{{.Rating}}</span></td>
                    <td>
                        <div class="progress-bar">
                            <div class="progress-fill" style="width: {{.Score}}%; background: {{.Color}};"></div>
                        </div>
                    </td>
                    <td>{{.Effort}}</td>
                </tr>
                {{end}}
            </table>
        </div>

        <h2>📁 Projects</h2>
        <div class="card">
            <table>
                <tr>
                    <th>Project</th>
                    <th>Repos</th>
                    <th>Pipelines</th>
                    <th>Work Items</th>
                    <th>Notes</th>
                </tr>
                {{range .Projects}}<tr>
                    <td>{{.Name}}</td>
                    <td>{{.Repos}}</td>
                    <td>{{.Pipelines}}</td>
                    <td>{{.WorkItems}}</td>
                    <td>{{.Notes}}</td>
                </tr>
                {{end}}
            </table>
        </div>

        {{if .Blockers}}<h2>⚠️ Migration Blockers</h2>
        <div class="card">
            {{range .Blockers}}<div class="blocker">⚠️ {{.}}</div>
            {{end}}
        </div>
        {{else}}<h2>✅ No Blockers</h2>
        <div class="card" style="background: rgba(0,210,106,0.1); border-left: 4px solid var(--success);">
            No major migration blockers identified!
        </div>
        {{end}}

        <h2>💡 Recommendations</h2>
        <div class="card">
            <div class="recommendation">Start with repositories - they typically have the lowest complexity</div>
            <div class="recommendation">Use GitHub Enterprise Importer (GEI) for repository migration</div>
            <div class="recommendation">Convert Classic pipelines to YAML before migrating</div>
            <div class="recommendation">Plan work item migration separately - consider GitHub Issues or Projects</div>
            <div class="recommendation">Review service connections and variable groups for secrets handling</div>
        </div>

        <footer>
            Generated by <strong>adoready</strong><br>
            <a href="https://github.com/felixgeelhaar/adoready" style="color: #3498db;">GitHub Repository</a>
        </footer>
    </div>
</body>
</html>
`
