package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/felixgeelhaar/adoready/internal/infrastructure/ado"
	"github.com/felixgeelhaar/adoready/pkg/application"
	"github.com/felixgeelhaar/adoready/pkg/domain"
	"github.com/felixgeelhaar/adoready/pkg/domain/assessment"
	"github.com/felixgeelhaar/adoready/pkg/domain/migration"
)

type configRequest struct {
	OrganizationURL string `json:"organization_url"`
	PAT             string `json:"pat"`
	GitHubToken     string `json:"github_token,omitempty"`
	GitHubOrg       string `json:"github_org,omitempty"`
}

// configResponse reports configuration presence. The PAT and token are
// never echoed back.
type configResponse struct {
	Configured      bool   `json:"configured"`
	OrganizationURL string `json:"organization_url,omitempty"`
	GitHubOrg       string `json:"github_org,omitempty"`
}

type connectionTestResponse struct {
	Success  bool                    `json:"success"`
	Message  string                  `json:"message"`
	Projects []assessment.ProjectRef `json:"projects,omitempty"`
}

type scanRequest struct {
	Project string `json:"project,omitempty"`
}

type actionResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type scanStatusResponse struct {
	InProgress bool `json:"in_progress"`
	application.ScanStatus
}

type migrationStatusResponse struct {
	InProgress bool `json:"in_progress"`
	application.MigrationStatus
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"version": s.version,
	})
}

func (s *Server) handleGetConfig(w http.ResponseWriter, _ *http.Request) {
	if !s.repo.HasADOConfig() {
		writeJSON(w, http.StatusOK, configResponse{})
		return
	}

	cfg, err := s.repo.LoadADOConfig()
	if err != nil {
		writeJSON(w, http.StatusOK, configResponse{})
		return
	}

	resp := configResponse{Configured: true, OrganizationURL: cfg.OrganizationURL}
	if gh, err := s.repo.LoadGitHubConfig(); err == nil {
		resp.GitHubOrg = gh.Org
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSaveConfig(w http.ResponseWriter, r *http.Request) {
	var req configRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.OrganizationURL == "" || req.PAT == "" {
		writeError(w, http.StatusBadRequest, "organization_url and pat are required")
		return
	}

	cfg := &domain.ADOConfig{OrganizationURL: req.OrganizationURL, PAT: req.PAT}
	if err := s.repo.SaveADOConfig(cfg); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if req.GitHubToken != "" {
		gh := &domain.GitHubConfig{Token: req.GitHubToken, Org: req.GitHubOrg}
		if err := s.repo.SaveGitHubConfig(gh); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	writeJSON(w, http.StatusOK, actionResponse{Success: true, Message: "Configuration saved"})
}

func (s *Server) handleDeleteConfig(w http.ResponseWriter, _ *http.Request) {
	if err := s.repo.DeleteADOConfig(); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, actionResponse{Success: true, Message: "Configuration deleted"})
}

func (s *Server) handleTestConnection(w http.ResponseWriter, r *http.Request) {
	if !s.repo.HasADOConfig() {
		writeJSON(w, http.StatusOK, connectionTestResponse{
			Message: "Not configured. Please configure first.",
		})
		return
	}

	cfg, err := s.repo.LoadADOConfig()
	if err != nil {
		writeJSON(w, http.StatusOK, connectionTestResponse{
			Message: fmt.Sprintf("Connection failed: %v", err),
		})
		return
	}

	collector := s.collect(cfg.OrganizationURL, cfg.PAT)
	projects, err := collector.ListProjects(r.Context())
	if err != nil {
		message := fmt.Sprintf("Connection failed: %v", err)
		if errors.Is(err, ado.ErrAuthFailed) {
			message = ado.ErrAuthFailed.Error()
		}
		writeJSON(w, http.StatusOK, connectionTestResponse{Message: message})
		return
	}

	writeJSON(w, http.StatusOK, connectionTestResponse{
		Success:  true,
		Message:  fmt.Sprintf("Connected successfully! Found %d projects.", len(projects)),
		Projects: projects,
	})
}

func (s *Server) handleStartScan(w http.ResponseWriter, r *http.Request) {
	// The body is optional; an empty scan request means scan everything.
	var req scanRequest
	_ = json.NewDecoder(r.Body).Decode(&req)

	err := s.scans.StartScan(req.Project)
	switch {
	case errors.Is(err, application.ErrScanInProgress):
		writeError(w, http.StatusConflict, "Scan already in progress")
	case errors.Is(err, application.ErrNotConfigured):
		writeError(w, http.StatusBadRequest, "Not configured")
	case err != nil:
		writeError(w, http.StatusInternalServerError, err.Error())
	default:
		writeJSON(w, http.StatusOK, actionResponse{Success: true, Message: "Scan started"})
	}
}

func (s *Server) handleScanStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, scanStatusResponse{
		InProgress: s.scans.InProgress(),
		ScanStatus: s.scans.Status(),
	})
}

func (s *Server) handleScanResults(w http.ResponseWriter, _ *http.Request) {
	result, err := s.scans.Result()
	if err != nil {
		writeError(w, http.StatusNotFound, "No scan results available")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleListRepos(w http.ResponseWriter, _ *http.Request) {
	result, err := s.scans.Result()
	if err != nil {
		writeError(w, http.StatusNotFound, "No scan results. Run scan first.")
		return
	}
	writeJSON(w, http.StatusOK, map[string][]assessment.FlatRepo{
		"repos": result.FlattenRepos(),
	})
}

func (s *Server) handleStartMigration(w http.ResponseWriter, r *http.Request) {
	var req migration.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Visibility == "" {
		req.Visibility = "private"
	}

	err := s.migrations.StartMigration(req)
	switch {
	case errors.Is(err, application.ErrMigrationInProgress):
		writeError(w, http.StatusConflict, "Migration already in progress")
	case errors.Is(err, application.ErrNoScanResults):
		writeError(w, http.StatusNotFound, "No scan results. Run scan first.")
	case errors.Is(err, application.ErrInvalidRequest):
		writeError(w, http.StatusBadRequest, err.Error())
	case err != nil:
		writeError(w, http.StatusInternalServerError, err.Error())
	default:
		writeJSON(w, http.StatusOK, actionResponse{
			Success: true,
			Message: fmt.Sprintf("Starting migration of %d repos", len(req.Repos)),
		})
	}
}

func (s *Server) handleMigrationStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, migrationStatusResponse{
		InProgress:      s.migrations.InProgress(),
		MigrationStatus: s.migrations.Status(),
	})
}
