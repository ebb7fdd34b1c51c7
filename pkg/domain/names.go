package domain

import (
	"fmt"
	"regexp"
	"strings"
)

// repoNamePattern matches valid GitHub repository names: alphanumeric
// with hyphens, underscores, and dots.
var repoNamePattern = regexp.MustCompile(`^[a-zA-Z0-9._-]+$`)

// orgNamePattern matches valid GitHub organization logins: alphanumeric
// with interior hyphens.
var orgNamePattern = regexp.MustCompile(`^[a-zA-Z0-9](?:[a-zA-Z0-9-]*[a-zA-Z0-9])?$`)

// RepoName represents a validated target repository name.
type RepoName struct {
	value string
}

// NewRepoName creates a new RepoName from a string value.
// Returns an error if the value is invalid as a GitHub repository name.
func NewRepoName(value string) (RepoName, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return RepoName{}, fmt.Errorf("repository name cannot be empty")
	}
	if value == "." || value == ".." {
		return RepoName{}, fmt.Errorf("invalid repository name: %s", value)
	}
	if len(value) > 100 {
		return RepoName{}, fmt.Errorf("repository name exceeds 100 characters: %s", value)
	}
	if !repoNamePattern.MatchString(value) {
		return RepoName{}, fmt.Errorf("invalid repository name format: %s", value)
	}
	return RepoName{value: value}, nil
}

// MustRepoName creates a RepoName or panics if invalid. Use only in tests.
func MustRepoName(value string) RepoName {
	name, err := NewRepoName(value)
	if err != nil {
		panic(err)
	}
	return name
}

// String returns the string representation of the RepoName.
func (n RepoName) String() string {
	return n.value
}

// IsZero returns true if the RepoName is empty.
func (n RepoName) IsZero() bool {
	return n.value == ""
}

// Equals checks if two RepoNames are equal.
func (n RepoName) Equals(other RepoName) bool {
	return n.value == other.value
}

// OrgName represents a validated target organization login.
type OrgName struct {
	value string
}

// NewOrgName creates a new OrgName from a string value.
func NewOrgName(value string) (OrgName, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return OrgName{}, fmt.Errorf("organization name cannot be empty")
	}
	if len(value) > 39 {
		return OrgName{}, fmt.Errorf("organization name exceeds 39 characters: %s", value)
	}
	if !orgNamePattern.MatchString(value) {
		return OrgName{}, fmt.Errorf("invalid organization name format: %s", value)
	}
	return OrgName{value: value}, nil
}

// MustOrgName creates an OrgName or panics if invalid. Use only in tests.
func MustOrgName(value string) OrgName {
	name, err := NewOrgName(value)
	if err != nil {
		panic(err)
	}
	return name
}

// String returns the string representation of the OrgName.
func (n OrgName) String() string {
	return n.value
}

// IsZero returns true if the OrgName is empty.
func (n OrgName) IsZero() bool {
	return n.value == ""
}

// Equals checks if two OrgNames are equal.
func (n OrgName) Equals(other OrgName) bool {
	return n.value == other.value
}
