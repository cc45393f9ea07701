package artifacts

import (
	"path/filepath"

	"github.com/zjrosen/brainstorm/internal/orchestration/roles"
)

const (
	frameworkDir  = "framework"
	frameworkFile = "topic-framework.md"
	analysisFile  = "analysis.md"
	synthesisDir  = "synthesis"
	synthesisFile = "synthesis-report.md"

	// StatusFilename is the minimal status record written at the end of a run.
	StatusFilename = "status.json"
)

// Layout resolves artifact paths under one session namespace.
type Layout struct {
	root string
}

// NewLayout scopes artifacts to sessionDir.
func NewLayout(sessionDir string) Layout {
	return Layout{root: sessionDir}
}

// Root returns the session directory.
func (l Layout) Root() string {
	return l.root
}

// Framework returns the shared framework artifact path.
func (l Layout) Framework() string {
	return filepath.Join(l.root, frameworkDir, frameworkFile)
}

// Role returns the analysis artifact path for role.
func (l Layout) Role(role roles.Role) string {
	return filepath.Join(l.root, string(role), analysisFile)
}

// Synthesis returns the final report path.
func (l Layout) Synthesis() string {
	return filepath.Join(l.root, synthesisDir, synthesisFile)
}

// Status returns the status record path.
func (l Layout) Status() string {
	return filepath.Join(l.root, StatusFilename)
}
