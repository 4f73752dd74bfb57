// Package gitmirror maintains a docs-as-code mirror: accepted decision
// records are rendered to markdown and committed to a local git
// repository. The mirror is best-effort and never blocks governance
// operations.
package gitmirror

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"text/template"
	"time"

	"cairn/api/internal/store"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

const recordTemplate = `# ADR-{{.SequenceNumber}}: {{.Title}}

- Status: {{.Status}}
- Version: {{.Version}}
- Author: {{.Author}}
{{- if .Team}}
- Team: {{.Team}}
{{- end}}
{{- if .Tags}}
- Tags: {{join .Tags ", "}}
{{- end}}

## Context

{{.Context}}

## Decision

{{.Decision}}

## Consequences

{{.Consequences}}
{{- if .Alternatives}}

## Alternatives Considered

{{.Alternatives}}
{{- end}}
`

var tmpl = template.Must(template.New("record").Funcs(template.FuncMap{
	"join": strings.Join,
}).Parse(recordTemplate))

type Mirror struct {
	baseDir string
	mu      sync.Mutex
}

func New(baseDir string) *Mirror {
	return &Mirror{baseDir: baseDir}
}

// MirrorRecord renders the record to markdown and commits it under
// <projectKey>/ADR-<sequence>.md. An unchanged worktree commits nothing.
func (m *Mirror) MirrorRecord(record store.DecisionRecord, projectKey, actor string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	repo, err := m.ensureRepo()
	if err != nil {
		return err
	}

	relPath := filepath.Join(projectKey, fmt.Sprintf("ADR-%d.md", record.SequenceNumber))
	fullPath := filepath.Join(m.baseDir, relPath)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return fmt.Errorf("create project dir: %w", err)
	}

	var rendered strings.Builder
	if err := tmpl.Execute(&rendered, record); err != nil {
		return fmt.Errorf("render record: %w", err)
	}
	if err := os.WriteFile(fullPath, []byte(rendered.String()), 0o644); err != nil {
		return fmt.Errorf("write record file: %w", err)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("open worktree: %w", err)
	}
	if _, err := worktree.Add(relPath); err != nil {
		return fmt.Errorf("git add: %w", err)
	}

	status, err := worktree.Status()
	if err != nil {
		return fmt.Errorf("worktree status: %w", err)
	}
	if status.IsClean() {
		return nil
	}

	message := fmt.Sprintf("%s: ADR-%d %s (v%s, %s)", projectKey, record.SequenceNumber, record.Title, record.Version, record.Status)
	if _, err := worktree.Commit(message, &git.CommitOptions{
		Author: &object.Signature{
			Name:  actor,
			Email: sanitizeEmail(actor) + "@mirror.cairn.local",
			When:  time.Now(),
		},
	}); err != nil {
		return fmt.Errorf("commit record: %w", err)
	}
	return nil
}

func (m *Mirror) ensureRepo() (*git.Repository, error) {
	repo, err := git.PlainOpen(m.baseDir)
	if err == nil {
		return repo, nil
	}
	if !errors.Is(err, git.ErrRepositoryNotExists) {
		return nil, fmt.Errorf("open mirror repo: %w", err)
	}
	if err := os.MkdirAll(m.baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create mirror dir: %w", err)
	}
	repo, err = git.PlainInit(m.baseDir, false)
	if err != nil {
		return nil, fmt.Errorf("init mirror repo: %w", err)
	}
	return repo, nil
}

func sanitizeEmail(name string) string {
	cleaned := strings.ToLower(strings.TrimSpace(name))
	cleaned = strings.ReplaceAll(cleaned, " ", ".")
	if cleaned == "" {
		return "mirror"
	}
	return cleaned
}
