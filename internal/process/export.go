package process

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"upside-down-research.com/oss/praxis/internal/llm"
)

// Artifact is the on-disk record of a finished run, written when the
// process options name an output directory.
type Artifact struct {
	ProcessID   string            `json:"processId"`
	ParentID    string            `json:"parentId,omitempty"`
	AgentName   string            `json:"agentName"`
	Status      Status            `json:"status"`
	Reason      string            `json:"reason,omitempty"`
	Goal        string            `json:"goal,omitempty"`
	CreatedAt   time.Time         `json:"createdAt"`
	ExportedAt  time.Time         `json:"exportedAt"`
	History     []ActionExecution `json:"history"`
	ToolUses    []ToolUse         `json:"toolUses,omitempty"`
	LlmCalls    []llm.Invocation  `json:"llmCalls,omitempty"`
	Bindings    []string          `json:"bindings,omitempty"`
	ObjectCount int               `json:"objectCount"`

	// IdentityNames lists which identities were bound, values withheld.
	IdentityNames []string `json:"identityNames,omitempty"`
}

// BuildArtifact snapshots a process into its exportable form.
func BuildArtifact(p *AgentProcess) *Artifact {
	a := &Artifact{
		ProcessID:   p.ID(),
		ParentID:    p.ParentID(),
		AgentName:   p.Agent().Name,
		Status:      p.Status(),
		Reason:      p.FailureReason(),
		CreatedAt:   p.CreatedAt(),
		ExportedAt:  time.Now(),
		History:     p.History(),
		ToolUses:    p.ToolUses(),
		LlmCalls:    p.LlmInvocations(),
		ObjectCount: len(p.Blackboard().Objects()),
	}
	if goal := p.CurrentGoal(); goal != nil {
		a.Goal = goal.Name
	}
	for key := range p.Blackboard().ExpressionModel() {
		a.Bindings = append(a.Bindings, key)
	}
	for name := range p.Options().Identities {
		a.IdentityNames = append(a.IdentityNames, name)
	}
	sort.Strings(a.IdentityNames)
	return a
}

// Export writes the run artifact as pretty JSON under dir, named after
// the process id.
func Export(p *AgentProcess, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create artifact directory: %w", err)
	}

	data, err := json.MarshalIndent(BuildArtifact(p), "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal artifact: %w", err)
	}

	path := filepath.Join(dir, artifactFileName(p.ID()))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write artifact: %w", err)
	}
	return path, nil
}

// artifactFileName flattens a process id into a safe file name. Child
// ids contain "<agent> >> <id>" separators.
func artifactFileName(processID string) string {
	safe := strings.NewReplacer(" ", "_", ">", "-", "/", "-").Replace(processID)
	return safe + ".json"
}
