package process

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"upside-down-research.com/oss/praxis/internal/agent"
	"upside-down-research.com/oss/praxis/internal/goap"
)

func trivialAgent(name string) *agent.Agent {
	return &agent.Agent{
		Name:       name,
		Conditions: []agent.Condition{{Name: "done"}},
		Goals:      []goap.Goal{goap.NewGoal("g", goap.WorldState{"done": goap.True}, 1)},
	}
}

func storedProcess(id string, terminal bool) *AgentProcess {
	p := New(trivialAgent("stored"), Config{ID: id, Options: agent.Options{Test: true}})
	if terminal {
		p.Kill()
	}
	return p
}

func TestRepositorySaveFindDelete(t *testing.T) {
	repo := NewInMemoryRepository(10)
	p := storedProcess("p-1", false)

	repo.Save(p)
	got, ok := repo.FindByID("p-1")
	require.True(t, ok)
	assert.Same(t, p, got)

	// Saving again refreshes, it does not duplicate.
	repo.Save(p)
	assert.Equal(t, 1, repo.Len())

	repo.Delete("p-1")
	_, ok = repo.FindByID("p-1")
	assert.False(t, ok)
	assert.Equal(t, 0, repo.Len())
}

func TestRepositoryEvictsOldestTerminalFirst(t *testing.T) {
	repo := NewInMemoryRepository(3)
	running := storedProcess("running-old", false)
	done1 := storedProcess("done-1", true)
	done2 := storedProcess("done-2", true)

	repo.Save(running)
	repo.Save(done1)
	repo.Save(done2)
	require.Equal(t, 3, repo.Len())

	repo.Save(storedProcess("fresh", false))

	// The oldest entry is still running, so the next-oldest terminal
	// entry goes instead.
	_, ok := repo.FindByID("running-old")
	assert.True(t, ok)
	_, ok = repo.FindByID("done-1")
	assert.False(t, ok)
	_, ok = repo.FindByID("done-2")
	assert.True(t, ok)
	assert.Equal(t, 3, repo.Len())
}

func TestRepositoryOverflowsWhenNothingIsTerminal(t *testing.T) {
	repo := NewInMemoryRepository(2)
	for i := 0; i < 4; i++ {
		repo.Save(storedProcess(fmt.Sprintf("live-%d", i), false))
	}
	assert.Equal(t, 4, repo.Len(), "running processes are never evicted")

	ids := make([]string, 0)
	for _, p := range repo.List() {
		ids = append(ids, p.ID())
	}
	assert.Equal(t, []string{"live-0", "live-1", "live-2", "live-3"}, ids)
}

func TestRepositoryConcurrentAccess(t *testing.T) {
	repo := NewInMemoryRepository(100)
	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 25; i++ {
				id := fmt.Sprintf("w%d-p%d", w, i)
				repo.Save(storedProcess(id, true))
				repo.FindByID(id)
				repo.List()
			}
		}(w)
	}
	wg.Wait()
	assert.LessOrEqual(t, repo.Len(), 200)
}

func TestExportWritesArtifact(t *testing.T) {
	a := trivialAgent("exporter")
	p := New(a, Config{ID: "exporter >> abc", Options: agent.Options{Test: true}})
	p.Blackboard().Bind("topic", "herons")
	p.Blackboard().SetCondition("done", true)
	require.Equal(t, Completed, p.Run(context.Background()))

	dir := t.TempDir()
	path, err := Export(p, dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Dir(path), dir)
	assert.False(t, strings.ContainsAny(filepath.Base(path), " >"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, `"agentName": "exporter"`)
	assert.Contains(t, content, `"status": "COMPLETED"`)
	assert.Contains(t, content, `"topic"`)
}

func TestArtifactListsIdentityNamesWithoutValues(t *testing.T) {
	p := New(trivialAgent("courier"), Config{Options: agent.Options{
		Test: true,
		Identities: map[string]string{
			"github": "ghp_secret",
			"aws":    "AKIA_secret",
		},
	}})

	artifact := BuildArtifact(p)
	assert.Equal(t, []string{"aws", "github"}, artifact.IdentityNames)

	data, err := json.Marshal(artifact)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "ghp_secret")
	assert.NotContains(t, string(data), "AKIA_secret")
}

func TestProcessNames(t *testing.T) {
	name := NewProcessName()
	parts := strings.Split(name, "-")
	require.Len(t, parts, 3)
	assert.NotEmpty(t, parts[0])
	assert.NotEmpty(t, parts[1])
	assert.Len(t, parts[2], 8)

	child := ChildProcessID("writer")
	assert.True(t, strings.HasPrefix(child, "writer >> "))

	assert.NotEqual(t, NewProcessID(), NewProcessID())
}
