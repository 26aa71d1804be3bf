package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProcessContextIdentity(t *testing.T) {
	pc := &ProcessContext{Options: Options{
		Identities: map[string]string{"github": "ghp_abc123"},
	}}

	v, ok := pc.Identity("github")
	assert.True(t, ok)
	assert.Equal(t, "ghp_abc123", v)

	_, ok = pc.Identity("gitlab")
	assert.False(t, ok)
}

func TestProcessContextIdentityWithoutBindings(t *testing.T) {
	pc := &ProcessContext{}
	_, ok := pc.Identity("github")
	assert.False(t, ok)
}
