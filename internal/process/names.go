package process

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/google/uuid"
)

var nameAdjectives = []string{
	"amber", "brisk", "calm", "deft", "eager", "fleet", "grand", "hardy",
	"keen", "lucid", "noble", "quick", "sly", "stout", "tidy", "vivid",
}

var nameNouns = []string{
	"bohr", "curie", "darwin", "euler", "fermi", "franklin", "gauss", "hopper",
	"kepler", "lovelace", "meitner", "noether", "pasteur", "turing", "wu", "yalow",
}

// NewProcessName generates a readable two-token process name with a short
// suffix to avoid collisions, e.g. "brisk-yalow-1a2b3c4d".
func NewProcessName() string {
	adjective := nameAdjectives[rand.Intn(len(nameAdjectives))]
	noun := nameNouns[rand.Intn(len(nameNouns))]
	suffix := strings.Split(uuid.NewString(), "-")[0]
	return fmt.Sprintf("%s-%s-%s", adjective, noun, suffix)
}

// NewProcessID generates a globally unique process id.
func NewProcessID() string {
	return uuid.NewString()
}

// ChildProcessID derives a child id from the parent agent's name, per the
// "<agent> >> <id>" convention.
func ChildProcessID(parentAgentName string) string {
	return fmt.Sprintf("%s >> %s", parentAgentName, NewProcessID())
}
