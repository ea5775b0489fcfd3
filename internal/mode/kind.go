package mode

import (
	"fmt"
	"strings"
)

// A deployment target.
type Kind string

const (
	App  Kind = "app"  // Local application container.
	Test Kind = "test" // One-shot containerized test suite.
	K8s  Kind = "k8s"  // Image for a Kubernetes deployment, built only.
)

// Returns the names of all targets, in display order.
func Kinds() []string {
	return []string{string(App), string(Test), string(K8s)}
}

// Parses a target name.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case App, Test, K8s:
		return k, nil
	default:
		return "", fmt.Errorf("%w %q, want one of %s", ErrUnknownKind, s, strings.Join(Kinds(), ", "))
	}
}

// Returns the target name.
func (k Kind) String() string {
	return string(k)
}
