package inspect

import "fmt"

// Mode selects how a pod is being inspected.
type Mode string

const (
	ModeExec     Mode = "exec"
	ModeLogs     Mode = "logs"
	ModeDescribe Mode = "describe"
	ModeCommand  Mode = "command"
)

// Target identifies what a session or output stream is attached to.
type Target struct {
	PodName   string
	Namespace string
	// SourceFile is the kubeconfig file owning the context; passed as
	// --kubeconfig to kubectl subprocesses.
	SourceFile string
	// ContextName is the context inside SourceFile; passed as --context.
	ContextName string
}

// IsComplete reports whether every field of the target is specified.
// Controllers refuse to start against a partial target.
func (t Target) IsComplete() bool {
	return t.PodName != "" && t.Namespace != "" && t.SourceFile != "" && t.ContextName != ""
}

// Equal reports whether two targets identify the same pod and context.
func (t Target) Equal(other Target) bool {
	return t == other
}

// Dimensions are the terminal viewport dimensions of a session.
type Dimensions struct {
	Columns int
	Rows    int
}

func errIncompleteTarget(t Target) error {
	return fmt.Errorf("target is not fully specified: %+v", t)
}

func errUnknownMode(m Mode) error {
	return fmt.Errorf("unknown mode %q", m)
}
