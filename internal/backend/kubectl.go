package backend

import (
	"bufio"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"podscope/internal/events"
	"podscope/internal/inspect"
	"podscope/pkg/logging"
)

// Describe runs `kubectl describe pod` for the target and returns the
// combined output. One-shot request/response; no events involved.
func (s *Service) Describe(ctx context.Context, target inspect.Target) (string, error) {
	cmd := exec.CommandContext(ctx, kubectlPath(),
		"describe", "pod", target.PodName,
		"-n", target.Namespace,
		"--kubeconfig="+target.SourceFile,
		"--context="+target.ContextName,
	)

	out, err := cmd.CombinedOutput()
	if err != nil {
		// kubectl writes the reason to its output; include it so the
		// caller can show something more useful than an exit status.
		detail := strings.TrimSpace(string(out))
		if detail != "" {
			return "", fmt.Errorf("kubectl describe failed: %s", detail)
		}
		return "", fmt.Errorf("kubectl describe failed: %w", err)
	}
	return string(out), nil
}

// RunCommand runs an arbitrary kubectl command (the leading "kubectl"
// may be included or omitted) and streams stdout lines as command.line
// events, then command.done. Stderr is folded into the same stream.
func (s *Service) RunCommand(ctx context.Context, target inspect.Target, command string) error {
	args := strings.Fields(command)
	if len(args) > 0 && args[0] == "kubectl" {
		args = args[1:]
	}
	if len(args) == 0 {
		return fmt.Errorf("empty command")
	}
	args = append(args,
		"--kubeconfig="+target.SourceFile,
		"--context="+target.ContextName,
	)

	cmd := exec.CommandContext(ctx, kubectlPath(), args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("command stdout pipe: %w", err)
	}
	cmd.Stderr = cmd.Stdout // CombinedOutput semantics, but streaming

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("starting kubectl %s: %w", args[0], err)
	}

	logging.Debug("Backend", "running kubectl %s", strings.Join(args, " "))

	go func() {
		scanner := bufio.NewScanner(stdout)
		for scanner.Scan() {
			s.bus.Publish(events.TopicCommandLine, scanner.Text())
		}
		_ = cmd.Wait()
		s.bus.Publish(events.TopicCommandDone, nil)
	}()
	return nil
}
