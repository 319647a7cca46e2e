package backend

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/creack/pty"

	"podscope/internal/events"
	"podscope/internal/inspect"
	"podscope/pkg/logging"
)

const sessionShell = "/bin/sh"

// ptySession holds the handles of one live exec session.
type ptySession struct {
	ptmx *os.File
	cmd  *exec.Cmd
}

// StartSession spawns `kubectl exec -it` through a PTY and streams raw
// output (ANSI sequences included) as session.output events, followed
// by session.done when the process exits. Any previous session is
// killed first: one Service owns at most one live session.
func (s *Service) StartSession(target inspect.Target, cols, rows int) error {
	if cols <= 0 {
		cols = 80
	}
	if rows <= 0 {
		rows = 24
	}

	cmd := exec.Command(kubectlPath(),
		"exec", "-it", target.PodName,
		"-n", target.Namespace,
		"--kubeconfig="+target.SourceFile,
		"--context="+target.ContextName,
		"--", sessionShell,
	)

	ptmx, err := pty.StartWithSize(cmd, &pty.Winsize{
		Cols: uint16(cols),
		Rows: uint16(rows),
	})
	if err != nil {
		return fmt.Errorf("starting exec session for %s/%s: %w", target.Namespace, target.PodName, err)
	}

	s.mu.Lock()
	if prev := s.session; prev != nil {
		killSession(prev)
	}
	s.session = &ptySession{ptmx: ptmx, cmd: cmd}
	s.mu.Unlock()

	logging.Debug("Backend", "exec session started for %s/%s", target.Namespace, target.PodName)

	go s.readSession(ptmx, cmd)
	return nil
}

// readSession pumps PTY output onto the bus until EOF, then reaps the
// child and signals session.done.
func (s *Service) readSession(ptmx *os.File, cmd *exec.Cmd) {
	buf := make([]byte, 4096)
	for {
		n, err := ptmx.Read(buf)
		if n > 0 {
			s.bus.Publish(events.TopicSessionOutput, string(buf[:n]))
		}
		if err != nil {
			break
		}
	}
	_ = cmd.Wait()

	s.mu.Lock()
	if s.session != nil && s.session.cmd == cmd {
		s.session = nil
	}
	s.mu.Unlock()

	s.bus.Publish(events.TopicSessionDone, nil)
}

// SendInput forwards raw bytes (keystrokes, control sequences) to the
// live session. A no-op when no session is running.
func (s *Service) SendInput(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil {
		return nil
	}
	if _, err := s.session.ptmx.Write(data); err != nil {
		return fmt.Errorf("session write: %w", err)
	}
	return nil
}

// ResizeSession resizes the PTY to the given terminal dimensions.
func (s *Service) ResizeSession(cols, rows int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil {
		return nil
	}
	if err := pty.Setsize(s.session.ptmx, &pty.Winsize{
		Cols: uint16(cols),
		Rows: uint16(rows),
	}); err != nil {
		return fmt.Errorf("session resize: %w", err)
	}
	return nil
}

// StopSession kills the live session, if any. Safe to call when the
// session has already ended.
func (s *Service) StopSession() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session != nil {
		killSession(s.session)
		s.session = nil
	}
	return nil
}

func killSession(sess *ptySession) {
	if sess.cmd != nil && sess.cmd.Process != nil {
		_ = sess.cmd.Process.Kill()
	}
	if sess.ptmx != nil {
		_ = sess.ptmx.Close()
	}
}
