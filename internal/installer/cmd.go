package installer

import (
	"bytes"
	"fmt"
	"os/exec"
)

// monitoredCmd runs a subprocess and accumulates its combined stdout and
// stderr for attachment to the failure returned by the caller (spec.md
// §4.7: "Each surfaces as an install error with the accumulated
// stdout/stderr attached"). Grounded on the teacher's
// internal/gps/cmd.go monitoredCmd/activityBuffer, trimmed of the
// timeout-kill machinery spec.md §5 explicitly rules out ("Cancellation/
// timeouts: none defined. Child-process exit codes are the sole
// completion signal.").
type monitoredCmd struct {
	cmd    *exec.Cmd
	stdout *bytes.Buffer
	stderr *bytes.Buffer
}

func newMonitoredCmd(cmd *exec.Cmd) *monitoredCmd {
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	cmd.Stdout, cmd.Stderr = stdout, stderr
	return &monitoredCmd{cmd: cmd, stdout: stdout, stderr: stderr}
}

func (c *monitoredCmd) run() error {
	return c.cmd.Run()
}

// combinedOutput runs the command and returns stdout on success; on
// failure it returns an error carrying both streams.
func (c *monitoredCmd) combinedOutput() ([]byte, error) {
	if err := c.run(); err != nil {
		return nil, &CommandError{
			Args:   c.cmd.Args,
			Stdout: c.stdout.String(),
			Stderr: c.stderr.String(),
			Err:    err,
		}
	}
	return c.stdout.Bytes(), nil
}

// CommandError wraps a failed subprocess invocation with its accumulated
// output, the shape every installer failure mode in spec.md §4.7 takes.
type CommandError struct {
	Args   []string
	Stdout string
	Stderr string
	Err    error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("command %v failed: %v\n--- stdout ---\n%s\n--- stderr ---\n%s", e.Args, e.Err, e.Stdout, e.Stderr)
}

func (e *CommandError) Unwrap() error { return e.Err }

func runIn(dir, name string, args ...string) ([]byte, error) {
	cmd := exec.Command(name, args...)
	cmd.Dir = dir
	c := newMonitoredCmd(cmd)
	return c.combinedOutput()
}
