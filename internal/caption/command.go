package caption

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// CommandCaptioner runs a shell command per image and takes its output as
// the caption. The quoted image path is appended to Cmd. Check, when set,
// is a command whose zero exit status means the service is up.
type CommandCaptioner struct {
	Cmd   string
	Check string
}

// Caption runs Cmd for path.
func (c CommandCaptioner) Caption(ctx context.Context, path string) (string, error) {
	line := c.Cmd + " " + shquote(path)
	cmd := exec.CommandContext(ctx, "sh", "-c", line)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("%s: %w: %s", c.Cmd, err, strings.TrimSpace(stderr.String()))
	}
	return strings.TrimSpace(stdout.String()), nil
}

// Online runs Check.
func (c CommandCaptioner) Online(ctx context.Context) bool {
	if c.Check == "" {
		return true
	}
	return exec.CommandContext(ctx, "sh", "-c", c.Check).Run() == nil
}

func shquote(s string) string {
	if strings.Contains(s, `"`) {
		return "'" + s + "'"
	}
	return `"` + s + `"`
}
