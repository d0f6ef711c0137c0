package picker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/wethinkt/go-pikeru/internal/tuilog"
)

// Shquote wraps s in double quotes, or single quotes when s contains a
// double quote.
func Shquote(s string) string {
	if strings.Contains(s, `"`) {
		return "'" + s + "'"
	}
	return `"` + s + `"`
}

// Expand fills the placeholders of a command template for one path:
// [path] [name] [dir] [part] [ext]. part is the name up to its first dot;
// ext is "." plus the last extension and is left unquoted.
func Expand(template, path string) string {
	name := filepath.Base(path)
	part, _, _ := strings.Cut(name, ".")
	return strings.NewReplacer(
		"[path]", Shquote(path),
		"[dir]", Shquote(filepath.Dir(path)),
		"[ext]", "."+extension(name),
		"[name]", Shquote(name),
		"[part]", Shquote(part),
	).Replace(template)
}

// extension is the text after the last dot, or "" when the only dot is
// the leading one of a dotfile.
func extension(name string) string {
	i := strings.LastIndexByte(name, '.')
	if i <= 0 {
		return ""
	}
	return name[i+1:]
}

// RunCommand runs template once per path with bash, from the path's
// directory. Output of every run goes to out.
func RunCommand(ctx context.Context, template string, paths []string, out io.Writer) error {
	var errs []error
	for _, p := range paths {
		line := Expand(template, p)
		fmt.Fprintf(out, "CMD:%s\n", line)
		tuilog.Log.Info("Running command", "cmd", line)

		cmd := exec.CommandContext(ctx, "bash", "-c", line)
		cmd.Dir = filepath.Dir(p)
		cmd.Stdout = out
		cmd.Stderr = out
		if err := cmd.Run(); err != nil {
			tuilog.Log.Warn("Command failed", "cmd", line, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", filepath.Base(p), err))
		}
	}
	return errors.Join(errs...)
}
