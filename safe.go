package asciidoc

import (
	"context"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// SafeRoot bounds the filesystem and subprocess operations a translation is
// allowed to perform. Every include, eval:/sys:/sys2: system attribute, and
// filter invocation must be gated through it before touching the outside
// world (DESIGN NOTES §9, "Safe-mode cascade").
type SafeRoot struct {
	// Safe, when true, forbids subprocess execution and restricts file
	// reads to below Root.
	Safe bool
	// Root is the document directory. Include targets and filter working
	// directories are resolved relative to it.
	Root string
}

// isSafePath reports whether path may be read under the current safe-mode
// setting. An unsafe run (Safe == false) allows anything; a safe run only
// allows paths that resolve to somewhere at or below Root.
func (s SafeRoot) isSafePath(path string) bool {
	if !s.Safe {
		return true
	}
	abs := path
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(s.Root, path)
	}
	abs = filepath.Clean(abs)
	root := filepath.Clean(s.Root)
	rel, err := filepath.Rel(root, abs)
	if err != nil {
		return false
	}
	return rel == "." || (!strings.HasPrefix(rel, "..") && !filepath.IsAbs(rel))
}

// resolve joins a possibly-relative path against the document directory.
func (s SafeRoot) resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(s.Root, path)
}

// subprocessDeadline bounds every sys:/sys2:/filter invocation so a runaway
// child process cannot hang a translation forever (§5).
const subprocessDeadline = 30 * time.Second

// runShell executes cmd through the platform shell with the given stdin,
// capturing stdout (and, if includeStderr, stderr too). A non-zero exit is
// reported to the caller as a bool, not an error: per §7 a failing filter or
// sys command is a warning, not fatal, so callers decide how to surface it.
func runShell(workdir, cmdline, stdin string, includeStderr bool) (output string, ok bool, err error) {
	ctx, cancel := context.WithTimeout(context.Background(), subprocessDeadline)
	defer cancel()

	c := exec.CommandContext(ctx, "/bin/sh", "-c", cmdline)
	c.Dir = workdir

	var stdinBuf strings.Builder
	stdinBuf.WriteString(stdin)
	c.Stdin = strings.NewReader(stdinBuf.String())

	var out strings.Builder
	c.Stdout = &out
	if includeStderr {
		c.Stderr = &out
	}

	runErr := c.Run()
	if runErr != nil {
		if _, isExit := runErr.(*exec.ExitError); isExit {
			return out.String(), false, nil
		}
		return out.String(), false, runErr
	}
	return out.String(), true, nil
}
