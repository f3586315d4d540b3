// Command echo-shim records one package invocation in the usage log.
//
// It is meant to be called from shell hooks, wrapper scripts, or editor
// integrations whenever a tracked package is used:
//
//	echo-shim <package> [context]
//
// Each call appends one line to ~/.echo/usage.log; the watcher folds those
// lines into usage statistics. Logging is best-effort: the shim never fails
// loudly, so a full disk or missing home directory cannot break the hook
// that invoked it.
//
// The shim must NOT import any internal echo packages. It is a standalone
// binary deployed separately from the main CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: echo-shim <package> [context]")
		os.Exit(2)
	}

	pkg := sanitize(os.Args[1])
	if pkg == "" {
		fmt.Fprintln(os.Stderr, "echo-shim: package name cannot be empty")
		os.Exit(2)
	}

	context := ""
	if len(os.Args) > 2 {
		context = sanitize(os.Args[2])
	}

	logUsage(pkg, context)
}

// logUsage appends "<unix_nano>,<package>[,<context>]" to ~/.echo/usage.log.
// Failures are silently ignored.
func logUsage(pkg, context string) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return
	}

	dir := filepath.Join(homeDir, ".echo")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return
	}

	// O_APPEND gives atomic single-write semantics on POSIX filesystems, so
	// concurrent shim invocations never interleave within a line.
	f, err := os.OpenFile(filepath.Join(dir, "usage.log"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return
	}
	defer f.Close()

	if context != "" {
		fmt.Fprintf(f, "%d,%s,%s\n", time.Now().UnixNano(), pkg, context)
	} else {
		fmt.Fprintf(f, "%d,%s\n", time.Now().UnixNano(), pkg)
	}
}

// sanitize strips whitespace and the field separator so a hostile argument
// cannot forge extra log fields.
func sanitize(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, "\n", "")
	return s
}
