package watcher

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/echo-systems/echo/internal/catalog"
	"github.com/echo-systems/echo/internal/recommender"
	"github.com/echo-systems/echo/internal/store"
)

const maxLogLinesPerPass = 10_000

// ProcessUsageLog reads new entries from the usage log since the last
// processed offset and folds them into the stored usage patterns: frequency
// is incremented, last_used advances, new contexts are merged, and the
// importance score is recomputed with the current config.
//
// Log format (one entry per line, written by cmd/echo-shim):
//
//	<unix_nano>,<package>[,<context>]
//
// Example:
//
//	1709012345678901234,pandas,data-analysis
//
// It returns the number of events applied. A missing log file is not an
// error; there is simply nothing to process yet.
func ProcessUsageLog(st *store.Store, logPath, offsetPath string, cfg recommender.Config) (int, error) {
	if _, err := os.Stat(logPath); os.IsNotExist(err) {
		return 0, nil
	}

	offset, err := readOffset(offsetPath)
	if err != nil {
		return 0, fmt.Errorf("read offset: %w", err)
	}

	f, err := os.Open(logPath)
	if err != nil {
		return 0, fmt.Errorf("open usage log: %w", err)
	}
	defer f.Close()

	if offset > 0 {
		if info, err := f.Stat(); err == nil && info.Size() < offset {
			// Log was truncated or rotated; start over.
			offset = 0
		}
		if _, err := f.Seek(offset, io.SeekStart); err != nil {
			return 0, fmt.Errorf("seek usage log: %w", err)
		}
	}

	type usageEvent struct {
		pkg       string
		context   string
		timestamp time.Time
	}
	var events []usageEvent

	scanner := bufio.NewScanner(f)
	for scanner.Scan() && len(events) < maxLogLinesPerPass {
		line := scanner.Text()
		if line == "" {
			continue
		}

		tsNano, pkg, context, ok := parseLogLine(line)
		if !ok {
			continue
		}

		events = append(events, usageEvent{
			pkg:       pkg,
			context:   context,
			timestamp: time.Unix(0, tsNano),
		})
	}
	if err := scanner.Err(); err != nil {
		return 0, fmt.Errorf("scan usage log: %w", err)
	}

	newOffset, err := f.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, fmt.Errorf("get new offset: %w", err)
	}

	if len(events) == 0 {
		if newOffset != offset {
			return 0, writeOffsetAtomic(offsetPath, newOffset)
		}
		return 0, nil
	}

	// Fold events into per-package pattern updates before touching the store
	// so a burst of events for one package costs one upsert.
	type patternDelta struct {
		count    int
		lastUsed time.Time
		contexts []string
	}
	deltas := make(map[string]*patternDelta)
	for _, e := range events {
		key := catalog.NormalizeName(e.pkg)
		d := deltas[key]
		if d == nil {
			d = &patternDelta{}
			deltas[key] = d
		}
		d.count++
		if e.timestamp.After(d.lastUsed) {
			d.lastUsed = e.timestamp
		}
		if e.context != "" {
			d.contexts = appendUnique(d.contexts, e.context)
		}
	}

	now := time.Now()
	for pkg, d := range deltas {
		pattern, err := st.GetUsagePattern(pkg)
		if err != nil {
			return 0, fmt.Errorf("load pattern for %s: %w", pkg, err)
		}
		if pattern == nil {
			pattern = &catalog.UsagePattern{PackageName: pkg}
		}

		pattern.Frequency += d.count
		if pattern.LastUsed == nil || d.lastUsed.After(*pattern.LastUsed) {
			lu := d.lastUsed
			pattern.LastUsed = &lu
		}
		for _, ctx := range d.contexts {
			pattern.Contexts = appendUnique(pattern.Contexts, ctx)
		}

		scores := recommender.ComputeImportance([]*catalog.UsagePattern{pattern}, now, cfg)
		pattern.ImportanceScore = scores[catalog.NormalizeName(pkg)]

		if err := st.UpsertUsagePattern(pattern); err != nil {
			return 0, fmt.Errorf("save pattern for %s: %w", pkg, err)
		}
	}

	// Only advance the offset after all patterns are saved.
	if err := writeOffsetAtomic(offsetPath, newOffset); err != nil {
		return 0, err
	}
	return len(events), nil
}

// parseLogLine parses "<unix_nano>,<package>[,<context>]".
// Returns ok=false on any malformed line.
func parseLogLine(line string) (int64, string, string, bool) {
	parts := strings.SplitN(line, ",", 3)
	if len(parts) < 2 {
		return 0, "", "", false
	}

	ts, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil || ts <= 0 {
		return 0, "", "", false
	}

	pkg := strings.TrimSpace(parts[1])
	if pkg == "" {
		return 0, "", "", false
	}

	context := ""
	if len(parts) == 3 {
		context = strings.TrimSpace(parts[2])
	}

	return ts, pkg, context, true
}

func appendUnique(list []string, item string) []string {
	for _, existing := range list {
		if strings.EqualFold(existing, item) {
			return list
		}
	}
	return append(list, item)
}

// readOffset reads the byte offset from the tracking file.
// Returns 0 if the file does not exist.
func readOffset(offsetPath string) (int64, error) {
	data, err := os.ReadFile(offsetPath)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	s := strings.TrimSpace(string(data))
	if s == "" {
		return 0, nil
	}
	offset, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse offset %q: %w", s, err)
	}
	return offset, nil
}

// writeOffsetAtomic writes newOffset via a temp-file rename so a crash
// mid-write never leaves a corrupt offset behind.
func writeOffsetAtomic(offsetPath string, newOffset int64) error {
	dir := filepath.Dir(offsetPath)
	tmpPath := filepath.Join(dir, ".offset.tmp")

	if err := os.WriteFile(tmpPath, []byte(strconv.FormatInt(newOffset, 10)), 0600); err != nil {
		return fmt.Errorf("write temp offset file: %w", err)
	}
	if err := os.Rename(tmpPath, offsetPath); err != nil {
		return fmt.Errorf("rename offset file: %w", err)
	}
	return nil
}
