package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

const traceLineWidth = 16

// writeTrace persists vec as a search trace: an optional comment line
// with the command used, then lines of the form
// "%# <start-index>: [v0],[v1],..." with traceLineWidth values per line.
func writeTrace(path, cmdline string, vec []int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("trace: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if cmdline != "" {
		fmt.Fprintf(w, "%% %s\n", cmdline)
	}
	for start := 0; start < len(vec); start += traceLineWidth {
		end := start + traceLineWidth
		if end > len(vec) {
			end = len(vec)
		}
		parts := make([]string, end-start)
		for i, v := range vec[start:end] {
			parts[i] = fmt.Sprintf("[%d]", v)
		}
		if _, err := fmt.Fprintf(w, "%%# %d: %s\n", start, strings.Join(parts, ",")); err != nil {
			return fmt.Errorf("trace: %w", err)
		}
	}
	return w.Flush()
}

// readTrace re-reads a trace file written by writeTrace, reconstructing
// the flat allele vector. Returns an error if the file is absent, malformed,
// or doesn't cover exactly [0, wantLen).
func readTrace(path string, wantLen int) ([]int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	vec := make([]int, 0, wantLen)
	seen := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "%#") {
			continue
		}
		rest := strings.TrimPrefix(line, "%#")
		colon := strings.Index(rest, ":")
		if colon < 0 {
			return nil, fmt.Errorf("trace: malformed line %q", line)
		}
		start, err := strconv.Atoi(strings.TrimSpace(rest[:colon]))
		if err != nil {
			return nil, fmt.Errorf("trace: malformed start index in %q: %w", line, err)
		}
		if start != seen {
			return nil, fmt.Errorf("trace: expected start index %d, got %d", seen, start)
		}
		for _, tok := range strings.Split(rest[colon+1:], ",") {
			tok = strings.TrimSpace(tok)
			tok = strings.TrimPrefix(tok, "[")
			tok = strings.TrimSuffix(tok, "]")
			if tok == "" {
				continue
			}
			v, err := strconv.Atoi(tok)
			if err != nil {
				return nil, fmt.Errorf("trace: malformed value %q: %w", tok, err)
			}
			vec = append(vec, v)
			seen++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(vec) != wantLen {
		return nil, fmt.Errorf("trace: expected %d values, got %d", wantLen, len(vec))
	}
	return vec, nil
}
