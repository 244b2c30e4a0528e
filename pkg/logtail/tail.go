// Copyright (c) OpenMMLab. All rights reserved.

// Package logtail reads the tail of a run log for failure diagnostics.
package logtail

import (
	"bufio"
	"fmt"
	"os"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Tail returns up to n last lines of the file at path, in order. Lines are
// passed through CleanUTF8 since training logs occasionally carry a BOM or
// broken multibyte sequences.
func Tail(path string, n int) ([]string, error) {
	if n <= 0 {
		return nil, fmt.Errorf("line count must be positive, got %d", n)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	// 1MB buffer for long lines
	const maxCapacity = 1024 * 1024
	buf := make([]byte, maxCapacity)
	scanner.Buffer(buf, maxCapacity)

	// Ring buffer of the last n lines
	ring := make([]string, n)
	index := 0
	lineCount := 0

	for scanner.Scan() {
		ring[index] = scanner.Text()
		index = (index + 1) % n
		lineCount++
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("log scanning error: %w", err)
	}

	start := 0
	if lineCount > n {
		start = index
	}

	count := lineCount
	if count > n {
		count = n
	}

	lines := make([]string, 0, count)
	for i := 0; i < count; i++ {
		lines = append(lines, CleanUTF8(ring[(start+i)%n]))
	}

	return lines, nil
}

// CleanUTF8 strips a BOM and replaces invalid UTF-8 sequences.
func CleanUTF8(s string) string {
	utf8bom := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	result, _, err := transform.String(utf8bom, s)
	if err != nil {
		return s
	}
	return result
}
