package errors

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"strings"

	"rdsa-hq/dataval/pkg/schema/ast"
)

// ExtractContext reads the schema file and extracts the surrounding lines
// around the given location for error context display.
// It returns a formatted string showing the error location with line numbers.
func ExtractContext(location ast.Location, contextLines int) string {
	if !location.IsValid() {
		return ""
	}

	data, err := os.ReadFile(location.File)
	if err != nil {
		return ""
	}
	return ExtractContextFromSource(data, location, contextLines)
}

// ExtractContextFromSource is ExtractContext for in-memory documents.
func ExtractContextFromSource(src []byte, location ast.Location, contextLines int) string {
	if location.Line <= 0 {
		return ""
	}

	scanner := bufio.NewScanner(bytes.NewReader(src))
	lines := make([]string, 0)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil || len(lines) == 0 {
		return ""
	}

	errorLine := location.Line - 1
	if errorLine >= len(lines) {
		errorLine = len(lines) - 1
	}
	startLine := max(errorLine-contextLines, 0)
	endLine := min(errorLine+contextLines, len(lines)-1)

	var sb strings.Builder
	maxLineNumWidth := len(fmt.Sprintf("%d", endLine+1))

	for i := startLine; i <= endLine; i++ {
		lineNumStr := fmt.Sprintf("%*d", maxLineNumWidth, i+1)
		prefix := "  "
		if i == errorLine {
			prefix = "->"
		}

		sb.WriteString(fmt.Sprintf("%s %s | %s\n", prefix, lineNumStr, lines[i]))

		if i == errorLine && location.Column > 0 {
			padding := strings.Repeat(" ", location.Column-1)
			sb.WriteString(fmt.Sprintf("   %s | %s^\n", strings.Repeat(" ", maxLineNumWidth), padding))
		}
	}

	return sb.String()
}
