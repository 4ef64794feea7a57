package parser

import (
	"bufio"
	"bytes"
	"strings"
)

// locateKeys maps each top-level key to the 1-based line that introduces it.
// The TOML decoder does not expose key positions, so table headers and
// top-level assignments are found with a line scan.
func locateKeys(data []byte) map[string]int {
	lines := make(map[string]int)
	scanner := bufio.NewScanner(bytes.NewReader(data))

	lineNum := 0
	inTable := false
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if strings.HasPrefix(line, "[") {
			inTable = true
			header := strings.Trim(line, "[] \t")
			if i := strings.Index(header, "]"); i >= 0 {
				header = header[:i]
			}
			record(lines, firstSegment(header), lineNum)
			continue
		}

		if inTable {
			continue
		}
		if i := strings.Index(line, "="); i > 0 {
			record(lines, firstSegment(line[:i]), lineNum)
		}
	}

	return lines
}

func record(lines map[string]int, key string, lineNum int) {
	if key == "" {
		return
	}
	if _, seen := lines[key]; !seen {
		lines[key] = lineNum
	}
}

// firstSegment returns the first component of a dotted TOML key with any
// quoting removed.
func firstSegment(key string) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return ""
	}

	if q := key[0]; q == '"' || q == '\'' {
		if end := strings.IndexByte(key[1:], q); end >= 0 {
			return key[1 : end+1]
		}
		return strings.Trim(key, `"'`)
	}

	if i := strings.Index(key, "."); i >= 0 {
		key = key[:i]
	}
	return strings.TrimSpace(key)
}
