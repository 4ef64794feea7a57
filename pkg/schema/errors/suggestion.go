package errors

import (
	"fmt"
	"strings"
)

// SuggestFieldName suggests possible field names when an unknown field is used.
// It uses Levenshtein distance to find the closest recognized field.
func SuggestFieldName(unknown string, validFields []string) string {
	if len(validFields) == 0 {
		return ""
	}

	minDistance := 1000
	var bestMatch string

	for _, field := range validFields {
		dist := levenshteinDistance(unknown, field)
		if dist < minDistance {
			minDistance = dist
			bestMatch = field
		}
	}

	// Only suggest if the distance is reasonable (< 5 edits)
	if minDistance < 5 {
		return fmt.Sprintf("Did you mean '%s'?", bestMatch)
	}

	if len(validFields) > 5 {
		return fmt.Sprintf("Valid fields include: %s, ...", strings.Join(validFields[:5], ", "))
	}
	return fmt.Sprintf("Valid fields: %s", strings.Join(validFields, ", "))
}

// SuggestDataType suggests a recognized data type for an unknown one.
// It returns "" when nothing is close enough to be useful.
func SuggestDataType(unknown string, validTypes []string) string {
	minDistance := 1000
	var bestMatch string

	for _, t := range validTypes {
		dist := levenshteinDistance(strings.ToLower(unknown), strings.ToLower(t))
		if dist < minDistance {
			minDistance = dist
			bestMatch = t
		}
	}

	if bestMatch != "" && minDistance < 3 {
		return fmt.Sprintf("Did you mean '%s'?", bestMatch)
	}
	return ""
}

// levenshteinDistance computes the Levenshtein distance between two strings.
func levenshteinDistance(s1, s2 string) int {
	if s1 == s2 {
		return 0
	}

	len1 := len(s1)
	len2 := len(s2)

	matrix := make([][]int, len1+1)
	for i := range matrix {
		matrix[i] = make([]int, len2+1)
	}

	for i := 0; i <= len1; i++ {
		matrix[i][0] = i
	}
	for j := 0; j <= len2; j++ {
		matrix[0][j] = j
	}

	for i := 1; i <= len1; i++ {
		for j := 1; j <= len2; j++ {
			cost := 1
			if s1[i-1] == s2[j-1] {
				cost = 0
			}

			matrix[i][j] = min(
				matrix[i-1][j]+1,      // Deletion
				matrix[i][j-1]+1,      // Insertion
				matrix[i-1][j-1]+cost, // Substitution
			)
		}
	}

	return matrix[len1][len2]
}
