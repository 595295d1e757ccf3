// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// suggest.go - "Did you mean" suggestions for mistyped words.
package cli

import (
	"strings"
)

// validCommands is the list of command words ParseArgs accepts.
var validCommands = []string{
	"plot", "bench", "cpu", "history", "config", "version", "help",
}

// SuggestCommand returns the command closest to input, or "".
func SuggestCommand(input string) string {
	return suggest(input, validCommands)
}

// suggest returns the candidate closest to input within an edit distance
// that grows with the input length. Returns "" for no good match or an
// exact match.
func suggest(input string, candidates []string) string {
	input = strings.ToLower(input)

	// Don't suggest for very short inputs (likely intentional)
	if len(input) < 2 {
		return ""
	}

	// <=3 chars: 1 edit, 4-8 chars: 2 edits (catches "hepl"), longer: 3
	maxDistance := 1
	if len(input) >= 4 {
		maxDistance = 2
	}
	if len(input) > 8 {
		maxDistance = 3
	}

	bestMatch := ""
	bestDistance := -1
	for _, c := range candidates {
		distance := levenshteinDistance(input, strings.ToLower(c))
		if distance == 0 {
			return ""
		}
		if distance <= maxDistance && (bestDistance == -1 || distance < bestDistance) {
			bestDistance = distance
			bestMatch = c
		}
	}
	return bestMatch
}

// didYouMean formats a suggestion for an error example line.
func didYouMean(input string, candidates []string, prefix string) string {
	if s := suggest(input, candidates); s != "" {
		return "did you mean " + prefix + s + "?"
	}
	return ""
}

// levenshteinDistance calculates the edit distance between two strings:
// the minimum number of single-byte insertions, deletions or substitutions.
func levenshteinDistance(s1, s2 string) int {
	if len(s1) == 0 {
		return len(s2)
	}
	if len(s2) == 0 {
		return len(s1)
	}

	cols := len(s2) + 1

	// Two rows instead of the full matrix
	prev := make([]int, cols)
	curr := make([]int, cols)
	for j := 0; j < cols; j++ {
		prev[j] = j
	}

	for i := 1; i <= len(s1); i++ {
		curr[0] = i
		for j := 1; j < cols; j++ {
			cost := 0
			if s1[i-1] != s2[j-1] {
				cost = 1
			}
			curr[j] = min(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}

	return prev[cols-1]
}
