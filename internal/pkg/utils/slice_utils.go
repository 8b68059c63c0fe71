package utils

import "strings"

// SplitAndClean splits a comma-separated list and drops blank entries.
func SplitAndClean(input string) []string {
	if input == "" {
		return nil
	}
	return CleanStrings(strings.Split(input, ","))
}

// CleanStrings trims every item and drops the empty ones.
func CleanStrings(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}
