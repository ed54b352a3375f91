package shell

import (
	"strconv"
	"strings"
)

// ParsePriority reads a non-negative priority. Anything that is not a
// uint32, negatives included, falls back to 0.
func ParsePriority(s string) uint32 {
	p, err := strconv.ParseUint(strings.TrimSpace(s), 10, 32)
	if err != nil {
		return 0
	}
	return uint32(p)
}

// ParseTags splits a comma-separated line, trims every tag and drops empty
// ones.
func ParseTags(s string) []string {
	var tags []string
	for _, part := range strings.Split(s, ",") {
		if tag := strings.TrimSpace(part); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}
