// Package version computes MAJOR.MINOR version identifiers for decision
// records. Content edits bump MINOR; status changes bump MAJOR and zero
// MINOR. Records always start at Initial.
package version

import (
	"fmt"
	"strconv"
	"strings"
)

const Initial = "1.0"

// NextForEdit increments the MINOR component, keeping MAJOR. A missing or
// non-numeric component is treated as 0 before incrementing.
func NextForEdit(current string) string {
	major, minor := parse(current)
	return fmt.Sprintf("%d.%d", major, minor+1)
}

// NextForStatusChange increments the MAJOR component and resets MINOR.
func NextForStatusChange(current string) string {
	major, _ := parse(current)
	return fmt.Sprintf("%d.0", major+1)
}

func parse(raw string) (major, minor int) {
	parts := strings.SplitN(strings.TrimSpace(raw), ".", 2)
	major = parseComponent(parts[0])
	if len(parts) == 2 {
		minor = parseComponent(parts[1])
	}
	return major, minor
}

func parseComponent(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
