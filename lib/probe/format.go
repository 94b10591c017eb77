package probe

import (
	"fmt"
	"strconv"
	"strings"
)

var rateSuffixes = []string{"B", "KB", "MB", "GB", "TB", "PB", "EB", "ZB", "YB"}

// FormatRate renders a byte value as a short fixed-width string, e.g. "12.5 MB".
// The number part is at most four characters wide and left aligned in five
// columns so that consecutive log lines stay aligned.
func FormatRate(v float64) string {
	number := v
	multi := 0

	for number >= 1000.0 && multi < len(rateSuffixes)-1 {
		multi++
		number /= 1024.0
	}

	s := strconv.FormatFloat(number, 'f', -1, 64)
	if len(s) > 4 {
		s = s[:4]
	}
	s = strings.TrimSuffix(s, ".")
	if len(s) < 4 {
		s += " "
	}

	return fmt.Sprintf("%-5s%s", s, rateSuffixes[multi])
}
