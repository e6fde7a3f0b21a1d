package shell

import (
	"fmt"

	"koharu-go/internal/koharu"
)

var sizeUnits = []string{"B", "KB", "MB", "GB"}

// FormatSize renders a byte count with one decimal in the largest unit that
// keeps the value below 1024, capped at GB.
func FormatSize(n int64) string {
	v := float64(n)
	i := 0
	for v >= 1024 && i < len(sizeUnits)-1 {
		v /= 1024
		i++
	}
	return fmt.Sprintf("%.1f %s", v, sizeUnits[i])
}

// displayVersion prefixes a bare version number with "v".
func displayVersion(v string) string {
	if v == "" || v == koharu.UnknownVersion || v[0] == 'v' {
		return v
	}
	return "v" + v
}

func knownVersion(v string) bool {
	return v != "" && v != koharu.UnknownVersion
}
