package command

import (
	"maps"
	"slices"
	"strings"
)

// Returns base with overlay applied.
//
// Entries of base keep their order, with overlaid values substituted in
// place. Keys only in overlay follow in sorted order. Entries of base
// without "=" are dropped.
func overlayEnv(base []string, overlay map[string]string) []string {
	out := make([]string, 0, len(base)+len(overlay))
	done := make(map[string]bool, len(overlay))

	for _, entry := range base {
		k, _, ok := strings.Cut(entry, "=")
		if !ok {
			continue
		}
		if v, set := overlay[k]; set {
			if done[k] {
				continue
			}
			done[k] = true
			entry = k + "=" + v
		}
		out = append(out, entry)
	}

	for _, k := range slices.Sorted(maps.Keys(overlay)) {
		if !done[k] {
			out = append(out, k+"="+overlay[k])
		}
	}
	return out
}
