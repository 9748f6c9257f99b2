package cli

import (
	"fmt"
	"regexp"
	"strings"
)

var reDateOnly = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// checkDateFlags rejects date flags that are set but not YYYY-MM-DD.
func checkDateFlags(flags map[string]string) error {
	for name, v := range flags {
		v = strings.TrimSpace(v)
		if v != "" && !reDateOnly.MatchString(v) {
			return fmt.Errorf("--%s: invalid date %q (want YYYY-MM-DD)", name, v)
		}
	}
	return nil
}
