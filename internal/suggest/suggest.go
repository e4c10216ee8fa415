// Package suggest produces remediation hints for token limit violations
package suggest

import (
	"fmt"
	"strings"

	"github.com/ludo-technologies/mdtoken/domain"
)

// StructuralThreshold is the percentage over the limit beyond which a
// file is worth splitting rather than trimming in place
const StructuralThreshold = 20.0

// ForViolation returns remediation suggestions for a violation. The
// output is a pure function of the violation's fields and keeps a fixed
// order so reports stay stable between runs: the magnitude hint comes
// first, then the structural and archival hints when they apply, then a
// generic closing hint.
func ForViolation(v domain.Violation) []string {
	suggestions := []string{
		fmt.Sprintf("Reduce by ~%d tokens to get under the limit", v.Excess),
	}
	if v.PercentageOver > StructuralThreshold {
		suggestions = append(suggestions, "Consider splitting this file into multiple smaller files")
	}
	if !strings.Contains(strings.ToLower(v.Path), "archive") {
		suggestions = append(suggestions, "Consider moving older content to an archive directory")
	}
	return append(suggestions, "Review content and remove unnecessary sections")
}
