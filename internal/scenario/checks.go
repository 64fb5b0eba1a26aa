// internal/scenario/checks.go
package scenario

import (
	"net/http"
	"strings"
)

// Check names as reported in the summary.
const (
	CheckStatus200       = "status is 200"
	CheckResponseCorrect = "response is correct"
)

// StatusIs200 reports whether the backend answered 200.
func StatusIs200(o Outcome) bool {
	return o.Status == http.StatusOK
}

// ResponseIsCorrect compares the trimmed body with the target's identifier.
// The echo backends append a trailing newline.
func ResponseIsCorrect(o Outcome, t RouteTarget) bool {
	return strings.TrimSpace(o.Body) == t.Expected
}

// Evaluate runs both checks and reports each one. Never short-circuits.
func Evaluate(rec Recorder, o Outcome, t RouteTarget) (statusOK, bodyOK bool) {
	statusOK = StatusIs200(o)
	bodyOK = ResponseIsCorrect(o, t)

	rec.Record(CheckStatus200, statusOK)
	rec.Record(CheckResponseCorrect, bodyOK)

	return statusOK, bodyOK
}
