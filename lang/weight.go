package lang

import (
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	errMalformedWeight   = errors.New("malformed weight")
	errNonPositiveWeight = errors.New("non-positive weight")
)

// weightLiteral accepts plain decimal numbers only: no exponent, no hex, no
// "inf" or "nan", all of which strconv.ParseFloat would take.
var weightLiteral = regexp.MustCompile(`^[+-]?(?:[0-9]+(?:\.[0-9]*)?|\.[0-9]+)$`)

// parseWeight converts the text after an alternative's last ':' into a
// weight. Surrounding whitespace is ignored.
func parseWeight(raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	if !weightLiteral.MatchString(s) {
		return 0, errMalformedWeight
	}

	w, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(w, 0) {
		return 0, errMalformedWeight
	}

	if w <= 0 {
		return w, errNonPositiveWeight
	}

	return w, nil
}

// formatWeight renders w so that parseWeight reads it back unchanged.
func formatWeight(w float64) string {
	return strconv.FormatFloat(w, 'f', -1, 64)
}
