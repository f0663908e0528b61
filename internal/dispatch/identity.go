package dispatch

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// numericSegment matches a path segment made only of digits with a
// separator on both sides. A trailing segment ("openWB/pv/3") does not count.
var numericSegment = regexp.MustCompile(`/([0-9]+)/`)

// ExtractIndex returns the first standalone numeric segment of topic.
//
// It returns ErrNoIndex when there is none and ErrInvalidIndex when the
// digits do not fit an int. It never panics.
func ExtractIndex(topic string) (int, error) {
	m := numericSegment.FindStringSubmatch(topic)
	if m == nil {
		return 0, ErrNoIndex
	}
	return parseIndex(m[1])
}

// SegmentIndex parses the path segment at position pos (0-based) as an id.
//
//	SegmentIndex("openWB/counter/4/get/power", 2) // 4
func SegmentIndex(topic string, pos int) (int, error) {
	segments := strings.Split(topic, "/")
	if pos < 0 || pos >= len(segments) {
		return 0, fmt.Errorf("%w: segment %d of %q", ErrNoIndex, pos, topic)
	}
	seg := segments[pos]
	if seg == "" || strings.Trim(seg, "0123456789") != "" {
		return 0, fmt.Errorf("%w: segment %q is not numeric", ErrInvalidIndex, seg)
	}
	return parseIndex(seg)
}

func parseIndex(digits string) (int, error) {
	id, err := strconv.Atoi(digits)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %w", ErrInvalidIndex, digits, err)
	}
	return id, nil
}

// segment returns the lower-cased path segment at pos, or "" if absent.
func segment(segments []string, pos int) string {
	if pos < 0 || pos >= len(segments) {
		return ""
	}
	return strings.ToLower(segments[pos])
}
