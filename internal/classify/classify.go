package classify

import "regexp"

// courseLinkPattern matches a reply that is, in its entirety, a single
// well-formed https URL: secure scheme, valid host, optional port and
// optional path/query/fragment restricted to URL characters. Any
// surrounding text breaks the match and the reply counts as prose.
var courseLinkPattern = regexp.MustCompile(
	`^https://[A-Za-z0-9][A-Za-z0-9-]*(?:\.[A-Za-z0-9][A-Za-z0-9-]*)+(?::\d+)?(?:/[A-Za-z0-9._~!$&'()*+,;=:@%/-]*)?(?:\?[A-Za-z0-9._~!$&'()*+,;=:@%/?-]*)?(?:#[A-Za-z0-9._~!$&'()*+,;=:@%/?-]*)?$`,
)

// Result is the classified model reply: exactly one of Answer and
// CourseLink is set.
type Result struct {
	Answer     string
	CourseLink string
}

// Classify tests the model reply against the course-link contract: a reply
// that is entirely one secure URL is a course recommendation, everything
// else is a conversational answer.
func Classify(reply string) Result {
	if courseLinkPattern.MatchString(reply) {
		return Result{CourseLink: reply}
	}
	return Result{Answer: reply}
}

// IsCourseLink reports whether s would classify as a course link.
func IsCourseLink(s string) bool {
	return courseLinkPattern.MatchString(s)
}
