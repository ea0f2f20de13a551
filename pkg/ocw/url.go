// Package ocw models the URLs of an OpenCourseWare site: course section listings,
// resource pages and the PDF assets they link to.
package ocw

import (
	"fmt"
	"net/url"
	"strings"
)

const (
	// CoursesSegment is the path segment that precedes the course identifier.
	CoursesSegment = "courses"
	// AssetExt is the suffix an href must carry to be treated as a downloadable asset.
	AssetExt = ".pdf"
	// MarkerFileName is written once inside every course directory.
	MarkerFileName = "Link_corso.txt"
	// MarkerHeader is the first line of the marker file.
	MarkerHeader = "Link al corso:"
)

// Listing is a parsed course section listing URL, e.g.
// https://ocw.mit.edu/courses/16-225-computational-mechanics-of-materials-fall-2003/pages/assignments/
type Listing struct {
	URL        string
	Authority  string
	CourseID   string
	CategoryID string

	segments []string
	marker   int
}

// ParseListing extracts the course and category identifiers of a listing URL.
// The course id is the segment right after "courses", the category id the segment
// three positions after it.
func ParseListing(rawURL string) (*Listing, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, &MalformedURLError{URL: rawURL, Reason: "invalid url", Err: err}
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, &MalformedURLError{URL: rawURL, Reason: "url is not absolute"}
	}
	segments := strings.Split(u.EscapedPath(), "/")
	marker := -1
	for i, seg := range segments {
		if seg == CoursesSegment {
			marker = i
			break
		}
	}
	if marker < 0 {
		return nil, &MalformedURLError{URL: rawURL, Reason: "missing \"" + CoursesSegment + "\" segment"}
	}
	if marker+3 >= len(segments) {
		return nil, &MalformedURLError{URL: rawURL, Reason: "too few segments after \"" + CoursesSegment + "\""}
	}
	l := &Listing{
		URL:        rawURL,
		Authority:  Authority(rawURL),
		CourseID:   unescapeSegment(segments[marker+1]),
		CategoryID: unescapeSegment(segments[marker+3]),
		segments:   segments,
		marker:     marker,
	}
	if l.CourseID == "" || l.CategoryID == "" {
		return nil, &MalformedURLError{URL: rawURL, Reason: "empty course or category segment"}
	}
	for _, id := range []string{l.CourseID, l.CategoryID} {
		if !isPathElement(id) {
			return nil, &MalformedURLError{URL: rawURL, Reason: fmt.Sprintf("%q is not a valid directory name", id)}
		}
	}
	return l, nil
}

// isPathElement reports whether id names exactly one directory below its parent.
func isPathElement(id string) bool {
	return id != "." && id != ".." && !strings.ContainsAny(id, "/\\\x00")
}

// CourseRootURL is the listing URL truncated right after the course id segment.
func (l *Listing) CourseRootURL() string {
	return l.Authority + strings.Join(l.segments[:l.marker+2], "/") + "/"
}

// MarkerContent is the body of the marker file of the listing's course directory.
func (l *Listing) MarkerContent() string {
	return MarkerHeader + "\n" + l.CourseRootURL()
}

// Authority returns "scheme://host" of a raw url, that is its first three
// "/"-separated pieces.
func Authority(rawURL string) string {
	pieces := strings.SplitN(rawURL, "/", 4)
	if len(pieces) > 3 {
		pieces = pieces[:3]
	}
	return strings.Join(pieces, "/")
}

// DerivedFilename names the file persisted for a resource page: the second-to-last
// "/"-separated piece of the url plus ".pdf".
// ".../resources/ha1/" gives "ha1.pdf".
func DerivedFilename(resourceURL string) string {
	pieces := strings.Split(resourceURL, "/")
	name := pieces[0]
	if len(pieces) >= 2 {
		name = pieces[len(pieces)-2]
	}
	return unescapeSegment(name) + AssetExt
}

func unescapeSegment(seg string) string {
	if s, err := url.PathUnescape(seg); err == nil {
		return s
	}
	return seg
}
