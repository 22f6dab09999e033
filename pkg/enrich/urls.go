package enrich

import (
	"path/filepath"
	"strings"
)

const issueSearch = "/issues?q=is%3Aopen+is%3Aissue+label%3A"

// issuesURL links to the open issues of a repository, narrowed to labels
// when there are any.
func issuesURL(scmURL string, labels []string) string {
	if len(labels) == 0 {
		return scmURL + "/issues"
	}
	escaped := make([]string, len(labels))
	for i, l := range labels {
		escaped[i] = strings.ReplaceAll(l, "/", "%2F")
	}
	return encodeURL(scmURL + issueSearch + strings.Join(escaped, ","))
}

// encodeURL percent-encodes the bytes that may not appear in a URL. Valid
// escapes are kept, so encoding is idempotent; a stray '%' becomes "%25".
func encodeURL(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '%':
			if i+2 < len(s) && isHex(s[i+1]) && isHex(s[i+2]) {
				b.WriteByte(c)
			} else {
				b.WriteString("%25")
			}
		case urlSafe(c):
			b.WriteByte(c)
		default:
			const hex = "0123456789ABCDEF"
			b.WriteByte('%')
			b.WriteByte(hex[c>>4])
			b.WriteByte(hex[c&0x0f])
		}
	}
	return b.String()
}

func urlSafe(c byte) bool {
	switch {
	case c == '!', c == '=', c == '|', c == '~':
		return true
	case c >= '#' && c <= ';':
		return true
	case c >= '?' && c <= '_':
		return true
	case c >= 'a' && c <= 'z':
		return true
	}
	return false
}

func isHex(c byte) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}

// isCustomizedSocialImage reports whether an Open Graph image was uploaded
// by the repository owner. Generated previews are served from another host.
func isCustomizedSocialImage(url string) bool {
	return strings.Contains(url, "githubusercontent")
}

// projectImageName is the name the site's cropping step gives a downloaded
// image.
func projectImageName(localPath string) string {
	return "smartcrop-" + filepath.Base(localPath)
}
