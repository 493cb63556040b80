// Package photos holds the behaviour attached to stored photo records: how
// remote image URLs are canonicalized for storage, how they map to image
// cache keys, and how their bytes are loaded.
package photos

import (
	"net/url"
	"path"
	"strings"
)

// DefaultScheme is used to rebuild a fetchable URL from a stored reference.
const DefaultScheme = "https"

const schemeSep = "://"

// Canonicalize turns a remote image URL into the reference stored on a photo
// record: the URL without its scheme, i.e. host + path plus the query when
// present. Input without a scheme is returned unchanged, so applying it twice
// is the same as applying it once.
func Canonicalize(raw string) string {
	raw = strings.TrimSpace(raw)
	i := strings.Index(raw, schemeSep)
	if i < 0 {
		return raw
	}

	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw[i+len(schemeSep):]
	}

	ref := u.Host + u.EscapedPath()
	if u.RawQuery != "" {
		ref += "?" + u.RawQuery
	}
	return ref
}

// CacheKey is the image cache identifier for a stored reference: its last
// path component.
func CacheKey(ref string) string {
	ref = strings.TrimSpace(ref)
	if q := strings.IndexByte(ref, '?'); q >= 0 {
		ref = ref[:q]
	}
	if ref == "" {
		return ""
	}

	key := path.Base(ref)
	if key == "." || key == "/" {
		return ""
	}
	return key
}

// SourceURL rebuilds the URL an image is downloaded from. References that
// already carry a scheme are returned as is.
func SourceURL(ref, scheme string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	if strings.Contains(ref, schemeSep) {
		return ref
	}
	if scheme == "" {
		scheme = DefaultScheme
	}
	return scheme + schemeSep + ref
}
