/*
 * MIT License
 *
 * Copyright (c) 2025 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

// Package header implements the HTTP header representation shared by
// transport/httpframe: three parallel ordered sequences (code, name, value)
// instead of a map, so well-known headers are compared by a small integer
// and removal is tombstone-based with an O(1) size count.
package header

import "strings"

// Code is a per-header small integer: either a reserved sentinel (Absent,
// Other) or one of the well-known header codes below. It plays the role of
// a perfect hash into the set of header names the framework special-cases;
// anything outside that set gets Other and keeps its name out-of-line.
type Code uint16

const (
	// Absent marks a tombstoned slot: the name/value at this index have
	// been removed and must be skipped by iteration and Len.
	Absent Code = iota
	// Other is any header name not in the well-known set below; its
	// actual name is still carried in the parallel name sequence.
	Other

	Host
	ContentLength
	ContentType
	ContentEncoding
	ContentLanguage
	ContentMD5
	ContentRange
	Connection
	KeepAlive
	ProxyAuthenticate
	ProxyAuthorization
	ProxyConnection
	TE
	Trailer
	TransferEncoding
	Upgrade
	ETag
	LastModified
	Allow
	Date
	Location
	UserAgent
	Accept
	AcceptEncoding
	CacheControl
	Cookie
	SetCookie
	Authorization
)

// wellKnown maps the canonical (already-titled) header name to its Code.
// Lookup is case-insensitive via CodeForName below.
var wellKnown = map[string]Code{
	"Host":                Host,
	"Content-Length":      ContentLength,
	"Content-Type":        ContentType,
	"Content-Encoding":    ContentEncoding,
	"Content-Language":    ContentLanguage,
	"Content-MD5":         ContentMD5,
	"Content-Range":       ContentRange,
	"Connection":          Connection,
	"Keep-Alive":          KeepAlive,
	"Proxy-Authenticate":  ProxyAuthenticate,
	"Proxy-Authorization": ProxyAuthorization,
	"Proxy-Connection":    ProxyConnection,
	"TE":                  TE,
	"Trailer":             Trailer,
	"Transfer-Encoding":   TransferEncoding,
	"Upgrade":             Upgrade,
	"ETag":                ETag,
	"Last-Modified":       LastModified,
	"Allow":               Allow,
	"Date":                Date,
	"Location":            Location,
	"User-Agent":          UserAgent,
	"Accept":              Accept,
	"Accept-Encoding":     AcceptEncoding,
	"Cache-Control":       CacheControl,
	"Cookie":              Cookie,
	"Set-Cookie":          SetCookie,
	"Authorization":       Authorization,
}

// names is the inverse of wellKnown, indexed by Code, for interned name
// lookup without a map hit on the hot serialize path.
var names = func() map[Code]string {
	m := make(map[Code]string, len(wellKnown))
	for n, c := range wellKnown {
		m[c] = n
	}
	return m
}()

// CodeForName returns the well-known Code for name (case-insensitive), or
// Other if name is not in the well-known set.
func CodeForName(name string) Code {
	if c, ok := wellKnown[canonicalize(name)]; ok {
		return c
	}
	return Other
}

// CanonicalName returns the interned canonical spelling for a well-known
// Code, or "" for Absent/Other (callers of Other keep the name out-of-line).
func (c Code) CanonicalName() string {
	return names[c]
}

// canonicalize renders name in Title-Case-With-Hyphens form, matching the
// wellKnown table's keys, e.g. "content-length" -> "Content-Length".
func canonicalize(name string) string {
	parts := strings.Split(name, "-")
	for i, p := range parts {
		if p == "" {
			continue
		}
		if len(p) == 2 && strings.EqualFold(p, "te") {
			parts[i] = "TE"
			continue
		}
		if strings.EqualFold(p, "md5") {
			parts[i] = "MD5"
			continue
		}
		if strings.EqualFold(p, "etag") {
			parts[i] = "ETag"
			continue
		}
		parts[i] = strings.ToUpper(p[:1]) + strings.ToLower(p[1:])
	}
	return strings.Join(parts, "-")
}

// perHopFixed is the fixed hop-by-hop header set from spec.md §4.2, stripped
// unconditionally alongside whatever the Connection header lists.
var perHopFixed = []Code{
	KeepAlive, ProxyAuthenticate, ProxyAuthorization, ProxyConnection,
	TE, Trailer, TransferEncoding, Upgrade,
}

// entityHeaders304 is the set that must not appear on a 304 response, per
// spec.md §4.2 and §6 HTTP.
var entityHeaders304 = []Code{
	Allow, ContentEncoding, ContentLanguage, ContentLength,
	ContentMD5, ContentRange, ContentType, LastModified,
}
