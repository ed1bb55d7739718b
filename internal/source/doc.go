// Package source obtains the raw markup of the vendor page, either from a
// locally saved snapshot or from the live site.
//
// Remote pages are requested with browser-like headers, decoded from
// gzip/deflate by hand and converted to UTF-8. Bot-protection interstitials
// are reported as ErrBlockedByProtection and are never retried: the operator
// is expected to save the page from a browser and pass the file instead.
package source
