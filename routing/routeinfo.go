// Package routing turns declared URL patterns into matchable route
// descriptors and resolves request URLs against them. Compiled routes are
// cached per app; resolved lookups are cached per (app, url).
package routing

import (
	"net/url"
	"regexp"
)

// RouteInfo is the resolved descriptor for one URL pattern: the compiled
// matcher plus the rendering metadata merged from app-level defaults and
// route-level overrides.
//
// Entries held in the lookup cache are immutable except for Query, which is
// volatile and overwritten on every lookup because it varies per call.
type RouteInfo struct {
	Name        string
	URLPattern  string
	URLRegex    *regexp.Regexp
	Layout      string
	Wrapper     string
	Strip       bool
	ContentType string
	Data        map[string]interface{}
	ServerOnly  bool

	// Per-request fields, empty on compiled templates.
	Tokens  map[string]string
	Query   url.Values
	AppName string
	Lang    string
	URL     string
}

// clone returns a per-request copy of a compiled template.
func (r *RouteInfo) clone() *RouteInfo {
	dup := *r
	return &dup
}
