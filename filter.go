package main

import (
	"regexp"
)

// SinkFilter whitelists sinks by name. A nil regex matches everything.
type SinkFilter struct {
	Name *regexp.Regexp
}

func (f SinkFilter) Matches(name string) bool {
	return matchesProperty(f.Name, name)
}

// NodeFilter blacklists nodes. Every set field must match for the filter to
// match; an unset field is a wildcard. A set field against a node missing
// that property never matches.
type NodeFilter struct {
	Name          *regexp.Regexp
	AppName       *regexp.Regexp
	MediaClass    *regexp.Regexp
	MediaRole     *regexp.Regexp
	MediaSoftware *regexp.Regexp
}

func (f NodeFilter) Matches(node *Node) bool {
	return matchesProperty(f.Name, node.Name) &&
		matchesProperty(f.AppName, node.AppName) &&
		matchesProperty(f.MediaClass, node.MediaClass) &&
		matchesProperty(f.MediaRole, node.MediaRole) &&
		matchesProperty(f.MediaSoftware, node.MediaSoftware)
}

// matchesProperty applies an optional regex to an optional property. Filters
// are unanchored searches, case-sensitive exactly as configured. Properties
// the server never supplied arrive here as empty strings, indistinguishable
// from a genuinely empty value, so a set regex never matches either — not
// even one that accepts the empty string, like `^$`.
func matchesProperty(filter *regexp.Regexp, property string) bool {
	if filter == nil {
		return true
	}
	if property == "" {
		return false
	}
	return filter.MatchString(property)
}

// MatchesAnySink reports whether any whitelist entry accepts the sink name.
// An empty whitelist accepts every sink.
func MatchesAnySink(filters []SinkFilter, name string) bool {
	if len(filters) == 0 {
		return true
	}
	for _, f := range filters {
		if f.Matches(name) {
			return true
		}
	}
	return false
}

// MatchesAnyNode reports whether any blacklist entry matches the node. An
// empty blacklist matches nothing.
func MatchesAnyNode(filters []NodeFilter, node *Node) bool {
	for _, f := range filters {
		if f.Matches(node) {
			return true
		}
	}
	return false
}
