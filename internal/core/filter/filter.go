// Package filter decides per-result admissibility under the content policy
// and any user-supplied include/exclude patterns. Filtering is independent of
// scoring and runs before truncation so a full page of admissible results can
// still be returned.
package filter

import (
	"log/slog"
	"regexp"
	"strings"
)

// denylist holds identifiers hidden in family-friendly mode. Loaded once,
// read-only thereafter. Matching is substring match on the result name and is
// never overridable by include patterns.
var denylist = []string{
	"bufo-juicy",
	"good-news-bufo-offers-suppository",
	"bufo-declines-your-suppository-offer",
	"tsa-bufo-gropes-you",
}

// Filter is a stateless admissibility predicate over result names.
type Filter struct {
	familyFriendly bool
	exclude        []*regexp.Regexp
	include        []*regexp.Regexp
}

// New builds a Filter from the request parameters. The exclude and include
// arguments are comma-separated regular expressions; patterns that fail to
// compile are dropped rather than failing the request, so a mistyped pattern
// degrades to "ignored". Each drop is logged at warn level.
func New(familyFriendly bool, exclude, include string, logger *slog.Logger) *Filter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Filter{
		familyFriendly: familyFriendly,
		exclude:        compilePatterns(exclude, "exclude", logger),
		include:        compilePatterns(include, "include", logger),
	}
}

func compilePatterns(commaSeparated, kind string, logger *slog.Logger) []*regexp.Regexp {
	var patterns []*regexp.Regexp
	for _, raw := range strings.Split(commaSeparated, ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		re, err := regexp.Compile(raw)
		if err != nil {
			logger.Warn("dropping invalid filter pattern", "kind", kind, "pattern", raw, "err", err)
			continue
		}
		patterns = append(patterns, re)
	}
	return patterns
}

// ExcludeCount reports how many exclude patterns compiled.
func (f *Filter) ExcludeCount() int {
	return len(f.exclude)
}

// Admits reports whether a result with the given name may be returned.
//
// Evaluation order: the family-friendly denylist rejects first and cannot be
// overridden; a matching include pattern then accepts, overriding exclude;
// a matching exclude pattern rejects; everything else is admitted.
func (f *Filter) Admits(name string) bool {
	if f.familyFriendly {
		for _, blocked := range denylist {
			if strings.Contains(name, blocked) {
				return false
			}
		}
	}

	for _, re := range f.include {
		if re.MatchString(name) {
			return true
		}
	}

	for _, re := range f.exclude {
		if re.MatchString(name) {
			return false
		}
	}
	return true
}
