// Package recommend maps free-text requests onto catalog tracks through ordered keyword categories.
//
// The [Selector] is pure: the first category whose keyword occurs in the query decides both the answer
// text and the recommended ids, and the fallback category applies when none do. Categories are data,
// see [DefaultCategories] and [FromConfig].
package recommend

import (
	"fmt"
	"slices"
	"strings"

	"github.com/desertthunder/melodi/internal/models"
	"github.com/desertthunder/melodi/internal/shared"
)

// QueryPlaceholder is replaced by the raw query in response templates.
const QueryPlaceholder = "{query}"

// Rule filters tracks. It matches when any configured criterion matches; a rule with no criteria matches every track.
type Rule struct {
	Artists      []string // artist substrings
	Titles       []string // title substrings
	Platforms    []string // exact platform tags
	MinPlayCount int      // play count strictly above, 0 disables
	MinDuration  int      // with MaxDuration, duration strictly inside the interval
	MaxDuration  int
}

// Empty reports whether the rule has no criteria.
func (r Rule) Empty() bool {
	return len(r.Artists) == 0 && len(r.Titles) == 0 && len(r.Platforms) == 0 &&
		r.MinPlayCount == 0 && r.MinDuration == 0 && r.MaxDuration == 0
}

// Match reports whether t satisfies the rule.
func (r Rule) Match(t models.Track) bool {
	if r.Empty() {
		return true
	}
	if containsAny(t.Artist, r.Artists) || containsAny(t.Title, r.Titles) {
		return true
	}
	if slices.Contains(r.Platforms, t.Platform) {
		return true
	}
	if r.MinPlayCount > 0 && t.PlayCount > r.MinPlayCount {
		return true
	}
	if (r.MinDuration > 0 || r.MaxDuration > 0) && t.Duration != nil {
		d := *t.Duration
		if d > r.MinDuration && (r.MaxDuration == 0 || d < r.MaxDuration) {
			return true
		}
	}
	return false
}

func containsAny(s string, needles []string) bool {
	s = strings.ToLower(s)
	for _, n := range needles {
		if n != "" && strings.Contains(s, strings.ToLower(n)) {
			return true
		}
	}
	return false
}

// Category is one keyword group with its filter and answer template.
type Category struct {
	Name     string
	Keywords []string
	Response string
	Limit    int
	Rule     Rule
	Popular  bool // order by play count before truncating
}

// Triggered reports whether any keyword occurs in query, ignoring case.
func (c Category) Triggered(query string) bool {
	return containsAny(query, c.Keywords)
}

// Pick returns up to Limit track ids passing the rule, in collection order unless Popular is set.
func (c Category) Pick(tracks []models.Track) []string {
	candidates := make([]models.Track, 0, len(tracks))
	for _, t := range tracks {
		if c.Rule.Match(t) {
			candidates = append(candidates, t)
		}
	}
	if c.Popular {
		models.SortByPlayCount(candidates)
	}

	ids := make([]string, 0, c.Limit)
	for _, t := range candidates {
		if len(ids) == c.Limit {
			break
		}
		ids = append(ids, t.ID)
	}
	return ids
}

// Result is the outcome of one selection.
type Result struct {
	Category string
	Response string
	TrackIDs []string
}

// Selector walks categories in order; the first triggered one wins.
type Selector struct {
	categories []Category
	fallback   Category
}

// NewSelector builds a selector from categories. A category without keywords becomes the fallback;
// when there is none, the built-in popularity fallback is used.
func NewSelector(categories []Category) (*Selector, error) {
	s := &Selector{fallback: defaultFallback()}
	seenFallback := false

	for i, c := range categories {
		if c.Name == "" {
			return nil, fmt.Errorf("%w: recommendation category %d has no name", shared.ErrInvalidConfig, i)
		}
		if c.Limit <= 0 {
			return nil, fmt.Errorf("%w: recommendation category %q needs a positive limit", shared.ErrInvalidConfig, c.Name)
		}
		if len(c.Keywords) == 0 {
			if seenFallback {
				return nil, fmt.Errorf("%w: more than one fallback category", shared.ErrInvalidConfig)
			}
			s.fallback, seenFallback = c, true
			continue
		}
		s.categories = append(s.categories, c)
	}

	return s, nil
}

// Categories returns the keyword categories in evaluation order, without the fallback.
func (s *Selector) Categories() []Category {
	return slices.Clone(s.categories)
}

// Select picks the category for query and applies it to tracks.
func (s *Selector) Select(query string, tracks []models.Track) Result {
	chosen := s.fallback
	for _, c := range s.categories {
		if c.Triggered(query) {
			chosen = c
			break
		}
	}

	return Result{
		Category: chosen.Name,
		Response: strings.ReplaceAll(chosen.Response, QueryPlaceholder, query),
		TrackIDs: chosen.Pick(tracks),
	}
}
