package models

import (
	"sort"
	"strings"
)

// TrendingLimit caps the trending listing.
const TrendingLimit = 10

// MatchesQuery reports whether q is a case-insensitive substring of the title, artist or album.
//
// An absent album never matches; an empty query matches everything.
func (t Track) MatchesQuery(q string) bool {
	q = strings.ToLower(q)
	if strings.Contains(strings.ToLower(t.Title), q) || strings.Contains(strings.ToLower(t.Artist), q) {
		return true
	}
	return t.Album != nil && strings.Contains(strings.ToLower(*t.Album), q)
}

// FilterTracks returns the tracks matching q in their original order.
func FilterTracks(tracks []Track, q string) []Track {
	matches := make([]Track, 0)
	for _, t := range tracks {
		if t.MatchesQuery(q) {
			matches = append(matches, t)
		}
	}
	return matches
}

// SortByPlayCount orders tracks by play count, highest first, keeping ties in their existing order.
func SortByPlayCount(tracks []Track) {
	sort.SliceStable(tracks, func(i, j int) bool { return tracks[i].PlayCount > tracks[j].PlayCount })
}

// Trending returns a sorted copy of tracks truncated to [TrendingLimit].
func Trending(tracks []Track) []Track {
	sorted := append(make([]Track, 0, len(tracks)), tracks...)
	SortByPlayCount(sorted)
	if len(sorted) > TrendingLimit {
		sorted = sorted[:TrendingLimit]
	}
	return sorted
}

// SortNewestFirst orders interactions given in insertion order by creation time descending.
// Interactions created at the same instant end up latest-inserted first.
func SortNewestFirst(items []AiInteraction) {
	for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
		items[i], items[j] = items[j], items[i]
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].CreatedAt.After(items[j].CreatedAt) })
}
