// Package models defines the catalog entities served by melodi and the inputs used to create and modify them.
//
// # Entities
//
//   - [Track] : a playable item with provenance (platform) and a popularity metric
//   - [Playlist] : a named, ordered list of track ids, possibly AI curated
//   - [AiInteraction] : one logged recommendation request and its answer
//   - [UserPreferences] : the single process-wide preferences record
//
// Optional attributes are pointers so they serialize as JSON null when absent.
//
// # Inputs and Patches
//
// Creation goes through [NewTrack], [NewPlaylist] and [NewAiInteraction]. Partial updates go through
// [TrackPatch], [PlaylistPatch] and [PreferencesPatch], which list exactly the mutable fields. A nil patch
// field means "leave unchanged"; supplied fields replace the stored value in full. Nullable record
// fields are patched through [Nullable], where an explicit null clears the stored value.
//
// Inputs and patches carry validator tags and are checked with their Validate methods before they reach a store.
package models
