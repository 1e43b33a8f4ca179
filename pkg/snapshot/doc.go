// Package snapshot defines the immutable JSON documents the core hands to
// renderers: ranked tables, zoom transforms, settled dot map layouts and
// scatter-plot trends.
//
// A [Snapshot] is a discriminated union: Kind says which section is set.
// Renderers diff successive snapshots instead of holding on to engine
// state, so every slice in a snapshot is a copy.
//
// Use [Marshal] and [Unmarshal] (or [WriteFile] and [ReadFile]) for
// serialization; Unmarshal validates that the section named by Kind is
// present.
package snapshot
