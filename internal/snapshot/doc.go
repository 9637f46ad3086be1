// Package snapshot merges a run's flat timeline with the extracted stage
// definitions into a renderable stage → job → task hierarchy. Snapshots are
// rebuilt wholesale on every refresh and never mutated in place, so a viewer
// can hold one without ever observing partial state.
package snapshot
