// Package listing drives an interactive skills listing: replacing searches,
// additive "load more" pages and the language toggle.
package listing

import "fmt"

// State is the phase of a listing.
type State int

const (
	// Idle shows the initial page and has never fetched.
	Idle State = iota
	// Loading is a replacing fetch (a new search) in flight.
	Loading
	// LoadingMore is an additive fetch in flight.
	LoadingMore
	// Loaded shows the result of the last fetch.
	Loaded
	// Errored shows the failure of the last fetch.
	Errored
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case LoadingMore:
		return "loading-more"
	case Loaded:
		return "loaded"
	case Errored:
		return "errored"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Event moves a listing between states.
type Event int

const (
	SearchStarted Event = iota
	MoreStarted
	FetchSucceeded
	FetchFailed
)

func (e Event) String() string {
	switch e {
	case SearchStarted:
		return "search-started"
	case MoreStarted:
		return "more-started"
	case FetchSucceeded:
		return "fetch-succeeded"
	case FetchFailed:
		return "fetch-failed"
	}
	return fmt.Sprintf("event(%d)", int(e))
}

// ErrTransition reports an event that is impossible in the current state.
type ErrTransition struct {
	From  State
	Event Event
}

func (e *ErrTransition) Error() string {
	return fmt.Sprintf("listing: %s not allowed while %s", e.Event, e.From)
}

// Next is the single transition function. A search may start from any state
// and supersedes whatever is in flight. A load-more never overlaps another
// fetch.
func Next(s State, e Event) (State, error) {
	switch e {
	case SearchStarted:
		return Loading, nil
	case MoreStarted:
		if s == Idle || s == Loaded || s == Errored {
			return LoadingMore, nil
		}
	case FetchSucceeded:
		if s == Loading || s == LoadingMore {
			return Loaded, nil
		}
	case FetchFailed:
		if s == Loading || s == LoadingMore {
			return Errored, nil
		}
	}
	return s, &ErrTransition{From: s, Event: e}
}
