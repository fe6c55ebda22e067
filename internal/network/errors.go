package network

import "errors"

// ErrUnknownStation is returned by AddLine when it references a station
// id that has not been registered via AddStation. This module picks the
// explicit-failure policy over synthetic auto-registration (see
// SPEC_FULL.md's Open Question Decisions) so bad config data is caught at
// construction time rather than silently patched over.
var ErrUnknownStation = errors.New("network: unknown station")

// ErrInvalidSchedule is returned by AddLine when a line's schedule or
// segment-time list is malformed.
var ErrInvalidSchedule = errors.New("network: invalid schedule")
