package league

import "errors"

var (
	ErrUnknownTeam      = errors.New("unknown team")
	ErrSameTeam         = errors.New("a team cannot play itself")
	ErrNegativeGoals    = errors.New("goals must be non-negative")
	ErrFixturePlayed    = errors.New("fixture already played this round")
	ErrUnknownSelection = errors.New("unknown selection")
	ErrInvalidRoster    = errors.New("invalid roster")
	ErrUnknownVariant   = errors.New("unknown variant")
	ErrNotTracked       = errors.New("not tracked in this variant")
)
