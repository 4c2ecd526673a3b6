package domain

import "errors"

// ErrConflict is matched by storage errors caused by a uniqueness constraint.
var ErrConflict = errors.New("unique key conflict")
