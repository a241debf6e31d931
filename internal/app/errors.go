package service

import "errors"

// ErrGoalNotFound is returned when no goal matches a progress request.
var ErrGoalNotFound = errors.New("goal not found")
