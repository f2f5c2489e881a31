package simulation

import "errors"

var errZeroInterval = errors.New("simulation: interval must be positive")
