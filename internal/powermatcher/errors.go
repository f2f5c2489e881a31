package powermatcher

import "errors"

// ErrInvalidBid is the sentinel wrapped by every bid-construction failure.
// Callers match it with errors.Is against the returned error, which always
// wraps ErrInvalidBid via fmt.Errorf("%w: ..."); the violated rule is
// named only in the error text.
var ErrInvalidBid = errors.New("invalid bid")

// ErrDuplicateAgent is returned by Auctioneer.Register when the agent id
// is already present in the registry.
var ErrDuplicateAgent = errors.New("agent already registered")

// ErrUnknownAgent is returned by Auctioneer.Unregister and SubmitBid when
// the agent id is not present in the registry.
var ErrUnknownAgent = errors.New("agent not registered")
