package entities

import "errors"

// Error taxonomy for the routing core. External failures are wrapped,
// never swallowed; none of these is retried automatically.
var (
	// ErrUnknownVenue rejects a tag outside the closed enumeration
	// before any external call is made.
	ErrUnknownVenue = errors.New("unknown venue")

	// ErrVenueMismatch rejects a venue-specific entry point invoked
	// with a tag bound to a different venue family. The message is the
	// user-visible diagnostic carried over from the on-chain workflow.
	ErrVenueMismatch = errors.New("Please call a reasonable function")

	// ErrInsufficientAllowance surfaces the token contract refusing a
	// transferFrom because the approved amount is too small.
	ErrInsufficientAllowance = errors.New("insufficient allowance")

	// ErrInsufficientBalance surfaces the token contract refusing a
	// transfer because the owner balance is too small.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrVenueExecutionFailed wraps a venue's own revert reason. The
	// reason string is carried opaquely; retrying is a caller decision.
	ErrVenueExecutionFailed = errors.New("venue execution failed")

	// ErrStalePrice means the reference feed's timestamp is older than
	// its heartbeat interval.
	ErrStalePrice = errors.New("stale reference price")

	// ErrSlippageTooLoose rejects a slippage bound implausibly far
	// below the reference price when the strict pre-check is enabled.
	ErrSlippageTooLoose = errors.New("slippage bound too loose against reference price")
)
