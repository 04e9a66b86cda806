package discovery

import "errors"

// Error kinds per the scanner's error handling design. ImplementationError
// covers any public call made after Close (ErrClosed). ParseFailure and
// OversizedSingleAnswer have no sentinel here: an undecodable packet is
// dropped silently, and an oversized single known answer is logged as a
// warning and sent anyway.
var (
	// ErrClosed is returned by any public discovery call made after Close.
	ErrClosed = errors.New("discovery: scanner is closed")

	// ErrInvalidPredicate is returned when a commissionable predicate
	// carries no usable identifier.
	ErrInvalidPredicate = errors.New("discovery: invalid predicate")

	// ErrMissingRequired is wrapped with the missing TXT key name by
	// ParsedTXT.ValidationError.
	ErrMissingRequired = errors.New("discovery: missing required TXT key")

	// ErrInvalidDiscriminator is wrapped by ParsedTXT.ValidationError when
	// D exceeds MaxDiscriminator.
	ErrInvalidDiscriminator = errors.New("discovery: invalid discriminator")

	// ErrTransportSend is wrapped with the underlying transport error when
	// a broadcast fails to send. The query timer keeps running; the next
	// interval retries.
	ErrTransportSend = errors.New("discovery: transport send failed")
)
