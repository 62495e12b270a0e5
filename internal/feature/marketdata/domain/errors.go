// Package domain defines domain-level errors for the marketdata feature.
package domain

import (
	"errors"
	"fmt"
)

// Domain errors for market data fetch operations.
// These errors represent contract violations and should be handled by upper layers.
var (
	// ErrMissingRange indicates an hour-granularity fetch without a start bound.
	// The hour range is watermark-driven, so a missing lower bound is a caller bug.
	ErrMissingRange = errors.New("from bound is required for hour granularity")

	// ErrUnknownGranularity indicates a granularity outside {minute, hour}.
	ErrUnknownGranularity = errors.New("granularity must be minute or hour")
)

// SourceParseError はアップストリームAPIの不正なペイロードを表します。
// 診断用に取引所・シンボルと生ペイロードの断片を保持します。
type SourceParseError struct {
	Exchange string
	Symbol   string
	Payload  string
	Err      error
}

func (e *SourceParseError) Error() string {
	return fmt.Sprintf("%s: malformed payload for %s: %v", e.Exchange, e.Symbol, e.Err)
}

func (e *SourceParseError) Unwrap() error {
	return e.Err
}
