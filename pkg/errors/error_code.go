package errors

// ErrorCode is a numeric identifier for an error category.
type ErrorCode int

const (
	// ErrCodeUnknown is returned when an error has no structured code.
	ErrCodeUnknown ErrorCode = 1
)

// Series errors (100-199).
const (
	ErrCodeEmptySeries            ErrorCode = 100
	ErrCodeNonMonotonicTimestamps ErrorCode = 101
	ErrCodeInvalidBar             ErrorCode = 102
)

// Strategy errors (200-299).
const (
	ErrCodeInvalidStrategy      ErrorCode = 200
	ErrCodeEmptyRuleSet         ErrorCode = 201
	ErrCodeUnknownIndicator     ErrorCode = 202
	ErrCodeUnknownCondition     ErrorCode = 203
	ErrCodeInvalidParameter     ErrorCode = 204
	ErrCodeInvalidPositionSize  ErrorCode = 205
	ErrCodeInvalidRiskFraction  ErrorCode = 206
	ErrCodeMissingCompareTarget ErrorCode = 207
)

// Indicator errors (300-399).
const (
	ErrCodeIndicatorNotFound    ErrorCode = 300
	ErrCodeIndicatorCalculation ErrorCode = 301
	ErrCodeInvalidPeriod        ErrorCode = 302
)

// Backtest errors (400-499).
const (
	ErrCodeBacktestConfigError ErrorCode = 400
	ErrCodeBacktestNotReady    ErrorCode = 401
)

// Data errors (500-599).
const (
	ErrCodeDataNotFound          ErrorCode = 500
	ErrCodeDataSourceUnavailable ErrorCode = 501
	ErrCodeQueryFailed           ErrorCode = 502
)

// Repository errors (600-699).
const (
	ErrCodeStrategyNotFound ErrorCode = 600
)
