package errors

// ErrorCode represents a unique error code for identifying different error types.
type ErrorCode int

const (
	// General errors (1-99)
	ErrCodeUnknown ErrorCode = 1

	// Validation errors (100-199)
	ErrCodeInvalidParameter ErrorCode = 100
	ErrCodeInvalidType      ErrorCode = 101
	ErrCodeInvalidPeriod    ErrorCode = 102
	ErrCodeMissingParameter ErrorCode = 103
	ErrCodeInvalidStdDev    ErrorCode = 104
	ErrCodeInvalidDateRange ErrorCode = 105
	ErrCodeInvalidSymbol    ErrorCode = 106
	ErrCodeInsufficientData ErrorCode = 107

	// Data/Resource errors (200-299)
	ErrCodeDataNotFound          ErrorCode = 200
	ErrCodeDataSourceUnavailable ErrorCode = 201
	ErrCodeQueryFailed           ErrorCode = 202
	ErrCodeHistoricalDataFailed  ErrorCode = 203

	// Indicator errors (300-399)
	ErrCodeIndicatorNotFound      ErrorCode = 300
	ErrCodeIndicatorAlreadyExists ErrorCode = 301
	ErrCodeIndicatorCalculation   ErrorCode = 302

	// Market data errors (400-499)
	ErrCodeFetchFailed     ErrorCode = 400
	ErrCodeWriteFailed     ErrorCode = 401
	ErrCodeParseFailed     ErrorCode = 402
	ErrCodeUnknownTicker   ErrorCode = 403
	ErrCodeInvalidInterval ErrorCode = 404
	ErrCodeInvalidProvider ErrorCode = 405

	// Chart errors (500-599)
	ErrCodeRenderFailed ErrorCode = 500

	// Config errors (600-699)
	ErrCodeConfigLoadFailed ErrorCode = 600
	ErrCodeConfigInvalid    ErrorCode = 601
)
