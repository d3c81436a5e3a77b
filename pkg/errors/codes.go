package errors

// ErrorCode represents a unique error code for identifying different error types.
type ErrorCode int

const (
	// General errors (1-99)
	ErrCodeUnknown ErrorCode = 1

	// Validation errors (100-199)
	ErrCodeInvalidParameter     ErrorCode = 100
	ErrCodeInvalidConfiguration ErrorCode = 101
	ErrCodeInvalidType          ErrorCode = 102
	ErrCodeInvalidPeriod        ErrorCode = 103
	ErrCodeMissingParameter     ErrorCode = 104
	ErrCodeInvalidTolerance     ErrorCode = 105
	ErrCodeInvalidFamily        ErrorCode = 106
	ErrCodeInvalidAxes          ErrorCode = 107

	// Data/Series errors (200-299)
	ErrCodeNoDataFound           ErrorCode = 200
	ErrCodeSeriesNotMonotonic    ErrorCode = 201
	ErrCodeDuplicateTimestamp    ErrorCode = 202
	ErrCodeNonFinitePrice        ErrorCode = 203
	ErrCodeQueryFailed           ErrorCode = 204
	ErrCodeDataSourceUnavailable ErrorCode = 205
	ErrCodeUnsupportedDataFormat ErrorCode = 206

	// Indicator errors (300-399)
	ErrCodeInsufficientData ErrorCode = 300
	ErrCodeInvalidWindow    ErrorCode = 301

	// Detector errors (400-499)
	ErrCodeInvalidRunLength ErrorCode = 400

	// Engine errors (600-699)
	ErrCodeEngineRunFailed ErrorCode = 600

	// Grid errors (700-799)
	ErrCodeGridRunFailed ErrorCode = 700
	ErrCodeGridAborted   ErrorCode = 701
)
