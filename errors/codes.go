package errors

// ErrorCode identifies an application error category.
type ErrorCode int32

const (
	ErrorCode_HTTP_OK ErrorCode = 0

	// General
	ErrorCode_INTERNAL          ErrorCode = 1000
	ErrorCode_INVALID_ARGUMENT  ErrorCode = 1001
	ErrorCode_NOT_FOUND         ErrorCode = 1002
	ErrorCode_ALREADY_EXISTS    ErrorCode = 1003
	ErrorCode_PERMISSION_DENIED ErrorCode = 1004
	ErrorCode_UNAUTHENTICATED   ErrorCode = 1005
	ErrorCode_INVALID_PAYLOAD   ErrorCode = 1006
	ErrorCode_FORBIDDEN         ErrorCode = 1007

	// Authentication
	ErrorCode_AUTH_INVALID_TOKEN ErrorCode = 2000
	ErrorCode_AUTH_TOKEN_EXPIRED ErrorCode = 2001
	ErrorCode_AUTH_USER_NOT_FOUND ErrorCode = 2002

	// Meetings / callbacks
	ErrorCode_MEETING_NOT_FOUND        ErrorCode = 3000
	ErrorCode_CALLBACK_TOKEN_MISMATCH  ErrorCode = 3001
	ErrorCode_MEETING_INVALID_STATE    ErrorCode = 3002
	ErrorCode_PAYLOAD_ASSEMBLY_FAILED  ErrorCode = 3003
	ErrorCode_WEBHOOK_ENDPOINT_UNKNOWN ErrorCode = 3004

	// CRM integrations
	ErrorCode_CRM_INTEGRATION_NOT_FOUND ErrorCode = 4000
	ErrorCode_CRM_NOT_CONFIGURED        ErrorCode = 4001
	ErrorCode_CRM_CALL_FAILED           ErrorCode = 4002
	ErrorCode_CRM_AUTH_FAILED           ErrorCode = 4003

	// Google integration
	ErrorCode_GOOGLE_INTEGRATION_NOT_FOUND ErrorCode = 4100
	ErrorCode_GOOGLE_REFRESH_FAILED        ErrorCode = 4101

	// Infrastructure
	ErrorCode_DB_QUERY_FAILED          ErrorCode = 5000
	ErrorCode_KEYSTORE_FAILED          ErrorCode = 5001
	ErrorCode_FORWARD_FAILED           ErrorCode = 5002
	ErrorCode_EXTERNAL_API_FAILED      ErrorCode = 5003
	ErrorCode_CONFIGURATION_INCOMPLETE ErrorCode = 5004
)

var codeNames = map[ErrorCode]string{
	ErrorCode_HTTP_OK:                      "OK",
	ErrorCode_INTERNAL:                     "INTERNAL",
	ErrorCode_INVALID_ARGUMENT:             "INVALID_ARGUMENT",
	ErrorCode_NOT_FOUND:                    "NOT_FOUND",
	ErrorCode_ALREADY_EXISTS:               "ALREADY_EXISTS",
	ErrorCode_PERMISSION_DENIED:            "PERMISSION_DENIED",
	ErrorCode_UNAUTHENTICATED:              "UNAUTHENTICATED",
	ErrorCode_INVALID_PAYLOAD:              "INVALID_PAYLOAD",
	ErrorCode_FORBIDDEN:                    "FORBIDDEN",
	ErrorCode_AUTH_INVALID_TOKEN:           "AUTH_INVALID_TOKEN",
	ErrorCode_AUTH_TOKEN_EXPIRED:           "AUTH_TOKEN_EXPIRED",
	ErrorCode_AUTH_USER_NOT_FOUND:          "AUTH_USER_NOT_FOUND",
	ErrorCode_MEETING_NOT_FOUND:            "MEETING_NOT_FOUND",
	ErrorCode_CALLBACK_TOKEN_MISMATCH:      "CALLBACK_TOKEN_MISMATCH",
	ErrorCode_MEETING_INVALID_STATE:        "MEETING_INVALID_STATE",
	ErrorCode_PAYLOAD_ASSEMBLY_FAILED:      "PAYLOAD_ASSEMBLY_FAILED",
	ErrorCode_WEBHOOK_ENDPOINT_UNKNOWN:     "WEBHOOK_ENDPOINT_UNKNOWN",
	ErrorCode_CRM_INTEGRATION_NOT_FOUND:    "CRM_INTEGRATION_NOT_FOUND",
	ErrorCode_CRM_NOT_CONFIGURED:           "CRM_NOT_CONFIGURED",
	ErrorCode_CRM_CALL_FAILED:              "CRM_CALL_FAILED",
	ErrorCode_CRM_AUTH_FAILED:              "CRM_AUTH_FAILED",
	ErrorCode_GOOGLE_INTEGRATION_NOT_FOUND: "GOOGLE_INTEGRATION_NOT_FOUND",
	ErrorCode_GOOGLE_REFRESH_FAILED:        "GOOGLE_REFRESH_FAILED",
	ErrorCode_DB_QUERY_FAILED:              "DB_QUERY_FAILED",
	ErrorCode_KEYSTORE_FAILED:              "KEYSTORE_FAILED",
	ErrorCode_FORWARD_FAILED:               "FORWARD_FAILED",
	ErrorCode_EXTERNAL_API_FAILED:          "EXTERNAL_API_FAILED",
	ErrorCode_CONFIGURATION_INCOMPLETE:     "CONFIGURATION_INCOMPLETE",
}

// String returns the symbolic name of the code.
func (c ErrorCode) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return "UNKNOWN"
}
