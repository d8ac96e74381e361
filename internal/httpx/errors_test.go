package httpx

import (
	"errors"
	"net/http"
	"testing"

	"porkbun_console/internal/porkbun"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want string
	}{
		{
			name: "error without internal err",
			err:  NewAppError(http.StatusBadRequest, CodeParamMissing, "param missing", nil),
			want: "code=2001, message=param missing",
		},
		{
			name: "error with internal err",
			err:  NewAppError(http.StatusInternalServerError, CodeInternalError, "internal error", errors.New("db connection failed")),
			want: "code=5001, message=internal error, err=db connection failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("AppError.Error() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestErrUnauthorized(t *testing.T) {
	err := ErrUnauthorized("")
	if err.HTTPStatus != http.StatusUnauthorized {
		t.Errorf("Expected HTTP status %d, got %d", http.StatusUnauthorized, err.HTTPStatus)
	}
	if err.Code != CodeUnauthorized {
		t.Errorf("Expected code %d, got %d", CodeUnauthorized, err.Code)
	}
	if err.Message != "unauthorized" {
		t.Errorf("Expected message 'unauthorized', got '%s'", err.Message)
	}
}

func TestErrParamMissing(t *testing.T) {
	err := ErrParamMissing("field 'name' is required")
	if err.HTTPStatus != http.StatusBadRequest {
		t.Errorf("Expected HTTP status %d, got %d", http.StatusBadRequest, err.HTTPStatus)
	}
	if err.Code != CodeParamMissing {
		t.Errorf("Expected code %d, got %d", CodeParamMissing, err.Code)
	}
	if err.Message != "field 'name' is required" {
		t.Errorf("Expected custom message, got '%s'", err.Message)
	}
}

func TestFromPorkbunError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   int
	}{
		{
			name:       "validation error is the caller's fault",
			err:        &porkbun.ValidationError{Message: "at least 2 valid nameservers required"},
			wantStatus: http.StatusBadRequest,
			wantCode:   CodeParamIllegal,
		},
		{
			name:       "auth error",
			err:        &porkbun.AuthError{Message: "Invalid API keys"},
			wantStatus: http.StatusBadGateway,
			wantCode:   CodeUpstreamAuth,
		},
		{
			name:       "api access disabled",
			err:        &porkbun.APIAccessDisabledError{Domain: "example.com", Message: "Domain is not opted in to API access"},
			wantStatus: http.StatusBadGateway,
			wantCode:   CodeUpstreamDisabled,
		},
		{
			name:       "plain api error",
			err:        &porkbun.APIError{Message: "Invalid record ID"},
			wantStatus: http.StatusBadGateway,
			wantCode:   CodeUpstreamError,
		},
		{
			name:       "transport failure",
			err:        &porkbun.RequestError{Endpoint: "/dns/retrieve/example.com", Err: errors.New("connection refused")},
			wantStatus: http.StatusBadGateway,
			wantCode:   CodeUpstreamNetwork,
		},
		{
			name:       "unknown error falls back to external",
			err:        errors.New("boom"),
			wantStatus: http.StatusBadGateway,
			wantCode:   CodeExternalError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromPorkbunError(tt.err)
			if got.HTTPStatus != tt.wantStatus {
				t.Errorf("FromPorkbunError() HTTPStatus = %d, want %d", got.HTTPStatus, tt.wantStatus)
			}
			if got.Code != tt.wantCode {
				t.Errorf("FromPorkbunError() Code = %d, want %d", got.Code, tt.wantCode)
			}
		})
	}
}

func TestFromPorkbunErrorWrapped(t *testing.T) {
	// Taxonomy types must be recognized even inside a wrap chain.
	inner := &porkbun.AuthError{Message: "Invalid API keys"}
	wrapped := errors.Join(errors.New("list domains"), inner)
	got := FromPorkbunError(wrapped)
	if got.Code != CodeUpstreamAuth {
		t.Errorf("FromPorkbunError() Code = %d, want %d", got.Code, CodeUpstreamAuth)
	}
}

func TestFromPorkbunErrorDisabledCarriesDomain(t *testing.T) {
	err := &porkbun.APIAccessDisabledError{Domain: "example.com", Message: "not opted in"}
	got := FromPorkbunError(err)
	data, ok := got.Data.(map[string]any)
	if !ok {
		t.Fatalf("FromPorkbunError() Data = %T, want map[string]any", got.Data)
	}
	if data["domain"] != "example.com" {
		t.Errorf("Data[domain] = %v, want example.com", data["domain"])
	}
}

func TestErrorCodes(t *testing.T) {
	tests := []struct {
		name string
		code int
		min  int
		max  int
	}{
		{"CodeSuccess", CodeSuccess, 0, 0},
		{"CodeUnauthorized", CodeUnauthorized, 1000, 1099},
		{"CodeInvalidToken", CodeInvalidToken, 1000, 1099},
		{"CodeTokenExpired", CodeTokenExpired, 1000, 1099},
		{"CodeForbidden", CodeForbidden, 1000, 1099},
		{"CodeParamMissing", CodeParamMissing, 2000, 2099},
		{"CodeParamInvalid", CodeParamInvalid, 2000, 2099},
		{"CodeParamIllegal", CodeParamIllegal, 2000, 2099},
		{"CodeNotFound", CodeNotFound, 3000, 3999},
		{"CodeAlreadyExists", CodeAlreadyExists, 3000, 3999},
		{"CodeStateConflict", CodeStateConflict, 3000, 3999},
		{"CodeUpstreamAuth", CodeUpstreamAuth, 4000, 4099},
		{"CodeUpstreamDisabled", CodeUpstreamDisabled, 4000, 4099},
		{"CodeUpstreamError", CodeUpstreamError, 4000, 4099},
		{"CodeUpstreamNetwork", CodeUpstreamNetwork, 4000, 4099},
		{"CodeInternalError", CodeInternalError, 5000, 5999},
		{"CodeDatabaseError", CodeDatabaseError, 5000, 5999},
		{"CodeExternalError", CodeExternalError, 5000, 5999},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.code < tt.min || tt.code > tt.max {
				t.Errorf("%s = %d, expected to be in range [%d, %d]", tt.name, tt.code, tt.min, tt.max)
			}
		})
	}
}
