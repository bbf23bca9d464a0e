package leads

import (
	"errors"
	"testing"
)

func TestSubmitLeadRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		req     SubmitLeadRequest
		wantErr error
	}{
		{"valid", SubmitLeadRequest{Name: "Jane", Email: "jane@example.com"}, nil},
		{"valid with optionals", SubmitLeadRequest{Name: "Jane", Email: "jane@example.com", Company: "Acme", Phone: "+27 82 000 0000"}, nil},
		{"missing name", SubmitLeadRequest{Email: "jane@example.com"}, ErrNameEmailRequired},
		{"missing email", SubmitLeadRequest{Name: "Jane"}, ErrNameEmailRequired},
		{"whitespace name", SubmitLeadRequest{Name: "   ", Email: "jane@example.com"}, ErrNameEmailRequired},
		{"both missing", SubmitLeadRequest{}, ErrNameEmailRequired},
		{"no at sign", SubmitLeadRequest{Name: "Jane", Email: "janeexample.com"}, ErrInvalidEmail},
		{"no domain dot", SubmitLeadRequest{Name: "Jane", Email: "jane@example"}, ErrInvalidEmail},
		{"whitespace in email", SubmitLeadRequest{Name: "Jane", Email: "jane @example.com"}, ErrInvalidEmail},
		{"double at", SubmitLeadRequest{Name: "Jane", Email: "jane@@example.com"}, ErrInvalidEmail},
		{"subdomain ok", SubmitLeadRequest{Name: "Jane", Email: "jane@mail.example.co.za"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestMissingNameWinsOverBadEmail(t *testing.T) {
	// Validation short-circuits: a missing name is reported before the
	// email pattern runs.
	req := SubmitLeadRequest{Name: "", Email: "not-an-email"}
	if err := req.Validate(); !errors.Is(err, ErrNameEmailRequired) {
		t.Errorf("expected ErrNameEmailRequired, got %v", err)
	}
}

func TestIsValidation(t *testing.T) {
	if !IsValidation(ErrNameEmailRequired) {
		t.Error("ErrNameEmailRequired should be a validation error")
	}
	if !IsValidation(ErrInvalidEmail) {
		t.Error("ErrInvalidEmail should be a validation error")
	}
	if IsValidation(ErrDeliveryFailed) {
		t.Error("delivery failure is not a validation error")
	}
	if IsValidation(nil) {
		t.Error("nil is not a validation error")
	}
}
