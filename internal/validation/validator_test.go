package validation

import (
	"errors"
	"testing"

	"github.com/content-pipeline-api/internal/apperrors"
	"github.com/content-pipeline-api/internal/models"
)

func TestValidateStart(t *testing.T) {
	tests := []struct {
		name    string
		payload models.StartPayload
		field   string
	}{
		{"valid", models.StartPayload{RecordID: "rec1", Title: "T", ContentType: "blog"}, ""},
		{"missing recordId", models.StartPayload{Title: "T", ContentType: "blog"}, "recordId"},
		{"whitespace title", models.StartPayload{RecordID: "rec1", Title: " \t ", ContentType: "blog"}, "title"},
		{"missing contentType", models.StartPayload{RecordID: "rec1", Title: "T"}, "contentType"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStart(&tt.payload)
			checkFieldError(t, err, tt.field)
		})
	}
}

func TestValidateOutlineApproved(t *testing.T) {
	tests := []struct {
		name    string
		payload models.OutlineApprovedPayload
		field   string
	}{
		{"valid", models.OutlineApprovedPayload{RecordID: "rec1", Outline: "1. Intro"}, ""},
		{"feedback optional", models.OutlineApprovedPayload{RecordID: "rec1", Outline: "x", Feedback: ""}, ""},
		{"missing outline", models.OutlineApprovedPayload{RecordID: "rec1"}, "outline"},
		{"missing recordId", models.OutlineApprovedPayload{Outline: "x"}, "recordId"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateOutlineApproved(&tt.payload)
			checkFieldError(t, err, tt.field)
		})
	}
}

func TestValidateDraftApproved(t *testing.T) {
	tests := []struct {
		name    string
		payload models.DraftApprovedPayload
		field   string
	}{
		{"valid", models.DraftApprovedPayload{RecordID: "rec1", Draft: "text"}, ""},
		{"missing draft", models.DraftApprovedPayload{RecordID: "rec1"}, "draft"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDraftApproved(&tt.payload)
			checkFieldError(t, err, tt.field)
		})
	}
}

func TestValidateBatch(t *testing.T) {
	ids := func(n int) []string {
		out := make([]string, n)
		for i := range out {
			out[i] = "rec"
		}
		return out
	}

	tests := []struct {
		name    string
		payload models.BatchPayload
		wantErr bool
	}{
		{"valid", models.BatchPayload{RecordIDs: ids(5), Action: "generate"}, false},
		{"at the cap", models.BatchPayload{RecordIDs: ids(100), Action: "generate"}, false},
		{"empty", models.BatchPayload{Action: "generate"}, true},
		{"over the cap", models.BatchPayload{RecordIDs: ids(101), Action: "generate"}, true},
		{"missing action", models.BatchPayload{RecordIDs: ids(5)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateBatch(&tt.payload)
			if tt.wantErr && err == nil {
				t.Error("Expected error")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Unexpected error: %v", err)
			}
		})
	}
}

func TestRequireText(t *testing.T) {
	tests := []struct {
		name    string
		fields  map[string]any
		wantMsg string
	}{
		{"present", map[string]any{"Title": "T"}, ""},
		{"absent", map[string]any{}, "Title field is missing from the record"},
		{"explicit null", map[string]any{"Title": nil}, "Title field is missing from the record"},
		{"wrong type", map[string]any{"Title": 42}, "Title field is not text"},
		{"blank", map[string]any{"Title": "  \n "}, "Title field is empty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := RequireText(tt.fields, "Title")
			if tt.wantMsg == "" {
				if err != nil {
					t.Errorf("Unexpected error: %v", err)
				}
				return
			}
			var vErr *apperrors.ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("Expected ValidationError, got %T", err)
			}
			if vErr.Message != tt.wantMsg {
				t.Errorf("Expected message %q, got %q", tt.wantMsg, vErr.Message)
			}
		})
	}
}

func checkFieldError(t *testing.T, err error, field string) {
	t.Helper()
	if field == "" {
		if err != nil {
			t.Errorf("Unexpected error: %v", err)
		}
		return
	}
	var vErr *apperrors.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("Expected ValidationError, got %v", err)
	}
	if vErr.Field != field {
		t.Errorf("Expected field %q, got %q", field, vErr.Field)
	}
}
