// Package validation checks webhook payloads and fetched record fields
// before events are emitted.
package validation

import (
	"fmt"
	"strings"

	"github.com/content-pipeline-api/internal/apperrors"
	"github.com/content-pipeline-api/internal/models"
)

// ValidateStart checks a start webhook payload.
func ValidateStart(p *models.StartPayload) error {
	if strings.TrimSpace(p.RecordID) == "" {
		return apperrors.NewValidationError("recordId", "recordId is required")
	}
	if strings.TrimSpace(p.Title) == "" {
		return apperrors.NewValidationError("title", "title is required")
	}
	if strings.TrimSpace(p.ContentType) == "" {
		return apperrors.NewValidationError("contentType", "contentType is required")
	}
	return nil
}

// ValidateOutlineApproved checks the minimal outline-approved payload.
func ValidateOutlineApproved(p *models.OutlineApprovedPayload) error {
	if strings.TrimSpace(p.RecordID) == "" {
		return apperrors.NewValidationError("recordId", "recordId is required")
	}
	if strings.TrimSpace(p.Outline) == "" {
		return apperrors.NewValidationError("outline", "outline is required")
	}
	return nil
}

// ValidateDraftApproved checks the draft-approved payload.
func ValidateDraftApproved(p *models.DraftApprovedPayload) error {
	if strings.TrimSpace(p.RecordID) == "" {
		return apperrors.NewValidationError("recordId", "recordId is required")
	}
	if strings.TrimSpace(p.Draft) == "" {
		return apperrors.NewValidationError("draft", "draft is required")
	}
	return nil
}

// ValidateBatch checks the batch payload size bounds.
func ValidateBatch(p *models.BatchPayload) error {
	if len(p.RecordIDs) == 0 {
		return apperrors.NewLimitExceededError("recordIds must contain at least 1 record id")
	}
	if len(p.RecordIDs) > models.MaxBatchSize {
		return apperrors.NewLimitExceededError(
			fmt.Sprintf("recordIds must contain at most %d record ids, got %d", models.MaxBatchSize, len(p.RecordIDs)))
	}
	if strings.TrimSpace(p.Action) == "" {
		return apperrors.NewValidationError("action", "action is required")
	}
	return nil
}

// RequireText verifies that a fetched record field exists, is string-typed,
// and is non-blank after trimming. The three checks are separate on purpose:
// upstream systems have sent absent, wrong-typed, and blank values, and each
// failure needs its own diagnostic.
func RequireText(fields map[string]any, name string) error {
	raw, ok := fields[name]
	if !ok || raw == nil {
		return apperrors.NewValidationError(name, fmt.Sprintf("%s field is missing from the record", name))
	}
	text, ok := raw.(string)
	if !ok {
		return apperrors.NewValidationError(name, fmt.Sprintf("%s field is not text", name))
	}
	if strings.TrimSpace(text) == "" {
		return apperrors.NewValidationError(name, fmt.Sprintf("%s field is empty", name))
	}
	return nil
}
