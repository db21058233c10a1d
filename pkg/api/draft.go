package api

import "github.com/shopspring/decimal"

// StartDraftRequest opens a draft with every household selected.
type StartDraftRequest struct {
	TripID      string          `json:"tripId"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
}

type StartDraftResponse struct {
	Draft *Draft `json:"draft"`
}

type SetDraftCategoryRequest struct {
	DraftID  string `json:"draftId"`
	Category string `json:"category"`
}

type SetDraftCategoryResponse struct {
	Draft *Draft `json:"draft"`
}

type ToggleDraftParticipantRequest struct {
	DraftID  string `json:"draftId"`
	MasterID string `json:"masterId"`
}

type ToggleDraftParticipantResponse struct {
	Draft *Draft `json:"draft"`
}

// ConfirmDraftRequest commits the draft split equally between the selection.
type ConfirmDraftRequest struct {
	DraftID string `json:"draftId"`
}

type ConfirmDraftResponse struct {
	Expense *Expense `json:"expense"`
}

// ConfirmCustomSplitRequest commits the draft with one amount per household,
// in the order the draft lists its participants.
type ConfirmCustomSplitRequest struct {
	DraftID string            `json:"draftId"`
	Amounts []decimal.Decimal `json:"amounts"`
}

type ConfirmCustomSplitResponse struct {
	Expense *Expense `json:"expense"`
}

type CancelDraftRequest struct {
	DraftID string `json:"draftId"`
}

type CancelDraftResponse struct{}

type GetDraftRequest struct {
	DraftID string `json:"draftId"`
}

type GetDraftResponse struct {
	Draft *Draft `json:"draft"`
}
