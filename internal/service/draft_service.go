package service

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"time"

	"connectrpc.com/connect"
	"github.com/google/uuid"

	"github.com/mmynk/splitopus/internal/calculator"
	"github.com/mmynk/splitopus/internal/models"
	"github.com/mmynk/splitopus/internal/storage"
	"github.com/mmynk/splitopus/pkg/api"
	"github.com/mmynk/splitopus/pkg/api/apiconnect"
)

// Ensure DraftService implements the handler interface
var _ apiconnect.DraftServiceHandler = (*DraftService)(nil)

var (
	errDraftExpired  = errors.New("draft expired")
	errNotDraftOwner = errors.New("draft belongs to another account")
)

// DraftService implements the Connect DraftService. A draft is an expense
// being assembled step by step; it is committed as a normal expense on
// confirmation and dropped after ttl.
type DraftService struct {
	ledger
	ttl time.Duration
	now func() time.Time
}

// NewDraftService creates a new DraftService whose drafts live for ttl.
func NewDraftService(store storage.Store, ttl time.Duration) *DraftService {
	return &DraftService{
		ledger: ledger{store: store},
		ttl:    ttl,
		now:    time.Now,
	}
}

func (s *DraftService) expired(d *models.Draft) bool {
	return s.now().Sub(time.Unix(d.CreatedAt, 0)) >= s.ttl
}

// loadDraft fetches a live draft owned by the caller together with its trip.
// An expired draft is removed and reported as not found.
func (s *DraftService) loadDraft(ctx context.Context, draftID, caller string) (*models.Draft, snapshot, error) {
	if draftID == "" {
		return nil, snapshot{}, invalidArgument("draft_id: %w", errEmptyField)
	}

	draft, err := s.store.GetDraft(ctx, draftID)
	if err != nil {
		return nil, snapshot{}, toConnectError(err)
	}
	if s.expired(draft) {
		if err := s.store.DeleteDraft(ctx, draftID); err != nil && !errors.Is(err, storage.ErrNotFound) {
			slog.Warn("Failed to drop expired draft", "draft_id", draftID, "error", err)
		}
		return nil, snapshot{}, connect.NewError(connect.CodeNotFound, errDraftExpired)
	}
	if draft.PayerID != caller {
		return nil, snapshot{}, connect.NewError(connect.CodePermissionDenied, errNotDraftOwner)
	}

	snap, err := s.loadTrip(ctx, draft.TripID, caller)
	if err != nil {
		return nil, snapshot{}, err
	}
	return draft, snap, nil
}

// buildDraft lists every household of the trip with its selection state.
func (s *DraftService) buildDraft(ctx context.Context, draft *models.Draft, snap snapshot) (*api.Draft, error) {
	masters := snap.masters()
	names, err := s.householdNames(ctx, snap, masters)
	if err != nil {
		return nil, err
	}

	out := &api.Draft{
		ID:           draft.ID,
		TripID:       draft.TripID,
		PayerID:      draft.PayerID,
		Amount:       draft.Amount,
		Description:  draft.Description,
		Category:     string(draft.Category),
		Participants: make([]api.DraftParticipant, 0, len(masters)),
		ExpiresAt:    draft.CreatedAt + int64(s.ttl.Seconds()),
	}
	for _, m := range masters {
		out.Participants = append(out.Participants, api.DraftParticipant{
			MasterID: m,
			Name:     names[m],
			Selected: draft.Selected[m],
		})
	}
	return out, nil
}

func (s *DraftService) saveAndBuild(ctx context.Context, draft *models.Draft, snap snapshot) (*api.Draft, error) {
	if err := s.store.SaveDraft(ctx, draft); err != nil {
		slog.Error("Failed to save draft", "draft_id", draft.ID, "error", err)
		return nil, toConnectError(err)
	}
	out, err := s.buildDraft(ctx, draft, snap)
	if err != nil {
		return nil, toConnectError(err)
	}
	return out, nil
}

// StartDraft opens a draft paid by the caller with every household selected.
func (s *DraftService) StartDraft(ctx context.Context, req *connect.Request[api.StartDraftRequest]) (*connect.Response[api.StartDraftResponse], error) {
	caller, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("StartDraft request received", "trip_id", req.Msg.TripID, "amount", req.Msg.Amount.String())

	snap, err := s.loadTrip(ctx, req.Msg.TripID, caller)
	if err != nil {
		return nil, err
	}
	if err := requirePositive(req.Msg.Amount); err != nil {
		return nil, err
	}

	draft := &models.Draft{
		ID:          uuid.NewString(),
		TripID:      req.Msg.TripID,
		PayerID:     caller,
		Amount:      req.Msg.Amount,
		Description: strings.TrimSpace(req.Msg.Description),
		Category:    models.CategoryOther,
		Selected:    make(map[string]bool),
		CreatedAt:   s.now().Unix(),
	}
	for _, m := range snap.masters() {
		draft.Selected[m] = true
	}

	out, err := s.saveAndBuild(ctx, draft, snap)
	if err != nil {
		return nil, err
	}

	slog.Info("Draft started", "draft_id", draft.ID, "trip_id", draft.TripID)

	return connect.NewResponse(&api.StartDraftResponse{Draft: out}), nil
}

// SetDraftCategory changes the category of a draft.
func (s *DraftService) SetDraftCategory(ctx context.Context, req *connect.Request[api.SetDraftCategoryRequest]) (*connect.Response[api.SetDraftCategoryResponse], error) {
	caller, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("SetDraftCategory request received", "draft_id", req.Msg.DraftID, "category", req.Msg.Category)

	draft, snap, err := s.loadDraft(ctx, req.Msg.DraftID, caller)
	if err != nil {
		return nil, err
	}

	category := models.ParseCategory(req.Msg.Category)
	if category.IsRepayment() {
		return nil, invalidArgument("repayments cannot be drafted")
	}
	draft.Category = category

	out, err := s.saveAndBuild(ctx, draft, snap)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&api.SetDraftCategoryResponse{Draft: out}), nil
}

// ToggleDraftParticipant flips whether a household shares the draft.
func (s *DraftService) ToggleDraftParticipant(ctx context.Context, req *connect.Request[api.ToggleDraftParticipantRequest]) (*connect.Response[api.ToggleDraftParticipantResponse], error) {
	caller, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("ToggleDraftParticipant request received", "draft_id", req.Msg.DraftID, "master_id", req.Msg.MasterID)

	draft, snap, err := s.loadDraft(ctx, req.Msg.DraftID, caller)
	if err != nil {
		return nil, err
	}
	if !slices.Contains(snap.masters(), req.Msg.MasterID) {
		return nil, invalidArgument("%q is not a household of this trip", req.Msg.MasterID)
	}
	draft.Toggle(req.Msg.MasterID)

	out, err := s.saveAndBuild(ctx, draft, snap)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&api.ToggleDraftParticipantResponse{Draft: out}), nil
}

// commitDraft records the draft as an expense and drops it. Once the expense
// is stored the call succeeds; a draft left behind is removed by the sweeper.
func (s *DraftService) commitDraft(ctx context.Context, draft *models.Draft, split models.SplitMap) (*api.Expense, error) {
	expense := &models.Expense{
		TripID:      draft.TripID,
		PayerID:     draft.PayerID,
		Amount:      draft.Amount,
		Description: draft.Description,
		Category:    draft.Category,
		Split:       split,
	}
	out, err := s.commitExpense(ctx, expense)
	if err != nil {
		return nil, err
	}
	if err := s.store.DeleteDraft(ctx, draft.ID); err != nil && !errors.Is(err, storage.ErrNotFound) {
		slog.Warn("Failed to drop confirmed draft", "draft_id", draft.ID, "error", err)
	}
	return out, nil
}

// ConfirmDraft commits the draft split equally between the selected
// households.
func (s *DraftService) ConfirmDraft(ctx context.Context, req *connect.Request[api.ConfirmDraftRequest]) (*connect.Response[api.ConfirmDraftResponse], error) {
	caller, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("ConfirmDraft request received", "draft_id", req.Msg.DraftID)

	draft, snap, err := s.loadDraft(ctx, req.Msg.DraftID, caller)
	if err != nil {
		return nil, err
	}

	// Households may have merged since the draft was started
	masters := snap.masters()
	var selected []string
	for _, id := range draft.SelectedIDs() {
		if slices.Contains(masters, id) {
			selected = append(selected, id)
		}
	}

	split, err := calculator.EqualSplit(draft.Amount, selected)
	if err != nil {
		return nil, toConnectError(err)
	}
	out, err := s.commitDraft(ctx, draft, split)
	if err != nil {
		slog.Error("ConfirmDraft failed", "draft_id", draft.ID, "error", err)
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.ConfirmDraftResponse{Expense: out}), nil
}

// ConfirmCustomSplit commits the draft with one amount per household.
func (s *DraftService) ConfirmCustomSplit(ctx context.Context, req *connect.Request[api.ConfirmCustomSplitRequest]) (*connect.Response[api.ConfirmCustomSplitResponse], error) {
	caller, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("ConfirmCustomSplit request received", "draft_id", req.Msg.DraftID, "amounts", len(req.Msg.Amounts))

	draft, snap, err := s.loadDraft(ctx, req.Msg.DraftID, caller)
	if err != nil {
		return nil, err
	}
	for i, a := range req.Msg.Amounts {
		if a.IsNegative() {
			return nil, invalidArgument("amount %d must not be negative, got %s", i, a)
		}
	}

	split, err := calculator.CustomSplit(draft.Amount, snap.masters(), req.Msg.Amounts)
	if err != nil {
		return nil, toConnectError(err)
	}
	if len(split) == 0 {
		return nil, toConnectError(calculator.ErrNoParticipants)
	}
	out, err := s.commitDraft(ctx, draft, split)
	if err != nil {
		slog.Error("ConfirmCustomSplit failed", "draft_id", draft.ID, "error", err)
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.ConfirmCustomSplitResponse{Expense: out}), nil
}

// CancelDraft discards a draft.
func (s *DraftService) CancelDraft(ctx context.Context, req *connect.Request[api.CancelDraftRequest]) (*connect.Response[api.CancelDraftResponse], error) {
	caller, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("CancelDraft request received", "draft_id", req.Msg.DraftID)

	if _, _, err := s.loadDraft(ctx, req.Msg.DraftID, caller); err != nil {
		return nil, err
	}
	if err := s.store.DeleteDraft(ctx, req.Msg.DraftID); err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.CancelDraftResponse{}), nil
}

// GetDraft returns a draft of the caller.
func (s *DraftService) GetDraft(ctx context.Context, req *connect.Request[api.GetDraftRequest]) (*connect.Response[api.GetDraftResponse], error) {
	caller, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	draft, snap, err := s.loadDraft(ctx, req.Msg.DraftID, caller)
	if err != nil {
		return nil, err
	}
	out, err := s.buildDraft(ctx, draft, snap)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.GetDraftResponse{Draft: out}), nil
}
