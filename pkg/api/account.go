package api

// RegisterAccountRequest records the caller's display name.
type RegisterAccountRequest struct {
	Name string `json:"name"`
}

type RegisterAccountResponse struct {
	Account *Account `json:"account"`
}

// GetAccountRequest looks up an account; an empty ID means the caller.
type GetAccountRequest struct {
	AccountID string `json:"accountId,omitempty"`
}

type GetAccountResponse struct {
	Account *Account  `json:"account"`
	Linked  []Account `json:"linked"`
}

// ApproveLinkRequest is sent by the master to adopt ChildID into its budget.
// When TripID is set the child also joins that trip.
type ApproveLinkRequest struct {
	ChildID string `json:"childId"`
	TripID  string `json:"tripId,omitempty"`
}

type ApproveLinkResponse struct {
	Master *Account `json:"master"`
	Child  *Account `json:"child"`
}
