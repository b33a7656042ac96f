package stock

import "github.com/mzjcars/stockdesk/internal/models"

// ApprovalState is the dual-approval position of a sold-pending transfer.
// Either flag may be set first; the state is derived, not stored.
type ApprovalState string

const (
	PendingBoth    ApprovalState = "pending_both"
	PendingAdmin   ApprovalState = "pending_admin"
	PendingFinance ApprovalState = "pending_finance"
	Approved       ApprovalState = "approved"
)

// ApprovalKind names which of the two flags an approval action targets.
type ApprovalKind string

const (
	ApprovalAdmin   ApprovalKind = "admin"
	ApprovalFinance ApprovalKind = "finance"
)

// ApprovalStateOf derives the approval position of a transfer. Moves to
// anything other than the sold-pending state carry no approval flags and
// always report PendingBoth, which callers should treat as "not applicable".
func ApprovalStateOf(m models.TransferRecord) ApprovalState {
	admin := m.AdminApproved != nil && *m.AdminApproved
	finance := m.FinanceApproved != nil && *m.FinanceApproved

	switch {
	case admin && finance:
		return Approved
	case admin:
		return PendingFinance
	case finance:
		return PendingAdmin
	default:
		return PendingBoth
	}
}
