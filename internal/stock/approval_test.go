package stock

import (
	"testing"

	"github.com/mzjcars/stockdesk/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestApprovalStateOf(t *testing.T) {
	yes, no := true, false

	cases := []struct {
		name    string
		admin   *bool
		finance *bool
		want    ApprovalState
	}{
		{"no flags", nil, nil, PendingBoth},
		{"both false", &no, &no, PendingBoth},
		{"admin only", &yes, &no, PendingFinance},
		{"finance only", &no, &yes, PendingAdmin},
		{"both true", &yes, &yes, Approved},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := models.TransferRecord{AdminApproved: tc.admin, FinanceApproved: tc.finance}
			assert.Equal(t, tc.want, ApprovalStateOf(m))
		})
	}
}
