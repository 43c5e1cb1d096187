package service

import (
	"github.com/SolYield/yieldgate/internal/identity"
	"github.com/SolYield/yieldgate/internal/model"
)

// Stateless authorization checks. Every elevated operation runs the
// relevant check before any mutation.

func IsAdmin(caller string, reg *model.Registry) bool {
	return reg != nil && caller != "" && identity.Equal(caller, reg.Admin)
}

func IsOwner(caller string, ledger *model.OwnerLedger) bool {
	return ledger != nil && caller != "" && identity.Equal(caller, ledger.Owner)
}
