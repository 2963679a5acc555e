package service

import (
	"fmt"

	"task-planner/internal/model"
)

// authorizeOwner is the single ownership check run before any
// id-addressed read-modify-write or delete. It is a stateless comparison;
// the row is always resolved first, so a missing id surfaces as not-found
// and a foreign one as forbidden.
func authorizeOwner(occ *model.Occurrence, requesterID uint) error {
	if occ.UserID != requesterID {
		return fmt.Errorf("occurrence %d: %w", occ.ID, ErrForbidden)
	}
	return nil
}
