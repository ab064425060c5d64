package authsvc

import "github.com/mkrupp/wtwr/internal/domain"

// AuthorizeOwner permits a mutation only when principal owns the resource.
// It never looks anything up: existence is the caller's concern, so a missing
// resource stays NotFound and a foreign one is Forbidden.
func AuthorizeOwner(ownerID string, principal domain.Principal) error {
	if ownerID == "" || principal.UserID == "" || ownerID != principal.UserID {
		return domain.ErrForbidden
	}

	return nil
}
