package storefront

import (
	"fmt"

	"github.com/vitrine-admin/vitrine/internal/platform/httpx"
)

var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = fmt.Errorf("storefront: %w", httpx.ErrNotFound)
	// ErrInvalidRecord indicates a record failed validation at the loading boundary.
	ErrInvalidRecord = fmt.Errorf("storefront: invalid record: %w", httpx.ErrValidation)
)
