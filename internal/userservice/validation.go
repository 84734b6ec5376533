package userservice

import (
	"github.com/changyic/bloglist/internal/common"
)

// validatePassword runs the only user checks owned by this service. Username
// constraints (minimum length, uniqueness) live in the storage schema and are
// mapped from pq errors in the model instead.
func validatePassword(v *common.Validator, password *string) {
	if password == nil {
		v.AddError("password", "must be given")
		return
	}

	v.Check(len(*password) >= 3, "password", "must be at least 3 characters long")
}
