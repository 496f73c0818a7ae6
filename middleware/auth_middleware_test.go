package middleware

import (
	"testing"

	"github.com/umshah583/quickway_backend/models"
)

func TestModuleAllowed(t *testing.T) {
	bookingsPerm := &models.ModulePermission{
		Role:    models.UserTypeAdmin,
		Modules: []string{"bookings", "drivers"},
	}

	tests := []struct {
		name     string
		userType string
		perm     *models.ModulePermission
		module   string
		want     bool
	}{
		{
			name:     "super admin passes without any record",
			userType: models.UserTypeSuperAdmin,
			perm:     nil,
			module:   "bookings",
			want:     true,
		},
		{
			name:     "admin without a permission record is denied",
			userType: models.UserTypeAdmin,
			perm:     nil,
			module:   "bookings",
			want:     false,
		},
		{
			name:     "admin with granted module passes",
			userType: models.UserTypeAdmin,
			perm:     bookingsPerm,
			module:   "bookings",
			want:     true,
		},
		{
			name:     "admin with record but missing module is denied",
			userType: models.UserTypeAdmin,
			perm:     bookingsPerm,
			module:   "coupons",
			want:     false,
		},
		{
			name:     "non-admin role follows its own record",
			userType: "dispatcher",
			perm:     &models.ModulePermission{Role: "dispatcher", Modules: []string{"bookings"}},
			module:   "bookings",
			want:     true,
		},
		{
			name:     "empty module list denies everything",
			userType: models.UserTypeAdmin,
			perm:     &models.ModulePermission{Role: models.UserTypeAdmin},
			module:   "bookings",
			want:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := moduleAllowed(tt.userType, tt.perm, tt.module)
			if got != tt.want {
				t.Errorf("moduleAllowed(%q, %v, %q) = %v, want %v",
					tt.userType, tt.perm, tt.module, got, tt.want)
			}
		})
	}
}
