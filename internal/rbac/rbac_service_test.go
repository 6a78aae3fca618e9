package rbac_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"attendify/internal/rbac"
)

func TestEnforce(t *testing.T) {
	svc, err := rbac.NewService(zap.NewNop())
	require.NoError(t, err)

	cases := []struct {
		role     string
		resource string
		action   string
		allowed  bool
	}{
		{"admin", "employee", "delete", true},
		{"admin", "user", "create", true},
		{"viewer", "client", "read", true},
		{"viewer", "client", "create", false},
		{"viewer", "employee", "delete", false},
		{"device", "employee_attendance", "create", true},
		{"device", "client_visit", "create", true},
		{"device", "client", "create", true},
		{"device", "employee", "read", true},
		{"device", "employee", "delete", false},
		{"device", "user", "update", false},
		{"", "employee", "read", false},
		{"ghost", "employee", "read", false},
	}

	for _, tc := range cases {
		allowed, err := svc.Enforce(tc.role, tc.resource, tc.action)
		require.NoError(t, err)
		assert.Equal(t, tc.allowed, allowed,
			"role=%s resource=%s action=%s", tc.role, tc.resource, tc.action)
	}
}
