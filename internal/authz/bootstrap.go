package authz

import "fmt"

// RoleSeed is one preconfigured back-office role.
type RoleSeed struct {
	Role     string
	Inherits []string
	Policies []Policy
}

// BuiltinRoleSeeds defines the default back-office role matrix.
func BuiltinRoleSeeds() []RoleSeed {
	return []RoleSeed{
		{
			Role: "readonly_auditor",
			Policies: []Policy{
				{Object: "/admin/*", Action: "GET"},
			},
		},
		{
			Role:     "referral_ops",
			Inherits: []string{"readonly_auditor"},
			Policies: []Policy{
				{Object: "/admin/referral/orphans", Action: "GET"},
				{Object: "/admin/referral/orphans/:id/resolve", Action: "POST"},
				{Object: "/admin/referral/orphans/sweep", Action: "POST"},
				{Object: "/admin/members", Action: "GET"},
				{Object: "/admin/members/:id", Action: "GET"},
				{Object: "/admin/members/:id/role-changes", Action: "GET"},
			},
		},
		{
			Role:     "membership_support",
			Inherits: []string{"readonly_auditor"},
			Policies: []Policy{
				{Object: "/admin/members", Action: "GET"},
				{Object: "/admin/members/:id", Action: "GET"},
				{Object: "/admin/members/:id/payments", Action: "GET"},
			},
		},
	}
}

// BootstrapBuiltinRoles seeds the default roles and their policies.
func (s *Service) BootstrapBuiltinRoles() error {
	if s == nil || s.enforcer == nil {
		return fmt.Errorf("authz service unavailable")
	}

	for _, seed := range BuiltinRoleSeeds() {
		role, err := s.EnsureRole(seed.Role)
		if err != nil {
			return err
		}

		for _, parent := range seed.Inherits {
			parentRole, err := NormalizeRole(parent)
			if err != nil {
				return err
			}
			if _, err := s.enforcer.AddNamedGroupingPolicy("g", role, parentRole); err != nil {
				return fmt.Errorf("link role inheritance failed: %w", err)
			}
		}

		for _, policy := range seed.Policies {
			action := NormalizeAction(policy.Action)
			if action == "" {
				return fmt.Errorf("builtin policy action is required")
			}
			if _, err := s.enforcer.AddPolicy(role, NormalizeObject(policy.Object), action); err != nil {
				return fmt.Errorf("add builtin policy failed: %w", err)
			}
		}
	}
	return nil
}
