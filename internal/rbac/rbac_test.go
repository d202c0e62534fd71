package rbac

import "testing"

func TestHasPermission(t *testing.T) {
	tests := []struct {
		role       string
		permission string
		expected   bool
	}{
		{RoleAdmin, PermViewAuditLog, true},
		{RoleAdmin, PermManageUsers, true},
		{RoleAdmin, PermModerateContent, true},
		{RoleModerator, PermViewAuditLog, true},
		{RoleModerator, PermExportAuditLog, true},
		{RoleModerator, PermManageUsers, false},
		{RoleWriter, PermPublishPosts, true},
		{RoleWriter, PermViewAuditLog, false},
		{RoleUser, PermViewAuditLog, false},
		{RoleUser, PermPublishPosts, false},
		{"nonexistent", PermViewAuditLog, false},
	}

	for _, tt := range tests {
		t.Run(tt.role+"/"+tt.permission, func(t *testing.T) {
			if got := HasPermission(tt.role, tt.permission); got != tt.expected {
				t.Errorf("HasPermission(%q, %q) = %v, want %v", tt.role, tt.permission, got, tt.expected)
			}
		})
	}
}

func TestIsStaff(t *testing.T) {
	if !IsStaff(RoleAdmin) || !IsStaff(RoleModerator) {
		t.Error("admin and moderator must be staff")
	}
	if IsStaff(RoleWriter) || IsStaff(RoleUser) || IsStaff("") {
		t.Error("writer, user and unknown roles must not be staff")
	}
}

func TestValidRole(t *testing.T) {
	for _, r := range []string{RoleAdmin, RoleModerator, RoleWriter, RoleUser} {
		if !ValidRole(r) {
			t.Errorf("ValidRole(%q) = false, want true", r)
		}
	}
	if ValidRole("superuser") {
		t.Error(`ValidRole("superuser") = true, want false`)
	}
}
