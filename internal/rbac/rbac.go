package rbac

// Role constants
const (
	RoleAdmin     = "admin"
	RoleModerator = "moderator"
	RoleWriter    = "writer"
	RoleUser      = "user"
)

// Permission constants
const (
	PermViewAuditLog    = "view_audit_log"
	PermExportAuditLog  = "export_audit_log"
	PermManageUsers     = "manage_users"
	PermModerateContent = "moderate_content"
	PermPublishPosts    = "publish_posts"
)

// RolePermissions defines what each role can do.
var RolePermissions = map[string][]string{
	RoleAdmin: {
		PermViewAuditLog, PermExportAuditLog, PermManageUsers,
		PermModerateContent, PermPublishPosts,
	},
	RoleModerator: {
		PermViewAuditLog, PermExportAuditLog, PermModerateContent,
		// Moderator CANNOT: PermManageUsers
	},
	RoleWriter: {
		PermPublishPosts,
	},
	RoleUser: {},
}

// HasPermission checks if a role has a specific permission.
func HasPermission(role, permission string) bool {
	perms, ok := RolePermissions[role]
	if !ok {
		return false
	}
	for _, p := range perms {
		if p == permission {
			return true
		}
	}
	return false
}

// IsStaff reports whether a role belongs to the admin console audience.
func IsStaff(role string) bool {
	return role == RoleAdmin || role == RoleModerator
}

// ValidRole reports whether the given string is one of the known roles.
func ValidRole(role string) bool {
	_, ok := RolePermissions[role]
	return ok
}
