package domain

// Permission names a menu section or capability of the dashboard.
type Permission string

const (
	PermDashboardView  Permission = "dashboard:view"
	PermPaketRead      Permission = "paket:read"
	PermPaketManage    Permission = "paket:manage"
	PermVendorRead     Permission = "vendor:read"
	PermVendorManage   Permission = "vendor:manage"
	PermReportRead     Permission = "report:read"
	PermReportManage   Permission = "report:manage"
	PermMonitoringRead Permission = "monitoring:read"
	PermMonitoringEdit Permission = "monitoring:manage"
	PermUserRead       Permission = "user:read"
	PermUserManage     Permission = "user:manage"
)

// rolePermissions is the single source of truth for the role-to-menu mapping.
var rolePermissions = map[Role][]Permission{
	RoleAdmin: {
		PermDashboardView,
		PermPaketRead, PermPaketManage,
		PermVendorRead, PermVendorManage,
		PermReportRead, PermReportManage,
		PermMonitoringRead, PermMonitoringEdit,
		PermUserRead, PermUserManage,
	},
	// Itwasda/BPKP auditors read everything and record findings.
	RoleAuditor: {
		PermDashboardView,
		PermPaketRead,
		PermVendorRead,
		PermReportRead, PermReportManage,
		PermMonitoringRead,
		PermUserRead,
	},
	// PPK officials manage their packages and monitoring records.
	RoleManager: {
		PermDashboardView,
		PermPaketRead, PermPaketManage,
		PermVendorRead, PermVendorManage,
		PermReportRead,
		PermMonitoringRead, PermMonitoringEdit,
	},
	RoleUser: {
		PermDashboardView,
		PermPaketRead,
		PermMonitoringRead,
	},
}

// PermissionsFor returns a copy of the permissions granted to role.
// Unknown roles get nil.
func PermissionsFor(role Role) []Permission {
	perms := rolePermissions[role]
	if perms == nil {
		return nil
	}
	out := make([]Permission, len(perms))
	copy(out, perms)
	return out
}

// HasPermission reports whether role grants perm.
func HasPermission(role Role, perm Permission) bool {
	for _, p := range rolePermissions[role] {
		if p == perm {
			return true
		}
	}
	return false
}
