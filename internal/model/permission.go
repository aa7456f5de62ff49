package model

// Permission is a capability checked by the HTTP gate.
type Permission int

const (
	// PermView allows reading inventory, movements, files and the own profile.
	PermView Permission = iota
	// PermEditInventory allows creating, updating, deleting and moving stock.
	PermEditInventory
	// PermManageFiles allows uploading and deleting files.
	PermManageFiles
	// PermManageUsers allows listing and deleting users.
	PermManageUsers
	// PermMaintenance allows maintenance tasks such as purging orphaned files.
	PermMaintenance
)

var permissionNames = map[Permission]string{
	PermView:          "view",
	PermEditInventory: "edit-inventory",
	PermManageFiles:   "manage-files",
	PermManageUsers:   "manage-users",
	PermMaintenance:   "maintenance",
}

func (p Permission) String() string {
	if name, ok := permissionNames[p]; ok {
		return name
	}
	return "unknown"
}

// capabilities maps each role to the permissions it holds.
var capabilities = map[string]map[Permission]bool{
	RoleMaster: {
		PermView:          true,
		PermEditInventory: true,
		PermManageFiles:   true,
		PermManageUsers:   true,
		PermMaintenance:   true,
	},
	RoleAdmin: {
		PermView:          true,
		PermEditInventory: true,
		PermManageFiles:   true,
	},
	RoleGuest: {
		PermView: true,
	},
}

// Can reports whether role holds permission p. Unknown roles hold nothing.
func Can(role string, p Permission) bool {
	return capabilities[role][p]
}
