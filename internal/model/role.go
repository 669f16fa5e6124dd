package model

// Role groups capabilities; staff get exactly their role's capabilities at login.
type Role struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	Code        string      `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"`
	Name        string      `gorm:"type:varchar(100)" json:"name"`
	Description string      `gorm:"type:text" json:"description"`
	Privileges  []Privilege `gorm:"many2many:role_privileges;" json:"privileges,omitempty"`
}

const (
	RoleRoot    = "ROOT"
	RoleManager = "MANAGER"
	RoleCashier = "CASHIER"
	RoleITAgent = "IT_AGENT"
	RoleViewer  = "VIEWER"
)

var DefaultRoles = []Role{
	{Code: RoleRoot, Name: "Root", Description: "Full access"},
	{Code: RoleManager, Name: "Manager", Description: "Manage inventory, staff, analytics"},
	{Code: RoleCashier, Name: "Cashier", Description: "POS and transfers"},
	{Code: RoleITAgent, Name: "IT agent", Description: "Tickets and IT services"},
	{Code: RoleViewer, Name: "Viewer", Description: "Read only"},
}

// DefaultRoleGrants lists the seeded capabilities per role. ROOT gets everything.
var DefaultRoleGrants = map[string][]Capability{
	RoleManager: {
		CapPOSView, CapPOSCheckout, CapPOSVoid, CapSalesView, CapSalesExport,
		CapCatalogView, CapCatalogEdit, CapInventoryAdjust,
		CapExpensesView, CapExpensesCreate, CapTransfersView, CapTicketsView,
		CapStaffManage, CapAuditView,
	},
	RoleCashier: {
		CapPOSView, CapPOSCheckout, CapSalesView, CapCatalogView,
		CapTransfersView, CapTransfersCreate, CapExpensesCreate,
	},
	RoleITAgent: {
		CapPOSView, CapCatalogView, CapTicketsView, CapTicketsCreate,
	},
	RoleViewer: {
		CapSalesView, CapCatalogView, CapExpensesView, CapTransfersView, CapTicketsView,
	},
}
