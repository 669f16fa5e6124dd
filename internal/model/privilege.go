package model

// Capability is one entry of the fixed list of permission codes carried in access tokens.
type Capability string

const (
	CapPOSView         Capability = "POS_VIEW"
	CapPOSCheckout     Capability = "POS_CHECKOUT"
	CapPOSVoid         Capability = "POS_VOID"
	CapSalesView       Capability = "SALES_VIEW"
	CapSalesExport     Capability = "SALES_EXPORT"
	CapCatalogView     Capability = "CATALOG_VIEW"
	CapCatalogEdit     Capability = "CATALOG_EDIT"
	CapInventoryAdjust Capability = "INVENTORY_ADJUST"
	CapExpensesView    Capability = "EXPENSES_VIEW"
	CapExpensesCreate  Capability = "EXPENSES_CREATE"
	CapTransfersView   Capability = "TRANSFERS_VIEW"
	CapTransfersCreate Capability = "TRANSFERS_CREATE"
	CapTicketsView     Capability = "TICKETS_VIEW"
	CapTicketsCreate   Capability = "TICKETS_CREATE"
	CapStaffManage     Capability = "STAFF_MANAGE"
	CapRolesManage     Capability = "ROLES_MANAGE"
	CapAuditView       Capability = "AUDIT_VIEW"
)

// Privilege is the persisted form of a Capability, linked to roles.
type Privilege struct {
	ID   uint       `gorm:"primaryKey" json:"id"`
	Code Capability `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"`
	Name string     `gorm:"type:varchar(100)" json:"name"`
}

// DefaultPrivileges is the complete capability list; nothing outside it is ever granted.
var DefaultPrivileges = []Privilege{
	{Code: CapPOSView, Name: "Access POS"},
	{Code: CapPOSCheckout, Name: "Checkout sales"},
	{Code: CapPOSVoid, Name: "Void sales"},
	{Code: CapSalesView, Name: "View sales"},
	{Code: CapSalesExport, Name: "Export sales"},
	{Code: CapCatalogView, Name: "View catalog"},
	{Code: CapCatalogEdit, Name: "Create or edit items"},
	{Code: CapInventoryAdjust, Name: "Adjust stock"},
	{Code: CapExpensesView, Name: "View expenses"},
	{Code: CapExpensesCreate, Name: "Create expenses"},
	{Code: CapTransfersView, Name: "View transfers"},
	{Code: CapTransfersCreate, Name: "Create transfers"},
	{Code: CapTicketsView, Name: "View tickets"},
	{Code: CapTicketsCreate, Name: "Create tickets"},
	{Code: CapStaffManage, Name: "Manage staff"},
	{Code: CapRolesManage, Name: "Manage roles and permissions"},
	{Code: CapAuditView, Name: "View audit logs"},
}

// IsKnownCapability reports whether code belongs to the fixed list.
func IsKnownCapability(code string) bool {
	for _, p := range DefaultPrivileges {
		if string(p.Code) == code {
			return true
		}
	}
	return false
}
