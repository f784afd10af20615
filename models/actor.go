package models

// Role представляет роль аккаунта, соответствующую ENUM в БД.
type Role string

const (
	RoleUser       Role = "user"
	RoleAdmin      Role = "admin"
	RoleStaff      Role = "staff"
	RoleSuperAdmin Role = "super_admin"
)

// Capability — отдельное право, которым может обладать сотрудник (staff).
// Админ и супер-админ обладают всеми правами своего тенанта.
type Capability string

const (
	CapManageSlots    Capability = "manage_slots"
	CapManageRooms    Capability = "manage_rooms"
	CapManageResults  Capability = "manage_results"
	CapManageWallet   Capability = "manage_wallet"
	CapManagePayments Capability = "manage_payments"
)

// Actor is the resolved identity every service operation receives. It is
// built once in the auth middleware from verified token claims, so core
// logic never branches on who issued the token, only on tenant and
// capabilities.
type Actor struct {
	Email        string
	Role         Role
	TenantID     *int
	Capabilities map[Capability]bool
}

// Can reports whether the actor holds the given capability.
func (a Actor) Can(c Capability) bool {
	switch a.Role {
	case RoleAdmin, RoleSuperAdmin:
		return true
	case RoleStaff:
		return a.Capabilities[c]
	default:
		return false
	}
}

// OwnsTenant reports whether the actor may touch data of the given tenant.
func (a Actor) OwnsTenant(tenantID int) bool {
	if a.Role == RoleSuperAdmin {
		return true
	}
	return a.TenantID != nil && *a.TenantID == tenantID
}

// TenantFilter returns the tenant id every query of this actor must be
// scoped to, or nil for the super-admin (no filter).
func (a Actor) TenantFilter() *int {
	if a.Role == RoleSuperAdmin {
		return nil
	}
	return a.TenantID
}
