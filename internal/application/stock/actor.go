package stock

import (
	"context"
	"strings"

	"github.com/jhoicas/stock-ledger-api/internal/domain"
)

// RoleSystem rol del actor interno usado por el barrido de expiración.
// Es reservado: RoleAuthorizer no lo acepta en sus listas.
const RoleSystem = "system"

// Actor identidad del llamador, siempre ligada a un tenant.
type Actor struct {
	TenantID string
	UserID   string
	Role     string

	system bool // solo SystemActor lo enciende
}

// SystemActor actor sin humano detrás para operaciones del sistema.
func SystemActor(tenantID string) Actor {
	return Actor{TenantID: tenantID, UserID: RoleSystem, Role: RoleSystem, system: true}
}

// IsSystem indica si el actor salió de SystemActor. Un Role "system" llegado
// en un token no basta.
func (a Actor) IsSystem() bool { return a.system }

// Authorizer colaborador externo de autorización: dos chequeos booleanos.
type Authorizer interface {
	CanManageStock(ctx context.Context, a Actor) bool
	CanViewStock(ctx context.Context, a Actor) bool
}

// RoleAuthorizer resuelve la autorización por pertenencia a roles configurados.
type RoleAuthorizer struct {
	manage map[string]struct{}
	view   map[string]struct{}
}

// NewRoleAuthorizer construye el autorizador. Quien gestiona también puede consultar.
func NewRoleAuthorizer(manageRoles, viewRoles []string) *RoleAuthorizer {
	a := &RoleAuthorizer{manage: map[string]struct{}{}, view: map[string]struct{}{}}
	for _, r := range manageRoles {
		if r = strings.TrimSpace(r); r != "" && r != RoleSystem {
			a.manage[r] = struct{}{}
			a.view[r] = struct{}{}
		}
	}
	for _, r := range viewRoles {
		if r = strings.TrimSpace(r); r != "" && r != RoleSystem {
			a.view[r] = struct{}{}
		}
	}
	return a
}

// CanManageStock gate de toda operación que escribe.
func (a *RoleAuthorizer) CanManageStock(_ context.Context, actor Actor) bool {
	_, ok := a.manage[actor.Role]
	return ok
}

// CanViewStock gate de toda consulta.
func (a *RoleAuthorizer) CanViewStock(_ context.Context, actor Actor) bool {
	_, ok := a.view[actor.Role]
	return ok
}

func requireManage(ctx context.Context, auth Authorizer, a Actor) error {
	if err := requireTenant(a); err != nil {
		return err
	}
	if !auth.CanManageStock(ctx, a) {
		return domain.ErrForbidden
	}
	return nil
}

func requireView(ctx context.Context, auth Authorizer, a Actor) error {
	if err := requireTenant(a); err != nil {
		return err
	}
	if !auth.CanViewStock(ctx, a) {
		return domain.ErrForbidden
	}
	return nil
}

func requireTenant(a Actor) error {
	if a.TenantID == "" || a.UserID == "" {
		return domain.ErrUnauthorized
	}
	return nil
}
