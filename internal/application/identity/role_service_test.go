package identity_test

import (
	"context"
	"testing"

	identityapp "github.com/erp/billing/internal/application/identity"
	"github.com/erp/billing/internal/domain/identity"
	"github.com/erp/billing/internal/domain/shared"
	"github.com/erp/billing/internal/domain/tenant"
	"github.com/erp/billing/tests/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type services struct {
	roles *identityapp.RoleService
	staff *identityapp.StaffService
	gate  *identityapp.PermissionGate
}

func newServices(f *testutil.Fixture) services {
	log := zap.NewNop()
	return services{
		roles: identityapp.NewRoleService(f.Scope, f.Repos.RoleRepo(), log),
		staff: identityapp.NewStaffService(f.Scope, f.Repos.StaffRepo(), log),
		gate:  identityapp.NewPermissionGate(f.Repos.PermissionRepo(), f.Repos.ModuleRepo(), log),
	}
}

func TestRoleService_StaffPermissions(t *testing.T) {
	f := testutil.NewFixture(t)
	s := newServices(f)
	ctx := context.Background()

	role, err := s.roles.Create(ctx, f.Owner, identityapp.CreateRoleInput{
		Name: "Cashier",
		Permissions: []identityapp.PermissionInput{
			{Module: identity.ModuleInvoice, View: true, Create: true},
			{Module: identity.ModulePayment, Create: true},
		},
	})
	require.NoError(t, err)
	require.Len(t, role.Permissions, 2)

	clerk := uuid.New()
	assigned, err := s.staff.Assign(ctx, f.Owner, identityapp.AssignStaffInput{UserID: clerk, RoleID: role.ID})
	require.NoError(t, err)
	actor := tenant.NewStaff(clerk, f.Company.ID, role.ID)

	t.Run("granted and denied actions", func(t *testing.T) {
		require.NoError(t, s.gate.Authorize(ctx, actor, identity.ModuleInvoice, identity.ActionCreate))
		assert.ErrorIs(t, s.gate.Authorize(ctx, actor, identity.ModuleInvoice, identity.ActionDelete), shared.ErrForbidden)
		assert.ErrorIs(t, s.gate.Authorize(ctx, actor, identity.ModuleBankTransfer, identity.ActionCreate), shared.ErrForbidden)
	})

	t.Run("owner is always allowed", func(t *testing.T) {
		require.NoError(t, s.gate.Authorize(ctx, f.Owner, identity.ModuleBankTransfer, identity.ActionDelete))
	})

	t.Run("update replaces the matrix", func(t *testing.T) {
		_, err := s.roles.Update(ctx, f.Owner, role.ID, identityapp.UpdateRoleInput{
			Name:        "Cashier",
			Permissions: []identityapp.PermissionInput{{Module: identity.ModuleBankTransfer, Create: true}},
		})
		require.NoError(t, err)
		assert.ErrorIs(t, s.gate.Authorize(ctx, actor, identity.ModuleInvoice, identity.ActionCreate), shared.ErrForbidden)
		require.NoError(t, s.gate.Authorize(ctx, actor, identity.ModuleBankTransfer, identity.ActionCreate))

		m, err := s.gate.Matrix(ctx, actor)
		require.NoError(t, err)
		assert.Equal(t, tenant.ActorStaff, m.ActorKind)
		require.Len(t, m.Permissions, 1)
	})

	t.Run("unknown module is rejected", func(t *testing.T) {
		_, err := s.roles.Create(ctx, f.Owner, identityapp.CreateRoleInput{
			Name:        "Auditor",
			Permissions: []identityapp.PermissionInput{{Module: "Payroll", View: true}},
		})
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("duplicate role name", func(t *testing.T) {
		_, err := s.roles.Create(ctx, f.Owner, identityapp.CreateRoleInput{Name: "cashier"})
		assert.ErrorIs(t, err, shared.ErrAlreadyExists)
	})

	t.Run("role held by active staff cannot be deleted", func(t *testing.T) {
		assert.ErrorIs(t, s.roles.Delete(ctx, f.Owner, role.ID), shared.ErrBusinessRule)

		require.NoError(t, s.staff.Remove(ctx, f.Owner, assigned.ID))
		require.NoError(t, s.roles.Delete(ctx, f.Owner, role.ID))
		assert.ErrorIs(t, s.gate.Authorize(ctx, actor, identity.ModuleBankTransfer, identity.ActionCreate), shared.ErrForbidden)

		list, err := s.roles.List(ctx, f.Owner)
		require.NoError(t, err)
		assert.Empty(t, list)
	})
}

func TestStaffService_Assign(t *testing.T) {
	f := testutil.NewFixture(t)
	s := newServices(f)
	ctx := context.Background()

	role, err := s.roles.Create(ctx, f.Owner, identityapp.CreateRoleInput{Name: "Viewer"})
	require.NoError(t, err)

	t.Run("owner cannot be staff", func(t *testing.T) {
		_, err := s.staff.Assign(ctx, f.Owner, identityapp.AssignStaffInput{UserID: f.Owner.UserID, RoleID: role.ID})
		assert.ErrorIs(t, err, shared.ErrBusinessRule)
	})

	t.Run("role must belong to the company", func(t *testing.T) {
		_, err := s.staff.Assign(ctx, f.Owner, identityapp.AssignStaffInput{UserID: uuid.New(), RoleID: uuid.New()})
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("one company per staff user", func(t *testing.T) {
		user := uuid.New()
		_, err := s.staff.Assign(ctx, f.Owner, identityapp.AssignStaffInput{UserID: user, RoleID: role.ID})
		require.NoError(t, err)

		other := f.AddCompany(t, uuid.New(), "Other Co")
		otherOwner := tenant.NewOwner(other.OwnerID, other.ID)
		otherRole, err := s.roles.Create(ctx, otherOwner, identityapp.CreateRoleInput{Name: "Viewer"})
		require.NoError(t, err)

		_, err = s.staff.Assign(ctx, otherOwner, identityapp.AssignStaffInput{UserID: user, RoleID: otherRole.ID})
		assert.ErrorIs(t, err, shared.ErrAlreadyExists)

		list, err := s.staff.List(ctx, f.Owner)
		require.NoError(t, err)
		assert.Len(t, list, 1)
	})
}
