package identity

import (
	"context"
	"errors"
	"testing"

	"github.com/erp/billing/internal/domain/identity"
	"github.com/erp/billing/internal/domain/shared"
	"github.com/erp/billing/internal/domain/tenant"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockPermissionRepository struct {
	mock.Mock
}

func (m *MockPermissionRepository) Find(ctx context.Context, roleID, companyID uuid.UUID, module string) (*identity.ModulePermission, error) {
	args := m.Called(ctx, roleID, companyID, module)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.ModulePermission), args.Error(1)
}

func (m *MockPermissionRepository) FindByRole(ctx context.Context, roleID, companyID uuid.UUID) ([]identity.ModulePermission, error) {
	args := m.Called(ctx, roleID, companyID)
	return args.Get(0).([]identity.ModulePermission), args.Error(1)
}

type MockModuleRepository struct {
	mock.Mock
}

func (m *MockModuleRepository) FindAll(ctx context.Context) ([]identity.Module, error) {
	args := m.Called(ctx)
	return args.Get(0).([]identity.Module), args.Error(1)
}

func (m *MockModuleRepository) ExistsByNames(ctx context.Context, names []string) ([]string, error) {
	args := m.Called(ctx, names)
	return args.Get(0).([]string), args.Error(1)
}

var (
	_ identity.PermissionRepository = (*MockPermissionRepository)(nil)
	_ identity.ModuleRepository     = (*MockModuleRepository)(nil)
)

func TestPermissionGate_Check(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New()
	roleID := uuid.New()

	t.Run("owner bypasses the matrix", func(t *testing.T) {
		perms := new(MockPermissionRepository)
		gate := NewPermissionGate(perms, new(MockModuleRepository), zap.NewNop())

		for _, action := range identity.AllActions() {
			ok, err := gate.Check(ctx, tenant.NewOwner(uuid.New(), companyID), identity.ModuleInvoice, action)
			require.NoError(t, err)
			assert.True(t, ok)
		}
		perms.AssertNotCalled(t, "Find", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("staff without a row is denied", func(t *testing.T) {
		perms := new(MockPermissionRepository)
		perms.On("Find", ctx, roleID, companyID, identity.ModulePayment).Return(nil, shared.ErrNotFound)
		gate := NewPermissionGate(perms, new(MockModuleRepository), zap.NewNop())

		ok, err := gate.Check(ctx, tenant.NewStaff(uuid.New(), companyID, roleID), identity.ModulePayment, identity.ActionCreate)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("staff uses the action bit", func(t *testing.T) {
		perms := new(MockPermissionRepository)
		row := &identity.ModulePermission{RoleID: roleID, CompanyID: companyID, ModuleName: identity.ModuleInvoice, View: true, GetUsingPost: true}
		perms.On("Find", ctx, roleID, companyID, identity.ModuleInvoice).Return(row, nil)
		gate := NewPermissionGate(perms, new(MockModuleRepository), zap.NewNop())
		staff := tenant.NewStaff(uuid.New(), companyID, roleID)

		tests := []struct {
			action identity.Action
			want   bool
		}{
			{identity.ActionView, true},
			{identity.ActionGetUsingPost, true},
			{identity.ActionCreate, false},
			{identity.ActionEdit, false},
			{identity.ActionDelete, false},
			{identity.ActionViewSpecific, false},
		}
		for _, tt := range tests {
			t.Run(string(tt.action), func(t *testing.T) {
				ok, err := gate.Check(ctx, staff, identity.ModuleInvoice, tt.action)
				require.NoError(t, err)
				assert.Equal(t, tt.want, ok)
			})
		}
	})

	t.Run("repository failure surfaces", func(t *testing.T) {
		perms := new(MockPermissionRepository)
		perms.On("Find", ctx, roleID, companyID, identity.ModuleInvoice).Return(nil, errors.New("db down"))
		gate := NewPermissionGate(perms, new(MockModuleRepository), zap.NewNop())

		_, err := gate.Check(ctx, tenant.NewStaff(uuid.New(), companyID, roleID), identity.ModuleInvoice, identity.ActionView)
		assert.Error(t, err)
	})

	t.Run("unknown action", func(t *testing.T) {
		gate := NewPermissionGate(new(MockPermissionRepository), new(MockModuleRepository), zap.NewNop())
		_, err := gate.Check(ctx, tenant.NewOwner(uuid.New(), companyID), identity.ModuleInvoice, identity.Action("approve"))
		assert.True(t, errors.Is(err, shared.ErrInvalidInput))
	})
}

func TestPermissionGate_Authorize(t *testing.T) {
	ctx := context.Background()
	companyID, roleID := uuid.New(), uuid.New()
	perms := new(MockPermissionRepository)
	perms.On("Find", mock.Anything, roleID, companyID, identity.ModuleBankTransfer).Return(nil, shared.ErrNotFound)
	gate := NewPermissionGate(perms, new(MockModuleRepository), zap.NewNop())

	err := gate.Authorize(ctx, tenant.NewStaff(uuid.New(), companyID, roleID), identity.ModuleBankTransfer, identity.ActionDelete)
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrForbidden))

	assert.NoError(t, gate.Authorize(ctx, tenant.NewOwner(uuid.New(), companyID), identity.ModuleBankTransfer, identity.ActionDelete))
}

func TestPermissionGate_Matrix(t *testing.T) {
	ctx := context.Background()
	companyID, roleID := uuid.New(), uuid.New()

	t.Run("owner receives every module", func(t *testing.T) {
		modules := new(MockModuleRepository)
		modules.On("FindAll", ctx).Return([]identity.Module{{ID: uuid.New(), Name: identity.ModuleInvoice}, {ID: uuid.New(), Name: identity.ModulePayment}}, nil)
		gate := NewPermissionGate(new(MockPermissionRepository), modules, zap.NewNop())

		m, err := gate.Matrix(ctx, tenant.NewOwner(uuid.New(), companyID))
		require.NoError(t, err)
		assert.Equal(t, tenant.ActorOwner, m.ActorKind)
		assert.Nil(t, m.RoleID)
		require.Len(t, m.Permissions, 2)
		assert.True(t, m.Permissions[1].Delete)
	})

	t.Run("staff receives its rows", func(t *testing.T) {
		perms := new(MockPermissionRepository)
		perms.On("FindByRole", ctx, roleID, companyID).Return([]identity.ModulePermission{{ModuleName: identity.ModuleItem, View: true}}, nil)
		gate := NewPermissionGate(perms, new(MockModuleRepository), zap.NewNop())

		m, err := gate.Matrix(ctx, tenant.NewStaff(uuid.New(), companyID, roleID))
		require.NoError(t, err)
		require.NotNil(t, m.RoleID)
		assert.Equal(t, roleID, *m.RoleID)
		require.Len(t, m.Permissions, 1)
		assert.Equal(t, identity.ModuleItem, m.Permissions[0].Module)
		assert.False(t, m.Permissions[0].Create)
	})
}
