package models

import (
	"time"

	"github.com/erp/billing/internal/domain/identity"
	"github.com/google/uuid"
)

// ModuleModel is a seeded permission module
type ModuleModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	Name      string    `gorm:"type:varchar(100);not null;uniqueIndex"`
	CreatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ModuleModel) TableName() string {
	return "modules"
}

// ToDomain converts the model to the domain Module
func (m *ModuleModel) ToDomain() identity.Module {
	return identity.Module{ID: m.ID, Name: m.Name}
}

// RoleModel is the persistence model for roles
type RoleModel struct {
	CompanyAggregateModel
	Name        string                `gorm:"type:varchar(50);not null"`
	Description string                `gorm:"type:text"`
	Deleted     bool                  `gorm:"not null;default:false;index"`
	Permissions []RolePermissionModel `gorm:"foreignKey:RoleID;references:ID"`
}

// TableName returns the table name for GORM
func (RoleModel) TableName() string {
	return "roles"
}

// ToDomain converts the model to the domain Role including loaded permissions
func (m *RoleModel) ToDomain() *identity.Role {
	r := &identity.Role{
		CompanyAggregateRoot: m.ToCompanyAggregateRoot(),
		Name:                 m.Name,
		Description:          m.Description,
		Deleted:              m.Deleted,
		Permissions:          make([]identity.ModulePermission, 0, len(m.Permissions)),
	}
	for i := range m.Permissions {
		r.Permissions = append(r.Permissions, m.Permissions[i].ToDomain())
	}
	return r
}

// FromDomain populates the header fields; permission rows are written separately
func (m *RoleModel) FromDomain(r *identity.Role) {
	m.FromDomainCompanyAggregateRoot(r.CompanyAggregateRoot)
	m.Name = r.Name
	m.Description = r.Description
	m.Deleted = r.Deleted
}

// RoleModelFromDomain creates a model from the domain entity
func RoleModelFromDomain(r *identity.Role) *RoleModel {
	m := &RoleModel{}
	m.FromDomain(r)
	return m
}

// RolePermissionModel is one row of a role's permission matrix.
// Columns are prefixed because create and delete are SQL keywords.
type RolePermissionModel struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key"`
	RoleID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_role_permission_module"`
	CompanyID    uuid.UUID `gorm:"type:uuid;not null;index"`
	ModuleName   string    `gorm:"type:varchar(100);not null;uniqueIndex:idx_role_permission_module"`
	CanView      bool      `gorm:"not null;default:false"`
	CanCreate    bool      `gorm:"not null;default:false"`
	CanEdit      bool      `gorm:"not null;default:false"`
	CanDelete    bool      `gorm:"not null;default:false"`
	ViewSpecific bool      `gorm:"not null;default:false"`
	GetUsingPost bool      `gorm:"not null;default:false"`
	CreatedAt    time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (RolePermissionModel) TableName() string {
	return "role_permissions"
}

// ToDomain converts the row to the domain ModulePermission
func (m *RolePermissionModel) ToDomain() identity.ModulePermission {
	return identity.ModulePermission{
		RoleID:       m.RoleID,
		CompanyID:    m.CompanyID,
		ModuleName:   m.ModuleName,
		View:         m.CanView,
		Create:       m.CanCreate,
		Edit:         m.CanEdit,
		Delete:       m.CanDelete,
		ViewSpecific: m.ViewSpecific,
		GetUsingPost: m.GetUsingPost,
	}
}

// RolePermissionModelFromDomain creates a row for the permission
func RolePermissionModelFromDomain(p identity.ModulePermission) *RolePermissionModel {
	return &RolePermissionModel{
		ID:           uuid.New(),
		RoleID:       p.RoleID,
		CompanyID:    p.CompanyID,
		ModuleName:   p.ModuleName,
		CanView:      p.View,
		CanCreate:    p.Create,
		CanEdit:      p.Edit,
		CanDelete:    p.Delete,
		ViewSpecific: p.ViewSpecific,
		GetUsingPost: p.GetUsingPost,
		CreatedAt:    time.Now(),
	}
}
