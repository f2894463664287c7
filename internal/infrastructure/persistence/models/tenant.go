package models

import (
	"github.com/erp/billing/internal/domain/tenant"
	"github.com/google/uuid"
)

// CompanyModel is the persistence model for companies
type CompanyModel struct {
	AggregateModel
	Name      string    `gorm:"type:varchar(200);not null"`
	OwnerID   uuid.UUID `gorm:"type:uuid;not null;index"`
	Address   string    `gorm:"type:text"`
	Phone     string    `gorm:"type:varchar(50)"`
	GSTNumber string    `gorm:"column:gst_number;type:varchar(50)"`
	IsActive  bool      `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (CompanyModel) TableName() string {
	return "companies"
}

// ToDomain converts the model to the domain Company
func (m *CompanyModel) ToDomain() *tenant.Company {
	return &tenant.Company{
		BaseAggregateRoot: m.ToAggregateRoot(),
		Name:              m.Name,
		OwnerID:           m.OwnerID,
		Address:           m.Address,
		Phone:             m.Phone,
		GSTNumber:         m.GSTNumber,
		IsActive:          m.IsActive,
	}
}

// FromDomain populates the model from the domain Company
func (m *CompanyModel) FromDomain(c *tenant.Company) {
	m.FromDomainAggregateRoot(c.BaseAggregateRoot)
	m.Name = c.Name
	m.OwnerID = c.OwnerID
	m.Address = c.Address
	m.Phone = c.Phone
	m.GSTNumber = c.GSTNumber
	m.IsActive = c.IsActive
}

// CompanyModelFromDomain creates a model from the domain entity
func CompanyModelFromDomain(c *tenant.Company) *CompanyModel {
	m := &CompanyModel{}
	m.FromDomain(c)
	return m
}

// StaffModel binds a user to a company with a role
type StaffModel struct {
	AggregateModel
	CompanyID uuid.UUID `gorm:"type:uuid;not null;index"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index"`
	RoleID    uuid.UUID `gorm:"type:uuid;not null;index"`
	IsActive  bool      `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (StaffModel) TableName() string {
	return "staff"
}

// ToDomain converts the model to the domain StaffAssignment
func (m *StaffModel) ToDomain() *tenant.StaffAssignment {
	return &tenant.StaffAssignment{
		BaseAggregateRoot: m.ToAggregateRoot(),
		CompanyID:         m.CompanyID,
		UserID:            m.UserID,
		RoleID:            m.RoleID,
		IsActive:          m.IsActive,
	}
}

// FromDomain populates the model from the domain StaffAssignment
func (m *StaffModel) FromDomain(s *tenant.StaffAssignment) {
	m.FromDomainAggregateRoot(s.BaseAggregateRoot)
	m.CompanyID = s.CompanyID
	m.UserID = s.UserID
	m.RoleID = s.RoleID
	m.IsActive = s.IsActive
}

// StaffModelFromDomain creates a model from the domain entity
func StaffModelFromDomain(s *tenant.StaffAssignment) *StaffModel {
	m := &StaffModel{}
	m.FromDomain(s)
	return m
}
