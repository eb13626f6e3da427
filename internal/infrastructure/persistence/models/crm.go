package models

import (
	"time"

	"github.com/bara/backend/internal/domain/crm"
	"github.com/google/uuid"
)

// CustomerModel is the persistence model for the Customer domain entity.
// SearchName is the accent-folded uppercase full name, maintained on every
// write so name search never folds at query time.
type CustomerModel struct {
	AggregateModel
	FirstName        string             `gorm:"type:varchar(100);not null"`
	PaternalLastName string             `gorm:"type:varchar(100)"`
	MaternalLastName string             `gorm:"type:varchar(100)"`
	SearchName       string             `gorm:"type:varchar(310);not null;index"`
	Status           crm.CustomerStatus `gorm:"type:varchar(20);not null;default:'active'"`
	RecognitionNotes string             `gorm:"type:text"`
	Notes            string             `gorm:"type:text"`
	RegisteredAt     time.Time          `gorm:"not null"`
}

// TableName returns the table name for GORM
func (CustomerModel) TableName() string {
	return "customers"
}

// ToDomain converts the persistence model to a domain Customer entity.
func (m *CustomerModel) ToDomain() *crm.Customer {
	return &crm.Customer{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		FirstName:         m.FirstName,
		PaternalLastName:  m.PaternalLastName,
		MaternalLastName:  m.MaternalLastName,
		Status:            m.Status,
		RecognitionNotes:  m.RecognitionNotes,
		Notes:             m.Notes,
		RegisteredAt:      m.RegisteredAt,
	}
}

// FromDomain populates the persistence model from a domain Customer entity.
func (m *CustomerModel) FromDomain(c *crm.Customer) {
	m.FromDomainAggregateRoot(c.BaseAggregateRoot)
	m.FirstName = c.FirstName
	m.PaternalLastName = c.PaternalLastName
	m.MaternalLastName = c.MaternalLastName
	m.SearchName = c.SearchName()
	m.Status = c.Status
	m.RecognitionNotes = c.RecognitionNotes
	m.Notes = c.Notes
	m.RegisteredAt = c.RegisteredAt
}

// CustomerModelFromDomain creates a new persistence model from a domain Customer entity.
func CustomerModelFromDomain(c *crm.Customer) *CustomerModel {
	m := &CustomerModel{}
	m.FromDomain(c)
	return m
}

// CustomerPhoneModel is the persistence model for the CustomerPhone domain entity.
type CustomerPhoneModel struct {
	AggregateModel
	CustomerID       uuid.UUID `gorm:"type:uuid;not null;index"`
	PhoneNumber      string    `gorm:"type:varchar(50);not null"`
	NormalizedNumber string    `gorm:"type:varchar(50);not null;index"`
	IsPrimary        bool      `gorm:"not null;default:false"`
	AddedAt          time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (CustomerPhoneModel) TableName() string {
	return "customer_phones"
}

// ToDomain converts the persistence model to a domain CustomerPhone entity.
func (m *CustomerPhoneModel) ToDomain() *crm.CustomerPhone {
	return &crm.CustomerPhone{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		CustomerID:        m.CustomerID,
		PhoneNumber:       m.PhoneNumber,
		NormalizedNumber:  m.NormalizedNumber,
		IsPrimary:         m.IsPrimary,
		AddedAt:           m.AddedAt,
	}
}

// FromDomain populates the persistence model from a domain CustomerPhone entity.
func (m *CustomerPhoneModel) FromDomain(p *crm.CustomerPhone) {
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	m.CustomerID = p.CustomerID
	m.PhoneNumber = p.PhoneNumber
	m.NormalizedNumber = p.NormalizedNumber
	m.IsPrimary = p.IsPrimary
	m.AddedAt = p.AddedAt
}

// CustomerPhoneModelFromDomain creates a new persistence model from a domain CustomerPhone entity.
func CustomerPhoneModelFromDomain(p *crm.CustomerPhone) *CustomerPhoneModel {
	m := &CustomerPhoneModel{}
	m.FromDomain(p)
	return m
}

// CustomerAddressModel is the persistence model for the CustomerAddress domain entity.
type CustomerAddressModel struct {
	AggregateModel
	CustomerID           uuid.UUID                   `gorm:"type:uuid;not null;index"`
	Street               string                      `gorm:"type:varchar(300);not null"`
	City                 string                      `gorm:"type:varchar(100)"`
	State                string                      `gorm:"type:varchar(100)"`
	PostalCode           string                      `gorm:"type:varchar(20)"`
	Country              string                      `gorm:"type:varchar(100);not null;default:'MX'"`
	DeliveryInstructions string                      `gorm:"type:text"`
	NormalizedKey        string                      `gorm:"type:varchar(700);not null;index"`
	ValidationStatus     crm.AddressValidationStatus `gorm:"type:varchar(20);not null;default:'pending'"`
	ValidationAttemptAt  *time.Time
	IsDefault            bool      `gorm:"not null;default:false"`
	AddedAt              time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (CustomerAddressModel) TableName() string {
	return "customer_addresses"
}

// ToDomain converts the persistence model to a domain CustomerAddress entity.
func (m *CustomerAddressModel) ToDomain() *crm.CustomerAddress {
	return &crm.CustomerAddress{
		BaseAggregateRoot:    m.ToDomainAggregateRoot(),
		CustomerID:           m.CustomerID,
		Street:               m.Street,
		City:                 m.City,
		State:                m.State,
		PostalCode:           m.PostalCode,
		Country:              m.Country,
		DeliveryInstructions: m.DeliveryInstructions,
		NormalizedKey:        m.NormalizedKey,
		ValidationStatus:     m.ValidationStatus,
		ValidationAttemptAt:  m.ValidationAttemptAt,
		IsDefault:            m.IsDefault,
		AddedAt:              m.AddedAt,
	}
}

// FromDomain populates the persistence model from a domain CustomerAddress entity.
func (m *CustomerAddressModel) FromDomain(a *crm.CustomerAddress) {
	m.FromDomainAggregateRoot(a.BaseAggregateRoot)
	m.CustomerID = a.CustomerID
	m.Street = a.Street
	m.City = a.City
	m.State = a.State
	m.PostalCode = a.PostalCode
	m.Country = a.Country
	m.DeliveryInstructions = a.DeliveryInstructions
	m.NormalizedKey = a.NormalizedKey
	m.ValidationStatus = a.ValidationStatus
	m.ValidationAttemptAt = a.ValidationAttemptAt
	m.IsDefault = a.IsDefault
	m.AddedAt = a.AddedAt
}

// CustomerAddressModelFromDomain creates a new persistence model from a domain CustomerAddress entity.
func CustomerAddressModelFromDomain(a *crm.CustomerAddress) *CustomerAddressModel {
	m := &CustomerAddressModel{}
	m.FromDomain(a)
	return m
}
