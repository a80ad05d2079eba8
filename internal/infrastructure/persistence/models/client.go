package models

import (
	"github.com/invoicer/backend/internal/domain/client"
	"github.com/shopspring/decimal"
)

// ClientModel is the row of the clients table
type ClientModel struct {
	TenantAggregateModel
	Name       string          `gorm:"type:varchar(200);not null"`
	Email      string          `gorm:"type:varchar(320);not null;index"`
	Address    string          `gorm:"type:varchar(500);not null;default:''"`
	Website    string          `gorm:"type:varchar(500);not null;default:''"`
	HourlyRate decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Status     client.Status   `gorm:"type:varchar(20);not null;default:'active'"`
}

// TableName returns the table name for GORM
func (ClientModel) TableName() string {
	return "clients"
}

// ToDomain converts the row to a Client
func (m *ClientModel) ToDomain() *client.Client {
	return &client.Client{
		TenantAggregateRoot: m.ToDomainRoot(),
		Name:                m.Name,
		Email:               m.Email,
		Address:             m.Address,
		Website:             m.Website,
		HourlyRate:          m.HourlyRate,
		Status:              m.Status,
	}
}

// ClientModelFromDomain builds the row for c
func ClientModelFromDomain(c *client.Client) *ClientModel {
	m := &ClientModel{
		Name:       c.Name,
		Email:      c.Email,
		Address:    c.Address,
		Website:    c.Website,
		HourlyRate: c.HourlyRate,
		Status:     c.Status,
	}
	m.FromDomainTenantAggregateRoot(c.TenantAggregateRoot)
	return m
}
