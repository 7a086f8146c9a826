package partner

import (
	"strings"

	"github.com/facturo/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Client is a billing counterparty. Clients are owned by the organization and
// optional on a bill.
type Client struct {
	shared.OrganizationAggregateRoot
	Name       string `gorm:"size:200;not null" json:"name"`
	Identifier string `gorm:"size:50" json:"identifier"` // national ID (cedula) or passport
	TaxID      string `gorm:"size:50" json:"tax_id"` // fiscal registration (RNC)
	Email      string `gorm:"size:254" json:"email"`
	Phone      string `gorm:"size:30" json:"phone"`
	Address    string `gorm:"size:500" json:"address"`
}

// TableName returns the database table name
func (Client) TableName() string {
	return "clients"
}

// NewClient creates a new client for an organization
func NewClient(organizationID uuid.UUID, name string) (*Client, error) {
	if organizationID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ORGANIZATION", "Organization ID cannot be empty")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_CLIENT_NAME", "Client name cannot be empty")
	}

	return &Client{
		OrganizationAggregateRoot: shared.NewOrganizationAggregateRoot(organizationID),
		Name:                      name,
	}, nil
}

// Rename changes the client name
func (c *Client) Rename(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_CLIENT_NAME", "Client name cannot be empty")
	}
	c.Name = name
	c.Touch()
	return nil
}

// SetIdentification updates the client's identification documents
func (c *Client) SetIdentification(identifier, taxID string) {
	c.Identifier = strings.TrimSpace(identifier)
	c.TaxID = strings.TrimSpace(taxID)
	c.Touch()
}

// SetContact updates the client's contact details
func (c *Client) SetContact(email, phone, address string) {
	c.Email = strings.ToLower(strings.TrimSpace(email))
	c.Phone = strings.TrimSpace(phone)
	c.Address = strings.TrimSpace(address)
	c.Touch()
}
