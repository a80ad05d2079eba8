package client

import (
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/invoicer/backend/internal/domain/shared"
	"github.com/invoicer/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// Status represents the status of a client
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive" // archived
)

// IsValid reports whether s is a known status
func (s Status) IsValid() bool {
	return s == StatusActive || s == StatusInactive
}

// Errors raised by client rules
var (
	ErrClientNotFound = shared.NewNotFoundError("CLIENT_NOT_FOUND", "Client not found")
	ErrEmailExists    = shared.NewConflictError("CLIENT_EMAIL_EXISTS", "A client with this email already exists")
	ErrClientInUse    = shared.NewConflictError("CLIENT_IN_USE", "Client has tasks or invoices; archive it instead")
	ErrInvalidEmail   = shared.NewValidationError("INVALID_EMAIL", "Email must look like name@domain.tld")
	ErrNegativeRate   = shared.NewValidationError("INVALID_HOURLY_RATE", "Hourly rate cannot be negative")
	ErrRatePrecision  = shared.NewValidationError("INVALID_HOURLY_RATE", "Hourly rate can have at most 2 decimal places")
	ErrInvalidName    = shared.NewValidationError("INVALID_NAME", "Name must be between 1 and 200 characters")
	ErrInvalidStatus  = shared.NewValidationError("INVALID_CLIENT_STATUS", "Status must be active or inactive")
	ErrFieldTooLong   = shared.NewValidationError("FIELD_TOO_LONG", "Address and website cannot exceed 500 characters")
)

const (
	maxNameLength  = 200
	maxFieldLength = 500
)

// Client is someone the tenant bills. It is the aggregate root for client rules.
type Client struct {
	shared.TenantAggregateRoot
	Name       string
	Email      string
	Address    string
	Website    string
	HourlyRate decimal.Decimal
	Status     Status
}

// Details groups the editable attributes of a client
type Details struct {
	Name       string
	Email      string
	Address    string
	Website    string
	HourlyRate decimal.Decimal
}

func (d Details) normalize() (Details, error) {
	d.Name = strings.TrimSpace(d.Name)
	d.Address = strings.TrimSpace(d.Address)
	d.Website = strings.TrimSpace(d.Website)
	if d.Name == "" || utf8.RuneCountInString(d.Name) > maxNameLength {
		return d, ErrInvalidName
	}
	if len(d.Address) > maxFieldLength || len(d.Website) > maxFieldLength {
		return d, ErrFieldTooLong
	}
	email, err := valueobject.NewEmail(d.Email)
	if err != nil {
		return d, ErrInvalidEmail
	}
	d.Email = email.String()
	if d.HourlyRate.IsNegative() {
		return d, ErrNegativeRate
	}
	if !valueobject.HasAtMostPlaces(d.HourlyRate, valueobject.InputPlaces) {
		return d, ErrRatePrecision
	}
	return d, nil
}

// NewClient creates an active client. Email uniqueness is checked by the caller
// since it needs the repository.
func NewClient(tenantID uuid.UUID, details Details) (*Client, error) {
	d, err := details.normalize()
	if err != nil {
		return nil, err
	}

	c := &Client{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Name:                d.Name,
		Email:               d.Email,
		Address:             d.Address,
		Website:             d.Website,
		HourlyRate:          d.HourlyRate,
		Status:              StatusActive,
	}
	c.AddDomainEvent(NewClientCreatedEvent(c))
	return c, nil
}

// Update replaces the editable attributes
func (c *Client) Update(details Details) error {
	d, err := details.normalize()
	if err != nil {
		return err
	}

	rateChanged := !c.HourlyRate.Equal(d.HourlyRate)
	c.Name = d.Name
	c.Email = d.Email
	c.Address = d.Address
	c.Website = d.Website
	c.HourlyRate = d.HourlyRate
	c.IncrementVersion()

	c.AddDomainEvent(NewClientUpdatedEvent(c, rateChanged))
	return nil
}

// SetStatus moves the client to status. Setting the current status is a no-op.
func (c *Client) SetStatus(status Status) error {
	if !status.IsValid() {
		return ErrInvalidStatus
	}
	if c.Status == status {
		return nil
	}
	old := c.Status
	c.Status = status
	c.IncrementVersion()
	c.AddDomainEvent(NewClientStatusChangedEvent(c, old))
	return nil
}

// Archive marks the client inactive. Archiving is always permitted.
func (c *Client) Archive() {
	_ = c.SetStatus(StatusInactive)
}

// IsActive returns true if the client is not archived
func (c *Client) IsActive() bool {
	return c.Status == StatusActive
}

// NormalizeEmail lower-cases and trims raw so lookups match stored values
func NormalizeEmail(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}
