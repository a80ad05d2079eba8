package shared

import (
	"time"

	"github.com/google/uuid"
)

// Entity is implemented by everything that has an identity
type Entity interface {
	GetID() uuid.UUID
	GetCreatedAt() time.Time
	GetUpdatedAt() time.Time
}

// BaseEntity holds identity and timestamps
type BaseEntity struct {
	ID        uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (e *BaseEntity) GetID() uuid.UUID        { return e.ID }
func (e *BaseEntity) GetCreatedAt() time.Time { return e.CreatedAt }
func (e *BaseEntity) GetUpdatedAt() time.Time { return e.UpdatedAt }

// Touch moves UpdatedAt to now
func (e *BaseEntity) Touch() {
	e.UpdatedAt = time.Now().UTC()
}

// NewBaseEntity creates a base entity with a generated ID
func NewBaseEntity() BaseEntity {
	now := time.Now().UTC()
	return BaseEntity{
		ID:        uuid.New(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// AggregateRoot is the base interface for all aggregate roots
type AggregateRoot interface {
	Entity
	GetTenantID() uuid.UUID
	GetVersion() int
	AddDomainEvent(event DomainEvent)
	GetDomainEvents() []DomainEvent
	ClearDomainEvents()
}

// TenantAggregateRoot is the root every billing aggregate embeds. All of them are
// owned by exactly one tenant.
type TenantAggregateRoot struct {
	BaseEntity
	TenantID      uuid.UUID
	Version       int
	loadedVersion int
	domainEvents  []DomainEvent
}

// NewTenantAggregateRoot creates a new tenant-scoped aggregate root at version 1
func NewTenantAggregateRoot(tenantID uuid.UUID) TenantAggregateRoot {
	return TenantAggregateRoot{
		BaseEntity: NewBaseEntity(),
		TenantID:   tenantID,
		Version:    1,
	}
}

// RestoreTenantAggregateRoot rebuilds a root read from storage. The version it
// was loaded at is remembered for optimistic locking on the next save.
func RestoreTenantAggregateRoot(id, tenantID uuid.UUID, version int, createdAt, updatedAt time.Time) TenantAggregateRoot {
	return TenantAggregateRoot{
		BaseEntity:    BaseEntity{ID: id, CreatedAt: createdAt, UpdatedAt: updatedAt},
		TenantID:      tenantID,
		Version:       version,
		loadedVersion: version,
	}
}

// LoadedVersion is the version read from storage, 0 for a new aggregate
func (a *TenantAggregateRoot) LoadedVersion() int { return a.loadedVersion }

// MarkPersisted records that the current version is now stored
func (a *TenantAggregateRoot) MarkPersisted() { a.loadedVersion = a.Version }

func (a *TenantAggregateRoot) GetTenantID() uuid.UUID { return a.TenantID }
func (a *TenantAggregateRoot) GetVersion() int        { return a.Version }

// IncrementVersion bumps the version and the update timestamp
func (a *TenantAggregateRoot) IncrementVersion() {
	a.Version++
	a.Touch()
}

func (a *TenantAggregateRoot) AddDomainEvent(event DomainEvent) {
	a.domainEvents = append(a.domainEvents, event)
}

func (a *TenantAggregateRoot) GetDomainEvents() []DomainEvent {
	return a.domainEvents
}

func (a *TenantAggregateRoot) ClearDomainEvents() {
	a.domainEvents = nil
}
