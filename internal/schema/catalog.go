package schema

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// Catalog supplies the custom fields a tenant has defined for a record type.
type Catalog interface {
	FieldsFor(ctx context.Context, recordType string, tenant uuid.UUID) ([]CustomField, error)
}

type catalogKey struct {
	tenant     uuid.UUID
	recordType string
}

// StaticCatalog is an in-memory Catalog.
type StaticCatalog struct {
	mu     sync.RWMutex
	fields map[catalogKey][]CustomField
}

func NewStaticCatalog() *StaticCatalog {
	return &StaticCatalog{fields: make(map[catalogKey][]CustomField)}
}

// Set replaces the custom fields of a tenant's record type.
func (c *StaticCatalog) Set(tenant uuid.UUID, recordType string, fields ...CustomField) {
	cp := make([]CustomField, len(fields))
	copy(cp, fields)
	SortCustomFields(cp)

	c.mu.Lock()
	c.fields[catalogKey{tenant, recordType}] = cp
	c.mu.Unlock()
}

func (c *StaticCatalog) FieldsFor(_ context.Context, recordType string, tenant uuid.UUID) ([]CustomField, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	fields := c.fields[catalogKey{tenant, recordType}]
	out := make([]CustomField, len(fields))
	copy(out, fields)
	return out, nil
}

// SortCustomFields orders fields by SortOrder, then key.
func SortCustomFields(fields []CustomField) {
	sort.SliceStable(fields, func(i, j int) bool {
		if fields[i].SortOrder != fields[j].SortOrder {
			return fields[i].SortOrder < fields[j].SortOrder
		}
		return fields[i].Key < fields[j].Key
	})
}
