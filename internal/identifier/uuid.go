// Package identifier provides the UUIDv7 id source shared by the services.
package identifier

import "github.com/google/uuid"

// UUIDProvider issues UUIDv7 identifiers. The zero value is usable.
type UUIDProvider struct{}

// NewUUIDProvider constructs a provider.
func NewUUIDProvider() *UUIDProvider {
	return &UUIDProvider{}
}

// NewID returns a fresh UUIDv7 string.
func (p *UUIDProvider) NewID() (string, error) {
	value, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return value.String(), nil
}
