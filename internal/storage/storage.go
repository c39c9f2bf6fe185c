package storage

import (
	"errors"
	"sync"

	"github.com/eugenenazirov/devops-api/internal/component"
)

var (
	// ErrNoComponent indicates that no component definition has been stored yet.
	ErrNoComponent = errors.New("no software component configured")
	// ErrInvalidComponent indicates the component lacks a name or version.
	ErrInvalidComponent = errors.New("software component must have a name and version")
)

// Storage provides access to the software component served by the API.
type Storage interface {
	GetComponent() (component.SoftwareComponent, error)
	SetComponent(c component.SoftwareComponent) error
}

// MemoryStorage keeps the current component in-memory and guards access with a RWMutex.
type MemoryStorage struct {
	mu      sync.RWMutex
	current *component.SoftwareComponent
}

// NewMemoryStorage returns an empty store.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

// GetComponent returns a copy of the stored component, or ErrNoComponent.
func (s *MemoryStorage) GetComponent() (component.SoftwareComponent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.current == nil {
		return component.SoftwareComponent{}, ErrNoComponent
	}
	return clone(*s.current), nil
}

// SetComponent validates and stores a copy of c, replacing any previous value.
func (s *MemoryStorage) SetComponent(c component.SoftwareComponent) error {
	if c.Name == "" || c.Version == "" {
		return ErrInvalidComponent
	}

	stored := clone(c)
	s.mu.Lock()
	s.current = &stored
	s.mu.Unlock()

	return nil
}

func clone(c component.SoftwareComponent) component.SoftwareComponent {
	out := c
	if c.Description != nil {
		description := *c.Description
		out.Description = &description
	}
	if c.Repository != nil {
		repository := *c.Repository
		out.Repository = &repository
	}
	return out
}
