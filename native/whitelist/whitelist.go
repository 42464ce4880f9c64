package whitelist

import (
	"encoding/hex"
	"fmt"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
)

// Set is the allow-list collaborator answering whether a principal may invoke
// public settlement operations (public withdraw/cancel, resolver cleanup,
// order fills).
type Set struct {
	mu      sync.RWMutex
	members map[[20]byte]struct{}
}

// NewSet creates an allow-list seeded with the given members.
func NewSet(members ...[20]byte) *Set {
	s := &Set{members: make(map[[20]byte]struct{}, len(members))}
	for _, m := range members {
		s.members[m] = struct{}{}
	}
	return s
}

// Register grants resolver access to the address.
func (s *Set) Register(addr [20]byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.members[addr] = struct{}{}
}

// Deregister revokes resolver access from the address.
func (s *Set) Deregister(addr [20]byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.members, addr)
}

// Allowed reports whether the address holds resolver access.
func (s *Set) Allowed(addr [20]byte) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.members[addr]
	return ok
}

// Len returns the number of registered resolvers.
func (s *Set) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.members)
}

type fileConfig struct {
	Resolvers []string `toml:"resolvers"`
}

// LoadFile reads resolver membership from a TOML file with a single
// `resolvers` list of 0x-prefixed addresses.
func LoadFile(path string) (*Set, error) {
	var cfg fileConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("whitelist: decode %s: %w", path, err)
	}
	set := NewSet()
	for _, entry := range cfg.Resolvers {
		addr, err := ParseAddress(entry)
		if err != nil {
			return nil, err
		}
		set.Register(addr)
	}
	return set, nil
}

// ParseAddress decodes a 0x-prefixed 20-byte hex address.
func ParseAddress(s string) ([20]byte, error) {
	var addr [20]byte
	trimmed := strings.TrimPrefix(strings.TrimSpace(s), "0x")
	raw, err := hex.DecodeString(trimmed)
	if err != nil {
		return addr, fmt.Errorf("whitelist: invalid address %q: %w", s, err)
	}
	if len(raw) != len(addr) {
		return addr, fmt.Errorf("whitelist: invalid address length %d", len(raw))
	}
	copy(addr[:], raw)
	return addr, nil
}
