package whitelist

import (
	"os"
	"path/filepath"
	"testing"
)

func testAddr(fill byte) [20]byte {
	var addr [20]byte
	for i := range addr {
		addr[i] = fill
	}
	return addr
}

func TestRegisterDeregister(t *testing.T) {
	resolver := testAddr(0x11)
	set := NewSet()

	if set.Allowed(resolver) {
		t.Fatal("empty set allowed a resolver")
	}
	set.Register(resolver)
	if !set.Allowed(resolver) {
		t.Fatal("registered resolver not allowed")
	}
	set.Deregister(resolver)
	if set.Allowed(resolver) {
		t.Fatal("deregistered resolver still allowed")
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resolvers.toml")
	contents := `resolvers = [
  "0x1111111111111111111111111111111111111111",
  "2222222222222222222222222222222222222222",
]
`
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	set, err := LoadFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if set.Len() != 2 {
		t.Fatalf("expected 2 resolvers, got %d", set.Len())
	}
	if !set.Allowed(testAddr(0x11)) || !set.Allowed(testAddr(0x22)) {
		t.Fatal("configured resolvers not allowed")
	}
	if set.Allowed(testAddr(0x33)) {
		t.Fatal("unconfigured resolver allowed")
	}
}

func TestLoadFileRejectsBadAddress(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resolvers.toml")
	if err := os.WriteFile(path, []byte(`resolvers = ["0x1234"]`), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := LoadFile(path); err == nil {
		t.Fatal("expected error for truncated address")
	}
}
