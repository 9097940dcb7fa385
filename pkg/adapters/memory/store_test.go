package memory_test

import (
	"testing"

	"canopy/pkg/adapters/memory"
	"canopy/pkg/ports"
)

func TestMemoryStore_Contract(t *testing.T) {
	store := memory.NewStore()
	ports.RunSpecStoreContract(t, store)
}
