package store

import (
	"path/filepath"
	"testing"

	"github.com/google/uuid"

	"github.com/arx-os/arxos-sub004/internal/domain"
	"github.com/arx-os/arxos-sub004/internal/geometry"
)

// createTestStore opens a fresh ledger in a temp directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestBuilding returns a one-floor building with two equipment items,
// listed out of address order.
func createTestBuilding(addr domain.Address) *domain.Building {
	room := &domain.Room{EntityID: 6, Name: "101", Address: addr.Extend("level-1").Extend("101")}
	floor := &domain.Floor{
		EntityID: 4,
		Name:     "Level 1",
		Address:  addr.Extend("level-1"),
		Wings: []*domain.Wing{
			{Name: domain.MainWing, Address: addr.Extend("level-1"), Rooms: []*domain.Room{room}},
		},
	}
	return &domain.Building{
		EntityID: 3,
		Name:     "HQ",
		Address:  addr,
		Floors:   []*domain.Floor{floor},
		Equipment: []*domain.Equipment{
			{
				EntityID: 44,
				GlobalID: "2YrjLKrvTKLhHge8GBeHEg",
				UUID:     uuid.MustParse("a2d6d554-d79d-4157-1aa8-40bd4b8e8e6a"),
				Name:     "Diffuser",
				Type:     domain.ClassifyEquipment("IFCAIRTERMINAL"),
				Address:  floor.Address.Extend("diffuser"),
				Scope:    floor.Address,
			},
			{
				EntityID: 40,
				GlobalID: "3THx_zzGzK6PD3mo2yFyJP",
				UUID:     uuid.MustParse("dd47bfbd-f50f-5419-9343-c320bc3fc4d9"),
				Name:     "Lamp",
				Type:     domain.ClassifyEquipment("IFCLIGHTFIXTURE"),
				Address:  room.Address.Extend("lamp"),
				Scope:    room.Address,
				Position: geometry.Vec3{X: 106, Y: 56, Z: 2.5},
			},
		},
	}
}
