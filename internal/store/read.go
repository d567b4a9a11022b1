package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/arx-os/arxos-sub004/internal/domain"
	"github.com/arx-os/arxos-sub004/internal/geometry"
)

// Import is one ledger entry.
type Import struct {
	ID              int64          `json:"id" yaml:"id"`
	Seq             int64          `json:"seq" yaml:"seq"`
	SourceHash      string         `json:"source_hash" yaml:"source_hash"`
	SourceName      string         `json:"source_name" yaml:"source_name"`
	BuildingAddress domain.Address `json:"building_address" yaml:"building_address"`
	BuildingName    string         `json:"building_name" yaml:"building_name"`
	Floors          int            `json:"floors" yaml:"floors"`
	Rooms           int            `json:"rooms" yaml:"rooms"`
	Equipment       int            `json:"equipment" yaml:"equipment"`
	Diagnostics     int            `json:"diagnostics" yaml:"diagnostics"`
}

// EquipmentRecord is the stored snapshot of one equipment item.
type EquipmentRecord struct {
	ImportID int64                `json:"import_id" yaml:"import_id"`
	Address  domain.Address       `json:"address" yaml:"address"`
	UUID     uuid.UUID            `json:"uuid" yaml:"uuid"`
	EntityID uint64               `json:"entity_id" yaml:"entity_id"`
	GlobalID string               `json:"global_id" yaml:"global_id"`
	Name     string               `json:"name" yaml:"name"`
	Kind     domain.EquipmentKind `json:"kind" yaml:"kind"`
	Class    string               `json:"class" yaml:"class"`
	Scope    domain.Address       `json:"scope" yaml:"scope"`
	Position geometry.Vec3        `json:"position" yaml:"position"`
}

// ListImports returns every import ordered by seq ASC, id ASC.
// Returns an empty slice (not nil) for an empty ledger.
func (s *Store) ListImports(ctx context.Context) ([]Import, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, seq, source_hash, source_name, building_address, building_name,
		       floors, rooms, equipment, diagnostics
		FROM imports
		ORDER BY seq ASC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query imports: %w", err)
	}
	defer rows.Close()

	imports := []Import{}
	for rows.Next() {
		var imp Import
		var addr string
		err := rows.Scan(
			&imp.ID,
			&imp.Seq,
			&imp.SourceHash,
			&imp.SourceName,
			&addr,
			&imp.BuildingName,
			&imp.Floors,
			&imp.Rooms,
			&imp.Equipment,
			&imp.Diagnostics,
		)
		if err != nil {
			return nil, fmt.Errorf("scan import: %w", err)
		}
		imp.BuildingAddress = domain.Address(addr)
		imports = append(imports, imp)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate imports: %w", err)
	}
	return imports, nil
}

// GetImport returns the import with the given id.
// Returns (Import{}, false, nil) if it does not exist.
func (s *Store) GetImport(ctx context.Context, id int64) (Import, bool, error) {
	var imp Import
	var addr string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, seq, source_hash, source_name, building_address, building_name,
		       floors, rooms, equipment, diagnostics
		FROM imports
		WHERE id = ?
	`, id).Scan(
		&imp.ID,
		&imp.Seq,
		&imp.SourceHash,
		&imp.SourceName,
		&addr,
		&imp.BuildingName,
		&imp.Floors,
		&imp.Rooms,
		&imp.Equipment,
		&imp.Diagnostics,
	)
	if err == sql.ErrNoRows {
		return Import{}, false, nil
	}
	if err != nil {
		return Import{}, false, fmt.Errorf("get import %d: %w", id, err)
	}
	imp.BuildingAddress = domain.Address(addr)
	return imp, true, nil
}

// ListEquipment returns the equipment recorded with an import, ordered by
// address (BINARY collation).
func (s *Store) ListEquipment(ctx context.Context, importID int64) ([]EquipmentRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT import_id, address, uuid, entity_id, global_id, name, kind, class, scope, x, y, z
		FROM equipment
		WHERE import_id = ?
		ORDER BY address COLLATE BINARY ASC
	`, importID)
	if err != nil {
		return nil, fmt.Errorf("query equipment: %w", err)
	}
	defer rows.Close()

	records := []EquipmentRecord{}
	for rows.Next() {
		rec, err := scanEquipment(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate equipment: %w", err)
	}
	return records, nil
}

func scanEquipment(rows *sql.Rows) (EquipmentRecord, error) {
	var (
		rec                   EquipmentRecord
		addr, id, kind, scope string
		entityID              int64
	)
	err := rows.Scan(
		&rec.ImportID,
		&addr,
		&id,
		&entityID,
		&rec.GlobalID,
		&rec.Name,
		&kind,
		&rec.Class,
		&scope,
		&rec.Position.X,
		&rec.Position.Y,
		&rec.Position.Z,
	)
	if err != nil {
		return EquipmentRecord{}, fmt.Errorf("scan equipment: %w", err)
	}

	u, err := uuid.Parse(id)
	if err != nil {
		return EquipmentRecord{}, fmt.Errorf("scan equipment %s: uuid: %w", addr, err)
	}

	rec.Address = domain.Address(addr)
	rec.UUID = u
	rec.EntityID = uint64(entityID)
	rec.Kind = domain.EquipmentKind(kind)
	rec.Scope = domain.Address(scope)
	return rec, nil
}
