package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/arx-os/arxos-sub004/internal/domain"
)

// Source identifies the file an import was read from.
type Source struct {
	Name string
	Hash string
}

// RecordImport stores b and its equipment under src. It returns the import
// id and whether a new row was written; a repeat of the same source and
// building address returns the existing id with inserted=false and leaves
// the ledger unchanged.
func (s *Store) RecordImport(ctx context.Context, src Source, b *domain.Building, diagnostics int) (id int64, inserted bool, err error) {
	if src.Hash == "" {
		return 0, false, fmt.Errorf("record import: empty source hash")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, false, fmt.Errorf("record import: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	var seq int64
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) + 1 FROM imports`).Scan(&seq); err != nil {
		return 0, false, fmt.Errorf("record import: next seq: %w", err)
	}

	result, err := tx.ExecContext(ctx, `
		INSERT INTO imports
		(seq, source_hash, source_name, building_address, building_name, floors, rooms, equipment, diagnostics)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(source_hash, building_address) DO NOTHING
	`,
		seq,
		src.Hash,
		src.Name,
		b.Address.String(),
		b.Name,
		len(b.Floors),
		len(b.Rooms()),
		len(b.Equipment),
		diagnostics,
	)
	if err != nil {
		return 0, false, fmt.Errorf("record import: insert: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, false, fmt.Errorf("record import: rows affected: %w", err)
	}

	if affected == 0 {
		err = tx.QueryRowContext(ctx, `
			SELECT id FROM imports
			WHERE source_hash = ? AND building_address = ?
		`, src.Hash, b.Address.String()).Scan(&id)
		if err != nil {
			return 0, false, fmt.Errorf("record import: select existing: %w", err)
		}
		return id, false, tx.Commit()
	}

	id, err = result.LastInsertId()
	if err != nil {
		return 0, false, fmt.Errorf("record import: last insert id: %w", err)
	}

	if err := writeEquipment(ctx, tx, id, b.Equipment); err != nil {
		return 0, false, err
	}

	if err := tx.Commit(); err != nil {
		return 0, false, fmt.Errorf("record import: commit: %w", err)
	}
	return id, true, nil
}

// writeEquipment inserts one row per item. Addresses are unique within a
// building, so the primary key never conflicts for a fresh import.
func writeEquipment(ctx context.Context, tx *sql.Tx, importID int64, items []*domain.Equipment) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO equipment
		(import_id, address, uuid, entity_id, global_id, name, kind, class, scope, x, y, z)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("record import: prepare equipment: %w", err)
	}
	defer stmt.Close()

	for _, e := range items {
		_, err := stmt.ExecContext(ctx,
			importID,
			e.Address.String(),
			e.UUID.String(),
			int64(e.EntityID),
			e.GlobalID,
			e.Name,
			string(e.Type.Kind),
			e.Type.Class,
			e.Scope.String(),
			e.Position.X,
			e.Position.Y,
			e.Position.Z,
		)
		if err != nil {
			return fmt.Errorf("record import: equipment %s: %w", e.Address, err)
		}
	}
	return nil
}
