package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/onu-almacen-api/internal/domain/entity"
	"github.com/jhoicas/onu-almacen-api/internal/domain/repository"
)

var (
	_ repository.InspectionRepository   = (*InspectionRepo)(nil)
	_ repository.SectorReturnRepository = (*SectorReturnRepo)(nil)
)

// InspectionRepo registros de laboratorio sobre PostgreSQL.
type InspectionRepo struct {
	q Querier
}

// NewInspectionRepository construye el repositorio de inspecciones.
func NewInspectionRepository(q Querier) *InspectionRepo {
	return &InspectionRepo{q: q}
}

func (r *InspectionRepo) Create(ctx context.Context, rec *entity.InspectionRecord) error {
	faults := rec.Faults
	if faults == nil {
		faults = []string{}
	}
	query := `
		INSERT INTO inspections (equipment_id, logical_serial_match, wifi_2_4ghz, wifi_5ghz, ethernet_port, lan_port,
			approved, faults, notes, technician, duration_seconds)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at`
	res := rec.Results
	err := r.q.QueryRow(ctx, query,
		rec.EquipmentID, res.LogicalSerialMatch, res.WiFi24GHz, res.WiFi5GHz, res.EthernetPort, res.LANPort,
		rec.Approved, faults, rec.Notes, rec.Technician, int(rec.Duration/time.Second),
	).Scan(&rec.ID, &rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert inspection: %w", err)
	}
	return nil
}

func (r *InspectionRepo) ListByEquipment(ctx context.Context, equipmentID int64) ([]*entity.InspectionRecord, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, equipment_id, logical_serial_match, wifi_2_4ghz, wifi_5ghz, ethernet_port, lan_port,
			approved, faults, notes, technician, duration_seconds, created_at
		FROM inspections WHERE equipment_id = $1 ORDER BY id`, equipmentID)
	if err != nil {
		return nil, fmt.Errorf("list inspections: %w", err)
	}
	defer rows.Close()
	var out []*entity.InspectionRecord
	for rows.Next() {
		var rec entity.InspectionRecord
		var seconds int
		res := &rec.Results
		if err := rows.Scan(&rec.ID, &rec.EquipmentID, &res.LogicalSerialMatch, &res.WiFi24GHz, &res.WiFi5GHz,
			&res.EthernetPort, &res.LANPort, &rec.Approved, &rec.Faults, &rec.Notes, &rec.Technician,
			&seconds, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan inspection: %w", err)
		}
		rec.Duration = time.Duration(seconds) * time.Second
		out = append(out, &rec)
	}
	return out, rows.Err()
}

// SectorReturnRepo devoluciones desde el sector sobre PostgreSQL.
type SectorReturnRepo struct {
	q Querier
}

// NewSectorReturnRepository construye el repositorio de devoluciones de sector.
func NewSectorReturnRepository(q Querier) *SectorReturnRepo {
	return &SectorReturnRepo{q: q}
}

func (r *SectorReturnRepo) Create(ctx context.Context, sr *entity.SectorReturn) error {
	err := r.q.QueryRow(ctx, `
		INSERT INTO sector_returns (equipment_id, sector, reason, from_state, received_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`, sr.EquipmentID, sr.Sector, sr.Reason, string(sr.FromState), sr.ReceivedBy,
	).Scan(&sr.ID, &sr.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert sector return: %w", err)
	}
	return nil
}

func (r *SectorReturnRepo) ListByEquipment(ctx context.Context, equipmentID int64) ([]*entity.SectorReturn, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, equipment_id, sector, reason, from_state, received_by, created_at
		FROM sector_returns WHERE equipment_id = $1 ORDER BY id`, equipmentID)
	if err != nil {
		return nil, fmt.Errorf("list sector returns: %w", err)
	}
	defer rows.Close()
	var out []*entity.SectorReturn
	for rows.Next() {
		var sr entity.SectorReturn
		var from string
		if err := rows.Scan(&sr.ID, &sr.EquipmentID, &sr.Sector, &sr.Reason, &from, &sr.ReceivedBy, &sr.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan sector return: %w", err)
		}
		sr.FromState = entity.EquipmentState(from)
		out = append(out, &sr)
	}
	return out, rows.Err()
}

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
