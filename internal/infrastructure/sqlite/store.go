// Package sqlite persiste el store en memoria en un archivo SQLite para instalaciones de un solo nodo.
// Cada transacción confirmada guarda una instantánea completa del estado, así que el costo
// de escritura crece con la población de equipos: pensado para hasta ~10.000 equipos
// (instantánea de ~15 MB). Por encima de eso usar DB_DRIVER=postgres.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/jhoicas/onu-almacen-api/internal/infrastructure/memory"
)

const schema = `CREATE TABLE IF NOT EXISTS state_snapshots (
	id INTEGER PRIMARY KEY CHECK (id = 1),
	data BLOB NOT NULL,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
)`

// Store memory.Store cuyo estado sobrevive reinicios.
type Store struct {
	*memory.Store
	db *sql.DB
}

// Open abre (o crea) la base en path y carga la última instantánea.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// un solo escritor: las transacciones ya están serializadas por el store
	db.SetMaxOpenConns(1)

	for _, stmt := range []string{"PRAGMA journal_mode=WAL", "PRAGMA busy_timeout=10000", schema} {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("init sqlite: %w", err)
		}
	}

	mem, err := load(ctx, db)
	if err != nil {
		db.Close()
		return nil, err
	}
	s := &Store{Store: mem, db: db}
	mem.OnCommit(s.persist)
	return s, nil
}

func load(ctx context.Context, db *sql.DB) (*memory.Store, error) {
	var data []byte
	err := db.QueryRowContext(ctx, `SELECT data FROM state_snapshots WHERE id = 1`).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return memory.NewStore(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	var snap memory.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return memory.NewStoreFromSnapshot(snap), nil
}

func (s *Store) persist(snap memory.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	_, err = s.db.Exec(`INSERT INTO state_snapshots (id, data, updated_at) VALUES (1, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`, data)
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

// Close cierra la base.
func (s *Store) Close() error {
	return s.db.Close()
}
