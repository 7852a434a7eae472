package postgres

import (
	"context"
	"fmt"
)

// schema sentencias idempotentes, en orden de dependencia.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS warehouses (
		id         BIGSERIAL PRIMARY KEY,
		name       TEXT NOT NULL,
		address    TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS equipment_models (
		id         BIGSERIAL PRIMARY KEY,
		brand      TEXT NOT NULL,
		name       TEXT NOT NULL,
		item_code  TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		CONSTRAINT equipment_models_item_code_key UNIQUE (item_code)
	)`,
	`CREATE TABLE IF NOT EXISTS batches (
		id                BIGSERIAL PRIMARY KEY,
		code              TEXT NOT NULL,
		vendor            TEXT NOT NULL,
		expected_quantity INT NOT NULL CHECK (expected_quantity > 0),
		warehouse_id      BIGINT NOT NULL REFERENCES warehouses (id),
		model_id          BIGINT NOT NULL REFERENCES equipment_models (id),
		unit_cost         NUMERIC(14, 2) NOT NULL DEFAULT 0 CHECK (unit_cost >= 0),
		notes             TEXT NOT NULL DEFAULT '',
		created_by        TEXT NOT NULL,
		version           BIGINT NOT NULL DEFAULT 1,
		created_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
		CONSTRAINT batches_code_key UNIQUE (code)
	)`,
	// La unicidad (lote, número) se verifica al commit: la renumeración desplaza números dentro de la tx.
	`CREATE TABLE IF NOT EXISTS partial_deliveries (
		id                BIGSERIAL PRIMARY KEY,
		batch_id          BIGINT NOT NULL REFERENCES batches (id) ON DELETE CASCADE,
		number            INT NOT NULL CHECK (number > 0),
		delivery_date     DATE NOT NULL,
		declared_quantity INT NOT NULL CHECK (declared_quantity > 0),
		state             TEXT NOT NULL CHECK (state IN ('PARTIAL', 'COMPLETE', 'PENDING')),
		notes             TEXT NOT NULL DEFAULT '',
		created_by        TEXT NOT NULL,
		version           BIGINT NOT NULL DEFAULT 1,
		created_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
		CONSTRAINT partial_deliveries_batch_number_key UNIQUE (batch_id, number) DEFERRABLE INITIALLY DEFERRED
	)`,
	`CREATE TABLE IF NOT EXISTS equipment (
		id                  BIGSERIAL PRIMARY KEY,
		code                TEXT NOT NULL,
		item_code           TEXT NOT NULL,
		mac                 TEXT NOT NULL,
		gpon_serial         TEXT NOT NULL,
		manufacturer_serial TEXT,
		state               TEXT NOT NULL CHECK (state IN ('NEW', 'AVAILABLE', 'RESERVED', 'ASSIGNED', 'INSTALLED',
			'EN_LAB', 'DEFECTIVE', 'RETURNED_TO_VENDOR', 'RE_ENTERED', 'DECOMMISSIONED')),
		batch_id            BIGINT NOT NULL REFERENCES batches (id),
		delivery_id         BIGINT REFERENCES partial_deliveries (id) ON DELETE SET NULL,
		model_id            BIGINT NOT NULL REFERENCES equipment_models (id),
		warehouse_id        BIGINT NOT NULL REFERENCES warehouses (id),
		replaces_id         BIGINT REFERENCES equipment (id) ON DELETE SET NULL,
		version             BIGINT NOT NULL DEFAULT 1,
		created_at          TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at          TIMESTAMPTZ NOT NULL DEFAULT now(),
		CONSTRAINT equipment_code_key UNIQUE (code),
		CONSTRAINT equipment_mac_key UNIQUE (mac),
		CONSTRAINT equipment_gpon_serial_key UNIQUE (gpon_serial),
		CONSTRAINT equipment_manufacturer_serial_key UNIQUE (manufacturer_serial)
	)`,
	`CREATE INDEX IF NOT EXISTS equipment_batch_idx ON equipment (batch_id)`,
	`CREATE INDEX IF NOT EXISTS equipment_delivery_idx ON equipment (delivery_id)`,
	`CREATE INDEX IF NOT EXISTS equipment_state_idx ON equipment (state)`,
	`CREATE TABLE IF NOT EXISTS equipment_history (
		id           BIGSERIAL PRIMARY KEY,
		equipment_id BIGINT NOT NULL REFERENCES equipment (id) ON DELETE CASCADE,
		from_state   TEXT,
		to_state     TEXT NOT NULL,
		trigger      TEXT NOT NULL,
		actor        TEXT NOT NULL,
		reason       TEXT NOT NULL DEFAULT '',
		created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS equipment_history_equipment_idx ON equipment_history (equipment_id)`,
	// Sin FK a equipment: sobrevive al borrado del equipo.
	`CREATE TABLE IF NOT EXISTS retired_identifiers (
		field        TEXT NOT NULL CHECK (field IN ('mac', 'gpon_serial', 'manufacturer_serial')),
		value        TEXT NOT NULL,
		equipment_id BIGINT NOT NULL,
		retired_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
		CONSTRAINT retired_identifiers_pkey PRIMARY KEY (field, value)
	)`,
	`CREATE TABLE IF NOT EXISTS vendor_returns (
		id                BIGSERIAL PRIMARY KEY,
		number            TEXT NOT NULL,
		batch_id          BIGINT NOT NULL REFERENCES batches (id),
		vendor            TEXT NOT NULL,
		reason            TEXT NOT NULL,
		lab_report_number TEXT NOT NULL,
		state             TEXT NOT NULL CHECK (state IN ('PENDING', 'SENT', 'CONFIRMED')),
		response_code     TEXT CHECK (response_code IN ('REPLACEMENT', 'CREDIT', 'REJECTED')),
		sent_at           TIMESTAMPTZ,
		sent_notes        TEXT NOT NULL DEFAULT '',
		confirmed_at      TIMESTAMPTZ,
		response_notes    TEXT NOT NULL DEFAULT '',
		created_by        TEXT NOT NULL,
		version           BIGINT NOT NULL DEFAULT 1,
		created_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
		CONSTRAINT vendor_returns_number_key UNIQUE (number)
	)`,
	`CREATE TABLE IF NOT EXISTS vendor_return_items (
		return_id      BIGINT NOT NULL REFERENCES vendor_returns (id) ON DELETE CASCADE,
		equipment_id   BIGINT NOT NULL REFERENCES equipment (id),
		position       INT NOT NULL,
		replacement_id BIGINT REFERENCES equipment (id),
		replaced_at    TIMESTAMPTZ,
		PRIMARY KEY (return_id, equipment_id)
	)`,
	`CREATE INDEX IF NOT EXISTS vendor_return_items_equipment_idx ON vendor_return_items (equipment_id)`,
	`CREATE TABLE IF NOT EXISTS inspections (
		id                   BIGSERIAL PRIMARY KEY,
		equipment_id         BIGINT NOT NULL REFERENCES equipment (id) ON DELETE CASCADE,
		logical_serial_match BOOLEAN NOT NULL,
		wifi_2_4ghz          BOOLEAN NOT NULL,
		wifi_5ghz            BOOLEAN NOT NULL,
		ethernet_port        BOOLEAN NOT NULL,
		lan_port             BOOLEAN NOT NULL,
		approved             BOOLEAN NOT NULL,
		faults               TEXT[] NOT NULL DEFAULT '{}',
		notes                TEXT NOT NULL DEFAULT '',
		technician           TEXT NOT NULL,
		duration_seconds     INT NOT NULL DEFAULT 0,
		created_at           TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS sector_returns (
		id           BIGSERIAL PRIMARY KEY,
		equipment_id BIGINT NOT NULL REFERENCES equipment (id) ON DELETE CASCADE,
		sector       TEXT NOT NULL,
		reason       TEXT NOT NULL,
		from_state   TEXT NOT NULL,
		received_by  TEXT NOT NULL,
		created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
}

// Migrate crea las tablas que falten. Es idempotente.
func Migrate(ctx context.Context, q Querier) error {
	for i, stmt := range schema {
		if _, err := q.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i+1, err)
		}
	}
	return nil
}
