package db

import (
	"context"
	"fmt"
	"strings"
)

// schema is the full database schema. PKEY and TSTAMP are replaced with the
// dialect's auto-increment key and timestamp types before execution.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS usuarios (
    id             PKEY,
    nombre         TEXT NOT NULL,
    email          TEXT NOT NULL UNIQUE,
    password_hash  TEXT NOT NULL,
    tipo           TEXT NOT NULL DEFAULT 'guest' CHECK (tipo IN ('master', 'admin', 'guest')),
    fecha_registro TSTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
)`,
	`CREATE TABLE IF NOT EXISTS archivos (
    id              PKEY,
    nombre_original TEXT NOT NULL,
    nombre_archivo  TEXT NOT NULL,
    ruta            TEXT NOT NULL,
    tipo_archivo    TEXT NOT NULL,
    tamano          BIGINT NOT NULL,
    miniatura       TEXT,
    subido_por      BIGINT REFERENCES usuarios(id) ON DELETE CASCADE,
    fecha_subida    TSTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
)`,
	`CREATE TABLE IF NOT EXISTS inventario_oficina (
    id                  PKEY,
    nombre              TEXT NOT NULL,
    descripcion         TEXT,
    ubicacion           TEXT,
    cantidad            INTEGER NOT NULL DEFAULT 0 CHECK (cantidad >= 0),
    usuario_registro    BIGINT REFERENCES usuarios(id) ON DELETE SET NULL,
    fecha_ingreso       TSTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    fecha_actualizacion TSTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
)`,
	`CREATE TABLE IF NOT EXISTS inventario_limpieza (
    id                  PKEY,
    producto            TEXT NOT NULL,
    tipo                TEXT,
    proveedor           TEXT,
    cantidad            INTEGER NOT NULL DEFAULT 0 CHECK (cantidad >= 0),
    usuario_registro    BIGINT REFERENCES usuarios(id) ON DELETE SET NULL,
    fecha_ingreso       TSTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    fecha_actualizacion TSTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
)`,
	`CREATE TABLE IF NOT EXISTS inventario_garrafones (
    id                  PKEY,
    tipo                TEXT NOT NULL CHECK (tipo IN ('garrafon', 'sello', 'tapon')),
    estado              TEXT NOT NULL DEFAULT 'nuevo' CHECK (estado IN ('nuevo', 'usado', 'danado')),
    ubicacion           TEXT,
    observaciones       TEXT,
    cantidad            INTEGER NOT NULL DEFAULT 0 CHECK (cantidad >= 0),
    usuario_registro    BIGINT REFERENCES usuarios(id) ON DELETE SET NULL,
    fecha_registro      TSTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    fecha_actualizacion TSTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
)`,
	`CREATE TABLE IF NOT EXISTS movimientos_inventario (
    id               PKEY,
    tipo_inventario  TEXT NOT NULL CHECK (tipo_inventario IN ('oficina', 'limpieza', 'garrafones')),
    item_id          BIGINT NOT NULL,
    movimiento       TEXT NOT NULL CHECK (movimiento IN ('entrada', 'salida')),
    cantidad         INTEGER NOT NULL CHECK (cantidad > 0),
    usuario_id       BIGINT REFERENCES usuarios(id) ON DELETE SET NULL,
    observaciones    TEXT,
    fecha_movimiento TSTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
)`,
	`CREATE TABLE IF NOT EXISTS movimientos_garrafones (
    id          PKEY,
    tipo        TEXT NOT NULL CHECK (tipo IN ('entrada', 'salida')),
    producto    TEXT NOT NULL CHECK (producto IN ('garrafones', 'tapones', 'sellos')),
    cantidad    INTEGER NOT NULL CHECK (cantidad > 0),
    descripcion TEXT,
    usuario_id  BIGINT REFERENCES usuarios(id) ON DELETE SET NULL,
    fecha       TSTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
)`,
	`CREATE TABLE IF NOT EXISTS ajustes (
    clave TEXT PRIMARY KEY,
    valor TEXT NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS sesiones_revocadas (
    jti    TEXT PRIMARY KEY,
    expira TSTAMP NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS limpieza_pendiente (
    id     PKEY,
    ruta   TEXT NOT NULL UNIQUE,
    motivo TEXT NOT NULL,
    fecha  TSTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
)`,
}

var dialectTypes = map[string]*strings.Replacer{
	DriverSQLite:   strings.NewReplacer("PKEY", "INTEGER PRIMARY KEY", "TSTAMP", "DATETIME"),
	DriverPostgres: strings.NewReplacer("PKEY", "BIGSERIAL PRIMARY KEY", "TSTAMP", "TIMESTAMPTZ"),
}

// EnsureSchema creates all tables and indexes if they don't already exist.
func EnsureSchema(ctx context.Context, db *DB) error {
	r := dialectTypes[db.driver]
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, r.Replace(stmt)); err != nil {
			return fmt.Errorf("creating schema: %w", err)
		}
	}
	return migrate(ctx, db)
}
