package evtdata

import (
	"database/sql"
	"errors"
	"fmt"

	sqlx "github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// GasStore is a SQLite-backed store of named gas reference datasets: a molar
// mass per gas and, per projectile, ordered (energy, stopping power, range)
// triples. Stopping powers are mass stopping powers in MeV/(g/cm^2) and
// ranges are mass ranges in g/cm^2, both pressure-independent.
type GasStore struct {
	db *sqlx.DB
}

const gasStoreSchema = `
CREATE TABLE IF NOT EXISTS gases (
	name       TEXT PRIMARY KEY,
	molar_mass REAL NOT NULL
);
CREATE TABLE IF NOT EXISTS stopping_power (
	gas_name    TEXT NOT NULL REFERENCES gases(name),
	proj_mass   INTEGER NOT NULL,
	proj_charge INTEGER NOT NULL,
	energy      REAL NOT NULL,
	stopping    REAL NOT NULL,
	proj_range  REAL NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_stopping_projectile
	ON stopping_power (gas_name, proj_mass, proj_charge, energy);
`

// OpenGasStore opens (or creates) a gas reference store at the given path.
// The path ":memory:" gives a throwaway in-memory store.
func OpenGasStore(path string) (*GasStore, error) {
	db, err := sqlx.Connect("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("error opening gas store %q: %w", path, err)
	}
	if _, err := db.Exec(gasStoreSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("error initializing gas store schema: %w", err)
	}
	return &GasStore{db: db}, nil
}

func (s *GasStore) Close() error {
	return s.db.Close()
}

// StoppingPoint is one row of a projectile's reference table.
type StoppingPoint struct {
	Energy   float64 `db:"energy"`     // MeV
	Stopping float64 `db:"stopping"`   // MeV/(g/cm^2)
	Range    float64 `db:"proj_range"` // g/cm^2
}

// MolarMass returns the molar mass of the named gas in g/mol.
func (s *GasStore) MolarMass(name string) (float64, error) {
	var molarMass float64
	err := s.db.Get(&molarMass, "SELECT molar_mass FROM gases WHERE name = ?", name)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, &ErrUnknownGas{Name: name}
	}
	if err != nil {
		return 0, fmt.Errorf("error querying gas %q: %w", name, err)
	}
	return molarMass, nil
}

type projectileRow struct {
	Mass   int `db:"proj_mass"`
	Charge int `db:"proj_charge"`
}

// Projectiles returns the species the named gas has reference data for.
func (s *GasStore) Projectiles(name string) ([]ProjectileKey, error) {
	rows, err := s.db.Queryx(
		"SELECT DISTINCT proj_mass, proj_charge FROM stopping_power WHERE gas_name = ? ORDER BY proj_mass, proj_charge",
		name)
	if err != nil {
		return nil, fmt.Errorf("error querying projectiles of gas %q: %w", name, err)
	}
	defer rows.Close()

	var keys []ProjectileKey
	for rows.Next() {
		result := projectileRow{}
		if err := rows.StructScan(&result); err != nil {
			return nil, fmt.Errorf("error scanning projectile row: %w", err)
		}
		keys = append(keys, ProjectileKey{Mass: result.Mass, Charge: result.Charge})
	}
	return keys, rows.Err()
}

// StoppingTable returns the reference table of one projectile in the named
// gas, ordered by energy.
func (s *GasStore) StoppingTable(name string, projMass, projCharge int) ([]StoppingPoint, error) {
	var table []StoppingPoint
	err := s.db.Select(&table,
		"SELECT energy, stopping, proj_range FROM stopping_power WHERE gas_name = ? AND proj_mass = ? AND proj_charge = ? ORDER BY energy",
		name, projMass, projCharge)
	if err != nil {
		return nil, fmt.Errorf("error querying stopping table of gas %q: %w", name, err)
	}
	if len(table) == 0 {
		return nil, &ErrUnknownProjectile{Mass: projMass, Charge: projCharge}
	}
	return table, nil
}

// AddGas inserts or replaces a gas entry.
func (s *GasStore) AddGas(name string, molarMass float64) error {
	_, err := s.db.Exec("INSERT OR REPLACE INTO gases (name, molar_mass) VALUES (?, ?)", name, molarMass)
	if err != nil {
		return fmt.Errorf("error inserting gas %q: %w", name, err)
	}
	return nil
}

// AddStoppingPoints appends reference points for one projectile in one gas.
func (s *GasStore) AddStoppingPoints(name string, projMass, projCharge int, points []StoppingPoint) error {
	tx, err := s.db.Beginx()
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	for _, p := range points {
		_, err := tx.Exec(
			"INSERT INTO stopping_power (gas_name, proj_mass, proj_charge, energy, stopping, proj_range) VALUES (?, ?, ?, ?, ?, ?)",
			name, projMass, projCharge, p.Energy, p.Stopping, p.Range)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("error inserting stopping point: %w", err)
		}
	}
	return tx.Commit()
}
