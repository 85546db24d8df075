package evtdata

import "fmt"

// ErrOpenFile represents an error when opening a file.
type ErrOpenFile struct {
	Filename string
	Err      error
}

func (e *ErrOpenFile) Error() string {
	return fmt.Sprintf("error opening file %q: %v", e.Filename, e.Err)
}

func (e *ErrOpenFile) Unwrap() error {
	return e.Err
}

// ErrFilePos is raised when data is read from a file whose read pointer does
// not seem to be in the correct position. Offset is the byte position the
// record was expected at, so the caller can resynchronize and retry.
type ErrFilePos struct {
	Filename string
	Offset   int64
	Details  string
}

func (e *ErrFilePos) Error() string {
	return fmt.Sprintf("file position error in %s at offset %d: %s", e.Filename, e.Offset, e.Details)
}

// ErrOutOfRange reports an event number outside the lookup table bounds.
// It is non-fatal; the caller may keep reading other event numbers.
type ErrOutOfRange struct {
	Index     int
	NumEvents int
}

func (e *ErrOutOfRange) Error() string {
	return fmt.Sprintf("event number %d is outside the range of event numbers (%d events)", e.Index, e.NumEvents)
}

// ErrUnknownProjectile reports an energy-loss or range request for a
// projectile species the gas has no fit or table for.
type ErrUnknownProjectile struct {
	Mass   int
	Charge int
}

func (e *ErrUnknownProjectile) Error() string {
	return fmt.Sprintf("unknown projectile: mass=%d, charge=%d", e.Mass, e.Charge)
}

// ErrUnknownGas reports a gas name missing from the reference store.
type ErrUnknownGas struct {
	Name string
}

func (e *ErrUnknownGas) Error() string {
	return fmt.Sprintf("gas %q not found in the reference store", e.Name)
}

// ErrBadMixture reports mixture fractions that do not sum to one.
type ErrBadMixture struct {
	Sum float64
}

func (e *ErrBadMixture) Error() string {
	return fmt.Sprintf("mixture fractions sum to %g, expected 1.0", e.Sum)
}

// ErrBadTable reports a reference table that cannot be used for spline fits,
// such as one with duplicated or unsorted energies.
type ErrBadTable struct {
	Gas        string
	Projectile ProjectileKey
	Details    string
}

func (e *ErrBadTable) Error() string {
	return fmt.Sprintf("gas %q: bad reference table for %v: %s", e.Gas, e.Projectile, e.Details)
}

// ErrNoRangeData is returned by gas variants whose range is not tabulated.
type ErrNoRangeData struct {
	Gas string
}

func (e *ErrNoRangeData) Error() string {
	return fmt.Sprintf("gas %q has no tabulated range data", e.Gas)
}
