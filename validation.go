package wire

import "errors"

// ValidationFlags configures optional, stricter checks performed by a [Validator].
type ValidationFlags uint8

const (
	// ValidateEvilBit makes IPv4 validation reject packets with the evil bit
	// set per RFC 3514.
	ValidateEvilBit ValidationFlags = 1 << iota
)

// Validator accumulates validation errors across one or more frame checks.
// The zero value is ready to use.
type Validator struct {
	flags          ValidationFlags
	allowMultiErrs bool
	accum          []error
}

// NewValidator returns a Validator configured with flags.
func NewValidator(flags ValidationFlags) *Validator {
	return &Validator{flags: flags}
}

// Flags returns the validation flags in effect.
func (v *Validator) Flags() ValidationFlags { return v.flags }

// SetFlags sets the validation flags in effect.
func (v *Validator) SetFlags(flags ValidationFlags) { v.flags = flags }

// AllowMultipleErrors configures whether AddError accumulates every error
// seen (true) or only the first (false, the default).
func (v *Validator) AllowMultipleErrors(allow bool) { v.allowMultiErrs = allow }

// AddError registers a validation failure. Unless AllowMultipleErrors(true)
// was called only the first error passed is retained.
func (v *Validator) AddError(err error) {
	if err == nil {
		return
	}
	if len(v.accum) != 0 && !v.allowMultiErrs {
		return
	}
	v.accum = append(v.accum, err)
}

// Err returns the accumulated validation error, or nil if none was registered.
// A single registered error is returned as-is; more than one is joined with [errors.Join].
func (v *Validator) Err() error {
	switch len(v.accum) {
	case 0:
		return nil
	case 1:
		return v.accum[0]
	default:
		return errors.Join(v.accum...)
	}
}

// Reset clears accumulated errors so the Validator can be reused.
func (v *Validator) Reset() {
	v.accum = v.accum[:0]
}
