// Package debris defines the mobile bodies pulled by the gravity field.
package debris

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownVariant = errors.New("unknown debris variant")

// Variant tags a body's type. Behaviour differences live in the coefficient
// table, not in type switches.
type Variant uint8

const (
	Standard Variant = iota
	Heavy
	Sticky
	Fragile
)

// Variants lists every variant in declaration order.
var Variants = [...]Variant{Standard, Heavy, Sticky, Fragile}

// Coefficients are the per-variant constants.
type Coefficients struct {
	MassBase float64
	SizeBase float64
	// Jitter is the half-width of the uniform factor applied to mass and size on spawn.
	Jitter float64
	// GravityK divided by mass gives the gravity response factor.
	GravityK float64
	// BounceFactor scales incoming speed when the collector rejects the body.
	BounceFactor float64
	Score        int
	// Knockable bodies receive an extra impulse from variants with a KnockbackScale.
	Knockable      bool
	KnockbackScale float64
}

var coefficients = [...]Coefficients{
	Standard: {MassBase: 1.0, SizeBase: 0.5, Jitter: 0.10, GravityK: 1.0, BounceFactor: 1.0, Score: 1, Knockable: true},
	Heavy:    {MassBase: 2.5, SizeBase: 0.8, Jitter: 0.10, GravityK: 0.8, BounceFactor: 0.8, Score: 3, KnockbackScale: 1.5},
	Sticky:   {MassBase: 1.2, SizeBase: 0.5, Jitter: 0.10, GravityK: 1.0, BounceFactor: 0.6, Score: 2},
	Fragile:  {MassBase: 0.6, SizeBase: 0.4, Jitter: 0.15, GravityK: 1.2, BounceFactor: 1.2, Score: 1},
}

// Coefficients returns the table row for v. Unknown values fall back to Standard.
func (v Variant) Coefficients() Coefficients {
	if int(v) >= len(coefficients) {
		return coefficients[Standard]
	}
	return coefficients[v]
}

func (v Variant) String() string {
	switch v {
	case Standard:
		return "standard"
	case Heavy:
		return "heavy"
	case Sticky:
		return "sticky"
	case Fragile:
		return "fragile"
	default:
		return fmt.Sprintf("variant(%d)", uint8(v))
	}
}

func ParseVariant(s string) (Variant, error) {
	for _, v := range Variants {
		if strings.EqualFold(strings.TrimSpace(s), v.String()) {
			return v, nil
		}
	}
	return Standard, fmt.Errorf("%w: %q", ErrUnknownVariant, s)
}

func (v Variant) MarshalText() ([]byte, error) { return []byte(v.String()), nil }

func (v *Variant) UnmarshalText(b []byte) error {
	parsed, err := ParseVariant(string(b))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// ResponseFactor is GravityK/mass for the variant.
func (v Variant) ResponseFactor(mass float64) float64 {
	if mass <= 0 {
		return 0
	}
	return v.Coefficients().GravityK / mass
}
