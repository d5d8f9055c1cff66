package kerning

import (
	"fmt"
	"strings"
)

// Unit tells how kerning values of a table are to be read.
type Unit int

// Units of kerning values
const (
	EmRelative  Unit = iota // fraction of the em square
	DesignUnits             // raw font design units
)

func (u Unit) String() string {
	if u == DesignUnits {
		return "design"
	}
	return "em"
}

// MarshalText implements encoding.TextMarshaler.
func (u Unit) MarshalText() ([]byte, error) {
	return []byte(u.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (u *Unit) UnmarshalText(b []byte) error {
	unit, err := ParseUnit(string(b))
	if err != nil {
		return err
	}
	*u = unit
	return nil
}

// ParseUnit reads "em" or "design".
func ParseUnit(s string) (Unit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "em":
		return EmRelative, nil
	case "design", "raw", "units":
		return DesignUnits, nil
	}
	return EmRelative, fmt.Errorf("unknown kerning unit %q", s)
}

// PairKerning is a kerning value together with the right-hand characters it
// applies to.
type PairKerning struct {
	Kerning float64  `json:"kerning"`
	Chars   []string `json:"chars"`
}

// KerningSpec holds the kerning profile shared by a group of left-hand
// characters.
type KerningSpec struct {
	Chars    []string      `json:"chars"`
	Kernings []PairKerning `json:"kernings"`
}

// Table is the result of an extraction: kerning groups in deterministic
// order, plus the font's display name.
type Table struct {
	FontName string        `json:"fontName,omitempty"`
	Unit     Unit          `json:"unit"`
	Groups   []KerningSpec `json:"kerningGroups"`
}

// ClassName derives a style class name from the font's display name.
// Spaces are replaced by underscores; a font without a name yields
// "kern_untitled".
func (t *Table) ClassName() string {
	name := ""
	if t != nil {
		name = strings.TrimSpace(t.FontName)
	}
	if name == "" {
		return "kern_untitled"
	}
	return "kern_" + strings.ReplaceAll(name, " ", "_")
}

// KerningFor returns the kerning between two characters, in units of the
// table. The boolean result is false if the pair is not kerned.
func (t *Table) KerningFor(left, right string) (float64, bool) {
	if t == nil {
		return 0, false
	}
	for _, group := range t.Groups {
		if !contains(group.Chars, left) {
			continue
		}
		for _, pk := range group.Kernings {
			if contains(pk.Chars, right) {
				return pk.Kerning, true
			}
		}
		return 0, false // left-hand chars occur in one group only
	}
	return 0, false
}

// Len returns the number of kerning groups.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Groups)
}

func contains(chars []string, c string) bool {
	for _, ch := range chars {
		if ch == c {
			return true
		}
	}
	return false
}
