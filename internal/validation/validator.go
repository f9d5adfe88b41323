// Package validation checks player command payloads before they touch
// simulation state: grid coordinates, structure kinds, trench modes, and
// water quantities, plus the generic field-level helpers (required,
// length, range, UUID, sanitize) those checks are built from.
//
// Grounded on the sibling mud-platform-backend service's validation
// package, adapted from login/command-text validation to terrain-command
// validation for this engine's HTTP command API (C10).
package validation

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"terraform-engine/internal/simstate"
	"terraform-engine/internal/terrainops"
)

// Validator provides validation functions.
type Validator struct{}

// New creates a new validator instance.
func New() *Validator {
	return &Validator{}
}

// ValidateRequired checks if a string field is not empty.
func (v *Validator) ValidateRequired(field, fieldName string) error {
	if strings.TrimSpace(field) == "" {
		return fmt.Errorf("%s is required", fieldName)
	}
	return nil
}

// ValidateStringLength checks if string is within min/max length.
func (v *Validator) ValidateStringLength(field, fieldName string, min, max int) error {
	length := len(field)
	if length < min {
		return fmt.Errorf("%s must be at least %d characters", fieldName, min)
	}
	if max > 0 && length > max {
		return fmt.Errorf("%s must not exceed %d characters", fieldName, max)
	}
	return nil
}

// ValidateUUID checks if UUID is valid and not nil.
func (v *Validator) ValidateUUID(id uuid.UUID, fieldName string) error {
	if id == uuid.Nil {
		return fmt.Errorf("%s is required", fieldName)
	}
	return nil
}

// ValidateOneOf checks if value is one of allowed values.
func (v *Validator) ValidateOneOf(value, fieldName string, allowed []string) error {
	if value == "" {
		return nil // Optional field
	}
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return fmt.Errorf("%s must be one of: %s", fieldName, strings.Join(allowed, ", "))
}

// ValidatePositiveInt validates that an integer is positive (> 0).
func (v *Validator) ValidatePositiveInt(value int, fieldName string) error {
	if value <= 0 {
		return fmt.Errorf("%s must be a positive integer", fieldName)
	}
	return nil
}

// ValidateIntRange validates that an integer is within a specified range [min, max].
func (v *Validator) ValidateIntRange(value int, fieldName string, min, max int) error {
	if value < min {
		return fmt.Errorf("%s must be at least %d", fieldName, min)
	}
	if value > max {
		return fmt.Errorf("%s must not exceed %d", fieldName, max)
	}
	return nil
}

// SanitizeString removes dangerous characters and trims whitespace.
func (v *Validator) SanitizeString(input string) string {
	var result strings.Builder
	for _, r := range input {
		if r >= 32 || r == '\t' || r == '\n' {
			if r < 127 || r > 159 {
				result.WriteRune(r)
			}
		}
	}
	return strings.TrimSpace(result.String())
}

// ValidationErrors represents multiple validation errors.
type ValidationErrors struct {
	Errors []string
}

func (ve *ValidationErrors) Error() string {
	return strings.Join(ve.Errors, "; ")
}

func (ve *ValidationErrors) Add(err error) {
	if err != nil {
		ve.Errors = append(ve.Errors, err.Error())
	}
}

func (ve *ValidationErrors) HasErrors() bool {
	return len(ve.Errors) > 0
}

// Terrain-command validators.

// ValidateCoordinate checks that (x,y) lies on a width x height grid.
func (v *Validator) ValidateCoordinate(x, y, width, height int) error {
	if x < 0 || x >= width || y < 0 || y >= height {
		return fmt.Errorf("coordinate (%d,%d) is off the %dx%d grid", x, y, width, height)
	}
	return nil
}

// structureKinds maps the lowercase command-payload spelling of a structure
// kind to its simstate.StructureKind value.
var structureKinds = map[string]simstate.StructureKind{
	"depot":     simstate.Depot,
	"cistern":   simstate.Cistern,
	"condenser": simstate.Condenser,
	"planter":   simstate.Planter,
}

// ValidateStructureKind parses and validates a structure-kind string from a
// build_structure command payload.
func (v *Validator) ValidateStructureKind(kind string) (simstate.StructureKind, error) {
	k, ok := structureKinds[strings.ToLower(kind)]
	if !ok {
		return 0, fmt.Errorf("unknown structure kind: %q", kind)
	}
	return k, nil
}

var trenchModes = map[string]terrainops.Mode{
	"flat":       terrainops.Flat,
	"slope_down": terrainops.SlopeDown,
	"slope_up":   terrainops.SlopeUp,
}

// ValidateTrenchMode parses and validates a dig_trench command's mode string.
func (v *Validator) ValidateTrenchMode(mode string) (terrainops.Mode, error) {
	m, ok := trenchModes[strings.ToLower(mode)]
	if !ok {
		return 0, fmt.Errorf("unknown trench mode: %q", mode)
	}
	return m, nil
}

// ValidateLitres validates a pour_water command's volume, expressed in
// depth units (1 unit = 100mm over a cell).
func (v *Validator) ValidateLitres(units int32) error {
	if units <= 0 {
		return fmt.Errorf("water volume must be positive")
	}
	if units > 100000 {
		return fmt.Errorf("water volume exceeds the per-command cap of 100000 units")
	}
	return nil
}
