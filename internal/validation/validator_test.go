package validation

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestValidateRequired(t *testing.T) {
	v := New()
	assert.NoError(t, v.ValidateRequired("value", "field"))
	assert.Error(t, v.ValidateRequired("", "field"))
	assert.Error(t, v.ValidateRequired("   ", "field"))
}

func TestValidateStringLength(t *testing.T) {
	v := New()
	assert.NoError(t, v.ValidateStringLength("abc", "field", 1, 5))
	assert.Error(t, v.ValidateStringLength("", "field", 1, 5))
	assert.Error(t, v.ValidateStringLength("abcdef", "field", 1, 5))
}

func TestValidateUUID(t *testing.T) {
	v := New()
	assert.NoError(t, v.ValidateUUID(uuid.New(), "field"))
	assert.Error(t, v.ValidateUUID(uuid.Nil, "field"))
}

func TestValidateOneOf(t *testing.T) {
	v := New()
	allowed := []string{"A", "B"}
	assert.NoError(t, v.ValidateOneOf("A", "field", allowed))
	assert.NoError(t, v.ValidateOneOf("", "field", allowed)) // Optional
	assert.Error(t, v.ValidateOneOf("C", "field", allowed))
}

func TestValidationErrors(t *testing.T) {
	ve := &ValidationErrors{}
	assert.False(t, ve.HasErrors())

	ve.Add(nil)
	assert.False(t, ve.HasErrors())

	ve.Add(assert.AnError)
	assert.True(t, ve.HasErrors())
	assert.Equal(t, assert.AnError.Error(), ve.Error())
}

func TestValidatePositiveInt(t *testing.T) {
	v := New()

	tests := []struct {
		name     string
		value    int
		hasError bool
	}{
		{"valid positive", 5, false},
		{"zero", 0, true},
		{"negative", -5, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidatePositiveInt(tt.value, "test_field")
			if tt.hasError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateIntRange(t *testing.T) {
	v := New()

	tests := []struct {
		name     string
		value    int
		min      int
		max      int
		hasError bool
	}{
		{"valid in range", 50, 1, 100, false},
		{"at min", 1, 1, 100, false},
		{"at max", 100, 1, 100, false},
		{"below min", 0, 1, 100, true},
		{"above max", 101, 1, 100, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateIntRange(tt.value, "test_field", tt.min, tt.max)
			if tt.hasError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSanitizeString(t *testing.T) {
	v := New()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"normal text", "hello world", "hello world"},
		{"trim whitespace", "  hello  ", "hello"},
		{"remove null bytes", "hello\x00world", "helloworld"},
		{"remove control chars", "hello\x07world", "helloworld"},
		{"preserve apostrophe", "wizard's staff", "wizard's staff"},
		{"preserve tab and newline", "line1\tline2\nline3", "line1\tline2\nline3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := v.SanitizeString(tt.input)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestValidateCoordinate(t *testing.T) {
	v := New()

	tests := []struct {
		name     string
		x, y     int
		hasError bool
	}{
		{"origin", 0, 0, false},
		{"inside", 90, 67, false},
		{"top-right corner", 179, 134, false},
		{"x out of bounds", 180, 0, true},
		{"y out of bounds", 0, 135, true},
		{"negative x", -1, 0, true},
		{"negative y", 0, -1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateCoordinate(tt.x, tt.y, 180, 135)
			if tt.hasError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateStructureKind(t *testing.T) {
	v := New()

	tests := []struct {
		kind     string
		hasError bool
	}{
		{"depot", false},
		{"Cistern", false},
		{"CONDENSER", false},
		{"planter", false},
		{"silo", true},
		{"", true},
	}

	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			_, err := v.ValidateStructureKind(tt.kind)
			if tt.hasError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateTrenchMode(t *testing.T) {
	v := New()

	tests := []struct {
		mode     string
		hasError bool
	}{
		{"flat", false},
		{"slope_down", false},
		{"slope_up", false},
		{"Slope_Up", false},
		{"diagonal", true},
		{"", true},
	}

	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			_, err := v.ValidateTrenchMode(tt.mode)
			if tt.hasError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateLitres(t *testing.T) {
	v := New()

	tests := []struct {
		name     string
		units    int32
		hasError bool
	}{
		{"valid", 500, false},
		{"zero", 0, true},
		{"negative", -10, true},
		{"at cap", 100000, false},
		{"over cap", 100001, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateLitres(tt.units)
			if tt.hasError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
