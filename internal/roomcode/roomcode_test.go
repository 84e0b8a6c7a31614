package roomcode

import (
	"testing"

	"github.com/lox/redtens/internal/randutil"
)

func TestGenerate(t *testing.T) {
	code := Generate()

	if len(code) != Length {
		t.Errorf("expected %d characters, got %d", Length, len(code))
	}

	if err := Validate(code); err != nil {
		t.Errorf("generated code failed validation: %v", err)
	}
}

func TestGenerateWithRandSourceIsDeterministic(t *testing.T) {
	a := NewGenerator(randutil.New(3)).Generate()
	b := NewGenerator(randutil.New(3)).Generate()
	if a != b {
		t.Errorf("same seed produced %s and %s", a, b)
	}
}

func TestGenerateMostlyUnique(t *testing.T) {
	gen := NewGenerator(randutil.New(11))
	codes := make(map[string]bool)
	for i := 0; i < 200; i++ {
		codes[gen.Generate()] = true
	}
	// 32^6 possibilities; a collision in 200 draws would point at a broken source.
	if len(codes) != 200 {
		t.Errorf("expected 200 unique codes, got %d", len(codes))
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		wantErr bool
	}{
		{name: "valid code", code: "7KQ2ZX"},
		{name: "too short", code: "7KQ2Z", wantErr: true},
		{name: "too long", code: "7KQ2ZXA", wantErr: true},
		{name: "ambiguous letter", code: "7KQ2ZO", wantErr: true},
		{name: "lower case", code: "7kq2zx", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.code)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate(%q) error = %v, wantErr %v", tt.code, err, tt.wantErr)
			}
		})
	}
}
