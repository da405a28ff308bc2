package refcode

import (
	"strings"
	"testing"
)

func TestGenerate(t *testing.T) {
	if err := Init(1); err != nil {
		t.Fatalf("Init: %v", err)
	}

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		code, err := Generate()
		if err != nil {
			t.Fatalf("Generate: %v", err)
		}
		if !strings.HasPrefix(code, "LP-") {
			t.Errorf("code %q missing LP- prefix", code)
		}
		if code != strings.ToUpper(code) {
			t.Errorf("code %q not uppercase", code)
		}
		if seen[code] {
			t.Errorf("duplicate code %q", code)
		}
		seen[code] = true
	}
}
