package strings

import "testing"

func TestToPascalCase(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"country", "Country"},
		{"ship_design", "ShipDesign"},
		{"owner_id", "OwnerID"},
		{"leader-guid", "LeaderGUID"},
		{"modifier.value", "ModifierValue"},
		{"camelCase", "CamelCase"},
		{"__x__", "X"},
		{"ai", "AI"},
		{"planet2", "Planet2"},
		{"0", "0"},
		{"---", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ToPascalCase(tt.input); got != tt.expected {
				t.Errorf("ToPascalCase(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestToSnakeCase(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Gamestate", "gamestate"},
		{"SaveCountry", "save_country"},
		{"HTTPRequest", "http_request"},
		{"Planet2Orbit", "planet2_orbit"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ToSnakeCase(tt.input); got != tt.expected {
				t.Errorf("ToSnakeCase(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}
