package validator

import "testing"

func TestIsValidNIP(t *testing.T) {
	tests := []struct {
		name string
		nip  string
		want bool
	}{
		{"valid checksum", "5260250274", true},
		{"valid checksum alt", "5252819937", true},
		{"bad checksum", "5260250275", false},
		{"checksum remainder ten", "1234567890", false},
		{"too short", "526025027", false},
		{"too long", "52602502744", false},
		{"letters", "52602502ab", false},
		{"empty", "", false},
		{"all zeros", "0000000000", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValidNIP(tt.nip); got != tt.want {
				t.Errorf("IsValidNIP(%q) = %v, want %v", tt.nip, got, tt.want)
			}
		})
	}
}

func TestIsValidPhone(t *testing.T) {
	tests := []struct {
		name  string
		phone string
		want  bool
	}{
		{"nine digits", "501502503", true},
		{"with country code", "48501502503", true},
		{"too short", "50150250", false},
		{"too long without code", "5015025031", false},
		{"plus prefix rejected", "+48501502503", false},
		{"letters", "50150250a", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValidPhone(tt.phone); got != tt.want {
				t.Errorf("IsValidPhone(%q) = %v, want %v", tt.phone, got, tt.want)
			}
		})
	}
}
