package models

import "testing"

func TestNewIdentity(t *testing.T) {
	tests := []struct {
		name       string
		identName  string
		signatures []Signature
		wantErr    bool
	}{
		{"valid", "Alice", []Signature{{1, 0, 0}}, false},
		{"trims name", "  Alice  ", []Signature{{1, 0, 0}}, false},
		{"multiple signatures", "Alice", []Signature{{1, 0}, {0, 1}}, false},
		{"empty name", "", []Signature{{1, 0}}, true},
		{"blank name", "   ", []Signature{{1, 0}}, true},
		{"no signatures", "Alice", nil, true},
		{"empty signature", "Alice", []Signature{{}}, true},
		{"mixed lengths", "Alice", []Signature{{1, 0}, {1, 0, 0}}, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			identity, err := NewIdentity(tc.identName, tc.signatures)
			if tc.wantErr {
				if err == nil {
					t.Error("expected an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("NewIdentity failed: %v", err)
			}
			if identity.Name != "Alice" {
				t.Errorf("name = %q; want Alice", identity.Name)
			}
			if identity.CreatedAt == 0 {
				t.Error("CreatedAt not set")
			}
		})
	}
}

func TestNewIdentityClonesSignatures(t *testing.T) {
	source := Signature{1, 0, 0}
	identity, err := NewIdentity("Alice", []Signature{source})
	if err != nil {
		t.Fatalf("NewIdentity failed: %v", err)
	}

	source[0] = 99
	if identity.Signatures[0][0] != 1 {
		t.Error("identity shares backing storage with the caller's signature")
	}
}

func TestSignatureEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b Signature
		want bool
	}{
		{"identical", Signature{1, 2, 3}, Signature{1, 2, 3}, true},
		{"both empty", Signature{}, Signature{}, true},
		{"different value", Signature{1, 2, 3}, Signature{1, 2, 4}, false},
		{"different length", Signature{1, 2}, Signature{1, 2, 3}, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.a.Equal(tc.b); got != tc.want {
				t.Errorf("Equal = %v; want %v", got, tc.want)
			}
		})
	}
}

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Alice", "alice"},
		{"  Alice  ", "alice"},
		{"ALICE", "alice"},
		{"Anna Lee", "anna lee"},
		{"", ""},
		{"   ", ""},
	}

	for _, tc := range tests {
		if got := NormalizeName(tc.in); got != tc.want {
			t.Errorf("NormalizeName(%q) = %q; want %q", tc.in, got, tc.want)
		}
	}
}
