package crypto

import (
	"strings"
	"testing"
)

func TestIDGenerator_New(t *testing.T) {
	tests := []struct {
		name         string
		alphabet     string
		size         int
		wantErr      error
		wantAlphabet string
		wantSize     int
	}{
		{name: "empty uses document defaults", wantAlphabet: documentAlphabet, wantSize: documentIDSize},
		{name: "custom alphabet", alphabet: "ABCDEFGH", size: 5, wantAlphabet: "ABCDEFGH", wantSize: 5},
		{name: "negative size uses default", alphabet: "ABCDEFGH", size: -3, wantAlphabet: "ABCDEFGH", wantSize: documentIDSize},
		{name: "alphabet too short", alphabet: "ABC", wantErr: ErrAlphabetTooShort},
		{name: "alphabet too long", alphabet: strings.Repeat("a", 256), wantErr: ErrAlphabetTooLong},
		{name: "non ascii alphabet", alphabet: "abcdefgé", wantErr: ErrAlphabetNotASCII},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			// Act
			gen, err := NewIDGenerator(test.alphabet, test.size)

			// Assert
			if err != test.wantErr {
				t.Fatalf("NewIDGenerator() error = %v, want %v", err, test.wantErr)
			}
			if test.wantErr != nil {
				return
			}
			if gen.alphabet != test.wantAlphabet {
				t.Errorf("alphabet = %q, want %q", gen.alphabet, test.wantAlphabet)
			}
			if gen.size != test.wantSize {
				t.Errorf("size = %d, want %d", gen.size, test.wantSize)
			}
		})
	}
}

func TestIDGenerator_MaskFor(t *testing.T) {
	tests := []struct {
		alphabetLen int
		want        byte
	}{
		{alphabetLen: 8, want: 7},
		{alphabetLen: 9, want: 15},
		{alphabetLen: 16, want: 15},
		{alphabetLen: 17, want: 31},
		{alphabetLen: 62, want: 63},
		{alphabetLen: 64, want: 63},
		{alphabetLen: 65, want: 127},
		{alphabetLen: 255, want: 255},
	}

	for _, test := range tests {
		got := maskFor(test.alphabetLen)
		if got != test.want {
			t.Errorf("maskFor(%d) = %d, want %d", test.alphabetLen, got, test.want)
		}
		if int(got) < test.alphabetLen-1 {
			t.Errorf("maskFor(%d) = %d does not cover the alphabet", test.alphabetLen, got)
		}
	}
}

func TestIDGenerator_GeneratesFromAlphabet(t *testing.T) {
	tests := []struct {
		name     string
		alphabet string
		size     int
	}{
		{name: "document ids", alphabet: "", size: 0},
		{name: "numeric only", alphabet: "0123456789", size: 50},
		{name: "min size alphabet", alphabet: "ABCDEFGH", size: 64},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			// Arrange
			gen, err := NewIDGenerator(test.alphabet, test.size)
			if err != nil {
				t.Fatalf("NewIDGenerator() error = %v", err)
			}

			// Act
			id, err := gen.Generate()
			if err != nil {
				t.Fatalf("Generate() error = %v", err)
			}

			// Assert
			if len(id) != gen.size {
				t.Errorf("len(id) = %d, want %d", len(id), gen.size)
			}
			for i, char := range id {
				if !strings.ContainsRune(gen.alphabet, char) {
					t.Errorf("id[%d] = %q, not in alphabet", i, char)
				}
			}
		})
	}
}

func TestNewDocumentID_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 10_000; i++ {
		id, err := NewDocumentID()
		if err != nil {
			t.Fatalf("iteration %d: NewDocumentID() error = %v", i, err)
		}
		if seen[id] {
			t.Fatalf("duplicate ID generated: %q", id)
		}
		seen[id] = true
	}
}
