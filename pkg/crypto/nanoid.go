package crypto

import (
	"crypto/rand"
	"errors"
	"math"
)

const (
	// Firestore auto-ids use the same alphabet and length
	documentAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	documentIDSize   = 20

	minAlphabetSize = 8
	maxAlphabetSize = 255
)

var (
	ErrAlphabetTooShort = errors.New("alphabet must contain at least 8 characters")
	ErrAlphabetTooLong  = errors.New("alphabet must contain no more than 255 characters")
	ErrAlphabetNotASCII = errors.New("alphabet must contain only ASCII characters")
)

// IDGenerator produces random ids over a fixed ASCII alphabet using
// rejection sampling, so every character is equally likely.
type IDGenerator struct {
	alphabet string
	mask     byte
	size     int
}

// NewIDGenerator returns a generator of size-character ids.
// An empty alphabet selects the document id alphabet, size <= 0 the document id size.
func NewIDGenerator(alphabet string, size int) (*IDGenerator, error) {
	if alphabet == "" {
		alphabet = documentAlphabet
	}
	if size <= 0 {
		size = documentIDSize
	}

	// Generate indexes by byte position
	for i := 0; i < len(alphabet); i++ {
		if alphabet[i] > 127 {
			return nil, ErrAlphabetNotASCII
		}
	}
	if len(alphabet) < minAlphabetSize {
		return nil, ErrAlphabetTooShort
	}
	if len(alphabet) > maxAlphabetSize {
		return nil, ErrAlphabetTooLong
	}

	return &IDGenerator{
		alphabet: alphabet,
		mask:     maskFor(len(alphabet)),
		size:     size,
	}, nil
}

// NewDocumentID returns a 20 character id in the Firestore auto-id format.
func NewDocumentID() (string, error) {
	gen, err := NewIDGenerator("", 0)
	if err != nil {
		return "", err
	}
	return gen.Generate()
}

// maskFor returns the smallest all-ones bit mask covering alphabetLen-1
func maskFor(alphabetLen int) byte {
	mask := 1
	for mask < alphabetLen-1 {
		mask = mask<<1 | 1
	}
	return byte(mask)
}

func (g *IDGenerator) Generate() (string, error) {
	alphabetLen := len(g.alphabet)
	step := int(math.Ceil(1.6 * float64(int(g.mask)*g.size) / float64(alphabetLen)))

	id := make([]byte, 0, g.size)
	buffer := make([]byte, step)

	for len(id) < g.size {
		if _, err := rand.Read(buffer); err != nil {
			return "", err
		}
		for _, b := range buffer {
			index := int(b & g.mask)
			if index >= alphabetLen {
				continue
			}
			id = append(id, g.alphabet[index])
			if len(id) == g.size {
				break
			}
		}
	}

	return string(id), nil
}
