package tiles

import (
	"fmt"
	"strings"
)

// Letter is an upper-case ASCII letter A–Z.
type Letter byte

// NumLetters is the size of the alphabet.
const NumLetters = 26

// LetterInfo is one row of the letter table: distribution weight and point value.
type LetterInfo struct {
	Letter Letter
	Count  int
	Points int
}

// Letters is the static Scrabble-like frequency/value table.
var Letters = [NumLetters]LetterInfo{
	{'A', 9, 1}, {'B', 2, 3}, {'C', 2, 3}, {'D', 4, 2}, {'E', 12, 1},
	{'F', 2, 4}, {'G', 3, 2}, {'H', 2, 4}, {'I', 9, 1}, {'J', 1, 8},
	{'K', 1, 5}, {'L', 4, 1}, {'M', 2, 3}, {'N', 6, 1}, {'O', 8, 1},
	{'P', 2, 3}, {'Q', 1, 10}, {'R', 6, 1}, {'S', 4, 1}, {'T', 6, 1},
	{'U', 4, 1}, {'V', 2, 4}, {'W', 2, 4}, {'X', 1, 8}, {'Y', 2, 4},
	{'Z', 1, 10},
}

// Valid reports whether l is in A–Z.
func (l Letter) Valid() bool { return l >= 'A' && l <= 'Z' }

// Index maps A–Z to 0..25. Callers must check Valid first.
func (l Letter) Index() int { return int(l - 'A') }

// Info returns the table row for l.
func (l Letter) Info() LetterInfo { return Letters[l.Index()] }

// Points is the base point value of l.
func (l Letter) Points() int { return l.Info().Points }

// IsVowel reports whether l is one of A, E, I, O, U.
func (l Letter) IsVowel() bool {
	switch l {
	case 'A', 'E', 'I', 'O', 'U':
		return true
	}
	return false
}

func (l Letter) String() string { return string(rune(l)) }

// MarshalText encodes a letter as a one-character string.
func (l Letter) MarshalText() ([]byte, error) { return []byte{byte(l)}, nil }

// UnmarshalText accepts a single letter in either case.
func (l *Letter) UnmarshalText(b []byte) error {
	p, err := ParseLetter(string(b))
	if err != nil {
		return err
	}
	*l = p
	return nil
}

// ParseLetter converts a one-character string (any case) into a Letter.
func ParseLetter(s string) (Letter, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if len(s) != 1 || !Letter(s[0]).Valid() {
		return 0, fmt.Errorf("tiles: %q is not a letter", s)
	}
	return Letter(s[0]), nil
}
