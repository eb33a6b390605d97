package bot

import (
	"errors"
	"fmt"
	"strings"
)

// Difficulty is the named tier governing the automated opponent's policy.
type Difficulty string

const (
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
	Hard   Difficulty = "hard"
)

var ErrUnknownDifficulty = errors.New("unknown difficulty")

// Difficulties lists the supported tiers from weakest to strongest.
var Difficulties = []Difficulty{Easy, Medium, Hard}

// Valid reports whether d is a supported tier.
func (d Difficulty) Valid() bool {
	switch d {
	case Easy, Medium, Hard:
		return true
	}
	return false
}

// ParseDifficulty accepts a tier name in any letter case.
func ParseDifficulty(s string) (Difficulty, error) {
	d := Difficulty(strings.ToLower(strings.TrimSpace(s)))
	if !d.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownDifficulty, s)
	}
	return d, nil
}
