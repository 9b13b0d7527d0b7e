package domain

import (
	"fmt"
	"strings"
)

// Algorithm is a field encryption algorithm tag as understood by the storage driver.
type Algorithm string

// Supported algorithm tags.
const (
	// AlgorithmDeterministic preserves equality queries and leaks duplicate values.
	AlgorithmDeterministic Algorithm = "AEAD_AES_256_CBC_HMAC_SHA_512-Deterministic"
	// AlgorithmRandom hides duplicates and disallows equality queries.
	AlgorithmRandom Algorithm = "AEAD_AES_256_CBC_HMAC_SHA_512-Random"
)

var algorithmAliases = map[string]Algorithm{
	"deterministic": AlgorithmDeterministic,
	"randomized":    AlgorithmRandom,
	"random":        AlgorithmRandom,
}

// ParseAlgorithm resolves a full tag or a short alias (deterministic, randomized, random).
func ParseAlgorithm(s string) (Algorithm, error) {
	switch a := Algorithm(s); a {
	case AlgorithmDeterministic, AlgorithmRandom:
		return a, nil
	}
	if a, ok := algorithmAliases[strings.ToLower(s)]; ok {
		return a, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownAlgorithmTag, s)
}

// IsDeterministic reports whether a is the deterministic tag.
func (a Algorithm) IsDeterministic() bool {
	return a == AlgorithmDeterministic
}
