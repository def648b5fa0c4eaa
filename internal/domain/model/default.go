package model

import (
	_ "embed"
)

//go:embed default_model.json
var defaultArtifact []byte

// Default returns the built-in maturity model. It panics on parse failure
// since the artifact ships with the binary and is covered by tests.
func Default() *Model {
	m, err := Parse(defaultArtifact)
	if err != nil {
		panic("built-in model artifact is invalid: " + err.Error())
	}
	return m
}
