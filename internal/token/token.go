// Package token validates the metadata of a project token before it is
// issued: name, symbol and decimal count.
package token

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Project tokens are issued with 18 decimals; contribution tokens are
// discovered on-chain and may use anything up to MaxDecimals.
const (
	DefaultDecimals uint8 = 18
	MaxDecimals     uint8 = 36
)

// nameRegex matches 2-50 characters of letters, digits, spaces and . _ -,
// starting with a letter or digit. Example: Exhibition Token
var nameRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9 ._-]{1,49}$`)

// symbolRegex matches 2-11 upper-case letters or digits. Example: EXH
var symbolRegex = regexp.MustCompile(`^[A-Z0-9]{2,11}$`)

var (
	ErrInvalidName     = errors.New("token: invalid name")
	ErrInvalidSymbol   = errors.New("token: invalid symbol")
	ErrInvalidDecimals = errors.New("token: unsupported decimals")
)

// Metadata is a validated project token description.
type Metadata struct {
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Decimals uint8  `json:"decimals"`
}

// ParseMetadata trims and validates name and symbol. The symbol is
// upper-cased before validation.
func ParseMetadata(name, symbol string, decimals uint8) (*Metadata, error) {
	name = strings.TrimSpace(name)
	if !nameRegex.MatchString(name) {
		return nil, fmt.Errorf("%w: %q (expected 2-50 letters, digits, spaces or ._-)", ErrInvalidName, name)
	}

	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if !symbolRegex.MatchString(symbol) {
		return nil, fmt.Errorf("%w: %q (expected 2-11 letters or digits)", ErrInvalidSymbol, symbol)
	}

	if err := CheckDecimals(decimals); err != nil {
		return nil, err
	}

	return &Metadata{
		Name:     name,
		Symbol:   symbol,
		Decimals: decimals,
	}, nil
}

// CheckDecimals rejects decimal counts no ERC-20 in practice uses.
func CheckDecimals(decimals uint8) error {
	if decimals > MaxDecimals {
		return fmt.Errorf("%w: %d > %d", ErrInvalidDecimals, decimals, MaxDecimals)
	}
	return nil
}
