package storage

import (
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitopus/internal/models"
)

// EncodeSplit serialises a split as a JSON object of id -> number.
// Shares are written with their exact decimal digits.
func EncodeSplit(split models.SplitMap) (string, error) {
	raw := make(map[string]json.Number, len(split))
	for id, share := range split {
		raw[id] = json.Number(share.String())
	}
	b, err := json.Marshal(raw)
	if err != nil {
		return "", fmt.Errorf("failed to encode split: %w", err)
	}
	return string(b), nil
}

// DecodeSplit parses a split written by EncodeSplit.
// ok is false when data is not a JSON object of numbers; split is then empty.
func DecodeSplit(data string) (split models.SplitMap, ok bool) {
	split = make(models.SplitMap)
	if strings.TrimSpace(data) == "" {
		return split, true
	}

	var raw map[string]json.Number
	if err := json.Unmarshal([]byte(data), &raw); err != nil {
		return make(models.SplitMap), false
	}
	for id, n := range raw {
		share, err := decimal.NewFromString(n.String())
		if err != nil {
			return make(models.SplitMap), false
		}
		split[id] = share
	}
	return split, true
}

// EncodeSelected serialises a draft's participant selection.
func EncodeSelected(selected map[string]bool) (string, error) {
	if selected == nil {
		selected = map[string]bool{}
	}
	b, err := json.Marshal(selected)
	if err != nil {
		return "", fmt.Errorf("failed to encode selection: %w", err)
	}
	return string(b), nil
}

// DecodeSelected parses a selection written by EncodeSelected.
func DecodeSelected(data string) (map[string]bool, error) {
	selected := make(map[string]bool)
	if strings.TrimSpace(data) == "" {
		return selected, nil
	}
	if err := json.Unmarshal([]byte(data), &selected); err != nil {
		return nil, fmt.Errorf("failed to decode selection: %w", err)
	}
	return selected, nil
}

const (
	tripCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	tripCodeLength   = 6

	// MaxTripCodeAttempts bounds the retries when a generated code is taken.
	MaxTripCodeAttempts = 10
)

// NewTripCode returns a random join code of uppercase letters and digits.
func NewTripCode() string {
	var b strings.Builder
	b.Grow(tripCodeLength)
	for range tripCodeLength {
		b.WriteByte(tripCodeAlphabet[rand.IntN(len(tripCodeAlphabet))])
	}
	return b.String()
}

// NormalizeTripCode upper-cases and trims a user-entered join code.
func NormalizeTripCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// ValidateLink checks that linking child to master keeps every household
// one level deep. childHasLinks reports whether other accounts are linked
// to child.
func ValidateLink(child, master *models.Account, childHasLinks bool) error {
	switch {
	case child.ID == master.ID:
		return fmt.Errorf("%w: account %s cannot link to itself", ErrInvalidLink, child.ID)
	case master.IsLinked():
		return fmt.Errorf("%w: %s is already linked to %s", ErrInvalidLink, master.ID, master.LinkedTo)
	case childHasLinks:
		return fmt.Errorf("%w: %s has linked accounts of its own", ErrInvalidLink, child.ID)
	}
	return nil
}

// UnknownName is shown for a master whose account record is missing.
const UnknownName = "Unknown"

// FormatLinkedNames joins the master name with the names of linked accounts
// present in filter. A nil filter keeps all of them.
func FormatLinkedNames(masterName string, linked []models.Account, filter []string) string {
	var keep map[string]bool
	if filter != nil {
		keep = make(map[string]bool, len(filter))
		for _, id := range filter {
			keep[id] = true
		}
	}

	names := []string{masterName}
	for _, a := range linked {
		if keep == nil || keep[a.ID] {
			names = append(names, a.Name)
		}
	}
	return strings.Join(names, " + ")
}
