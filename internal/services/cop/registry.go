// Package cop provides the confirmation-of-payee check: does the name the
// customer typed match the registered holder of the destination account?
package cop

import (
	"context"
	"fmt"
	"strings"

	"scamshield/internal/services/risk"
)

// DefaultEntries is the demo registry.
var DefaultEntries = map[string]string{
	"RO49AAAA1B31007593840000": "John Doe Investments SRL",
}

// Registry is an in-memory account-holder directory.
type Registry struct {
	expected map[string]string
}

func NewRegistry(entries map[string]string) *Registry {
	expected := make(map[string]string, len(entries))
	for iban, name := range entries {
		expected[normalizeIBAN(iban)] = strings.TrimSpace(name)
	}
	return &Registry{expected: expected}
}

// ParseEntries reads "IBAN=Holder Name;IBAN=Holder Name".
func ParseEntries(raw string) (map[string]string, error) {
	entries := make(map[string]string)
	for _, pair := range strings.Split(raw, ";") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		iban, name, ok := strings.Cut(pair, "=")
		if !ok || strings.TrimSpace(iban) == "" || strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("invalid payee registry entry %q", pair)
		}
		entries[normalizeIBAN(iban)] = strings.TrimSpace(name)
	}
	return entries, nil
}

// ProvidedName extracts the payee name from a memo such as
// "payee: John Doe". Without the marker it returns "".
func ProvidedName(memo string) string {
	if !strings.Contains(strings.ToLower(memo), "payee:") {
		return ""
	}
	_, name, _ := strings.Cut(memo, ":")
	return strings.TrimSpace(name)
}

// CheckPayee compares the provided name with the registered holder,
// case-insensitively and ignoring surrounding whitespace.
func (r *Registry) CheckPayee(ctx context.Context, iban, memo string) (risk.PayeeCheck, error) {
	if err := ctx.Err(); err != nil {
		return risk.PayeeCheck{}, err
	}

	expected, ok := r.expected[normalizeIBAN(iban)]
	if !ok {
		return risk.PayeeCheck{Status: risk.PayeeUnknown, Message: "No data"}, nil
	}

	provided := ProvidedName(memo)
	switch {
	case provided == "":
		return risk.PayeeCheck{
			Status:  risk.PayeeMismatch,
			Message: fmt.Sprintf("Expected '%s', but no name provided", expected),
		}, nil
	case strings.EqualFold(provided, expected):
		return risk.PayeeCheck{Status: risk.PayeeMatch, Message: "Match"}, nil
	default:
		return risk.PayeeCheck{
			Status:  risk.PayeeMismatch,
			Message: fmt.Sprintf("Mismatch vs '%s'", expected),
		}, nil
	}
}

// Len reports how many accounts are registered.
func (r *Registry) Len() int {
	return len(r.expected)
}

func normalizeIBAN(iban string) string {
	return strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(iban), " ", ""))
}
