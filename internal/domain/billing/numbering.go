package billing

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bizdocs/backend/internal/domain/shared"
)

// Prefix identifies the document family a number belongs to
type Prefix string

const (
	PrefixQuotation Prefix = "QUOTE"
	PrefixInvoice   Prefix = "INV"
	PrefixReceipt   Prefix = "RCT"
)

// sequenceWidth is the minimum zero-padded width of the sequence segment.
// Sequences past 999 grow wider instead of being truncated.
const sequenceWidth = 3

// IsValid checks the prefix is one of the known families
func (p Prefix) IsValid() bool {
	switch p {
	case PrefixQuotation, PrefixInvoice, PrefixReceipt:
		return true
	}
	return false
}

func (p Prefix) String() string {
	return string(p)
}

// YearPrefix returns the lookup prefix shared by all numbers of a family in a year, e.g. "INV-2024-"
func YearPrefix(p Prefix, year int) string {
	return fmt.Sprintf("%s-%d-", p, year)
}

// FormatNumber renders <PREFIX>-<year>-<seq>, e.g. QUOTE-2024-007
func FormatNumber(p Prefix, year, seq int) string {
	return fmt.Sprintf("%s%0*d", YearPrefix(p, year), sequenceWidth, seq)
}

// DocumentNumber is a parsed document number
type DocumentNumber struct {
	Prefix   Prefix
	Year     int
	Sequence int
}

func (n DocumentNumber) String() string {
	return FormatNumber(n.Prefix, n.Year, n.Sequence)
}

// ParseNumber splits a persisted document number into its parts.
// Anything that does not match <PREFIX>-<year>-<digits> is reported as an
// IntegrityError: a corrupt identifier must never be silently replaced.
func ParseNumber(number string) (DocumentNumber, error) {
	parts := strings.Split(number, "-")
	if len(parts) != 3 {
		return DocumentNumber{}, shared.NewIntegrityError("document number", number, "expected <PREFIX>-<year>-<sequence>")
	}
	prefix := Prefix(parts[0])
	if !prefix.IsValid() {
		return DocumentNumber{}, shared.NewIntegrityError("document number", number, "unknown prefix")
	}
	year, err := parseDigits(parts[1])
	if err != nil || len(parts[1]) != 4 {
		return DocumentNumber{}, shared.NewIntegrityError("document number", number, "year segment is not a four digit year")
	}
	seq, err := parseDigits(parts[2])
	if err != nil || len(parts[2]) < sequenceWidth {
		return DocumentNumber{}, shared.NewIntegrityError("document number", number, "sequence segment is not numeric")
	}
	if seq < 1 {
		return DocumentNumber{}, shared.NewIntegrityError("document number", number, "sequence must start at 1")
	}
	return DocumentNumber{Prefix: prefix, Year: year, Sequence: seq}, nil
}

// ParseSequence extracts the trailing sequence of a number that must start with the given lookup prefix
func ParseSequence(yearPrefix, number string) (int, error) {
	if !strings.HasPrefix(number, yearPrefix) {
		return 0, shared.NewIntegrityError("document number", number, "does not start with "+yearPrefix)
	}
	n, err := ParseNumber(number)
	if err != nil {
		return 0, err
	}
	return n.Sequence, nil
}

// parseDigits accepts only ASCII digits; strconv.Atoi alone would let "+12" through
func parseDigits(s string) (int, error) {
	if s == "" {
		return 0, strconv.ErrSyntax
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, strconv.ErrSyntax
		}
	}
	return strconv.Atoi(s)
}

// checkNumber verifies a number about to be assigned belongs to the expected family
func checkNumber(expected Prefix, number string) error {
	n, err := ParseNumber(number)
	if err != nil {
		return err
	}
	if n.Prefix != expected {
		return shared.NewDomainError("INVALID_NUMBER", fmt.Sprintf("number %s does not belong to %s documents", number, expected))
	}
	return nil
}
