// Package symbols holds the built-in registry of Tadawul-listed companies
// tracked by the toolkit. Codes use the Yahoo Finance ".SR" suffix.
package symbols

import (
	"sort"
	"strings"

	"github.com/tadawul-lab/tasi-analyzer/pkg/errors"
)

// Listing describes a single Tadawul-listed company.
type Listing struct {
	// Name is the human readable company name.
	Name string `json:"name"`
	// Code is the exchange code with Yahoo suffix, e.g. "2222.SR".
	Code string `json:"code"`
}

var tadawul = []Listing{
	{Name: "Saudi Aramco", Code: "2222.SR"},
	{Name: "Al Rajhi Bank", Code: "1120.SR"},
	{Name: "Saudi National Bank", Code: "1180.SR"},
	{Name: "Saudi Telecom", Code: "7010.SR"},
	{Name: "Saudi Electricity", Code: "5110.SR"},
	{Name: "Savola Group", Code: "2050.SR"},
	{Name: "Jarir Marketing", Code: "4190.SR"},
	{Name: "SABIC", Code: "2010.SR"},
	{Name: "ACWA Power", Code: "2082.SR"},
	{Name: "Banque Saudi Fransi", Code: "1050.SR"},
}

// All returns a copy of the built-in listings, sorted by code.
func All() []Listing {
	listings := make([]Listing, len(tadawul))
	copy(listings, tadawul)

	sort.Slice(listings, func(i, j int) bool {
		return listings[i].Code < listings[j].Code
	})

	return listings
}

// Lookup finds a listing by exchange code or (case-insensitive) company name.
func Lookup(key string) (Listing, bool) {
	for _, l := range tadawul {
		if strings.EqualFold(l.Code, key) || strings.EqualFold(l.Name, key) {
			return l, true
		}
	}

	return Listing{}, false
}

// Resolve maps a company name or code to its exchange code. Codes that are
// not part of the built-in registry pass through unchanged as long as they
// carry an exchange suffix, so non-Tadawul tickers remain usable.
func Resolve(key string) (string, error) {
	if l, ok := Lookup(key); ok {
		return l.Code, nil
	}

	if strings.Contains(key, ".") || key == strings.ToUpper(key) {
		return key, nil
	}

	return "", errors.Newf(errors.ErrCodeUnknownTicker, "unknown ticker %q", key)
}
