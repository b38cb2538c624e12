package party

import "strings"

// countryCodes maps German and English country names to ISO-3166 alpha-2
// codes for the jurisdictions the service invoices into.
var countryCodes = map[string]string{
	"deutschland": "DE",
	"germany":     "DE",
	"österreich":  "AT",
	"austria":     "AT",
	"schweiz":     "CH",
	"switzerland": "CH",
	"frankreich":  "FR",
	"france":      "FR",
	"niederlande": "NL",
	"netherlands": "NL",
}

// ResolveCountryCode maps a free-text country name to an ISO-3166 alpha-2
// code. Unknown or empty input resolves to "DE": documents default to the
// issuer's home jurisdiction rather than failing. Callers needing strict
// correctness must supply a recognized country explicitly.
func ResolveCountryCode(country string) string {
	if code, ok := countryCodes[strings.ToLower(strings.TrimSpace(country))]; ok {
		return code
	}
	return "DE"
}
