package party

import (
	"rechnungswerk/ms_einvoice_core/internal/core/invoice"
)

// Defaults applied when counterpart data is incomplete. Resolution is total:
// document generation must never fail on a half-migrated legacy record.
const (
	DefaultName       = "Unbekannter Kunde"
	DefaultStreet     = "Kundenstraße 1"
	DefaultCity       = "Kundenstadt"
	DefaultPostalCode = "54321"
	DefaultCountry    = "Deutschland"
)

// ResolvedParty is the normalized counterpart record used for document
// generation. Every field is populated; it is computed on demand and never
// persisted.
type ResolvedParty struct {
	Name        string
	Email       string
	TaxID       string
	Street      string
	HouseNumber string
	City        string
	PostalCode  string
	Country     string
	CountryCode string
}

// Resolve produces one normalized party record from whichever counterpart
// shape the invoice carries. Strict priority: the modern businessPartner
// shape wins over the legacy customer shape; with neither present every
// field takes its default.
func Resolve(inv invoice.Invoice) ResolvedParty {
	if inv.BusinessPartner != nil {
		return resolveBusinessPartner(*inv.BusinessPartner)
	}
	if inv.Customer != nil {
		return resolveLegacyCustomer(*inv.Customer)
	}
	return ResolvedParty{
		Name:        DefaultName,
		Street:      DefaultStreet,
		City:        DefaultCity,
		PostalCode:  DefaultPostalCode,
		Country:     DefaultCountry,
		CountryCode: "DE",
	}
}

func resolveBusinessPartner(bp invoice.BusinessPartner) ResolvedParty {
	p := ResolvedParty{
		Name:       firstNonEmpty(bp.Name, DefaultName),
		Email:      bp.Email,
		TaxID:      bp.TaxID,
		Street:     DefaultStreet,
		City:       DefaultCity,
		PostalCode: DefaultPostalCode,
		Country:    DefaultCountry,
	}

	if addr := bp.Address; addr != nil {
		p.Email = firstNonEmpty(p.Email, addr.Email)
		p.TaxID = firstNonEmpty(p.TaxID, addr.TaxID)
		p.Street = firstNonEmpty(addr.Street, DefaultStreet)
		p.HouseNumber = addr.HouseNumber
		p.City = firstNonEmpty(addr.City, DefaultCity)
		p.PostalCode = firstNonEmpty(addr.PostalCode, DefaultPostalCode)
		p.Country = firstNonEmpty(addr.Country, DefaultCountry)
	}

	p.CountryCode = ResolveCountryCode(p.Country)
	return p
}

func resolveLegacyCustomer(c invoice.LegacyCustomer) ResolvedParty {
	// The legacy shape has no structured postal fields: its single address
	// line maps to the street and the rest takes fixed defaults.
	return ResolvedParty{
		Name:        firstNonEmpty(c.Name, DefaultName),
		Email:       c.Email,
		TaxID:       c.TaxID,
		Street:      firstNonEmpty(c.Address, DefaultStreet),
		City:        DefaultCity,
		PostalCode:  DefaultPostalCode,
		Country:     DefaultCountry,
		CountryCode: "DE",
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
