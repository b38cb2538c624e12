// Package xrechnung serializes an invoice plus resolved counterpart and
// issuer data into a UBL Invoice document conforming to the XRechnung 3.0
// profile on the Peppol BIS Billing 3.0 base. Tag names, nesting and
// namespace URIs are binding for downstream validators.
package xrechnung

import (
	"errors"
	"fmt"
	"strings"

	"rechnungswerk/ms_einvoice_core/internal/application/party"
	"rechnungswerk/ms_einvoice_core/internal/core/invoice"
	"rechnungswerk/ms_einvoice_core/internal/core/issuer"
	"rechnungswerk/ms_einvoice_core/internal/infrastructure/xmlescape"
)

// Namespace and profile constants. Byte-for-byte structure matters to
// downstream schema validators.
const (
	namespaceInvoice = "urn:oasis:names:specification:ubl:schema:xsd:Invoice-2"
	namespaceCAC     = "urn:oasis:names:specification:ubl:schema:xsd:CommonAggregateComponents-2"
	namespaceCBC     = "urn:oasis:names:specification:ubl:schema:xsd:CommonBasicComponents-2"

	customizationID = "urn:cen.eu:en16931:2017#compliant#urn:xeinkauf.de:kosit:xrechnung_3.0"
	profileID       = "urn:fdc:peppol.eu:2017:poacc:billing:01:1.0"

	// UNCL 1001 code for a commercial invoice.
	invoiceTypeCode = "380"
)

// Issuer defaults: a structurally valid document with placeholder supplier
// data is preferred over a hard failure on an incomplete profile.
const (
	defaultIssuerName    = "Mein Unternehmen"
	defaultIssuerAddress = "Musterstraße 1"
	defaultIssuerTaxID   = "DE123456789"
	defaultIssuerEmail   = "rechnung@example.de"
)

// Sentinel errors for the only two conditions that make a legally complete
// document impossible. Everything else degrades via defaults.
var (
	ErrMissingItems  = errors.New("invoice has no line items")
	ErrMissingTotals = errors.New("invoice is missing aggregate totals")
)

// Encode renders the invoice as an XRechnung UBL document. It is a pure
// function: no I/O, and byte-identical output for identical input.
func Encode(inv invoice.Invoice, cfg issuer.Config) (string, error) {
	if len(inv.Items) == 0 {
		return "", fmt.Errorf("encode invoice %s: %w", inv.ID, ErrMissingItems)
	}
	if inv.Subtotal == nil || inv.TaxAmount == nil || inv.Total == nil {
		return "", fmt.Errorf("encode invoice %s: %w", inv.ID, ErrMissingTotals)
	}

	buyer := party.Resolve(inv)
	currency := inv.CurrencyOrDefault()
	taxRate := 19.0
	if inv.TaxRate != nil {
		taxRate = *inv.TaxRate
	}

	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	fmt.Fprintf(&b, "<ubl:Invoice xmlns:ubl=%q xmlns:cac=%q xmlns:cbc=%q>\n",
		namespaceInvoice, namespaceCAC, namespaceCBC)

	writeHeader(&b, inv, currency)
	writeSupplierParty(&b, cfg)
	writeCustomerParty(&b, buyer)
	writeTaxTotal(&b, *inv.Subtotal, *inv.TaxAmount, taxRate, currency)
	writeMonetaryTotal(&b, *inv.Subtotal, *inv.Total, currency)
	writeLines(&b, inv.Items, taxRate, currency)

	b.WriteString("</ubl:Invoice>\n")
	return b.String(), nil
}

func writeHeader(b *strings.Builder, inv invoice.Invoice, currency string) {
	fmt.Fprintf(b, "  <cbc:CustomizationID>%s</cbc:CustomizationID>\n", customizationID)
	fmt.Fprintf(b, "  <cbc:ProfileID>%s</cbc:ProfileID>\n", profileID)
	fmt.Fprintf(b, "  <cbc:ID>%s</cbc:ID>\n", xmlescape.Escape(inv.InvoiceNumber))
	if inv.Date != "" {
		fmt.Fprintf(b, "  <cbc:IssueDate>%s</cbc:IssueDate>\n", xmlescape.Escape(inv.Date))
	}
	if inv.DueDate != "" {
		fmt.Fprintf(b, "  <cbc:DueDate>%s</cbc:DueDate>\n", xmlescape.Escape(inv.DueDate))
	}
	fmt.Fprintf(b, "  <cbc:InvoiceTypeCode>%s</cbc:InvoiceTypeCode>\n", invoiceTypeCode)
	fmt.Fprintf(b, "  <cbc:DocumentCurrencyCode>%s</cbc:DocumentCurrencyCode>\n", xmlescape.Escape(currency))
}

func writeSupplierParty(b *strings.Builder, cfg issuer.Config) {
	name := orDefault(cfg.Name, defaultIssuerName)
	address := orDefault(cfg.Address, defaultIssuerAddress)
	taxID := orDefault(cfg.TaxID, defaultIssuerTaxID)
	email := orDefault(cfg.Email, defaultIssuerEmail)

	b.WriteString("  <cac:AccountingSupplierParty>\n")
	b.WriteString("    <cac:Party>\n")
	b.WriteString("      <cac:PartyName>\n")
	fmt.Fprintf(b, "        <cbc:Name>%s</cbc:Name>\n", xmlescape.Escape(name))
	b.WriteString("      </cac:PartyName>\n")
	b.WriteString("      <cac:PostalAddress>\n")
	fmt.Fprintf(b, "        <cbc:StreetName>%s</cbc:StreetName>\n", xmlescape.Escape(address))
	b.WriteString("        <cac:Country>\n")
	b.WriteString("          <cbc:IdentificationCode>DE</cbc:IdentificationCode>\n")
	b.WriteString("        </cac:Country>\n")
	b.WriteString("      </cac:PostalAddress>\n")
	b.WriteString("      <cac:PartyTaxScheme>\n")
	fmt.Fprintf(b, "        <cbc:CompanyID>%s</cbc:CompanyID>\n", xmlescape.Escape(taxID))
	b.WriteString("        <cac:TaxScheme>\n")
	b.WriteString("          <cbc:ID>VAT</cbc:ID>\n")
	b.WriteString("        </cac:TaxScheme>\n")
	b.WriteString("      </cac:PartyTaxScheme>\n")
	b.WriteString("      <cac:Contact>\n")
	fmt.Fprintf(b, "        <cbc:ElectronicMail>%s</cbc:ElectronicMail>\n", xmlescape.Escape(email))
	b.WriteString("      </cac:Contact>\n")
	b.WriteString("    </cac:Party>\n")
	b.WriteString("  </cac:AccountingSupplierParty>\n")
}

func writeCustomerParty(b *strings.Builder, buyer party.ResolvedParty) {
	b.WriteString("  <cac:AccountingCustomerParty>\n")
	b.WriteString("    <cac:Party>\n")
	b.WriteString("      <cac:PartyName>\n")
	fmt.Fprintf(b, "        <cbc:Name>%s</cbc:Name>\n", xmlescape.Escape(buyer.Name))
	b.WriteString("      </cac:PartyName>\n")
	b.WriteString("      <cac:PostalAddress>\n")
	fmt.Fprintf(b, "        <cbc:StreetName>%s</cbc:StreetName>\n", xmlescape.Escape(buyer.Street))
	if buyer.HouseNumber != "" {
		fmt.Fprintf(b, "        <cbc:BuildingNumber>%s</cbc:BuildingNumber>\n", xmlescape.Escape(buyer.HouseNumber))
	}
	fmt.Fprintf(b, "        <cbc:CityName>%s</cbc:CityName>\n", xmlescape.Escape(buyer.City))
	fmt.Fprintf(b, "        <cbc:PostalZone>%s</cbc:PostalZone>\n", xmlescape.Escape(buyer.PostalCode))
	b.WriteString("        <cac:Country>\n")
	fmt.Fprintf(b, "          <cbc:IdentificationCode>%s</cbc:IdentificationCode>\n", xmlescape.Escape(buyer.CountryCode))
	b.WriteString("        </cac:Country>\n")
	b.WriteString("      </cac:PostalAddress>\n")
	// UBL cardinality zero-or-one: the tax scheme block is only emitted when
	// a tax id is present.
	if buyer.TaxID != "" {
		b.WriteString("      <cac:PartyTaxScheme>\n")
		fmt.Fprintf(b, "        <cbc:CompanyID>%s</cbc:CompanyID>\n", xmlescape.Escape(buyer.TaxID))
		b.WriteString("        <cac:TaxScheme>\n")
		b.WriteString("          <cbc:ID>VAT</cbc:ID>\n")
		b.WriteString("        </cac:TaxScheme>\n")
		b.WriteString("      </cac:PartyTaxScheme>\n")
	}
	if buyer.Email != "" {
		b.WriteString("      <cac:Contact>\n")
		fmt.Fprintf(b, "        <cbc:ElectronicMail>%s</cbc:ElectronicMail>\n", xmlescape.Escape(buyer.Email))
		b.WriteString("      </cac:Contact>\n")
	}
	b.WriteString("    </cac:Party>\n")
	b.WriteString("  </cac:AccountingCustomerParty>\n")
}

// writeTaxTotal emits the stored aggregates as-is. Consistency with the line
// items is the caller's concern, checked upstream by the totals validator.
func writeTaxTotal(b *strings.Builder, subtotal, taxAmount, taxRate float64, currency string) {
	cur := xmlescape.Escape(currency)
	b.WriteString("  <cac:TaxTotal>\n")
	fmt.Fprintf(b, "    <cbc:TaxAmount currencyID=%q>%.2f</cbc:TaxAmount>\n", cur, taxAmount)
	b.WriteString("    <cac:TaxSubtotal>\n")
	fmt.Fprintf(b, "      <cbc:TaxableAmount currencyID=%q>%.2f</cbc:TaxableAmount>\n", cur, subtotal)
	fmt.Fprintf(b, "      <cbc:TaxAmount currencyID=%q>%.2f</cbc:TaxAmount>\n", cur, taxAmount)
	b.WriteString("      <cac:TaxCategory>\n")
	b.WriteString("        <cbc:ID>S</cbc:ID>\n")
	fmt.Fprintf(b, "        <cbc:Percent>%.2f</cbc:Percent>\n", taxRate)
	b.WriteString("        <cac:TaxScheme>\n")
	b.WriteString("          <cbc:ID>VAT</cbc:ID>\n")
	b.WriteString("        </cac:TaxScheme>\n")
	b.WriteString("      </cac:TaxCategory>\n")
	b.WriteString("    </cac:TaxSubtotal>\n")
	b.WriteString("  </cac:TaxTotal>\n")
}

func writeMonetaryTotal(b *strings.Builder, subtotal, total float64, currency string) {
	cur := xmlescape.Escape(currency)
	b.WriteString("  <cac:LegalMonetaryTotal>\n")
	fmt.Fprintf(b, "    <cbc:LineExtensionAmount currencyID=%q>%.2f</cbc:LineExtensionAmount>\n", cur, subtotal)
	fmt.Fprintf(b, "    <cbc:TaxExclusiveAmount currencyID=%q>%.2f</cbc:TaxExclusiveAmount>\n", cur, subtotal)
	fmt.Fprintf(b, "    <cbc:TaxInclusiveAmount currencyID=%q>%.2f</cbc:TaxInclusiveAmount>\n", cur, total)
	fmt.Fprintf(b, "    <cbc:PayableAmount currencyID=%q>%.2f</cbc:PayableAmount>\n", cur, total)
	b.WriteString("  </cac:LegalMonetaryTotal>\n")
}

// writeLines emits one InvoiceLine per item in stored order with a 1-based
// sequential id. Per-line tax rates are not supported by the model; every
// line inherits the invoice-level rate.
func writeLines(b *strings.Builder, items []invoice.Item, taxRate float64, currency string) {
	cur := xmlescape.Escape(currency)
	for i, item := range items {
		quantity := 1.0
		if item.Quantity != nil {
			quantity = *item.Quantity
		}
		price := 0.0
		if item.Price != nil {
			price = *item.Price
		}

		b.WriteString("  <cac:InvoiceLine>\n")
		fmt.Fprintf(b, "    <cbc:ID>%d</cbc:ID>\n", i+1)
		fmt.Fprintf(b, "    <cbc:InvoicedQuantity unitCode=\"C62\">%.2f</cbc:InvoicedQuantity>\n", quantity)
		fmt.Fprintf(b, "    <cbc:LineExtensionAmount currencyID=%q>%.2f</cbc:LineExtensionAmount>\n", cur, quantity*price)
		b.WriteString("    <cac:Item>\n")
		fmt.Fprintf(b, "      <cbc:Name>%s</cbc:Name>\n", xmlescape.Escape(item.Description))
		b.WriteString("      <cac:ClassifiedTaxCategory>\n")
		b.WriteString("        <cbc:ID>S</cbc:ID>\n")
		fmt.Fprintf(b, "        <cbc:Percent>%.2f</cbc:Percent>\n", taxRate)
		b.WriteString("        <cac:TaxScheme>\n")
		b.WriteString("          <cbc:ID>VAT</cbc:ID>\n")
		b.WriteString("        </cac:TaxScheme>\n")
		b.WriteString("      </cac:ClassifiedTaxCategory>\n")
		b.WriteString("    </cac:Item>\n")
		b.WriteString("    <cac:Price>\n")
		fmt.Fprintf(b, "      <cbc:PriceAmount currencyID=%q>%.2f</cbc:PriceAmount>\n", cur, price)
		b.WriteString("    </cac:Price>\n")
		b.WriteString("  </cac:InvoiceLine>\n")
	}
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
