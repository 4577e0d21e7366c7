package domain

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// ProductSnapshot is an immutable view of a product captured once at job
// start. The pipeline never re-reads the source product mid-flight, so a
// concurrent edit can not produce a half-old, half-new asset.
type ProductSnapshot struct {
	Ref         string
	Name        string
	Price       int64
	SalePrice   *int64
	Description string
	Sizes       []string
	Colors      []string
	ImageURL    string
	Category    string
}

// BrandContext carries the owning storefront's identity and brand colors.
type BrandContext struct {
	Ref          string
	SellerRef    string
	Name         string
	PrimaryColor string
	AccentColor  string
	Category     string
}

// EffectivePrice returns the sale price when one is set.
func (p *ProductSnapshot) EffectivePrice() int64 {
	if p.SalePrice != nil {
		return *p.SalePrice
	}
	return p.Price
}

// FormatPrice renders an amount with locale-aware digit grouping and the
// currency marker merchants in that locale expect on marketing material.
func FormatPrice(amount int64, locale string) string {
	if locale == "id" {
		printer := message.NewPrinter(language.Indonesian)
		return printer.Sprintf("Rp %v", number.Decimal(amount))
	}
	printer := message.NewPrinter(language.English)
	return printer.Sprintf("$%v", number.Decimal(amount))
}
