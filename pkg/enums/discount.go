package enums

// DiscountType selects how an offer value is applied.
type DiscountType string

const (
	DiscountTypePercentage DiscountType = "percentage"
	DiscountTypeFixed      DiscountType = "fixed"
)

func (t DiscountType) IsValid() bool {
	return t == DiscountTypePercentage || t == DiscountTypeFixed
}

// OfferScope selects what an offer targets.
type OfferScope string

const (
	// OfferScopeCart applies the offer against the whole cart subtotal.
	OfferScopeCart OfferScope = "cart"
	// OfferScopeProduct applies the offer per matching line item.
	OfferScopeProduct OfferScope = "product"
)

func (s OfferScope) IsValid() bool {
	return s == OfferScopeCart || s == OfferScopeProduct
}
