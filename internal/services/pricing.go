package services

import "partsdesk/internal/domain"

// Pricer computes the authoritative order amounts. Inputs are line items whose
// unit prices were fetched server-side inside the placement transaction;
// client-submitted totals never reach this code.
type Pricer struct {
	FreeShippingThreshold float64
	FlatRate              float64
}

type Quote struct {
	Subtotal    float64
	ShippingFee float64
	Total       float64
}

func (p Pricer) Quote(items []domain.OrderLineItem, delivery domain.DeliveryMethod) Quote {
	var subtotal float64
	for _, it := range items {
		subtotal += it.LineTotal()
	}

	var fee float64
	if delivery == domain.DeliverDelivery && subtotal < p.FreeShippingThreshold {
		fee = p.FlatRate
	}

	return Quote{Subtotal: subtotal, ShippingFee: fee, Total: subtotal + fee}
}
