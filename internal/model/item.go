package model

import "time"

// Item is a price catalog record
type Item struct {
	Name                 string        `json:"name"`
	ShortName            string        `json:"shortName"`
	Width                int           `json:"width"`
	Height               int           `json:"height"`
	Avg24hPrice          int           `json:"avg24hPrice"`
	BasePrice            int           `json:"basePrice"`
	LastLowPrice         int           `json:"lastLowPrice"`
	ChangeLast48hPercent float64       `json:"changeLast48hPercent"`
	Low24hPrice          int           `json:"low24hPrice"`
	High24hPrice         int           `json:"high24hPrice"`
	IconLink             string        `json:"iconLink,omitempty"`
	WikiLink             string        `json:"wikiLink,omitempty"`
	Link                 string        `json:"link,omitempty"`
	Updated              *time.Time    `json:"updated,omitempty"`
	SellFor              []VendorOffer `json:"sellFor,omitempty"`
}

// VendorOffer is what a vendor pays for the item
type VendorOffer struct {
	Vendor   Vendor `json:"vendor"`
	Price    int    `json:"price"`
	Currency string `json:"currency"`
}

// Vendor identifies a trader or the flea market
type Vendor struct {
	Name string `json:"name"`
}

// FleaPrice returns the 24h average, falling back to last low and then base price
func (i *Item) FleaPrice() int {
	switch {
	case i.Avg24hPrice > 0:
		return i.Avg24hPrice
	case i.LastLowPrice > 0:
		return i.LastLowPrice
	default:
		return i.BasePrice
	}
}

// Slots returns the inventory footprint, 0 if unknown
func (i *Item) Slots() int {
	if i.Width <= 0 || i.Height <= 0 {
		return 0
	}
	return i.Width * i.Height
}

// PricePerSlot returns flea price divided by slots, 0 when either is unknown
func (i *Item) PricePerSlot() float64 {
	slots := i.Slots()
	price := i.FleaPrice()
	if slots == 0 || price <= 0 {
		return 0
	}
	return float64(price) / float64(slots)
}

// BestOffer returns the highest paying vendor offer
func (i *Item) BestOffer() (VendorOffer, bool) {
	if len(i.SellFor) == 0 {
		return VendorOffer{}, false
	}
	best := i.SellFor[0]
	for _, offer := range i.SellFor[1:] {
		if offer.Price > best.Price {
			best = offer
		}
	}
	return best, true
}
