package shopify

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/shopsync/backend/internal/domain/ingestion"
)

// Shopify serializes money as decimal strings inside JSON. Payload structs
// keep them as strings and convert at the boundary so a malformed amount
// degrades to zero instead of failing the whole page.

type customersEnvelope struct {
	Customers []customerPayload `json:"customers"`
}

type customerPayload struct {
	ID         int64  `json:"id"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Email      string `json:"email"`
	TotalSpent string `json:"total_spent"`
}

type productsEnvelope struct {
	Products []productPayload `json:"products"`
}

type productPayload struct {
	ID       int64            `json:"id"`
	Title    string           `json:"title"`
	Variants []variantPayload `json:"variants"`
}

type variantPayload struct {
	Price string `json:"price"`
}

type ordersEnvelope struct {
	Orders []orderPayload `json:"orders"`
}

type orderPayload struct {
	ID         int64          `json:"id"`
	TotalPrice string         `json:"total_price"`
	Currency   string         `json:"currency"`
	Customer   *orderCustomer `json:"customer"`
	CreatedAt  time.Time      `json:"created_at"`
}

type orderCustomer struct {
	ID int64 `json:"id"`
}

// ParseDecimal converts a Shopify money string into a decimal. Empty and
// unparseable values both coerce to zero.
func ParseDecimal(s string) decimal.Decimal {
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func (p customerPayload) toRecord() ingestion.CustomerRecord {
	return ingestion.CustomerRecord{
		ExternalID: formatID(p.ID),
		FirstName:  p.FirstName,
		LastName:   p.LastName,
		Email:      p.Email,
		TotalSpent: ParseDecimal(p.TotalSpent),
	}
}

func (p productPayload) toRecord() ingestion.ProductRecord {
	price := decimal.Zero
	if len(p.Variants) > 0 {
		price = ParseDecimal(p.Variants[0].Price)
	}
	return ingestion.ProductRecord{
		ExternalID: formatID(p.ID),
		Title:      p.Title,
		Price:      price,
	}
}

func (p orderPayload) toRecord() ingestion.OrderRecord {
	rec := ingestion.OrderRecord{
		ExternalID: formatID(p.ID),
		Total:      ParseDecimal(p.TotalPrice),
		Currency:   p.Currency,
		PlacedAt:   p.CreatedAt,
	}
	if p.Customer != nil {
		ref := formatID(p.Customer.ID)
		rec.CustomerExternalID = &ref
	}
	return rec
}
