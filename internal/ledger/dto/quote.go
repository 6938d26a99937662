package dto

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang-stock-ledger/internal/entity"

	"github.com/shopspring/decimal"
)

// PriceScale is the number of decimal places prices are stored with.
const PriceScale = 4

// Quote is the market snapshot of one symbol as seen by the ledger.
// NotFound and EmptySymbol mark provider answers that carry no listing.
type Quote struct {
	Symbol      string          `json:"symbol"`
	Name        string          `json:"name"`
	Industry    string          `json:"industry"`
	Exchange    string          `json:"exchange"`
	Sector      string          `json:"sector,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Bid         decimal.Decimal `json:"bid"`
	BidSize     int64           `json:"bid_size"`
	Ask         decimal.Decimal `json:"ask"`
	AskSize     int64           `json:"ask_size"`
	NotFound    bool            `json:"not_found,omitempty"`
	EmptySymbol bool            `json:"empty_symbol,omitempty"`
	Detail      string          `json:"detail,omitempty"`
	FetchedAt   time.Time       `json:"fetched_at"`

	// Raw is the provider payload the quote was decoded from.
	Raw json.RawMessage `json:"-" swaggerignore:"true"`
}

// Side returns the price and size a trade of type t is matched against:
// the ask for a BUY and the bid for a SELL.
func (q *Quote) Side(t entity.OrderType) (decimal.Decimal, int64) {
	if t == entity.OrderTypeSell {
		return q.Bid, q.BidSize
	}
	return q.Ask, q.AskSize
}

// Snapshot returns the JSON stored next to an order.
func (q *Quote) Snapshot() []byte {
	if len(q.Raw) > 0 {
		return q.Raw
	}
	b, err := json.Marshal(q)
	if err != nil {
		return nil
	}
	return b
}

// FlexibleString accepts a JSON string, number or null.
type FlexibleString string

func (f *FlexibleString) UnmarshalJSON(b []byte) error {
	raw := strings.TrimSpace(string(b))
	if raw == "null" {
		*f = ""
		return nil
	}
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = FlexibleString(s)
		return nil
	}
	*f = FlexibleString(raw)
	return nil
}

// BenzingaQuoteResponse is the payload of the Benzinga stock endpoint.
// A "status" key means the symbol does not exist, a "message" key means the
// queried symbol was empty or malformed.
type BenzingaQuoteResponse struct {
	Status   *string        `json:"status"`
	Msg      string         `json:"msg"`
	Message  *string        `json:"message"`
	Symbol   FlexibleString `json:"symbol"`
	Name     FlexibleString `json:"name"`
	Industry FlexibleString `json:"industry"`
	Exchange FlexibleString `json:"exchange"`
	Sector   FlexibleString `json:"sector"`
	Price    FlexibleString `json:"price"`
	Bid      FlexibleString `json:"bid"`
	BidSize  FlexibleString `json:"bidsize"`
	Ask      FlexibleString `json:"ask"`
	AskSize  FlexibleString `json:"asksize"`
}

// ToQuote converts the payload into a Quote.
func (r *BenzingaQuoteResponse) ToQuote() (*Quote, error) {
	if r.Status != nil {
		return &Quote{Symbol: string(r.Symbol), NotFound: true, Detail: r.Msg}, nil
	}
	if r.Message != nil {
		return &Quote{Symbol: string(r.Symbol), EmptySymbol: true, Detail: *r.Message}, nil
	}

	quote := &Quote{
		Symbol:   strings.ToUpper(string(r.Symbol)),
		Name:     string(r.Name),
		Industry: string(r.Industry),
		Exchange: string(r.Exchange),
		Sector:   string(r.Sector),
	}

	var err error
	if quote.Price, err = parseDecimal("price", r.Price); err != nil {
		return nil, err
	}
	if quote.Bid, err = parseDecimal("bid", r.Bid); err != nil {
		return nil, err
	}
	if quote.Ask, err = parseDecimal("ask", r.Ask); err != nil {
		return nil, err
	}
	if quote.BidSize, err = parseSize("bidsize", r.BidSize); err != nil {
		return nil, err
	}
	if quote.AskSize, err = parseSize("asksize", r.AskSize); err != nil {
		return nil, err
	}
	return quote, nil
}

func parseDecimal(field string, v FlexibleString) (decimal.Decimal, error) {
	if v == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(string(v))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s %q: %w", field, v, err)
	}
	if !d.Equal(d.Round(PriceScale)) {
		return decimal.Zero, fmt.Errorf("invalid %s %q: more than %d decimal places", field, v, PriceScale)
	}
	return d, nil
}

func parseSize(field string, v FlexibleString) (int64, error) {
	if v == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(string(v), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", field, v, err)
	}
	return n, nil
}
