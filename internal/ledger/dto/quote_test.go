package dto

import (
	"encoding/json"
	"testing"

	"golang-stock-ledger/internal/entity"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fordPayload = `{
	"sector": "Capital Goods",
	"price": "16.68000",
	"volume": "17711536",
	"ask": "16.68000",
	"bid": "16.67000",
	"name": "Ford Motor Company",
	"asksize": "22",
	"industry": "Auto Manufacturing",
	"exchange": "NYSE",
	"eps": null,
	"bidsize": 6,
	"symbol": "F"
}`

func TestBenzingaQuoteResponseToQuote(t *testing.T) {
	var payload BenzingaQuoteResponse
	require.NoError(t, json.Unmarshal([]byte(fordPayload), &payload))

	quote, err := payload.ToQuote()
	require.NoError(t, err)

	assert.Equal(t, "F", quote.Symbol)
	assert.Equal(t, "Ford Motor Company", quote.Name)
	assert.Equal(t, "Auto Manufacturing", quote.Industry)
	assert.Equal(t, "NYSE", quote.Exchange)
	assert.True(t, quote.Ask.Equal(decimal.RequireFromString("16.68")))
	assert.True(t, quote.Bid.Equal(decimal.RequireFromString("16.67")))
	assert.Equal(t, int64(22), quote.AskSize)
	assert.Equal(t, int64(6), quote.BidSize)
	assert.False(t, quote.NotFound)
	assert.False(t, quote.EmptySymbol)

	price, size := quote.Side(entity.OrderTypeBuy)
	assert.True(t, price.Equal(quote.Ask))
	assert.Equal(t, int64(22), size)

	price, size = quote.Side(entity.OrderTypeSell)
	assert.True(t, price.Equal(quote.Bid))
	assert.Equal(t, int64(6), size)
}

func TestBenzingaQuoteResponseMarkers(t *testing.T) {
	var notFound BenzingaQuoteResponse
	require.NoError(t, json.Unmarshal([]byte(`{"status": "error", "msg": "Symbol not found"}`), &notFound))
	quote, err := notFound.ToQuote()
	require.NoError(t, err)
	assert.True(t, quote.NotFound)
	assert.Equal(t, "Symbol not found", quote.Detail)

	var empty BenzingaQuoteResponse
	require.NoError(t, json.Unmarshal([]byte(`{"message": "404: Not Found"}`), &empty))
	quote, err = empty.ToQuote()
	require.NoError(t, err)
	assert.True(t, quote.EmptySymbol)
	assert.False(t, quote.NotFound)
}

func TestBenzingaQuoteResponseMalformed(t *testing.T) {
	var payload BenzingaQuoteResponse
	require.NoError(t, json.Unmarshal([]byte(`{"symbol": "F", "ask": "n/a"}`), &payload))

	_, err := payload.ToQuote()
	assert.Error(t, err)
}

func TestBenzingaQuoteResponsePriceScale(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		wantErr bool
	}{
		{name: "trailing zeros", payload: `{"symbol": "F", "ask": "16.68000", "bid": "16.6700"}`},
		{name: "four places", payload: `{"symbol": "F", "ask": "16.6801", "bid": "16.67"}`},
		{name: "ask finer than storage", payload: `{"symbol": "F", "ask": "16.680001", "bid": "16.67"}`, wantErr: true},
		{name: "bid finer than storage", payload: `{"symbol": "F", "ask": "16.68", "bid": "16.67005"}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var payload BenzingaQuoteResponse
			require.NoError(t, json.Unmarshal([]byte(tt.payload), &payload))

			_, err := payload.ToQuote()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestBenzingaQuoteResponseMissingSide(t *testing.T) {
	var payload BenzingaQuoteResponse
	require.NoError(t, json.Unmarshal([]byte(`{"symbol": "F", "ask": null, "asksize": "22", "bid": "16.67", "bidsize": "6"}`), &payload))

	quote, err := payload.ToQuote()
	require.NoError(t, err)
	assert.True(t, quote.Ask.IsZero())
	assert.Equal(t, int64(22), quote.AskSize)
	assert.True(t, quote.Bid.Equal(decimal.RequireFromString("16.67")))
}

func TestQuoteSnapshot(t *testing.T) {
	raw := json.RawMessage(fordPayload)
	assert.Equal(t, []byte(raw), (&Quote{Raw: raw}).Snapshot())

	snapshot := (&Quote{Symbol: "F"}).Snapshot()
	assert.Contains(t, string(snapshot), `"symbol":"F"`)
}
