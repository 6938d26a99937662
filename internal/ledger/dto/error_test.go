package dto

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTradeErrorIs(t *testing.T) {
	err := ErrPriceChanged.Withf("ask moved from %s to %s", "16.68", "16.70")

	assert.True(t, errors.Is(err, ErrPriceChanged))
	assert.False(t, errors.Is(err, ErrInsufficientFunds))
	assert.Equal(t, "ask moved from 16.68 to 16.70", err.Error())

	wrapped := fmt.Errorf("buy: %w", err)
	assert.True(t, errors.Is(wrapped, ErrPriceChanged))

	kind, ok := KindOf(wrapped)
	assert.True(t, ok)
	assert.Equal(t, KindPriceChanged, kind)
}

func TestTradeErrorWrap(t *testing.T) {
	cause := errors.New("dial tcp: i/o timeout")
	err := ErrQuoteUnavailable.Wrap(cause)

	assert.True(t, errors.Is(err, ErrQuoteUnavailable))
	assert.True(t, errors.Is(err, cause))
	assert.Contains(t, err.Error(), "i/o timeout")
	assert.Nil(t, ErrQuoteUnavailable.Err)
}

func TestKindOfPlainError(t *testing.T) {
	_, ok := KindOf(errors.New("boom"))
	assert.False(t, ok)
}
