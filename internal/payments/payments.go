package payments

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/ADRCoding/college-bites-delivery/pkg/errors"
)

// Payments are simulated: orders carry an opaque payment handle that the
// client echoes back to confirm, and the quote is a flat per-unit price.

const paymentIDSuffixLen = 8

var paymentIDCharset = []rune("abcdefghijklmnopqrstuvwxyz0123456789")

// UnitPrice is the flat price per unit in dollars.
var UnitPrice = decimal.NewFromInt(10)

// QuoteAmountCents returns the total charge for the quantity in cents.
func QuoteAmountCents(quantity int) (int, error) {
	if quantity <= 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	cents := UnitPrice.
		Mul(decimal.NewFromInt(int64(quantity))).
		Mul(decimal.NewFromInt(100))
	if !cents.IsInteger() {
		return 0, pkgerrors.New(pkgerrors.CodeInternal, "quote produced fractional cents")
	}
	return int(cents.IntPart()), nil
}

// NewPaymentID mints a payment handle in the form payment_<unix-ms>_<rand8>.
func NewPaymentID(now time.Time) (string, error) {
	suffix, err := randomSuffix(paymentIDSuffixLen)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate payment id")
	}
	return fmt.Sprintf("payment_%d_%s", now.UnixMilli(), suffix), nil
}

func randomSuffix(length int) (string, error) {
	var sb strings.Builder
	max := big.NewInt(int64(len(paymentIDCharset)))
	for i := 0; i < length; i++ {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		sb.WriteRune(paymentIDCharset[idx.Int64()])
	}
	return sb.String(), nil
}
