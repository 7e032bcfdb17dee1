// Package models defines data structures for riskgate
package models

import "github.com/shopspring/decimal"

func init() {
	// Numerics travel as JSON numbers, matching what clients send.
	decimal.MarshalJSONWithoutQuotes = true
}
