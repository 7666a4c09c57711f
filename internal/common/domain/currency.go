package domain

// Supported currency codes.
const (
	CurrencyNOK = "NOK"
	CurrencyEUR = "EUR"
	CurrencyUSD = "USD"
)
