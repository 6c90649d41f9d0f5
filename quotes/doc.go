// Package quotes provides latest share prices from market data providers.
//
// FMP serves many symbols per request, Finnhub one symbol per request. Fallback chains them so
// that symbols missed by the first are asked to the second. All of them implement
// mirror.QuoteSource.
package quotes
