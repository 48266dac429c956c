// market/instruments.go
package market

import (
	"fmt"
	"strings"
)

type Kind string

const (
	KindFX     Kind = "fx"
	KindMetal  Kind = "metal"
	KindCrypto Kind = "crypto"
	KindIndex  Kind = "index"
	KindStock  Kind = "stock"
)

// DefaultContractSize is a standard FX lot.
const DefaultContractSize = 100_000

// Instrument is what the calculators need to know about a symbol.
type Instrument struct {
	Name          string
	Kind          Kind
	BaseCurrency  string
	QuoteCurrency string
	ContractSize  float64
}

type Pair struct {
	Base  string
	Quote string
}

var contractSizes = map[string]float64{
	"XAUUSD":  100,
	"XAGUSD":  5000,
	"BTCUSDT": 1,
	"ETHUSDT": 1,
}

// Metals lists the spot metals we can price.
var Metals = map[string]bool{
	"XAUUSD": true,
	"XAGUSD": true,
}

// Indices maps the cash indices we can price to their quote currency.
var Indices = map[string]string{
	"GER40":  "EUR",
	"SPX500": "USD",
}

// CryptoBases are the coins the crypto feed is asked about.
var CryptoBases = map[string]bool{
	"BTC": true,
	"ETH": true,
}

// Stocks are exchange-listed shares quoted in the deposit currency.
var Stocks = map[string]bool{}

func init() {
	for _, s := range strings.Fields(`
		SBER ROSN LKOH NVTK GAZP PLZL SIBN GMKN YDEX TATN
		SNGS VTBR OZON TRNF T PHOR CHMF X5 NLMK AKRN
		UNAC RUAL MTSS PIKK MOEX SVCB MAGN MGNT ALRS IRAO
		VSMO ENPG IRKT BANE CBOM POLY AFLT RTKM HYDR FLOT
		LENT BSPB HEAD FESH NMTP ROSB NKNC AFKS FIXP LSNG`) {
		Stocks[s] = true
	}
}

// NormalizePair trims and upper-cases a symbol. It is the key used for
// price lookups.
func NormalizePair(pair string) string {
	return strings.ToUpper(strings.TrimSpace(pair))
}

// Compact drops the slash: "EUR/USD" → "EURUSD".
func Compact(pair string) string {
	return strings.Replace(NormalizePair(pair), "/", "", 1)
}

// ParseFX splits "EUR/USD" or "EURUSD".
func ParseFX(pair string) (Pair, bool) {
	p := NormalizePair(pair)
	if p == "" {
		return Pair{}, false
	}
	if base, quote, ok := strings.Cut(p, "/"); ok {
		if base == "" || quote == "" {
			return Pair{}, false
		}
		return Pair{Base: base, Quote: quote}, true
	}
	if len(p) == 6 {
		return Pair{Base: p[:3], Quote: p[3:]}, true
	}
	return Pair{}, false
}

// ParseCrypto recognizes BTC and ETH against USDT or USD.
func ParseCrypto(pair string) (Pair, bool) {
	p := Compact(pair)
	for _, quote := range []string{"USDT", "USD"} {
		if base, ok := strings.CutSuffix(p, quote); ok {
			if !CryptoBases[base] {
				return Pair{}, false
			}
			return Pair{Base: base, Quote: quote}, true
		}
	}
	return Pair{}, false
}

// KindOf classifies a symbol, checking the fixed lists before the parsers.
func KindOf(pair string) (Kind, bool) {
	c := Compact(pair)
	switch {
	case c == "":
		return "", false
	case Metals[c]:
		return KindMetal, true
	case Indices[c] != "":
		return KindIndex, true
	case Stocks[c]:
		return KindStock, true
	}
	if _, ok := ParseCrypto(c); ok {
		return KindCrypto, true
	}
	if _, ok := ParseFX(pair); ok {
		return KindFX, true
	}
	return "", false
}

// ContractSize returns units per lot: shares trade singly, a few symbols have
// their own size, everything else is a standard lot.
func ContractSize(pair string) float64 {
	c := Compact(pair)
	if Stocks[c] {
		return 1
	}
	if s, ok := contractSizes[c]; ok {
		return s
	}
	return DefaultContractSize
}

// Lookup resolves a symbol for the calculators. Stocks are assumed to be
// quoted in the deposit currency.
func Lookup(pair, depositCurrency string) (Instrument, error) {
	name := NormalizePair(pair)
	inst := Instrument{Name: name, ContractSize: ContractSize(name)}

	c := Compact(name)
	if Stocks[c] {
		inst.Kind = KindStock
		inst.BaseCurrency = c
		inst.QuoteCurrency = strings.ToUpper(depositCurrency)
		return inst, nil
	}

	kind, ok := KindOf(name)
	if !ok {
		return Instrument{}, fmt.Errorf("unknown instrument %q", pair)
	}
	inst.Kind = kind
	if kind == KindIndex {
		inst.BaseCurrency = c
		inst.QuoteCurrency = Indices[c]
		return inst, nil
	}

	var p Pair
	switch {
	case strings.Contains(name, "/"):
		p, _ = ParseFX(name)
	case strings.HasSuffix(c, "USDT"):
		p = Pair{Base: strings.TrimSuffix(c, "USDT"), Quote: "USDT"}
	case strings.HasSuffix(c, "USD"):
		p = Pair{Base: strings.TrimSuffix(c, "USD"), Quote: "USD"}
	case len(c) == 6:
		p, _ = ParseFX(c)
	default:
		return Instrument{}, fmt.Errorf("cannot split %q into base and quote", pair)
	}
	inst.BaseCurrency, inst.QuoteCurrency = p.Base, p.Quote
	return inst, nil
}
