package quotes

import (
	"encoding/json"
	"fmt"

	"github.com/PaesslerAG/jsonpath"
	"github.com/etnz/mirror"
	"github.com/shopspring/decimal"
)

// lookup evaluates path in jobj and returns its first result.
func lookup(path string, jobj any) (any, error) {
	jval, err := jsonpath.Get(path, jobj)
	if err != nil {
		return nil, err
	}
	// jsonpath returns either a single value or a list of them depending on the path
	if jlist, ok := jval.([]any); ok {
		if len(jlist) == 0 {
			return nil, fmt.Errorf("%s: no value", path)
		}
		jval = jlist[0]
	}
	return jval, nil
}

// price reads the price at path. A null or zero price is reported as missing.
func price(path string, jobj any) (mirror.Money, bool, error) {
	jval, err := lookup(path, jobj)
	if err != nil {
		return mirror.Money{}, false, err
	}
	var d decimal.Decimal
	switch v := jval.(type) {
	case nil:
		return mirror.Money{}, false, nil
	case json.Number:
		d, err = decimal.NewFromString(v.String())
	case string:
		d, err = decimal.NewFromString(v)
	case float64:
		d = decimal.NewFromFloat(v)
	default:
		return mirror.Money{}, false, fmt.Errorf("%s: not a number: %v", path, jval)
	}
	if err != nil {
		return mirror.Money{}, false, fmt.Errorf("%s: %w", path, err)
	}
	if !d.IsPositive() {
		return mirror.Money{}, false, nil
	}
	return mirror.Dollars(d), true, nil
}
