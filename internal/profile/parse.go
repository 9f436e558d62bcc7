package profile

import (
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/KaramelBytes/autoeda/internal/config"
	"github.com/KaramelBytes/autoeda/internal/dataset"
	"github.com/shopspring/decimal"
)

// Parsers holds the pattern recognizers derived from configuration. It is
// read-only after construction and safe for concurrent use.
type Parsers struct {
	// Numeric locale. If DecimalSeparator is 0, auto-detect per value.
	DecimalSeparator   rune
	ThousandsSeparator rune
	// Layouts are tried in order; first match wins.
	Layouts []string
	trues   map[string]struct{}
	falses  map[string]struct{}
}

// NewParsers builds parsers from the type_inference section.
func NewParsers(cfg *config.Config) *Parsers {
	ti := cfg.TypeInference
	p := &Parsers{
		DecimalSeparator:   firstRune(ti.DecimalSeparator),
		ThousandsSeparator: firstRune(ti.ThousandsSeparator),
		Layouts:            append([]string(nil), ti.DateFormats...),
		trues:              tokenSet(ti.BooleanTrueTokens),
		falses:             tokenSet(ti.BooleanFalseTokens),
	}
	return p
}

func firstRune(s string) rune {
	for _, r := range s {
		return r
	}
	return 0
}

func tokenSet(toks []string) map[string]struct{} {
	m := make(map[string]struct{}, len(toks))
	for _, t := range toks {
		m[strings.ToLower(strings.TrimSpace(t))] = struct{}{}
	}
	return m
}

// Number parses v as a finite number. Native numeric kinds pass through;
// strings accept decimal or scientific notation with common thousands separators.
func (p *Parsers) Number(v any) (float64, bool) {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int:
		return float64(x), true
	case int8:
		return float64(x), true
	case int16:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint:
		return float64(x), true
	case uint8:
		return float64(x), true
	case uint16:
		return float64(x), true
	case uint32:
		return float64(x), true
	case uint64:
		return float64(x), true
	case string:
		return p.parseNumeric(x)
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

var thousandsGrouped = map[rune]*regexp.Regexp{
	',':  regexp.MustCompile(`^[-+]?\d{1,3}(,\d{3})+(\.\d+)?$`),
	'.':  regexp.MustCompile(`^[-+]?\d{1,3}(\.\d{3}){2,}(,\d+)?$`),
	' ':  regexp.MustCompile(`^[-+]?\d{1,3}( \d{3})+([.,]\d+)?$`),
	'\'': regexp.MustCompile(`^[-+]?\d{1,3}('\d{3})+([.,]\d+)?$`),
}

func (p *Parsers) parseNumeric(s string) (float64, bool) {
	raw := strings.ReplaceAll(s, "\u00a0", " ")
	raw = strings.TrimSpace(raw)
	raw = strings.TrimSpace(strings.TrimSuffix(raw, "%"))
	if raw == "" {
		return 0, false
	}
	dec := p.DecimalSeparator
	thou := p.ThousandsSeparator
	if dec == 0 {
		cpos := strings.LastIndex(raw, ",")
		dpos := strings.LastIndex(raw, ".")
		switch {
		case cpos >= 0 && dpos >= 0:
			if cpos > dpos {
				dec, thou = ',', '.'
			} else {
				dec, thou = '.', ','
			}
		case cpos >= 0:
			if thousandsGrouped[','].MatchString(raw) {
				dec, thou = '.', ','
			} else {
				dec = ','
			}
		case dpos >= 0 && thousandsGrouped['.'].MatchString(raw):
			dec, thou = ',', '.'
		default:
			dec = '.'
		}
	}
	if thou == 0 {
		for _, sep := range []rune{' ', '\''} {
			if sep != dec && thousandsGrouped[sep].MatchString(raw) {
				raw = strings.ReplaceAll(raw, string(sep), "")
			}
		}
	} else if thou != dec {
		raw = strings.ReplaceAll(raw, string(thou), "")
	}
	if dec != '.' {
		if strings.Contains(raw, ".") {
			return 0, false
		}
		raw = strings.ReplaceAll(raw, string(dec), ".")
	}
	// decimal rejects NaN/Inf spellings and hex floats that strconv would accept
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return 0, false
	}
	f, _ := d.Float64()
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

// Time parses v as a timestamp using the configured layouts, first match wins.
func (p *Parsers) Time(v any) (time.Time, bool) {
	switch x := v.(type) {
	case time.Time:
		return x, true
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return time.Time{}, false
		}
		for _, l := range p.Layouts {
			if t, err := time.Parse(l, s); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

// Bool matches v against the boolean token sets, case-insensitively.
func (p *Parsers) Bool(v any) (value bool, ok bool) {
	if b, isBool := v.(bool); isBool {
		return b, true
	}
	if _, isTime := v.(time.Time); isTime {
		return false, false
	}
	s := strings.ToLower(dataset.Text(v))
	if _, ok := p.trues[s]; ok {
		return true, true
	}
	if _, ok := p.falses[s]; ok {
		return false, true
	}
	return false, false
}
