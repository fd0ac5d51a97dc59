package format

import (
	"strings"

	"github.com/shopspring/decimal"
)

// DecimalRU возвращает строку в формате "100.000.000,12345678":
// не больше places знаков после запятой, хвостовые нули срезаны, хотя бы один знак остаётся.
func DecimalRU(v decimal.Decimal, places int32) string {
	s := v.Round(places).StringFixed(places)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	intPart, frac, _ := strings.Cut(s, ".")
	frac = strings.TrimRight(frac, "0")
	if frac == "" {
		frac = "0"
	}

	out := groupThousands(intPart, '.') + "," + frac
	if neg && !v.Round(places).IsZero() {
		out = "-" + out
	}
	return out
}

// groupThousands расставляет sep между тысячами справа налево.
func groupThousands(s string, sep byte) string {
	if len(s) <= 3 {
		return s
	}
	var out []byte
	cnt := 0
	for i := len(s) - 1; i >= 0; i-- {
		out = append(out, s[i])
		cnt++
		if cnt%3 == 0 && i != 0 {
			out = append(out, sep)
		}
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return string(out)
}
