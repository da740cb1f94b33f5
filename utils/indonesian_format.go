package utils

import (
	"math"
	"strconv"
	"strings"
	"time"
)

var indonesianMonths = []string{
	"Januari",
	"Februari",
	"Maret",
	"April",
	"Mei",
	"Juni",
	"Juli",
	"Agustus",
	"September",
	"Oktober",
	"November",
	"Desember",
}

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// ParseDate parses the date formats browsers and the store produce.
func ParseDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FormatIndonesianDate returns the long Indonesian form, e.g. "5 Maret 2024".
func FormatIndonesianDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return strconv.Itoa(t.Day()) + " " + indonesianMonths[int(t.Month())-1] + " " + strconv.Itoa(t.Year())
}

// FormatIndonesianDateString formats raw as a long Indonesian date, or returns
// "" when raw is empty or unparseable.
func FormatIndonesianDateString(raw string) string {
	t, ok := ParseDate(raw)
	if !ok {
		return ""
	}
	return FormatIndonesianDate(t)
}

// YearOf returns the four digit year of raw, or "".
func YearOf(raw string) string {
	t, ok := ParseDate(raw)
	if !ok {
		return ""
	}
	return strconv.Itoa(t.Year())
}

// ParseAmount reads a rupiah amount written as "1500000", "1.500.000",
// "Rp 1.500.000,50" or "1500000.50".
func ParseAmount(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(strings.TrimPrefix(s, "Rp"), "rp")
	s = strings.ReplaceAll(strings.TrimSpace(s), " ", "")
	if s == "" {
		return 0, false
	}

	switch {
	case strings.Contains(s, ","):
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	case strings.Count(s, ".") > 1 || isThousandsGrouped(s):
		s = strings.ReplaceAll(s, ".", "")
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return 0, false
	}
	return v, true
}

func isThousandsGrouped(s string) bool {
	i := strings.IndexByte(s, '.')
	return i > 0 && i <= 3 && len(s)-i-1 == 3
}

// FormatRupiah renders raw as "Rp 1.500.000". Values that are not numbers are
// returned trimmed and unchanged.
func FormatRupiah(raw string) string {
	v, ok := ParseAmount(raw)
	if !ok {
		return strings.TrimSpace(raw)
	}

	cents := int64(math.Round(v * 100))
	whole := strconv.FormatInt(cents/100, 10)

	var b strings.Builder
	b.WriteString("Rp ")
	for i, ch := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(ch)
	}
	if frac := cents % 100; frac > 0 {
		b.WriteByte(',')
		if frac < 10 {
			b.WriteByte('0')
		}
		b.WriteString(strconv.FormatInt(frac, 10))
	}
	return b.String()
}

var indonesianDigits = []string{"", "satu", "dua", "tiga", "empat", "lima", "enam", "tujuh", "delapan", "sembilan", "sepuluh", "sebelas"}

// Terbilang spells an amount in Indonesian words followed by "rupiah".
// Values that are not numbers yield "".
func Terbilang(raw string) string {
	v, ok := ParseAmount(raw)
	if !ok {
		return ""
	}
	n := int64(v)
	if n == 0 {
		return "nol rupiah"
	}
	return strings.Join(strings.Fields(spell(n)), " ") + " rupiah"
}

func spell(n int64) string {
	switch {
	case n < 12:
		return indonesianDigits[n]
	case n < 20:
		return spell(n-10) + " belas"
	case n < 100:
		return spell(n/10) + " puluh " + spell(n%10)
	case n < 200:
		return "seratus " + spell(n-100)
	case n < 1000:
		return spell(n/100) + " ratus " + spell(n%100)
	case n < 2000:
		return "seribu " + spell(n-1000)
	case n < 1_000_000:
		return spell(n/1000) + " ribu " + spell(n%1000)
	case n < 1_000_000_000:
		return spell(n/1_000_000) + " juta " + spell(n%1_000_000)
	case n < 1_000_000_000_000:
		return spell(n/1_000_000_000) + " miliar " + spell(n%1_000_000_000)
	default:
		return spell(n/1_000_000_000_000) + " triliun " + spell(n%1_000_000_000_000)
	}
}
