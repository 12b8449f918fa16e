package report

import (
	"encoding/json"
	"fmt"
	"html/template"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// FuncMap returns the helpers available to report templates.
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"datetime":   Datetime,
		"elapsed":    Elapsed,
		"basePairs":  BasePairs,
		"get":        Get,
		"default":    Default,
		"addCommas":  AddCommas,
		"inlineHTML": InlineHTML,
		"join":       strings.Join,
		"inc":        func(i int) int { return i + 1 },
	}
}

// Datetime formats like "March 5th 2024, 4:07:09pm". Numbers are Unix
// milliseconds; strings are RFC 3339 or plain dates.
func Datetime(v any) string {
	t, ok := toTime(v)
	if !ok {
		return "Invalid date"
	}
	return t.Format("January ") + ordinal(t.Day()) + t.Format(" 2006, 3:04:05pm")
}

func toTime(v any) (time.Time, bool) {
	switch val := v.(type) {
	case time.Time:
		return val, !val.IsZero()
	case *time.Time:
		if val == nil {
			return time.Time{}, false
		}
		return *val, !val.IsZero()
	case string:
		s := strings.TrimSpace(val)
		for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02 15:04:05", "2006-01-02", "2006/01/02"} {
			if t, err := time.Parse(layout, s); err == nil {
				return t, true
			}
		}
		return time.Time{}, false
	}
	if f, ok := toFloat(v); ok {
		return time.UnixMilli(int64(f)).UTC(), true
	}
	return time.Time{}, false
}

func ordinal(day int) string {
	suffix := "th"
	switch {
	case day%100 >= 11 && day%100 <= 13:
	case day%10 == 1:
		suffix = "st"
	case day%10 == 2:
		suffix = "nd"
	case day%10 == 3:
		suffix = "rd"
	}
	return strconv.Itoa(day) + suffix
}

// Elapsed renders a run time in seconds using its two largest units.
func Elapsed(seconds any) string {
	f, ok := toFloat(seconds)
	if !ok || f <= 0 {
		return "0"
	}
	total := int64(math.Round(f))
	days := total / 86400
	hours := total % 86400 / 3600
	mins := total % 3600 / 60
	secs := total % 60
	switch {
	case days > 0:
		return fmt.Sprintf("%d days and %d hours", days, hours)
	case hours > 0:
		return fmt.Sprintf("%d hours and %d minutes and %d seconds", hours, mins, secs)
	case mins > 0:
		return fmt.Sprintf("%d minutes and %d seconds", mins, secs)
	case secs > 0:
		return fmt.Sprintf("%d seconds", secs)
	}
	return "0"
}

var basePairUnits = []string{"Bp", "Kbps", "Mbp", "Gb"}

// BasePairs scales a length to Bp, Kbps, Mbp or Gb, rounding to precision
// decimals (default 2). Non-numeric strings and lists use their length.
func BasePairs(v any, precision ...int) string {
	prec := 2
	if len(precision) > 0 && precision[0] >= 0 {
		prec = precision[0]
	}
	n, ok := toFloat(v)
	if !ok {
		n = float64(length(v))
	}
	if n <= 0 {
		return "0 Bp"
	}
	for i := len(basePairUnits) - 1; i >= 0; i-- {
		size := math.Pow10(3 * i)
		if size <= n+1 {
			scaled := decimal.NewFromFloat(n).Div(decimal.New(1, int32(3*i))).Round(int32(prec))
			return scaled.String() + " " + basePairUnits[i]
		}
	}
	return "0 Bp"
}

// Get returns field key of the first element of objs whose name equals
// match, or the fallback ("-" when none is given).
func Get(key, match string, objs any, fallback ...string) any {
	def := "-"
	if len(fallback) > 0 {
		def = fallback[0]
	}
	rv := reflect.ValueOf(objs)
	if !rv.IsValid() || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
		return def
	}
	for i := 0; i < rv.Len(); i++ {
		item := rv.Index(i).Interface()
		name, ok := field(item, "name")
		if !ok || fmt.Sprint(name) != match {
			continue
		}
		if val, ok := field(item, key); ok {
			return val
		}
		return def
	}
	return def
}

// Default returns item unless it is empty, in which case fallback.
func Default(item, fallback any) any {
	if truthy(item) {
		return item
	}
	return fallback
}

// AddCommas inserts thousands separators; nil renders the fallback ("-").
func AddCommas(num any, fallback ...string) string {
	def := "-"
	if len(fallback) > 0 {
		def = fallback[0]
	}
	if num == nil {
		return def
	}
	if s, ok := num.(string); ok {
		if _, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err != nil {
			return s
		}
	}
	f, ok := toFloat(num)
	if !ok {
		return fmt.Sprint(num)
	}
	if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
		return humanize.Comma(int64(f))
	}
	return humanize.Commaf(f)
}

func toFloat(v any) (float64, bool) {
	switch val := v.(type) {
	case nil:
		return 0, false
	case int:
		return float64(val), true
	case int32:
		return float64(val), true
	case int64:
		return float64(val), true
	case uint:
		return float64(val), true
	case uint64:
		return float64(val), true
	case float32:
		return float64(val), true
	case float64:
		if math.IsNaN(val) {
			return 0, false
		}
		return val, true
	case json.Number:
		f, err := val.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil || math.IsNaN(f) {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

func length(v any) int {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String, reflect.Slice, reflect.Array, reflect.Map:
		return rv.Len()
	}
	return 0
}

func truthy(v any) bool {
	if v == nil {
		return false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String, reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() > 0
	case reflect.Bool:
		return rv.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() != 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint() != 0
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		return f != 0 && !math.IsNaN(f)
	case reflect.Pointer, reflect.Interface:
		return !rv.IsNil()
	}
	return true
}

// field reads key from a map or a struct (matching field name or json tag,
// case-insensitively).
func field(item any, key string) (any, bool) {
	rv := reflect.ValueOf(item)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, false
		}
		val := rv.MapIndex(reflect.ValueOf(key).Convert(rv.Type().Key()))
		if !val.IsValid() {
			return nil, false
		}
		return val.Interface(), true
	case reflect.Struct:
		t := rv.Type()
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			if !f.IsExported() {
				continue
			}
			tag, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if strings.EqualFold(f.Name, key) || (tag != "" && tag == key) {
				return rv.Field(i).Interface(), true
			}
		}
	}
	return nil, false
}
