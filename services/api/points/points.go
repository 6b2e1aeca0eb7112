package points

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// RawRecord is one match record as emitted by the engine. Its keys are not
// contractually fixed.
type RawRecord map[string]any

// Point is a match record resolved to canonical fields. Temperature is in
// degrees Celsius and pressure in atmospheres.
type Point struct {
	ID          any     `json:"id"`
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	Temperature float64 `json:"temperature"`
	Pressure    float64 `json:"pressure"`
}

// Alias tables, probed in order.
var (
	TemperatureKeys = []string{"tmp2m", "temperature", "T", "t", "tmp"}
	PressureKeys    = []string{"press", "pressure", "P", "p", "pres"}
)

// Normalize resolves a raw record into a Point. It never fails: fields that
// cannot be resolved default to 0.
func Normalize(rec RawRecord) Point {
	return Point{
		ID:          resolveID(rec["id"]),
		Lat:         toFloat(rec["lat"]),
		Lon:         NormalizeLon(toFloat(rec["lon"])),
		Temperature: firstOf(rec, TemperatureKeys),
		Pressure:    firstOf(rec, PressureKeys),
	}
}

// NormalizeAll normalizes records keeping their order.
func NormalizeAll(recs []RawRecord) []Point {
	out := make([]Point, 0, len(recs))
	for _, rec := range recs {
		out = append(out, Normalize(rec))
	}
	return out
}

// NormalizeLon maps a longitude in degrees into (-180, 180].
func NormalizeLon(lon float64) float64 {
	if math.IsNaN(lon) || math.IsInf(lon, 0) {
		return 0
	}
	if lon > -180 && lon <= 180 {
		return lon
	}
	return lon - 360*math.Ceil((lon-180)/360)
}

// firstOf returns the first present, non-null value among keys.
func firstOf(rec RawRecord, keys []string) float64 {
	for _, k := range keys {
		if v, ok := rec[k]; ok && v != nil {
			return toFloat(v)
		}
	}
	return 0
}

func toFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return finite(n)
	case float32:
		return finite(float64(n))
	case int:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0
		}
		return finite(f)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0
		}
		return finite(f)
	case bool:
		if n {
			return 1
		}
		return 0
	default:
		return 0
	}
}

func finite(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// resolveID keeps string and numeric ids; anything else is dropped.
func resolveID(v any) any {
	switch id := v.(type) {
	case nil:
		return nil
	case string:
		return id
	case json.Number:
		if f, err := id.Float64(); err == nil {
			return f
		}
		return id.String()
	case float64, float32, int, int32, int64:
		return toFloat(id)
	default:
		return nil
	}
}
