package points

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		name     string
		input    RawRecord
		expected Point
	}{
		{
			name:     "short aliases",
			input:    RawRecord{"tmp": 12.5, "pres": 0.98, "lat": 10.0, "lon": 170.0},
			expected: Point{Lat: 10, Lon: 170, Temperature: 12.5, Pressure: 0.98},
		},
		{
			name:     "engine native keys with gfs longitude",
			input:    RawRecord{"tmp2m": 21.3, "press": 1.01, "lat": -45.0, "lon": 270.0},
			expected: Point{Lat: -45, Lon: -90, Temperature: 21.3, Pressure: 1.01},
		},
		{
			name:     "priority order wins",
			input:    RawRecord{"tmp2m": 1.0, "temperature": 2.0, "T": 3.0, "press": 0.5, "pressure": 0.7, "lat": 0.0, "lon": 0.0},
			expected: Point{Temperature: 1, Pressure: 0.5},
		},
		{
			name:     "null alias is skipped",
			input:    RawRecord{"tmp2m": nil, "T": 4.0, "press": nil, "P": 0.9, "lat": 1.0, "lon": 2.0},
			expected: Point{Lat: 1, Lon: 2, Temperature: 4, Pressure: 0.9},
		},
		{
			name:     "numeric strings are coerced",
			input:    RawRecord{"t": "7.25", "p": " 1.5 ", "lat": "30", "lon": "-30"},
			expected: Point{Lat: 30, Lon: -30, Temperature: 7.25, Pressure: 1.5},
		},
		{
			name:     "missing fields default to zero",
			input:    RawRecord{"lat": 5.0},
			expected: Point{Lat: 5},
		},
		{
			name:     "string id carried",
			input:    RawRecord{"id": "m-7", "lat": 1.0, "lon": 1.0},
			expected: Point{ID: "m-7", Lat: 1, Lon: 1},
		},
		{
			name:     "numeric id carried",
			input:    RawRecord{"id": 42, "lat": 1.0, "lon": 1.0},
			expected: Point{ID: 42.0, Lat: 1, Lon: 1},
		},
		{
			name:     "unusable value defaults to zero",
			input:    RawRecord{"tmp": "warm", "lat": 1.0, "lon": 1.0},
			expected: Point{Lat: 1, Lon: 1},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Normalize(tc.input); !reflect.DeepEqual(got, tc.expected) {
				t.Fatalf("Normalize(%v) = %+v; want %+v", tc.input, got, tc.expected)
			}
		})
	}
}

func TestNormalizeJSONNumbers(t *testing.T) {
	dec := json.NewDecoder(strings.NewReader(`{"tmp2m": 12.5, "press": 0.98, "lat": 10, "lon": 350, "id": 3}`))
	dec.UseNumber()
	var rec RawRecord
	if err := dec.Decode(&rec); err != nil {
		t.Fatalf("decode: %v", err)
	}

	got := Normalize(rec)
	want := Point{ID: 3.0, Lat: 10, Lon: -10, Temperature: 12.5, Pressure: 0.98}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Normalize = %+v; want %+v", got, want)
	}
}

func TestNormalizeLon(t *testing.T) {
	cases := []struct {
		in, want float64
	}{
		{0, 0},
		{180, 180},
		{-180, 180},
		{190, -170},
		{359, -1},
		{360, 0},
		{540, 180},
		{-190, 170},
		{-540, 180},
	}

	for _, tc := range cases {
		if got := NormalizeLon(tc.in); got != tc.want {
			t.Errorf("NormalizeLon(%v) = %v; want %v", tc.in, got, tc.want)
		}
	}
}

func TestNormalizeAllKeepsOrder(t *testing.T) {
	got := NormalizeAll([]RawRecord{{"lat": 1.0}, {"lat": 2.0}, {"lat": 3.0}})
	if len(got) != 3 || got[0].Lat != 1 || got[1].Lat != 2 || got[2].Lat != 3 {
		t.Fatalf("NormalizeAll = %+v", got)
	}
	if got := NormalizeAll(nil); len(got) != 0 {
		t.Fatalf("NormalizeAll(nil) = %+v", got)
	}
}
