package services

import (
	"math"
	"testing"
	"time"
)

func d(y int, m time.Month, day int) time.Time { return time.Date(y, m, day, 0, 0, 0, 0, time.UTC) }

func TestYearsBefore_ClampsLeapDay(t *testing.T) {
	cases := []struct {
		day  time.Time
		n    int
		want time.Time
	}{
		{d(2024, 6, 15), 18, d(2006, 6, 15)},
		{d(2024, 2, 29), 18, d(2006, 2, 28)},
		{d(2024, 2, 29), 4, d(2020, 2, 29)},
		{d(2025, 3, 1), 18, d(2007, 3, 1)},
	}
	for _, c := range cases {
		if got := yearsBefore(c.day, c.n); !got.Equal(c.want) {
			t.Fatalf("yearsBefore(%s,%d) = %s; want %s", c.day.Format("2006-01-02"), c.n, got.Format("2006-01-02"), c.want.Format("2006-01-02"))
		}
	}
}

func TestBirthBounds(t *testing.T) {
	today := time.Date(2024, 6, 15, 13, 30, 0, 0, time.UTC)

	latest, earliest := birthBounds(today, nil, nil)
	if !latest.Equal(d(2006, 6, 15)) || earliest != nil {
		t.Fatalf("adult only: latest=%v earliest=%v", latest, earliest)
	}

	// A younger minAge never loosens the adult rule.
	latest, _ = birthBounds(today, intp(16), nil)
	if !latest.Equal(d(2006, 6, 15)) {
		t.Fatalf("minAge below 18 must keep the adult bound, got %v", latest)
	}

	latest, earliest = birthBounds(today, intp(25), intp(30))
	if !latest.Equal(d(1999, 6, 15)) {
		t.Fatalf("minAge 25: latest=%v", latest)
	}
	if earliest == nil || !earliest.Equal(d(1993, 6, 15)) {
		t.Fatalf("maxAge 30: earliest=%v", earliest)
	}
	// Someone born 1993-06-16 is 30 today and stays eligible; 1993-06-15 is 31.
	if !d(1993, 6, 16).After(*earliest) || d(1993, 6, 15).After(*earliest) {
		t.Fatalf("maxAge bound must be exclusive at %v", earliest)
	}
}

func TestHaversineKm(t *testing.T) {
	if got := haversineKm(0, 0, 0, 0); got != 0 {
		t.Fatalf("same point distance = %v", got)
	}
	// Paris -> London is about 344 km.
	got := haversineKm(48.8566, 2.3522, 51.5074, -0.1278)
	if math.Abs(got-343.5) > 2 {
		t.Fatalf("Paris-London = %.1f km", got)
	}
	// One degree of latitude is about 111.2 km.
	if got := haversineKm(0, 0, 1, 0); math.Abs(got-111.19) > 0.1 {
		t.Fatalf("1 deg lat = %.2f km", got)
	}
}
