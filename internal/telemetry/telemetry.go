// Aerocite - Drone Flight Telemetry and Violation Decision Pipeline
// Copyright 2026 Aerocite contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aerocite/aerocite

// Package telemetry derives per-capture motion metrics from an ordered
// sequence of geotagged captures. Derivation is pure and deterministic:
// the same capture sequence always yields the same metrics, with no side
// effects, so a batch can be replayed safely.
//
// The sequence is processed strictly in manifest order; each step depends
// on the previous capture, which is why derivation is inherently
// sequential.
package telemetry

import (
	"fmt"
	"math"
	"time"

	"github.com/aerocite/aerocite/internal/models"
)

// earthRadiusMeters is the mean Earth radius used by the haversine formula.
const earthRadiusMeters = 6371000.0

// confidenceChecks is the number of per-capture data-quality checks that
// feed the confidence score.
const confidenceChecks = 3

// Metrics holds the derived motion telemetry for one capture. Confidence is
// always one of {0, 1/3, 2/3, 1}.
type Metrics struct {
	FileKey        string
	DistanceMeters float64
	SpeedKmh       float64
	Confidence     float64
}

// Derive computes one Metrics per capture.
//
// The first capture of the sequence gets zero distance and speed. Each
// subsequent capture gets the haversine great-circle distance from its
// predecessor and the implied speed. A non-positive elapsed time between
// consecutive timestamps degrades distance and speed to zero instead of
// failing; the same applies when either timestamp did not parse. Only a
// blank FileKey or blank TakenAt is irrecoverable, returning
// models.ErrInvalidInput for the whole batch.
func Derive(captures []models.Capture) ([]Metrics, error) {
	out := make([]Metrics, 0, len(captures))

	var prev *models.Capture
	var prevAt *time.Time

	for i, cur := range captures {
		if cur.FileKey == "" {
			return nil, fmt.Errorf("%w: capture[%d]: file_key is required", models.ErrInvalidInput, i)
		}
		if cur.TakenAt == "" {
			return nil, fmt.Errorf("%w: capture file_key=%s: taken_at is required", models.ErrInvalidInput, cur.FileKey)
		}

		curAt := parseTime(cur.TakenAt)

		var distanceMeters, speedKmh float64
		if prev != nil && prevAt != nil && curAt != nil {
			elapsed := curAt.Sub(*prevAt).Seconds()
			if elapsed > 0 {
				distanceMeters = haversineMeters(prev.Latitude, prev.Longitude, cur.Latitude, cur.Longitude)
				speedKmh = distanceMeters / elapsed * 3.6
			}
		}

		passed := 0
		if cur.FileKey != "" {
			passed++
		}
		if curAt != nil {
			passed++
		}
		if validLatLon(cur.Latitude, cur.Longitude) {
			passed++
		}

		out = append(out, Metrics{
			FileKey:        cur.FileKey,
			DistanceMeters: distanceMeters,
			SpeedKmh:       speedKmh,
			Confidence:     float64(passed) / float64(confidenceChecks),
		})

		prev = &captures[i]
		prevAt = curAt
	}

	return out, nil
}

// parseTime accepts RFC3339 timestamps, with or without sub-second
// precision. A nil return means the timestamp is unusable, which degrades
// confidence and zeroes the adjacent distance/speed pair.
func parseTime(s string) *time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return nil
	}
	return &t
}

func validLatLon(lat, lon float64) bool {
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

// haversineMeters returns the great-circle distance between two points.
func haversineMeters(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	dPhi := (lat2 - lat1) * math.Pi / 180
	dLambda := (lon2 - lon1) * math.Pi / 180

	sinPhi := math.Sin(dPhi / 2)
	sinLambda := math.Sin(dLambda / 2)

	a := sinPhi*sinPhi + math.Cos(phi1)*math.Cos(phi2)*sinLambda*sinLambda
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMeters * c
}
