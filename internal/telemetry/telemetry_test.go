// Aerocite - Drone Flight Telemetry and Violation Decision Pipeline
// Copyright 2026 Aerocite contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aerocite/aerocite

package telemetry

import (
	"errors"
	"math"
	"testing"

	"github.com/aerocite/aerocite/internal/models"
)

func TestDerive_FirstCaptureZero(t *testing.T) {
	metrics, err := Derive([]models.Capture{
		{FileKey: "a.jpg", TakenAt: "2026-05-01T10:00:00Z", Latitude: 55, Longitude: 37},
	})
	if err != nil {
		t.Fatalf("Derive() error = %v", err)
	}
	if len(metrics) != 1 {
		t.Fatalf("len(metrics) = %d, want 1", len(metrics))
	}
	if metrics[0].DistanceMeters != 0 || metrics[0].SpeedKmh != 0 {
		t.Errorf("first capture distance/speed = %v/%v, want 0/0", metrics[0].DistanceMeters, metrics[0].SpeedKmh)
	}
	if metrics[0].Confidence != 1 {
		t.Errorf("confidence = %v, want 1", metrics[0].Confidence)
	}
}

func TestDerive_HaversineOneDegreeLatitude(t *testing.T) {
	// Two points one degree of latitude apart are ~111.19 km apart on the
	// great circle with R=6371km.
	metrics, err := Derive([]models.Capture{
		{FileKey: "a.jpg", TakenAt: "2026-05-01T10:00:00Z", Latitude: 55, Longitude: 37},
		{FileKey: "b.jpg", TakenAt: "2026-05-01T11:00:00Z", Latitude: 56, Longitude: 37},
	})
	if err != nil {
		t.Fatalf("Derive() error = %v", err)
	}

	got := metrics[1].DistanceMeters
	want := 111194.9
	if math.Abs(got-want) > 50 {
		t.Errorf("distance = %.1f m, want ~%.1f m", got, want)
	}

	// 111.19 km in one hour is ~111.19 km/h.
	if math.Abs(metrics[1].SpeedKmh-111.1949) > 0.1 {
		t.Errorf("speed = %.3f km/h, want ~111.195", metrics[1].SpeedKmh)
	}
}

func TestDerive_SpecScenario(t *testing.T) {
	// 0.001 degrees of latitude in 60 seconds: ~111.2m, ~6.67 km/h.
	metrics, err := Derive([]models.Capture{
		{FileKey: "a.jpg", TakenAt: "2026-05-01T10:00:00Z", Latitude: 55.0000, Longitude: 37.0000},
		{FileKey: "b.jpg", TakenAt: "2026-05-01T10:01:00Z", Latitude: 55.0010, Longitude: 37.0000},
	})
	if err != nil {
		t.Fatalf("Derive() error = %v", err)
	}

	if math.Abs(metrics[1].DistanceMeters-111.2) > 0.5 {
		t.Errorf("distance = %.2f m, want ~111.2 m", metrics[1].DistanceMeters)
	}
	if math.Abs(metrics[1].SpeedKmh-6.67) > 0.05 {
		t.Errorf("speed = %.3f km/h, want ~6.67", metrics[1].SpeedKmh)
	}
}

func TestDerive_NonMonotonicTimestampDegrades(t *testing.T) {
	tests := []struct {
		name    string
		takenAt string
	}{
		{"duplicate timestamp", "2026-05-01T10:00:00Z"},
		{"earlier timestamp", "2026-05-01T09:00:00Z"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			metrics, err := Derive([]models.Capture{
				{FileKey: "a.jpg", TakenAt: "2026-05-01T10:00:00Z", Latitude: 55, Longitude: 37},
				{FileKey: "b.jpg", TakenAt: tt.takenAt, Latitude: 56, Longitude: 37},
			})
			if err != nil {
				t.Fatalf("Derive() error = %v", err)
			}
			if metrics[1].DistanceMeters != 0 || metrics[1].SpeedKmh != 0 {
				t.Errorf("distance/speed = %v/%v, want 0/0 for non-monotonic time",
					metrics[1].DistanceMeters, metrics[1].SpeedKmh)
			}
			// Timestamp still parses, so confidence stays full.
			if metrics[1].Confidence != 1 {
				t.Errorf("confidence = %v, want 1", metrics[1].Confidence)
			}
		})
	}
}

func TestDerive_ConfidenceDegradation(t *testing.T) {
	tests := []struct {
		name    string
		capture models.Capture
		want    float64
	}{
		{
			name:    "all checks pass",
			capture: models.Capture{FileKey: "a.jpg", TakenAt: "2026-05-01T10:00:00Z", Latitude: 55, Longitude: 37},
			want:    1,
		},
		{
			name:    "unparseable timestamp",
			capture: models.Capture{FileKey: "a.jpg", TakenAt: "yesterday", Latitude: 55, Longitude: 37},
			want:    2.0 / 3.0,
		},
		{
			name:    "latitude out of range",
			capture: models.Capture{FileKey: "a.jpg", TakenAt: "2026-05-01T10:00:00Z", Latitude: 91, Longitude: 37},
			want:    2.0 / 3.0,
		},
		{
			name:    "bad timestamp and bad coordinates",
			capture: models.Capture{FileKey: "a.jpg", TakenAt: "yesterday", Latitude: 91, Longitude: 181},
			want:    1.0 / 3.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			metrics, err := Derive([]models.Capture{tt.capture})
			if err != nil {
				t.Fatalf("Derive() error = %v", err)
			}
			if math.Abs(metrics[0].Confidence-tt.want) > 1e-9 {
				t.Errorf("confidence = %v, want %v", metrics[0].Confidence, tt.want)
			}
		})
	}
}

func TestDerive_ConfidenceAlwaysQuantized(t *testing.T) {
	captures := []models.Capture{
		{FileKey: "a.jpg", TakenAt: "2026-05-01T10:00:00Z", Latitude: 55, Longitude: 37},
		{FileKey: "b.jpg", TakenAt: "not-a-time", Latitude: -91, Longitude: 200},
		{FileKey: "c.jpg", TakenAt: "2026-05-01T10:02:00Z", Latitude: 55.01, Longitude: 37.01},
	}
	metrics, err := Derive(captures)
	if err != nil {
		t.Fatalf("Derive() error = %v", err)
	}

	allowed := []float64{0, 1.0 / 3.0, 2.0 / 3.0, 1}
	for i, m := range metrics {
		ok := false
		for _, v := range allowed {
			if math.Abs(m.Confidence-v) < 1e-9 {
				ok = true
			}
		}
		if !ok || m.Confidence < 0 || m.Confidence > 1 {
			t.Errorf("metrics[%d].Confidence = %v, want one of {0, 1/3, 2/3, 1}", i, m.Confidence)
		}
	}
}

func TestDerive_InvalidInput(t *testing.T) {
	tests := []struct {
		name     string
		captures []models.Capture
	}{
		{
			name: "blank file key",
			captures: []models.Capture{
				{FileKey: "", TakenAt: "2026-05-01T10:00:00Z"},
			},
		},
		{
			name: "blank taken at",
			captures: []models.Capture{
				{FileKey: "a.jpg", TakenAt: ""},
			},
		},
		{
			name: "blank file key mid-batch",
			captures: []models.Capture{
				{FileKey: "a.jpg", TakenAt: "2026-05-01T10:00:00Z"},
				{FileKey: "", TakenAt: "2026-05-01T10:01:00Z"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Derive(tt.captures)
			if !errors.Is(err, models.ErrInvalidInput) {
				t.Errorf("Derive() error = %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestDerive_UnparseableTimestampZeroesNextPair(t *testing.T) {
	// The capture after an unparseable timestamp has no usable previous
	// time, so its distance and speed degrade to zero as well.
	metrics, err := Derive([]models.Capture{
		{FileKey: "a.jpg", TakenAt: "2026-05-01T10:00:00Z", Latitude: 55, Longitude: 37},
		{FileKey: "b.jpg", TakenAt: "garbage", Latitude: 55.5, Longitude: 37},
		{FileKey: "c.jpg", TakenAt: "2026-05-01T10:02:00Z", Latitude: 56, Longitude: 37},
	})
	if err != nil {
		t.Fatalf("Derive() error = %v", err)
	}
	for i := 1; i < 3; i++ {
		if metrics[i].DistanceMeters != 0 || metrics[i].SpeedKmh != 0 {
			t.Errorf("metrics[%d] distance/speed = %v/%v, want 0/0",
				i, metrics[i].DistanceMeters, metrics[i].SpeedKmh)
		}
	}
}
