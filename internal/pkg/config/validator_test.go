package config

import (
	"math"
	"testing"
	"time"
)

func TestValidateCronSchedule(t *testing.T) {
	tests := []struct {
		schedule string
		wantErr  bool
	}{
		{schedule: "0 18 * * *"},
		{schedule: "*/30 * * * *"},
		{schedule: "@every 2h"},
		{schedule: "", wantErr: true},
		{schedule: "61 * * * *", wantErr: true},
		{schedule: "not a cron", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.schedule, func(t *testing.T) {
			err := ValidateCronSchedule(tt.schedule)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateCronSchedule(%q) error = %v, wantErr %v", tt.schedule, err, tt.wantErr)
			}
		})
	}
}

func TestValidateTimezone(t *testing.T) {
	for _, tz := range []string{"UTC", "Asia/Kolkata", "America/New_York"} {
		if err := ValidateTimezone(tz); err != nil {
			t.Errorf("ValidateTimezone(%q) unexpected error: %v", tz, err)
		}
	}
	for _, tz := range []string{"", "Mars/Olympus", "+05:30"} {
		if err := ValidateTimezone(tz); err == nil {
			t.Errorf("ValidateTimezone(%q) expected error", tz)
		}
	}
}

func TestParseClockTime(t *testing.T) {
	tests := []struct {
		clock      string
		wantHour   int
		wantMinute int
		wantErr    bool
	}{
		{clock: "18:00", wantHour: 18, wantMinute: 0},
		{clock: "09:15", wantHour: 9, wantMinute: 15},
		{clock: "00:00", wantHour: 0, wantMinute: 0},
		{clock: "23:59", wantHour: 23, wantMinute: 59},
		{clock: "24:00", wantErr: true},
		{clock: "6pm", wantErr: true},
		{clock: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.clock, func(t *testing.T) {
			h, m, err := ParseClockTime(tt.clock)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseClockTime(%q) error = %v, wantErr %v", tt.clock, err, tt.wantErr)
			}
			if !tt.wantErr && (h != tt.wantHour || m != tt.wantMinute) {
				t.Errorf("ParseClockTime(%q) = %d:%d, want %d:%d", tt.clock, h, m, tt.wantHour, tt.wantMinute)
			}
			if vErr := ValidateClockTime(tt.clock); (vErr != nil) != tt.wantErr {
				t.Errorf("ValidateClockTime(%q) error = %v", tt.clock, vErr)
			}
		})
	}
}

func TestValidateDuration(t *testing.T) {
	if err := ValidateDuration(30*time.Minute, time.Minute, time.Hour); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := ValidateDuration(time.Second, time.Minute, time.Hour); err == nil {
		t.Error("expected error below minimum")
	}
	if err := ValidateDuration(2*time.Hour, time.Minute, time.Hour); err == nil {
		t.Error("expected error above maximum")
	}
	if err := ValidateDuration(time.Minute, time.Hour, time.Minute); err == nil {
		t.Error("expected error for inverted range")
	}
}

func TestValidateIntRange(t *testing.T) {
	if err := ValidateIntRange(9091, 1024, 65535); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := ValidateIntRange(80, 1024, 65535); err == nil {
		t.Error("expected error below minimum")
	}
	if err := ValidateIntRange(70000, 1024, 65535); err == nil {
		t.Error("expected error above maximum")
	}
	if err := ValidateIntRange(1, 10, 1); err == nil {
		t.Error("expected error for inverted range")
	}
}

func TestValidatePositiveDuration(t *testing.T) {
	if err := ValidatePositiveDuration(time.Nanosecond); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := ValidatePositiveDuration(0); err == nil {
		t.Error("expected error for zero")
	}
}

func TestValidateUnitInterval(t *testing.T) {
	for _, v := range []float64{0, 0.5, 0.7, 1} {
		if err := ValidateUnitInterval(v); err != nil {
			t.Errorf("ValidateUnitInterval(%v) unexpected error: %v", v, err)
		}
	}
	for _, v := range []float64{-0.01, 1.01, math.NaN()} {
		if err := ValidateUnitInterval(v); err == nil {
			t.Errorf("ValidateUnitInterval(%v) expected error", v)
		}
	}
}
