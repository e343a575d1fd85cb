package cfg

import (
	"testing"
	"time"
)

func TestGetVersion(t *testing.T) {
	if GetVersion() == "" {
		t.Error("GetVersion must never be empty")
	}
}

func TestDurationHelpers(t *testing.T) {
	c := &Cfg{
		PollInterval:  7200,
		CooldownDelay: 300,
		UploadDelay:   30,
	}

	if c.GetPollInterval() != 2*time.Hour {
		t.Errorf("Expected 2h poll interval, got %v", c.GetPollInterval())
	}
	if c.GetCooldownDelay() != 5*time.Minute {
		t.Errorf("Expected 5m cooldown, got %v", c.GetCooldownDelay())
	}
	if c.GetUploadDelay() != 30*time.Second {
		t.Errorf("Expected 30s upload delay, got %v", c.GetUploadDelay())
	}
}

func TestApplyTimezone(t *testing.T) {
	if err := applyTimezone("UTC"); err != nil {
		t.Errorf("UTC should be a valid timezone: %v", err)
	}
	if err := applyTimezone("Not/AZone"); err == nil {
		t.Error("Expected error for invalid timezone")
	}
}
