package threshold

import (
	"testing"
	"time"
)

func TestThresholdFor(t *testing.T) {
	policy := NewPolicy()

	tests := []struct {
		name         string
		status       string
		expected     time.Duration
		wantDisabled bool
	}{
		{
			name:     "campaign creation is 24 hours",
			status:   "4: Campaign creation",
			expected: 24 * time.Hour,
		},
		{
			name:     "submission review is 24 hours",
			status:   "5: Submission Review",
			expected: 24 * time.Hour,
		},
		{
			name:     "live phase is 9 days",
			status:   "6: Live - FASE1-5",
			expected: 216 * time.Hour,
		},
		{
			name:         "lander delivery is disabled",
			status:       "1: Lander URL delivery",
			wantDisabled: true,
		},
		{
			name:         "mediabuyer handout is disabled",
			status:       "7: mediabuyer handout",
			wantDisabled: true,
		},
		{
			name:         "disabled prefix matches case-insensitively",
			status:       "3: ANGLE (COPY Y HEADLINE) CREATION",
			wantDisabled: true,
		},
		{
			name:         "truncated creative delivery variant is disabled",
			status:       "2: Creative Delivery (video, images)",
			wantDisabled: true,
		},
		{
			name:     "unknown status falls back to five minutes",
			status:   "9: Unknown",
			expected: 5 * time.Minute,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, disabled := policy.ThresholdFor(tt.status)
			if disabled != tt.wantDisabled {
				t.Fatalf("ThresholdFor(%q): disabled=%v, want %v", tt.status, disabled, tt.wantDisabled)
			}
			if !disabled && got != tt.expected {
				t.Errorf("ThresholdFor(%q): got %v, want %v", tt.status, got, tt.expected)
			}
		})
	}
}

func TestUpdate(t *testing.T) {
	t.Run("known status is replaced", func(t *testing.T) {
		policy := NewPolicy()

		if !policy.Update("4: Campaign creation", 60) {
			t.Fatal("expected update to be accepted")
		}

		got, disabled := policy.ThresholdFor("4: Campaign creation")
		if disabled {
			t.Fatal("status unexpectedly disabled")
		}
		if got != time.Hour {
			t.Errorf("got %v, want %v", got, time.Hour)
		}
	})

	t.Run("known status can be disabled", func(t *testing.T) {
		policy := NewPolicy()

		if !policy.Update("5: Submission Review", Disabled) {
			t.Fatal("expected update to be accepted")
		}

		if _, disabled := policy.ThresholdFor("5: Submission Review"); !disabled {
			t.Error("expected status to be disabled after update")
		}
	})

	t.Run("unknown status is a no-op", func(t *testing.T) {
		policy := NewPolicy()

		if policy.Update("9: Unknown", 100) {
			t.Fatal("expected update to be rejected")
		}

		// Table unchanged: the unknown status still gets the fallback.
		got, disabled := policy.ThresholdFor("9: Unknown")
		if disabled {
			t.Fatal("fallback status unexpectedly disabled")
		}
		if got != 5*time.Minute {
			t.Errorf("got %v, want fallback %v", got, 5*time.Minute)
		}
		if len(policy.List()) != 3 {
			t.Errorf("table grew: %d non-disabled entries, want 3", len(policy.List()))
		}
	})
}

func TestList(t *testing.T) {
	policy := NewPolicy()

	entries := policy.List()
	if len(entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(entries))
	}

	expected := []Entry{
		{Status: "4: Campaign creation", Minutes: 1440},
		{Status: "5: Submission Review", Minutes: 1440},
		{Status: "6: Live - FASE1-5", Minutes: 12960},
	}

	for i, want := range expected {
		if entries[i] != want {
			t.Errorf("entries[%d]: got %+v, want %+v", i, entries[i], want)
		}
	}
}
