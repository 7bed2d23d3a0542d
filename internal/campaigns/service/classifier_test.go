package service

import "testing"

func TestClassifierPermanent(t *testing.T) {
	classifier := NewClassifier(nil)

	tests := []struct {
		detail string
		want   bool
	}{
		{"sms gateway returned 400: number on blacklist", true},
		{"recipient OPTED OUT of marketing", true},
		{"550 user unsubscribed", true},
		{"invalid number format", true},
		{"destination is a landline", true},
		{"recipient on do-not-contact list", true},
		{"sms gateway returned 500: internal error", false},
		{"connection timed out", false},
		{"smtp send: temporary failure", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.detail, func(t *testing.T) {
			if got := classifier.Permanent(tt.detail); got != tt.want {
				t.Errorf("Permanent(%q) = %v, want %v", tt.detail, got, tt.want)
			}
		})
	}
}

func TestClassifierCustomSignatures(t *testing.T) {
	classifier := NewClassifier([]string{"QUOTA EXCEEDED"})

	if !classifier.Permanent("daily quota exceeded for account") {
		t.Error("custom signature should match case-insensitively")
	}
	if classifier.Permanent("number on blacklist") {
		t.Error("defaults should not apply when custom signatures are given")
	}
}
