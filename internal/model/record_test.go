package model

import (
	"testing"
	"time"
)

func TestMoodEntry_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		score   int
		wantErr bool
	}{
		{0, true},
		{1, false},
		{7, false},
		{10, false},
		{11, true},
		{-3, true},
	}

	for _, tt := range tests {
		m := &MoodEntry{Score: tt.score}
		err := m.Validate()
		if (err != nil) != tt.wantErr {
			t.Errorf("MoodEntry{Score: %d}.Validate() error = %v, wantErr %v", tt.score, err, tt.wantErr)
		}
	}
}

func TestActivityEntry_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		entry   ActivityEntry
		wantErr error
	}{
		{"valid", ActivityEntry{Activity: "walk", Duration: 30}, nil},
		{"zero duration", ActivityEntry{Activity: "nap", Duration: 0}, nil},
		{"blank label", ActivityEntry{Activity: "  ", Duration: 10}, ErrEmptyActivity},
		{"negative duration", ActivityEntry{Activity: "run", Duration: -1}, ErrInvalidDuration},
		{"one week", ActivityEntry{Activity: "hike", Duration: MaxDurationMinutes}, nil},
		{"over a week", ActivityEntry{Activity: "run", Duration: MaxDurationMinutes + 1}, ErrInvalidDuration},
		{"beyond int32", ActivityEntry{Activity: "run", Duration: 3000000000}, ErrInvalidDuration},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.entry.Validate(); err != tt.wantErr {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestJournalAndLink_Validate(t *testing.T) {
	t.Parallel()

	if err := (&JournalEntry{Entry: ""}).Validate(); err != ErrEmptyEntry {
		t.Errorf("empty journal entry: got %v", err)
	}
	if err := (&JournalEntry{Entry: "slept well"}).Validate(); err != nil {
		t.Errorf("valid journal entry: got %v", err)
	}
	if err := (&ConditionLink{}).Validate(); err != ErrEmptyEntityID {
		t.Errorf("empty entity id: got %v", err)
	}
}

func TestRecord_Stamp(t *testing.T) {
	t.Parallel()

	at := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	var r Record = &MoodEntry{Score: 5}
	r.Stamp("01HX", "user-1", at)

	if r.Owner() != "user-1" {
		t.Errorf("Owner() = %q, want user-1", r.Owner())
	}
	if !r.Timestamp().Equal(at) {
		t.Errorf("Timestamp() = %v, want %v", r.Timestamp(), at)
	}
	if r.Kind() != KindMood {
		t.Errorf("Kind() = %q, want %q", r.Kind(), KindMood)
	}
}
