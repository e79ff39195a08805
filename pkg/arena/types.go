package arena

import "time"

type Frequency string

const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
)

// UnitType is the kind of value an arena's completions carry.
type UnitType string

const (
	UnitNumber  UnitType = "number"
	UnitTime    UnitType = "time"
	UnitBoolean UnitType = "boolean"
	UnitText    UnitType = "text"
)

// Arena is a trackable recurring goal, joinable by multiple users.
// ParticipantCount is derived from active participations and is refreshed
// on reads and by the migrate command, never trusted as stored.
type Arena struct {
	ID               string    `json:"id" bson:"_id,omitempty"`
	CreatedBy        string    `json:"created_by" bson:"created_by"`
	Title            string    `json:"title" bson:"title"`
	Description      string    `json:"description" bson:"description"`
	Frequency        Frequency `json:"frequency" bson:"frequency"`
	CreatedAt        time.Time `json:"created_at" bson:"created_at"`
	Public           bool      `json:"is_public" bson:"is_public"`
	ParticipantCount int       `json:"participant_count" bson:"participant_count"`
	UnitType         UnitType  `json:"unit_type,omitempty" bson:"unit_type,omitempty"`
	UnitLabel        string    `json:"unit_label,omitempty" bson:"unit_label,omitempty"`
	TargetValue      string    `json:"target_value,omitempty" bson:"target_value,omitempty"`
	RequiresInput    bool      `json:"requires_input" bson:"requires_input"`
}

// Participant links a user to an arena they joined and carries their
// personal counters. Leaving an arena clears Active rather than deleting
// the record. At most one active Participant exists per (user, arena).
type Participant struct {
	ID               string    `json:"id" bson:"_id,omitempty"`
	ArenaID          string    `json:"arena_id" bson:"arena_id"`
	UserID           string    `json:"user_id" bson:"user_id"`
	JoinedAt         time.Time `json:"joined_at" bson:"joined_at"`
	CurrentStreak    int       `json:"current_streak" bson:"current_streak"`
	LongestStreak    int       `json:"longest_streak" bson:"longest_streak"`
	TotalCompletions int       `json:"total_completions" bson:"total_completions"`
	LastCompletedAt  time.Time `json:"last_completed_at,omitempty" bson:"last_completed_at,omitempty"`
	Active           bool      `json:"is_active" bson:"is_active"`
	ReminderTime     string    `json:"reminder_time,omitempty" bson:"reminder_time,omitempty"`

	// Version guards read-modify-write counter updates. Stores compare it
	// on write and reject stale updates with ErrConflict.
	Version int64 `json:"-" bson:"version"`
}

// Completion is a single logged instance of a user performing an arena's
// habit. Completions are append-only: never mutated or deleted. Value is
// the raw string-encoded input, DisplayValue the formatted form ("5.2 km").
type Completion struct {
	ID           string    `json:"id" bson:"_id,omitempty"`
	ArenaID      string    `json:"arena_id" bson:"arena_id"`
	UserID       string    `json:"user_id" bson:"user_id"`
	CompletedAt  time.Time `json:"completed_at" bson:"completed_at"`
	Value        string    `json:"value,omitempty" bson:"value,omitempty"`
	DisplayValue string    `json:"display_value,omitempty" bson:"display_value,omitempty"`
}

// User is the profile document backing display names on leaderboards and
// history rows. Identity itself comes from the external provider.
type User struct {
	ID       string    `json:"id" bson:"_id,omitempty"`
	Name     string    `json:"name" bson:"name"`
	Email    string    `json:"email,omitempty" bson:"email,omitempty"`
	JoinedAt time.Time `json:"joined_at" bson:"joined_at"`
}
