package domain

import "time" // Timestamps

// Role is the kind of account a user signed up as
type Role string

const (
	RoleProducer Role = "producer" // Event producer
	RoleAgency   Role = "agency"   // Agency working for producers
)

// Valid reports whether r is a known role
func (r Role) Valid() bool {
	return r == RoleProducer || r == RoleAgency
}

// UserAccount Model (identity provider record)
type UserAccount struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`                // UUID
	Email        string    `gorm:"uniqueIndex;size:255;not null" json:"email"` // Lower-cased login email
	PasswordHash string    `gorm:"not null" json:"-"`                          // bcrypt hash
	CreatedAt    time.Time `json:"created_at"`                                 // Account creation time
}

// TableName keeps account rows in "users"
func (UserAccount) TableName() string {
	return "users"
}

// UserProfile Model, keyed by the owning user's ID
type UserProfile struct {
	UserID    string     `gorm:"primaryKey;size:36" json:"user_id" validate:"required"`
	Role      Role       `gorm:"size:16;not null" json:"role" validate:"required,oneof=producer agency"`
	Email     string     `gorm:"size:255;not null" json:"email" validate:"required,email"`
	Name      string     `gorm:"size:255" json:"name,omitempty"`
	Phone     string     `gorm:"size:64" json:"phone,omitempty"`
	Company   string     `gorm:"size:255" json:"company,omitempty"`
	CreatedAt time.Time  `json:"created_at" validate:"required"`
	UpdatedAt *time.Time `gorm:"autoUpdateTime:false" json:"updated_at,omitempty"`
}

// ProfileUpdate carries the fields a user may change on their own profile.
// Nil fields are left untouched.
type ProfileUpdate struct {
	Name    *string `json:"name"`
	Phone   *string `json:"phone"`
	Company *string `json:"company"`
}

// Session is the signed-in user handle passed explicitly to every store call
type Session struct {
	UserID string // Authenticated user ID
	Email  string // Authenticated email
	Role   Role   // Filled in once the profile is loaded
}

// Valid reports whether the session identifies a user
func (s Session) Valid() bool {
	return s.UserID != ""
}
