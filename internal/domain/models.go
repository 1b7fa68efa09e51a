// Package domain defines the persistence models for profiles, swipes,
// matches, blocks, messages, reports and push tokens. These types are mapped
// with GORM and form the core data layer of the matching backend.
package domain

import (
	"time"
)

// SwipeType is the decision a swiper records about a target.
type SwipeType string

const (
	SwipeLike      SwipeType = "like"
	SwipePass      SwipeType = "pass"
	SwipeSuperLike SwipeType = "super_like"
)

// legacySuperLike is the spelling older clients still send for a super-like.
const legacySuperLike = "super_howl"

// ParseSwipeType normalizes a client-supplied swipe type. The legacy
// "super_howl" spelling maps to SwipeSuperLike.
func ParseSwipeType(s string) (SwipeType, bool) {
	switch SwipeType(s) {
	case SwipeLike, SwipePass, SwipeSuperLike:
		return SwipeType(s), true
	}
	if s == legacySuperLike {
		return SwipeSuperLike, true
	}
	return "", false
}

// Positive reports whether the swipe counts towards a match.
func (t SwipeType) Positive() bool {
	return t == SwipeLike || t == SwipeSuperLike
}

// PositiveSwipeTypes lists the types that count towards a match, for queries.
var PositiveSwipeTypes = []SwipeType{SwipeLike, SwipeSuperLike}

// User is a profile as seen by discovery. Credentials and contact email are
// stored but never serialized.
//
// Fields:
//   - ID: stable UUID primary key (char(36)).
//   - BirthDate: calendar date at UTC midnight; nil until onboarding sets it.
//   - Latitude / Longitude: optional coordinates for the distance filter.
//   - IsBanned: banned users never appear in discovery.
type User struct {
	ID           string     `json:"id"            gorm:"type:char(36);primaryKey"`
	Email        string     `json:"-"             gorm:"type:varchar(255);not null;uniqueIndex:ux_users_email"`
	Username     string     `json:"username"      gorm:"type:varchar(64);not null;uniqueIndex:ux_users_username"`
	PasswordHash string     `json:"-"             gorm:"type:varchar(255);not null"`
	DisplayName  string     `json:"displayName"  gorm:"type:varchar(128)"`
	Bio          string     `json:"bio"           gorm:"type:text"`
	BirthDate    *time.Time `json:"birthDate"    gorm:"index:idx_users_birth"`
	Latitude     *float64   `json:"latitude,omitempty"`
	Longitude    *float64   `json:"longitude,omitempty"`
	IsBanned     bool       `json:"-"             gorm:"not null;default:false"`
	CreatedAt    time.Time  `json:"createdAt"    gorm:"index:idx_users_created"`
	UpdatedAt    time.Time  `json:"updatedAt"`

	Theriotypes []Theriotype `json:"theriotypes" gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Photos      []Photo      `json:"photos"      gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for User.
func (User) TableName() string { return "users" }

// Name returns the display name, falling back to the username.
func (u User) Name() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Username
}

// Theriotype is a species a user identifies with. SpeciesFolded holds the
// case-folded, accent-stripped form used by the discovery substring filter.
type Theriotype struct {
	ID            string    `json:"id"         gorm:"type:char(36);primaryKey"`
	UserID        string    `json:"-"          gorm:"type:char(36);not null;index:idx_theriotypes_user"`
	Species       string    `json:"species"    gorm:"type:varchar(100);not null"`
	SpeciesFolded string    `json:"-"          gorm:"type:varchar(100);not null;index:idx_theriotypes_folded"`
	CreatedAt     time.Time `json:"createdAt"`
}

// TableName returns the database table name for Theriotype.
func (Theriotype) TableName() string { return "theriotypes" }

// Photo is a profile picture reference. Hidden photos do not count towards
// discovery eligibility and are not returned. Visible has no column default,
// so writers must set it; a zero value is stored as hidden.
type Photo struct {
	ID        string    `json:"id"         gorm:"type:char(36);primaryKey"`
	UserID    string    `json:"-"          gorm:"type:char(36);not null;index:idx_photos_user,priority:1"`
	URL       string    `json:"url"        gorm:"type:varchar(512);not null"`
	Position  int       `json:"position"   gorm:"not null;default:0;index:idx_photos_user,priority:2"`
	Visible   bool      `json:"-"          gorm:"not null"`
	CreatedAt time.Time `json:"createdAt"`
}

// TableName returns the database table name for Photo.
func (Photo) TableName() string { return "photos" }

// Swipe is one swiper's latest decision about one target. The pair is unique;
// a later swipe overwrites Type and keeps CreatedAt.
type Swipe struct {
	ID        string    `json:"id"         gorm:"type:char(36);primaryKey"`
	SwiperID  string    `json:"swiperId"  gorm:"type:char(36);not null;uniqueIndex:ux_swipes_pair,priority:1;index:idx_swipes_swiper_created,priority:1"`
	TargetID  string    `json:"targetId"  gorm:"type:char(36);not null;uniqueIndex:ux_swipes_pair,priority:2;index:idx_swipes_target"`
	Type      SwipeType `json:"type"       gorm:"type:varchar(16);not null;check:type IN ('like','pass','super_like')"`
	CreatedAt time.Time `json:"createdAt" gorm:"index:idx_swipes_swiper_created,priority:2"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName returns the database table name for Swipe.
func (Swipe) TableName() string { return "swipes" }

// Match is a mutual positive-swipe relationship, stored once per canonical
// pair (UserAID < UserBID).
type Match struct {
	ID        string    `json:"id"         gorm:"type:char(36);primaryKey"`
	UserAID   string    `json:"userAId"  gorm:"type:char(36);not null;uniqueIndex:ux_matches_pair,priority:1"`
	UserBID   string    `json:"userBId"  gorm:"type:char(36);not null;uniqueIndex:ux_matches_pair,priority:2;index:idx_matches_user_b"`
	CreatedAt time.Time `json:"createdAt"`

	UserA User `json:"-" gorm:"foreignKey:UserAID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	UserB User `json:"-" gorm:"foreignKey:UserBID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Match.
func (Match) TableName() string { return "matches" }

// Other returns the counterpart of userID in the match.
func (m Match) Other(userID string) string {
	if m.UserAID == userID {
		return m.UserBID
	}
	return m.UserAID
}

// Involves reports whether userID is one of the two parties.
func (m Match) Involves(userID string) bool {
	return m.UserAID == userID || m.UserBID == userID
}

// Block is a directional block. Its effects on discovery and matches are
// applied to both directions.
type Block struct {
	ID        string    `json:"id"         gorm:"type:char(36);primaryKey"`
	BlockerID string    `json:"blockerId" gorm:"type:char(36);not null;uniqueIndex:ux_blocks_pair,priority:1"`
	BlockedID string    `json:"blockedId" gorm:"type:char(36);not null;uniqueIndex:ux_blocks_pair,priority:2;index:idx_blocks_blocked"`
	CreatedAt time.Time `json:"createdAt"`

	Blocked User `json:"-" gorm:"foreignKey:BlockedID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Block.
func (Block) TableName() string { return "blocks" }

// Message is a chat line inside a match. ReadAt is set when the recipient
// marks the conversation read.
type Message struct {
	ID        string     `json:"id"         gorm:"type:char(36);primaryKey"`
	MatchID   string     `json:"matchId"   gorm:"type:char(36);not null;index:idx_match_msgs,priority:1"`
	SenderID  string     `json:"senderId"  gorm:"type:char(36);not null"`
	Content   string     `json:"content"    gorm:"type:text;not null"`
	ReadAt    *time.Time `json:"readAt"`
	CreatedAt time.Time  `json:"createdAt" gorm:"index:idx_match_msgs,priority:2"`

	Match Match `json:"-" gorm:"foreignKey:MatchID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Message.
func (Message) TableName() string { return "messages" }

// ReportReasons is the closed set of accepted report reasons.
var ReportReasons = []string{"zoophilia", "harassment", "minor", "fake", "spam", "other"}

// Report is a reason-coded complaint about another user.
type Report struct {
	ID         string    `json:"id"          gorm:"type:char(36);primaryKey"`
	ReporterID string    `json:"reporterId" gorm:"type:char(36);not null;index"`
	TargetID   string    `json:"targetId"   gorm:"type:char(36);not null;index"`
	Reason     string    `json:"reason"      gorm:"type:varchar(50);not null;check:reason IN ('zoophilia','harassment','minor','fake','spam','other')"`
	Details    *string   `json:"details,omitempty" gorm:"type:text"`
	CreatedAt  time.Time `json:"createdAt"`
}

// TableName returns the database table name for Report.
func (Report) TableName() string { return "reports" }

// PushToken is a device registration for push delivery, unique per user.
type PushToken struct {
	ID        string    `json:"id"         gorm:"type:char(36);primaryKey"`
	UserID    string    `json:"userId"    gorm:"type:char(36);not null;uniqueIndex:ux_push_user_token,priority:1"`
	Token     string    `json:"token"      gorm:"type:varchar(255);not null;uniqueIndex:ux_push_user_token,priority:2;index:idx_push_token"`
	Platform  string    `json:"platform"   gorm:"type:varchar(16);not null;check:platform IN ('android','ios','web')"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName returns the database table name for PushToken.
func (PushToken) TableName() string { return "push_tokens" }
