package notify

import (
	"context"

	"gorm.io/gorm"

	"github.com/tbourn/go-match-backend/internal/repo"
)

// Profile is the slice of a user a notification needs.
type Profile struct {
	ID    string
	Name  string
	Email string
}

// ProfileLookup resolves user ids to profiles. Missing ids are absent from
// the result.
type ProfileLookup interface {
	Profiles(ctx context.Context, ids ...string) (map[string]Profile, error)
}

// DBProfiles reads profiles from the users table.
type DBProfiles struct {
	DB *gorm.DB
}

func (p DBProfiles) Profiles(ctx context.Context, ids ...string) (map[string]Profile, error) {
	users, err := repo.GetUsers(ctx, p.DB, ids...)
	if err != nil {
		return nil, err
	}
	out := make(map[string]Profile, len(users))
	for id, u := range users {
		out[id] = Profile{ID: u.ID, Name: u.Name(), Email: u.Email}
	}
	return out, nil
}

// Intent is one notification for one recipient about one other user.
type Intent struct {
	Kind      Kind
	MatchID   string
	Recipient Profile
	Other     Profile
	Preview   string
}

// intents expands ev into per-recipient intents. A match notifies both
// parties; super-likes and messages notify the recipient only.
func intents(ev Event, profiles map[string]Profile) []Intent {
	actor, okA := profiles[ev.Actor]
	recipient, okR := profiles[ev.Recipient]
	if !okA || !okR {
		return nil
	}
	switch ev.Kind {
	case KindMatchCreated:
		return []Intent{
			{Kind: ev.Kind, MatchID: ev.MatchID, Recipient: actor, Other: recipient},
			{Kind: ev.Kind, MatchID: ev.MatchID, Recipient: recipient, Other: actor},
		}
	case KindSuperLike, KindMessageSent:
		return []Intent{{Kind: ev.Kind, MatchID: ev.MatchID, Recipient: recipient, Other: actor, Preview: ev.Preview}}
	}
	return nil
}
