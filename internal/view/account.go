package view

import (
	"slices"
	"strings"

	"github.com/DoyleJ11/busfahrer-client/internal/api"
	"github.com/DoyleJ11/busfahrer-client/pkg/types"
)

// MaxAvatarBytes bounds avatar uploads.
const MaxAvatarBytes = 2 << 20

// Account is the account and achievements screen.
type Account struct {
	types.Account
	Loaded bool
}

func (s Account) Stage() Stage {
	if !s.Loaded {
		return StageLoading
	}
	return StageIdle
}

func (s Account) Apply(m types.PushMessage) (Account, []Effect) {
	switch m.Type {
	case types.EvtAccountUpdate:
		var p types.AccountUpdate
		if eff := decode(m, &p); eff != nil {
			return s, eff
		}
		set(&s.Username, p.Username)
		set(&s.Avatar, p.Avatar)
		set(&s.Title, p.Title)
		set(&s.FriendCode, p.FriendCode)
		set(&s.ClickSound, p.ClickSound)
		set(&s.CardTheme, p.CardTheme)

	case types.EvtTitlesUpdate:
		var p types.TitlesUpdate
		if eff := decode(m, &p); eff != nil {
			return s, eff
		}
		if p.Titles == nil {
			return s, missing(m, "titles")
		}
		s.Titles = p.Titles

	case types.EvtAvatarUpdate:
		var p types.AvatarUpdate
		if eff := decode(m, &p); eff != nil {
			return s, eff
		}
		id := p.UserID
		if id == "" {
			id = m.UserID
		}
		if id != "" && id != s.ID {
			return s, nil
		}
		s.Avatar = p.Avatar
	}
	return s, nil
}

func set(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func (s Account) SetClickSound(sound string) (Command, bool) {
	if sound == "" || sound == s.ClickSound {
		return none()
	}
	return do(api.SetClickSound(sound))
}

func (s Account) SetCardTheme(theme string) (Command, bool) {
	if theme == "" || theme == s.CardTheme {
		return none()
	}
	return do(api.SetCardTheme(theme))
}

// SetTitle only accepts titles the account has unlocked.
func (s Account) SetTitle(titleID string) (Command, bool) {
	if !slices.ContainsFunc(s.Titles, func(t types.Title) bool { return t.ID == titleID && t.Unlocked }) {
		return none()
	}
	return do(api.SetTitle(titleID))
}

func (s Account) SetAvatar(avatar string) (Command, bool) {
	avatar = strings.TrimSpace(avatar)
	if avatar == "" {
		return none()
	}
	return do(api.SetAvatar(avatar))
}

func (s Account) UploadAvatar(filename string, content []byte) (Command, bool) {
	if filename == "" || len(content) == 0 || len(content) > MaxAvatarBytes {
		return none()
	}
	return do(api.UploadAvatar(filename, content))
}

// Logout returns to the login route once the session is gone.
func (s Account) Logout() (Command, bool) {
	return Command{Request: api.Logout(), Then: navigateThen(LoginPath, true)}, true
}
