package models

import (
	"fmt"
	"time"
)

// Profile is the anonymous identity a device or browser registers with.
type Profile struct {
	AnonID      string    `json:"anon_id"`
	Nickname    *string   `json:"nickname,omitempty"`
	NicknameTag *string   `json:"nickname_tag,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Handle returns "nickname#tag", or "" when either part is missing.
func (p *Profile) Handle() string {
	if p.Nickname == nil || p.NicknameTag == nil || *p.Nickname == "" || *p.NicknameTag == "" {
		return ""
	}
	return fmt.Sprintf("%s#%s", *p.Nickname, *p.NicknameTag)
}

// NicknameCheck is the result of an availability lookup. Reason is set only
// when the nickname is unavailable.
type NicknameCheck struct {
	Nickname  string `json:"nickname"`
	Available bool   `json:"available"`
	Reason    string `json:"reason,omitempty"`
}
