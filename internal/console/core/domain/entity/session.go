package entity

import "time"

type UserInfo struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
	Exp   int64  `json:"exp"` // unix seconds
}

// Expired reports whether the token behind u is past its exp claim at now.
func (u UserInfo) Expired(now time.Time) bool {
	return now.Unix() >= u.Exp
}

type Session struct {
	AccessToken string
	User        UserInfo
}
