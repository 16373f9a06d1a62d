// model/user.go
package model

import "time"

// User mirrors an identity from the office SSO provider. Rows are upserted
// by the auth middleware from verified token claims; nothing else writes them.
type User struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	AvatarURL string    `json:"avatarUrl"`
	CreatedAt time.Time `json:"createdAt"`
}
