package models

// UserProfile is a read-only identity snapshot taken from the user profile
// service. It is denormalized into tickets, matches and tournament entries at
// write time and never synced afterwards.
type UserProfile struct {
	UserID      string         `db:"user_id" json:"userId"`
	Username    string         `db:"username" json:"username"`
	DisplayName string         `db:"display_name" json:"displayName"`
	AvatarURL   string         `db:"avatar_url" json:"avatarUrl,omitempty"`
	Stats       map[string]int `db:"stats" json:"stats,omitempty"`
}
