package schema

// SocialUserTable represents the 'social.user' table
type SocialUserTable struct {
	Table     string
	ID        string
	Name      string
	AvatarKey string
	Email     string
	CreatedAt string
}

// SocialUser is the schema definition for social.user
var SocialUser = SocialUserTable{
	Table:     `social."user"`,
	ID:        "id",
	Name:      "name",
	AvatarKey: "avatarkey",
	Email:     "email",
	CreatedAt: "createdat",
}

// Columns returns all standard column names
func (t SocialUserTable) Columns() []string {
	return []string{t.ID, t.Name, t.AvatarKey, t.Email, t.CreatedAt}
}
