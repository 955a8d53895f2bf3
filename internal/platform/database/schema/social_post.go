package schema

// SocialPostTable represents the 'social.post' table
type SocialPostTable struct {
	Table        string
	ID           string
	AuthorID     string
	Body         string
	Tags         string
	Title        string
	ImageKey     string
	AvatarKey    string
	CreatedAt    string
	Location     string
	TrueLocation string
	AccessKey    string
}

// SocialPost is the schema definition for social.post
var SocialPost = SocialPostTable{
	Table:        "social.post",
	ID:           "id",
	AuthorID:     "authorid",
	Body:         "body",
	Tags:         "tags",
	Title:        "title",
	ImageKey:     "imagekey",
	AvatarKey:    "avatarkey",
	CreatedAt:    "createdat",
	Location:     "location",
	TrueLocation: "truelocation",
	AccessKey:    "accesskey",
}

// Columns returns all standard column names
func (t SocialPostTable) Columns() []string {
	return []string{
		t.ID, t.AuthorID, t.Body, t.Tags, t.Title, t.ImageKey,
		t.AvatarKey, t.CreatedAt, t.Location, t.TrueLocation, t.AccessKey,
	}
}
