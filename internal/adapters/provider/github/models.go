package github

import (
	"encoding/json/jsontext"
	"time"
)

// wireEvent is a partial GitHub event document with fields we use
type wireEvent struct {
	ID    string `json:"id"`
	Type  string `json:"type"`
	Actor struct {
		Login string `json:"login"`
	} `json:"actor"`
	Repo struct {
		Name string `json:"name"` // owner/name
	} `json:"repo"`
	Payload   jsontext.Value `json:"payload"`
	Public    bool           `json:"public"`
	CreatedAt time.Time      `json:"created_at"`
}

// pushPayload is the PushEvent payload fields we extract from
type pushPayload struct {
	Commits []struct {
		SHA      string `json:"sha"`
		Message  string `json:"message"`
		Distinct bool   `json:"distinct"`
		Author   struct {
			Name  string `json:"name"`
			Email string `json:"email"`
		} `json:"author"`
	} `json:"commits"`
}

// commitDetail is a partial commit document; Stats stays nil when the
// response carries no diff stats
type commitDetail struct {
	SHA   string `json:"sha"`
	Stats *struct {
		Additions int `json:"additions"`
		Deletions int `json:"deletions"`
	} `json:"stats"`
}

// wireUser is a partial GitHub user document
type wireUser struct {
	Login     string `json:"login"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url"`
	HTMLURL   string `json:"html_url"`
}
