package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Experience is one entry of the work history.
type Experience struct {
	Title       string      `json:"title"`
	Company     string      `json:"company"`
	Period      string      `json:"period"`
	Description Description `json:"description,omitempty"`
}

// Project is one portfolio project.
type Project struct {
	Name        string   `json:"name"`
	Tagline     string   `json:"tagline"`
	Description []string `json:"description"`
	Tech        []string `json:"tech"`
	Link        string   `json:"link,omitempty"`
	Period      string   `json:"period,omitempty"`
}

// Links holds the contact links shown by the contact command.
type Links struct {
	X         string `json:"x"`
	LinkedIn  string `json:"linkedin"`
	GitHub    string `json:"github"`
	Instagram string `json:"instagram,omitempty"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

// Content is the full portfolio data set.
type Content struct {
	Experience []Experience `json:"experience"`
	Projects   []Project    `json:"projects"`
	Links      Links        `json:"links"`
}

// Description accepts either a single string or a list of strings.
type Description []string

// UnmarshalJSON decodes a string or an array of strings.
func (d *Description) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*d = nil
		return nil
	}
	if data[0] == '"' {
		var single string
		if err := json.Unmarshal(data, &single); err != nil {
			return fmt.Errorf("%w: description: %v", ErrInvalidContent, err)
		}
		if single == "" {
			*d = nil
			return nil
		}
		*d = Description{single}
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("%w: description: %v", ErrInvalidContent, err)
	}
	*d = Description(list)
	return nil
}
