// Package validation provides pure input validators for request payloads.
// Each validator returns a field->message map and an isValid flag; no
// validator consults persisted state (uniqueness is enforced by the stores).
package validation

import (
	"net/url"
	"regexp"
	"strings"
	"time"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// DateLayout is the accepted wire format for from/to dates.
const DateLayout = "2006-01-02"

// RegisterInput is the payload for account registration.
type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginInput is the payload for authentication.
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ProfileInput is the payload for profile create/update. Skills is a
// comma-separated list; social fields are optional URLs.
type ProfileInput struct {
	Handle         string `json:"handle"`
	Status         string `json:"status"`
	Skills         string `json:"skills"`
	Company        string `json:"company"`
	Website        string `json:"website"`
	Location       string `json:"location"`
	Bio            string `json:"bio"`
	GithubUsername string `json:"githubusername"`
	Youtube        string `json:"youtube"`
	Twitter        string `json:"twitter"`
	Linkedin       string `json:"linkedin"`
	Instagram      string `json:"instagram"`
}

// ExperienceInput is the payload for adding a work-history entry.
type ExperienceInput struct {
	Title       string `json:"title"`
	Company     string `json:"company"`
	Location    string `json:"location"`
	From        string `json:"from"`
	To          string `json:"to"`
	Current     bool   `json:"current"`
	Description string `json:"description"`
}

// EducationInput is the payload for adding a schooling entry.
type EducationInput struct {
	School       string `json:"school"`
	Degree       string `json:"degree"`
	FieldOfStudy string `json:"fieldofstudy"`
	From         string `json:"from"`
	To           string `json:"to"`
	Current      bool   `json:"current"`
	Description  string `json:"description"`
}

// PostInput is the payload for creating a post or a comment.
type PostInput struct {
	Text   string `json:"text"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// isURL reports whether s parses as an absolute http(s) URL.
func isURL(s string) bool {
	u, err := url.ParseRequestURI(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func isDate(s string) bool {
	if _, err := time.Parse(DateLayout, s); err == nil {
		return true
	}
	_, err := time.Parse(time.RFC3339, s)
	return err == nil
}

// ValidateRegister checks a registration payload.
func ValidateRegister(in RegisterInput) (map[string]string, bool) {
	errs := map[string]string{}

	if len(in.Name) < 2 || len(in.Name) > 30 {
		errs["name"] = "Name must be between 2 and 30 characters"
	}
	if isBlank(in.Name) {
		errs["name"] = "Name field is required"
	}
	if !isBlank(in.Email) && !emailRegex.MatchString(in.Email) {
		errs["email"] = "Email is invalid"
	}
	if isBlank(in.Email) {
		errs["email"] = "Email field is required"
	}
	if len(in.Password) < 6 {
		errs["password"] = "Password must be at least 6 characters"
	}
	if isBlank(in.Password) {
		errs["password"] = "Password field is required"
	}

	return errs, len(errs) == 0
}

// ValidateLogin checks a login payload.
func ValidateLogin(in LoginInput) (map[string]string, bool) {
	errs := map[string]string{}

	if !isBlank(in.Email) && !emailRegex.MatchString(in.Email) {
		errs["email"] = "Email is invalid"
	}
	if isBlank(in.Email) {
		errs["email"] = "Email field is required"
	}
	if isBlank(in.Password) {
		errs["password"] = "Password field is required"
	}

	return errs, len(errs) == 0
}

// ValidateProfile checks a profile upsert payload. Handle length and
// emptiness are independent checks; URL fields are validated only when
// non-empty.
func ValidateProfile(in ProfileInput) (map[string]string, bool) {
	errs := map[string]string{}

	if len(in.Handle) < 3 || len(in.Handle) > 40 {
		errs["handle"] = "Handle needs to be between 3 and 40 characters"
	}
	if isBlank(in.Handle) {
		errs["handle"] = "Profile handle is required"
	}
	if isBlank(in.Status) {
		errs["status"] = "Status field is required"
	}
	if isBlank(in.Skills) {
		errs["skills"] = "Skills field is required"
	}

	urlFields := map[string]string{
		"website":   in.Website,
		"youtube":   in.Youtube,
		"twitter":   in.Twitter,
		"linkedin":  in.Linkedin,
		"instagram": in.Instagram,
	}
	for field, value := range urlFields {
		if !isBlank(value) && !isURL(value) {
			errs[field] = "Not a valid url"
		}
	}

	return errs, len(errs) == 0
}

// ValidateExperience checks a work-history entry payload.
func ValidateExperience(in ExperienceInput) (map[string]string, bool) {
	errs := map[string]string{}

	if isBlank(in.Title) {
		errs["title"] = "Title field is required"
	}
	if isBlank(in.Company) {
		errs["company"] = "Company field is required"
	}
	if isBlank(in.From) {
		errs["from"] = "From field is required"
	} else if !isDate(in.From) {
		errs["from"] = "From date is invalid"
	}
	if !isBlank(in.To) && !isDate(in.To) {
		errs["to"] = "To date is invalid"
	}

	return errs, len(errs) == 0
}

// ValidateEducation checks a schooling entry payload.
func ValidateEducation(in EducationInput) (map[string]string, bool) {
	errs := map[string]string{}

	if isBlank(in.School) {
		errs["school"] = "School field is required"
	}
	if isBlank(in.Degree) {
		errs["degree"] = "Degree field is required"
	}
	if isBlank(in.From) {
		errs["from"] = "From field is required"
	} else if !isDate(in.From) {
		errs["from"] = "From date is invalid"
	}
	if !isBlank(in.To) && !isDate(in.To) {
		errs["to"] = "To date is invalid"
	}

	return errs, len(errs) == 0
}

// ValidatePost checks a post or comment payload.
func ValidatePost(in PostInput) (map[string]string, bool) {
	errs := map[string]string{}

	if isBlank(in.Text) {
		errs["text"] = "Text field is required"
	}

	return errs, len(errs) == 0
}

// ParseDate parses a validated from/to date string. Call only after the
// corresponding validator accepted the value.
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}
