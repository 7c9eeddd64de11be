// Package seed provides helpers to create demo data for the application
// database. These helpers are intended for development and testing only.
package seed

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"devlink/internal/models"
	"devlink/internal/service"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// SeedPassword is the plaintext password assigned to every seeded account.
const SeedPassword = "password123"

var statuses = []string{
	"Developer", "Junior Developer", "Senior Developer", "Manager",
	"Student or Learning", "Instructor or Teacher", "Intern", "Other",
}

var skillPool = []string{
	"Go", "JavaScript", "TypeScript", "Python", "Rust", "SQL", "HTML", "CSS",
	"React", "Vue", "Node.js", "PostgreSQL", "Redis", "Docker", "Kubernetes",
	"AWS", "GraphQL", "gRPC",
}

// Factory builds domain entities and persists them to the database.
type Factory struct {
	db *gorm.DB
	r  *rand.Rand
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB) *Factory {
	seed := time.Now().UnixNano()
	gofakeit.Seed(seed)
	return &Factory{db: db, r: rand.New(rand.NewSource(seed))}
}

// CreateUser constructs and persists a sample account. Optional override
// functions may modify the generated user before saving.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(SeedPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	email := gofakeit.Email()
	user := &models.User{
		Name:     gofakeit.Name(),
		Email:    email,
		Password: string(hash),
		Avatar:   service.GravatarURL(email),
	}
	for _, override := range overrides {
		override(user)
	}

	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// CreateProfile builds and persists a profile for the given user, with a few
// experience and education entries.
func (f *Factory) CreateProfile(user *models.User) (*models.Profile, error) {
	nSkills := 2 + f.r.Intn(4)
	skills := make([]string, 0, nSkills)
	for _, i := range f.r.Perm(len(skillPool))[:nSkills] {
		skills = append(skills, skillPool[i])
	}

	profile := &models.Profile{
		UserID:         user.ID,
		Handle:         strings.ToLower(gofakeit.Username()) + fmt.Sprintf("%d", gofakeit.Number(10, 999)),
		Status:         statuses[f.r.Intn(len(statuses))],
		Skills:         skills,
		Company:        gofakeit.Company(),
		Website:        gofakeit.URL(),
		Location:       gofakeit.City(),
		Bio:            gofakeit.Sentence(12),
		GithubUsername: strings.ToLower(gofakeit.Username()),
		Twitter:        "https://twitter.com/" + strings.ToLower(gofakeit.Username()),
	}
	if err := f.db.Create(profile).Error; err != nil {
		return nil, err
	}

	for i := 0; i < 1+f.r.Intn(3); i++ {
		from := gofakeit.DateRange(
			time.Now().AddDate(-8, 0, 0),
			time.Now().AddDate(-1, 0, 0),
		)
		exp := &models.Experience{
			ProfileID:   profile.ID,
			Title:       gofakeit.JobTitle(),
			Company:     gofakeit.Company(),
			Location:    gofakeit.City(),
			From:        from,
			Current:     i == 0,
			Description: gofakeit.Sentence(10),
		}
		if !exp.Current {
			to := from.AddDate(1+f.r.Intn(3), 0, 0)
			exp.To = &to
		}
		if err := f.db.Create(exp).Error; err != nil {
			return nil, err
		}
	}

	eduFrom := gofakeit.DateRange(
		time.Now().AddDate(-12, 0, 0),
		time.Now().AddDate(-5, 0, 0),
	)
	eduTo := eduFrom.AddDate(4, 0, 0)
	edu := &models.Education{
		ProfileID:    profile.ID,
		School:       gofakeit.Company() + " University",
		Degree:       "BSc",
		FieldOfStudy: "Computer Science",
		From:         eduFrom,
		To:           &eduTo,
		Description:  gofakeit.Sentence(8),
	}
	if err := f.db.Create(edu).Error; err != nil {
		return nil, err
	}

	return profile, nil
}

// CreatePost builds and persists a post authored by the given user with its
// name/avatar snapshot, backdated for a realistic feed.
func (f *Factory) CreatePost(user *models.User) (*models.Post, error) {
	post := &models.Post{
		UserID: user.ID,
		Text:   gofakeit.Paragraph(1, 2, 8, " "),
		Name:   user.Name,
		Avatar: user.Avatar,
	}
	post.CreatedAt = time.Now().
		Add(-time.Duration(f.r.Intn(90*24)) * time.Hour).
		Add(-time.Duration(f.r.Intn(60)) * time.Minute)

	if err := f.db.Create(post).Error; err != nil {
		return nil, err
	}
	return post, nil
}

// CreateComment persists a comment by user on post.
func (f *Factory) CreateComment(user *models.User, post *models.Post) (*models.Comment, error) {
	comment := &models.Comment{
		PostID: post.ID,
		UserID: user.ID,
		Text:   gofakeit.Sentence(8 + f.r.Intn(10)),
		Name:   user.Name,
		Avatar: user.Avatar,
	}
	if err := f.db.Create(comment).Error; err != nil {
		return nil, err
	}
	return comment, nil
}
