package seed

import (
	"fmt"
	"log"

	"devlink/internal/models"

	"gorm.io/gorm"
)

// Options configures the seeder.
type Options struct {
	NumUsers    int
	NumPosts    int
	ShouldClean bool
}

// Seeder populates the database with demo data.
type Seeder struct {
	db      *gorm.DB
	factory *Factory
}

// NewSeeder creates a Seeder bound to the provided Gorm DB.
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db, factory: NewFactory(db)}
}

// ClearAll truncates all application tables.
func (s *Seeder) ClearAll() error {
	log.Println("Clearing existing data...")
	sql := `TRUNCATE TABLE comments, likes, posts, educations, experiences, profiles, users RESTART IDENTITY CASCADE;`
	return s.db.Exec(sql).Error
}

// Run seeds users with profiles, posts, likes, and comments.
func (s *Seeder) Run(opts Options) error {
	log.Printf("Seeding %d users and %d posts...", opts.NumUsers, opts.NumPosts)

	if opts.ShouldClean {
		if err := s.ClearAll(); err != nil {
			return fmt.Errorf("cleanup failed: %w", err)
		}
	}

	users := make([]*models.User, 0, opts.NumUsers)
	for i := 0; i < opts.NumUsers; i++ {
		user, err := s.factory.CreateUser()
		if err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}
		// Roughly four in five accounts get a profile; the rest mimic
		// fresh signups.
		if i%5 != 4 {
			if _, err := s.factory.CreateProfile(user); err != nil {
				return fmt.Errorf("failed to create profile: %w", err)
			}
		}
		users = append(users, user)
	}
	log.Printf("Created %d users", len(users))

	posts := make([]*models.Post, 0, opts.NumPosts)
	for i := 0; i < opts.NumPosts; i++ {
		author := users[s.factory.r.Intn(len(users))]
		post, err := s.factory.CreatePost(author)
		if err != nil {
			return fmt.Errorf("failed to create post: %w", err)
		}
		posts = append(posts, post)
	}
	log.Printf("Created %d posts", len(posts))

	likes, comments := 0, 0
	for _, post := range posts {
		for _, idx := range s.factory.r.Perm(len(users))[:s.factory.r.Intn(len(users)/2+1)] {
			like := &models.Like{UserID: users[idx].ID, PostID: post.ID}
			if err := s.db.Create(like).Error; err != nil {
				return fmt.Errorf("failed to create like: %w", err)
			}
			likes++
		}
		for i := 0; i < s.factory.r.Intn(4); i++ {
			commenter := users[s.factory.r.Intn(len(users))]
			if _, err := s.factory.CreateComment(commenter, post); err != nil {
				return fmt.Errorf("failed to create comment: %w", err)
			}
			comments++
		}
	}
	log.Printf("Created %d likes and %d comments", likes, comments)

	log.Println("Seeding completed")
	return nil
}
