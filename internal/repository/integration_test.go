package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"devlink/internal/cache"
	"devlink/internal/database"
	"devlink/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupSQLiteDB opens a fresh in-memory database with the full schema. The
// conditional-update statements (upsert, keyed deletes) run against a real
// engine here, not a mock.
func setupSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()
	user := &models.User{Name: "Test User", Email: email, Password: "hash", Avatar: "a.png"}
	require.NoError(t, db.Create(user).Error)
	return user
}

func TestLikeUnlikeLifecycle(t *testing.T) {
	db := setupSQLiteDB(t)
	ctx := context.Background()
	posts := NewPostRepository(db)

	author := createTestUser(t, db, "author@example.com")
	liker := createTestUser(t, db, "liker@example.com")

	post := &models.Post{UserID: author.ID, Text: "hello", Name: author.Name, Avatar: author.Avatar}
	require.NoError(t, posts.Create(ctx, post))

	require.NoError(t, posts.Like(ctx, liker.ID, post.ID))

	// The second like loses against the unique index, no matter how close
	// the requests land.
	err := posts.Like(ctx, liker.ID, post.ID)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeAlreadyLiked, appErr.Code)

	var count int64
	require.NoError(t, db.Model(&models.Like{}).Where("post_id = ?", post.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	require.NoError(t, posts.Unlike(ctx, liker.ID, post.ID))

	err = posts.Unlike(ctx, liker.ID, post.ID)
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeNotLiked, appErr.Code)

	// Unlike removed the row entirely, so a fresh like succeeds.
	require.NoError(t, posts.Like(ctx, liker.ID, post.ID))
}

func TestLike_ConcurrentRequests(t *testing.T) {
	db := setupSQLiteDB(t)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// A single connection keeps every goroutine on the same in-memory
	// database; the unique index still decides the winner.
	sqlDB.SetMaxOpenConns(1)

	ctx := context.Background()
	posts := NewPostRepository(db)

	author := createTestUser(t, db, "author@example.com")
	liker := createTestUser(t, db, "liker@example.com")

	post := &models.Post{UserID: author.ID, Text: "race me", Name: author.Name}
	require.NoError(t, posts.Create(ctx, post))

	const n = 8
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = posts.Like(ctx, liker.ID, post.ID)
		}(i)
	}
	wg.Wait()

	succeeded, alreadyLiked := 0, 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		require.Equal(t, models.CodeAlreadyLiked, appErr.Code)
		alreadyLiked++
	}
	assert.Equal(t, 1, succeeded, "exactly one like must win")
	assert.Equal(t, n-1, alreadyLiked)

	var count int64
	require.NoError(t, db.Model(&models.Like{}).Where("post_id = ?", post.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestProfileUpsert_CreateThenUpdate(t *testing.T) {
	db := setupSQLiteDB(t)
	ctx := context.Background()
	profiles := NewProfileRepository(db)

	user := createTestUser(t, db, "jane@example.com")

	first := &models.Profile{UserID: user.ID, Handle: "janedoe", Status: "Developer", Skills: []string{"Go"}}
	require.NoError(t, profiles.Upsert(ctx, first))

	got, err := profiles.GetByUserID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Developer", got.Status)

	second := &models.Profile{UserID: user.ID, Handle: "janedoe", Status: "Senior Developer", Skills: []string{"Go", "SQL"}, Company: "Acme"}
	require.NoError(t, profiles.Upsert(ctx, second))

	var count int64
	require.NoError(t, db.Model(&models.Profile{}).Where("user_id = ?", user.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count, "upsert must never create a second profile row")

	got, err = profiles.GetByUserID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Senior Developer", got.Status)
	assert.Equal(t, "Acme", got.Company)
	assert.Equal(t, []string{"Go", "SQL"}, got.Skills)
}

func TestProfileUpsert_HandleCollision(t *testing.T) {
	db := setupSQLiteDB(t)
	ctx := context.Background()
	profiles := NewProfileRepository(db)

	owner := createTestUser(t, db, "owner@example.com")
	intruder := createTestUser(t, db, "intruder@example.com")

	require.NoError(t, profiles.Upsert(ctx, &models.Profile{
		UserID: owner.ID, Handle: "taken", Status: "Developer", Skills: []string{"Go"},
	}))

	err := profiles.Upsert(ctx, &models.Profile{
		UserID: intruder.ID, Handle: "taken", Status: "Developer", Skills: []string{"Go"},
	})
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeDuplicate, appErr.Code)
	assert.Equal(t, "handle", appErr.Key)
}

func TestExperienceAddRemove(t *testing.T) {
	db := setupSQLiteDB(t)
	ctx := context.Background()
	profiles := NewProfileRepository(db)

	user := createTestUser(t, db, "dev@example.com")
	profile := &models.Profile{UserID: user.ID, Handle: "dev", Status: "Developer", Skills: []string{"Go"}}
	require.NoError(t, profiles.Upsert(ctx, profile))

	stored, err := profiles.GetByUserID(ctx, user.ID)
	require.NoError(t, err)

	exp := &models.Experience{ProfileID: stored.ID, Title: "Engineer", Company: "Acme", From: stored.CreatedAt}
	require.NoError(t, profiles.AddExperience(ctx, exp))
	require.NotZero(t, exp.ID)

	require.NoError(t, profiles.RemoveExperience(ctx, stored.ID, exp.ID))

	// Removing the same entry again is a no-op at the store and surfaces
	// as not-found, exactly like a concurrent double delete.
	err = profiles.RemoveExperience(ctx, stored.ID, exp.ID)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeNotFound, appErr.Code)
	assert.Equal(t, "experiencenotfound", appErr.Key)
}

func TestExperienceOrdering_NewestFirst(t *testing.T) {
	db := setupSQLiteDB(t)
	ctx := context.Background()
	profiles := NewProfileRepository(db)

	user := createTestUser(t, db, "dev@example.com")
	require.NoError(t, profiles.Upsert(ctx, &models.Profile{
		UserID: user.ID, Handle: "dev", Status: "Developer", Skills: []string{"Go"},
	}))
	stored, err := profiles.GetByUserID(ctx, user.ID)
	require.NoError(t, err)

	oldFrom := time.Date(2018, 3, 1, 0, 0, 0, 0, time.UTC)
	newFrom := time.Date(2022, 7, 1, 0, 0, 0, 0, time.UTC)

	// Inserted oldest first; reads must still come back newest first.
	first := &models.Experience{ProfileID: stored.ID, Title: "Junior", Company: "Acme", From: oldFrom}
	second := &models.Experience{ProfileID: stored.ID, Title: "Senior", Company: "Acme", From: newFrom}
	tied := &models.Experience{ProfileID: stored.ID, Title: "Senior II", Company: "Acme", From: newFrom}
	require.NoError(t, profiles.AddExperience(ctx, first))
	require.NoError(t, profiles.AddExperience(ctx, second))
	require.NoError(t, profiles.AddExperience(ctx, tied))

	got, err := profiles.GetByUserID(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, got.Experience, 3)
	assert.Equal(t, "Senior II", got.Experience[0].Title, "same from date breaks ties toward the later entry")
	assert.Equal(t, "Senior", got.Experience[1].Title)
	assert.Equal(t, "Junior", got.Experience[2].Title)

	edu1 := &models.Education{ProfileID: stored.ID, School: "State", Degree: "BSc", From: oldFrom}
	edu2 := &models.Education{ProfileID: stored.ID, School: "Tech", Degree: "MSc", From: newFrom}
	require.NoError(t, profiles.AddEducation(ctx, edu1))
	require.NoError(t, profiles.AddEducation(ctx, edu2))

	got, err = profiles.GetByUserID(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, got.Education, 2)
	assert.Equal(t, "Tech", got.Education[0].School)
	assert.Equal(t, "State", got.Education[1].School)
}

func TestRemoveExperience_OtherProfile(t *testing.T) {
	db := setupSQLiteDB(t)
	ctx := context.Background()
	profiles := NewProfileRepository(db)

	alice := createTestUser(t, db, "alice@example.com")
	bob := createTestUser(t, db, "bob@example.com")

	require.NoError(t, profiles.Upsert(ctx, &models.Profile{UserID: alice.ID, Handle: "alice", Status: "Dev", Skills: []string{"Go"}}))
	require.NoError(t, profiles.Upsert(ctx, &models.Profile{UserID: bob.ID, Handle: "bob", Status: "Dev", Skills: []string{"Go"}}))

	aliceProfile, err := profiles.GetByUserID(ctx, alice.ID)
	require.NoError(t, err)
	bobProfile, err := profiles.GetByUserID(ctx, bob.ID)
	require.NoError(t, err)

	exp := &models.Experience{ProfileID: aliceProfile.ID, Title: "Engineer", Company: "Acme", From: aliceProfile.CreatedAt}
	require.NoError(t, profiles.AddExperience(ctx, exp))

	// The keyed delete scopes by profile id, so one user cannot remove
	// another's entry.
	err = profiles.RemoveExperience(ctx, bobProfile.ID, exp.ID)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeNotFound, appErr.Code)

	var count int64
	require.NoError(t, db.Model(&models.Experience{}).Where("id = ?", exp.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestRemoveComment_ScopedToPost(t *testing.T) {
	db := setupSQLiteDB(t)
	ctx := context.Background()
	posts := NewPostRepository(db)

	user := createTestUser(t, db, "commenter@example.com")

	post1 := &models.Post{UserID: user.ID, Text: "first", Name: user.Name}
	post2 := &models.Post{UserID: user.ID, Text: "second", Name: user.Name}
	require.NoError(t, posts.Create(ctx, post1))
	require.NoError(t, posts.Create(ctx, post2))

	comment := &models.Comment{PostID: post1.ID, UserID: user.ID, Text: "nice", Name: user.Name}
	require.NoError(t, posts.AddComment(ctx, comment))

	err := posts.RemoveComment(ctx, post2.ID, comment.ID)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "commentnotexist", appErr.Key)

	require.NoError(t, posts.RemoveComment(ctx, post1.ID, comment.ID))
}

func TestUserDeleteCascade(t *testing.T) {
	db := setupSQLiteDB(t)
	ctx := context.Background()
	users := NewUserRepository(db)
	profiles := NewProfileRepository(db)
	posts := NewPostRepository(db)

	user := createTestUser(t, db, "leaving@example.com")
	require.NoError(t, profiles.Upsert(ctx, &models.Profile{UserID: user.ID, Handle: "leaving", Status: "Dev", Skills: []string{"Go"}}))

	post := &models.Post{UserID: user.ID, Text: "still here", Name: user.Name}
	require.NoError(t, posts.Create(ctx, post))

	require.NoError(t, users.DeleteCascade(ctx, user.ID))

	_, err := users.GetByID(ctx, user.ID)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeNotFound, appErr.Code)

	_, err = profiles.GetByUserID(ctx, user.ID)
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "noprofile", appErr.Key)

	// Posts survive account deletion under the author's snapshotted name.
	got, err := posts.GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "still here", got.Text)
}

func TestCommentOrdering_TieBrokenByID(t *testing.T) {
	db := setupSQLiteDB(t)
	ctx := context.Background()
	posts := NewPostRepository(db)

	user := createTestUser(t, db, "commenter@example.com")
	post := &models.Post{UserID: user.ID, Text: "hello", Name: user.Name}
	require.NoError(t, posts.Create(ctx, post))

	// Both comments land within the same timestamp granularity.
	when := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	older := &models.Comment{PostID: post.ID, UserID: user.ID, Text: "first", Name: user.Name, CreatedAt: when}
	newer := &models.Comment{PostID: post.ID, UserID: user.ID, Text: "second", Name: user.Name, CreatedAt: when}
	require.NoError(t, posts.AddComment(ctx, older))
	require.NoError(t, posts.AddComment(ctx, newer))

	got, err := posts.GetByID(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, got.Comments, 2)
	assert.Equal(t, "second", got.Comments[0].Text)
	assert.Equal(t, "first", got.Comments[1].Text)
}

func TestHandleCacheInvalidation(t *testing.T) {
	mr := miniredis.RunT(t)
	cache.SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { cache.SetClient(nil) })

	db := setupSQLiteDB(t)
	ctx := context.Background()
	users := NewUserRepository(db)
	profiles := NewProfileRepository(db)

	user := createTestUser(t, db, "jane@example.com")
	require.NoError(t, profiles.Upsert(ctx, &models.Profile{
		UserID: user.ID, Handle: "oldhandle", Status: "Dev", Skills: []string{"Go"},
	}))

	// Warm the handle-keyed cache entry.
	_, err := profiles.GetByHandle(ctx, "oldhandle")
	require.NoError(t, err)
	require.True(t, mr.Exists(cache.ProfileHandleKey("oldhandle")))

	// Renaming must drop the old handle's entry, not just the new one's.
	require.NoError(t, profiles.Upsert(ctx, &models.Profile{
		UserID: user.ID, Handle: "newhandle", Status: "Dev", Skills: []string{"Go"},
	}))
	assert.False(t, mr.Exists(cache.ProfileHandleKey("oldhandle")))

	_, err = profiles.GetByHandle(ctx, "oldhandle")
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "noprofile", appErr.Key)

	got, err := profiles.GetByHandle(ctx, "newhandle")
	require.NoError(t, err)
	assert.Equal(t, "newhandle", got.Handle)
	require.True(t, mr.Exists(cache.ProfileHandleKey("newhandle")))

	// Deleting the account drops the cached handle lookup with the profile.
	require.NoError(t, users.DeleteCascade(ctx, user.ID))
	assert.False(t, mr.Exists(cache.ProfileHandleKey("newhandle")))

	_, err = profiles.GetByHandle(ctx, "newhandle")
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "noprofile", appErr.Key)
}
