package relation

import (
	"Foodgram-Backend/domain"
	"Foodgram-Backend/entities"
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func withTestDatabase(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("failed to open sqlite database: %v", err)
	}
	if err := db.AutoMigrate(&entities.Follow{}, &entities.Favorite{}); err != nil {
		t.Fatalf("failed to migrate schema: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func TestCreateEdgeRejectsDuplicate(t *testing.T) {
	db := withTestDatabase(t)
	ctx := context.Background()

	userID := uuid.New()
	authorID := uuid.New()

	edge := &entities.Follow{ID: uuid.New(), UserID: userID, AuthorID: authorID}
	if err := CreateEdge(ctx, db, edge, "user_id = ? AND author_id = ?", userID, authorID); err != nil {
		t.Fatalf("first create failed: %v", err)
	}

	again := &entities.Follow{ID: uuid.New(), UserID: userID, AuthorID: authorID}
	err := CreateEdge(ctx, db, again, "user_id = ? AND author_id = ?", userID, authorID)
	if !errors.Is(err, domain.ErrDuplicateEdge) {
		t.Fatalf("duplicate create returned %v, want ErrDuplicateEdge", err)
	}
}

func TestDeleteEdgeMissing(t *testing.T) {
	db := withTestDatabase(t)
	ctx := context.Background()

	err := DeleteEdge[entities.Follow](ctx, db, "user_id = ? AND author_id = ?", uuid.New(), uuid.New())
	if !errors.Is(err, domain.ErrEdgeNotFound) {
		t.Fatalf("delete of absent edge returned %v, want ErrEdgeNotFound", err)
	}
}

func TestDeleteEdgeRemovesRow(t *testing.T) {
	db := withTestDatabase(t)
	ctx := context.Background()

	userID := uuid.New()
	recipeID := uuid.New()

	edge := &entities.Favorite{ID: uuid.New(), UserID: userID, RecipeID: recipeID}
	if err := CreateEdge(ctx, db, edge, "user_id = ? AND recipe_id = ?", userID, recipeID); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if err := DeleteEdge[entities.Favorite](ctx, db, "user_id = ? AND recipe_id = ?", userID, recipeID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	exists, err := Exists[entities.Favorite](ctx, db, "user_id = ? AND recipe_id = ?", userID, recipeID)
	if err != nil {
		t.Fatalf("exists check failed: %v", err)
	}
	if exists {
		t.Fatal("edge still present after delete")
	}
}

func TestEdgeSetResolvesBatch(t *testing.T) {
	db := withTestDatabase(t)
	ctx := context.Background()

	userID := uuid.New()
	liked := []uuid.UUID{uuid.New(), uuid.New()}
	skipped := uuid.New()

	for _, recipeID := range liked {
		edge := &entities.Favorite{ID: uuid.New(), UserID: userID, RecipeID: recipeID}
		if err := CreateEdge(ctx, db, edge, "user_id = ? AND recipe_id = ?", userID, recipeID); err != nil {
			t.Fatalf("create failed: %v", err)
		}
	}

	set, err := EdgeSet[entities.Favorite](ctx, db, "recipe_id",
		"user_id = ? AND recipe_id IN ?", userID, append(liked, skipped))
	if err != nil {
		t.Fatalf("edge set failed: %v", err)
	}

	if len(set) != 2 {
		t.Fatalf("edge set has %d entries, want 2", len(set))
	}
	for _, recipeID := range liked {
		if _, ok := set[recipeID]; !ok {
			t.Fatalf("edge set missing recipe %s", recipeID)
		}
	}
	if _, ok := set[skipped]; ok {
		t.Fatal("edge set contains recipe without an edge")
	}
}

func TestGroupCount(t *testing.T) {
	db := withTestDatabase(t)
	ctx := context.Background()

	author := uuid.New()
	other := uuid.New()

	for i := 0; i < 3; i++ {
		edge := &entities.Follow{ID: uuid.New(), UserID: uuid.New(), AuthorID: author}
		if err := db.Create(edge).Error; err != nil {
			t.Fatalf("seed failed: %v", err)
		}
	}

	counts, err := GroupCount[entities.Follow](ctx, db, "author_id", "author_id IN ?", []uuid.UUID{author, other})
	if err != nil {
		t.Fatalf("group count failed: %v", err)
	}

	if counts[author] != 3 {
		t.Fatalf("author count = %d, want 3", counts[author])
	}
	if _, ok := counts[other]; ok {
		t.Fatal("author without rows should be absent from counts")
	}
}
