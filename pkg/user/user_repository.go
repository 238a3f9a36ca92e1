package user

import (
	"Foodgram-Backend/domain"
	"Foodgram-Backend/entities"
	"Foodgram-Backend/pkg/relation"
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type (
	UserRepository interface {
		CreateUser(ctx context.Context, user *entities.User) error
		GetUserByID(ctx context.Context, id string) (*entities.User, error)
		GetUserByEmail(ctx context.Context, email string) (*entities.User, error)
		EmailExists(ctx context.Context, email string) (bool, error)
		UsernameExists(ctx context.Context, username string) (bool, error)
		UpdateUser(ctx context.Context, user *entities.User) error
		MarkVerified(ctx context.Context, id string) error

		Follow(ctx context.Context, userID, authorID string) error
		Unfollow(ctx context.Context, userID, authorID string) error
		GetSubscriptions(ctx context.Context, userID string, page, limit int) ([]*entities.User, int64, error)
		SubscribedAuthorIDs(ctx context.Context, userID string, authorIDs []uuid.UUID) (map[uuid.UUID]struct{}, error)
		RecipeCounts(ctx context.Context, authorIDs []uuid.UUID) (map[uuid.UUID]int64, error)
	}

	userRepository struct {
		db *gorm.DB
	}
)

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) CreateUser(ctx context.Context, user *entities.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) GetUserByID(ctx context.Context, id string) (*entities.User, error) {
	var user entities.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetUserByEmail(ctx context.Context, email string) (*entities.User, error) {
	var user entities.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&entities.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *userRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&entities.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *userRepository) UpdateUser(ctx context.Context, user *entities.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

func (r *userRepository) MarkVerified(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Model(&entities.User{}).
		Where("id = ?", id).
		Update("is_verified", true).Error
}

func (r *userRepository) Follow(ctx context.Context, userID, authorID string) error {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return domain.ErrParseUUID
	}
	authorUUID, err := uuid.Parse(authorID)
	if err != nil {
		return domain.ErrParseUUID
	}

	follow := &entities.Follow{
		ID:        uuid.New(),
		UserID:    userUUID,
		AuthorID:  authorUUID,
		CreatedAt: time.Now(),
	}
	return relation.CreateEdge(ctx, r.db, follow, "user_id = ? AND author_id = ?", userUUID, authorUUID)
}

func (r *userRepository) Unfollow(ctx context.Context, userID, authorID string) error {
	return relation.DeleteEdge[entities.Follow](ctx, r.db, "user_id = ? AND author_id = ?", userID, authorID)
}

func (r *userRepository) GetSubscriptions(ctx context.Context, userID string, page, limit int) ([]*entities.User, int64, error) {
	var users []*entities.User
	var count int64
	offset := (page - 1) * limit

	if err := r.db.WithContext(ctx).
		Model(&entities.User{}).
		Joins("JOIN follows ON follows.author_id = users.id").
		Where("follows.user_id = ?", userID).
		Count(&count).Error; err != nil {
		return nil, 0, err
	}

	if err := r.db.WithContext(ctx).
		Joins("JOIN follows ON follows.author_id = users.id").
		Where("follows.user_id = ?", userID).
		Preload("Recipes", func(db *gorm.DB) *gorm.DB {
			return db.Order("recipes.created_at desc")
		}).
		Preload("Recipes.Author").
		Preload("Recipes.Tags").
		Preload("Recipes.Components.Ingredient").
		Offset(offset).
		Limit(limit).
		Order("follows.created_at desc").
		Find(&users).Error; err != nil {
		return nil, 0, err
	}

	return users, count, nil
}

func (r *userRepository) SubscribedAuthorIDs(ctx context.Context, userID string, authorIDs []uuid.UUID) (map[uuid.UUID]struct{}, error) {
	return relation.EdgeSet[entities.Follow](ctx, r.db, "author_id", "user_id = ? AND author_id IN ?", userID, authorIDs)
}

func (r *userRepository) RecipeCounts(ctx context.Context, authorIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	return relation.GroupCount[entities.Recipe](ctx, r.db, "author_id", "author_id IN ?", authorIDs)
}
