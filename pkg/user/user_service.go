package user

import (
	"Foodgram-Backend/domain"
	"Foodgram-Backend/entities"
	"Foodgram-Backend/internal/utils"
	"Foodgram-Backend/internal/utils/mailing"
	"Foodgram-Backend/pkg/jwt"
	"Foodgram-Backend/pkg/recipe"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type (
	UserService interface {
		Register(ctx context.Context, req domain.RegisterRequest) (domain.UserResponse, error)
		Login(ctx context.Context, req domain.LoginRequest) (domain.LoginResponse, error)
		Me(ctx context.Context, userID string) (domain.UserResponse, error)
		UpdateUser(ctx context.Context, userID string, req domain.UpdateUserRequest) (domain.UserResponse, error)
		SendVerificationEmail(ctx context.Context, req domain.SendVerifyRequest) error
		VerifyEmail(ctx context.Context, token string) error

		Subscribe(ctx context.Context, userID, authorID string) error
		Unsubscribe(ctx context.Context, userID, authorID string) error
		GetSubscriptions(ctx context.Context, userID string, page, limit, recipesLimit int) ([]domain.SubscriptionResponse, int64, error)
		AnnotateUsers(ctx context.Context, users []*entities.User, viewerID string) ([]domain.SubscriptionResponse, error)
	}

	userService struct {
		userRepository UserRepository
		jwtService     jwt.JWTService
		recipeService  recipe.RecipeService
	}
)

func NewUserService(userRepository UserRepository, jwtService jwt.JWTService, recipeService recipe.RecipeService) UserService {
	return &userService{
		userRepository: userRepository,
		jwtService:     jwtService,
		recipeService:  recipeService,
	}
}

func (s *userService) Register(ctx context.Context, req domain.RegisterRequest) (domain.UserResponse, error) {
	emailExists, err := s.userRepository.EmailExists(ctx, req.Email)
	if err != nil {
		return domain.UserResponse{}, err
	}
	if emailExists {
		return domain.UserResponse{}, domain.ErrEmailAlreadyExists
	}

	usernameExists, err := s.userRepository.UsernameExists(ctx, req.Username)
	if err != nil {
		return domain.UserResponse{}, err
	}
	if usernameExists {
		return domain.UserResponse{}, domain.ErrUsernameTaken
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return domain.UserResponse{}, err
	}

	user := &entities.User{
		ID:        uuid.New(),
		Email:     req.Email,
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  string(hashed),
	}

	if err := s.userRepository.CreateUser(ctx, user); err != nil {
		// Unique index on email/username is the authoritative guard; a
		// concurrent register losing the race lands here.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.UserResponse{}, domain.ErrEmailAlreadyExists
		}
		return domain.UserResponse{}, err
	}

	return toUserResponse(user, false), nil
}

func (s *userService) Login(ctx context.Context, req domain.LoginRequest) (domain.LoginResponse, error) {
	user, err := s.userRepository.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.LoginResponse{}, domain.ErrCredentialsInvalid
		}
		return domain.LoginResponse{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return domain.LoginResponse{}, domain.ErrCredentialsInvalid
	}

	token := s.jwtService.GenerateTokenUser(user.ID.String())
	return domain.LoginResponse{
		Token: token,
		User:  toUserResponse(user, false),
	}, nil
}

func (s *userService) Me(ctx context.Context, userID string) (domain.UserResponse, error) {
	user, err := s.userRepository.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.UserResponse{}, domain.ErrUserNotFound
		}
		return domain.UserResponse{}, err
	}
	return toUserResponse(user, false), nil
}

func (s *userService) UpdateUser(ctx context.Context, userID string, req domain.UpdateUserRequest) (domain.UserResponse, error) {
	user, err := s.userRepository.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.UserResponse{}, domain.ErrUserNotFound
		}
		return domain.UserResponse{}, err
	}

	if req.Username != "" && req.Username != user.Username {
		usernameExists, err := s.userRepository.UsernameExists(ctx, req.Username)
		if err != nil {
			return domain.UserResponse{}, err
		}
		if usernameExists {
			return domain.UserResponse{}, domain.ErrUsernameTaken
		}
		user.Username = req.Username
	}
	if req.FirstName != "" {
		user.FirstName = req.FirstName
	}
	if req.LastName != "" {
		user.LastName = req.LastName
	}
	if req.Password != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			return domain.UserResponse{}, err
		}
		user.Password = string(hashed)
	}

	if err := s.userRepository.UpdateUser(ctx, user); err != nil {
		return domain.UserResponse{}, err
	}
	return toUserResponse(user, false), nil
}

func (s *userService) SendVerificationEmail(ctx context.Context, req domain.SendVerifyRequest) error {
	user, err := s.userRepository.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrUserNotFound
		}
		return err
	}

	token, err := s.jwtService.GenerateTokenVerification(map[string]any{
		"user_id": user.ID.String(),
	}, 24*time.Hour)
	if err != nil {
		return err
	}

	verifyURL := fmt.Sprintf("%s/api/v1/users/verify?token=%s", utils.GetConfig("APP_URL"), token)
	body := fmt.Sprintf(
		"<p>Hi %s,</p><p>Please confirm your email by clicking <a href=%q>this link</a>.</p>",
		user.Username, verifyURL,
	)
	return mailing.SendMail(user.Email, "Verify your FoodGram account", body)
}

func (s *userService) VerifyEmail(ctx context.Context, token string) error {
	claims, err := s.jwtService.ValidateTokenVerification(token)
	if err != nil {
		return err
	}

	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return domain.ErrTokenInvalid
	}
	return s.userRepository.MarkVerified(ctx, userID)
}

func (s *userService) Subscribe(ctx context.Context, userID, authorID string) error {
	if userID == authorID {
		return domain.ErrSelfFollow
	}

	if _, err := s.userRepository.GetUserByID(ctx, authorID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrUserNotFound
		}
		return err
	}

	if err := s.userRepository.Follow(ctx, userID, authorID); err != nil {
		if errors.Is(err, domain.ErrDuplicateEdge) {
			return domain.ErrAlreadySubscribed
		}
		return err
	}
	return nil
}

func (s *userService) Unsubscribe(ctx context.Context, userID, authorID string) error {
	if err := s.userRepository.Unfollow(ctx, userID, authorID); err != nil {
		if errors.Is(err, domain.ErrEdgeNotFound) {
			return domain.ErrSubscriptionMissing
		}
		return err
	}
	return nil
}

// GetSubscriptions lists the authors the viewer follows. The subscribed flag
// is true by definition here, so no existence queries are issued for it; the
// nested recipes of the whole page are annotated in a single batch.
func (s *userService) GetSubscriptions(ctx context.Context, userID string, page, limit, recipesLimit int) ([]domain.SubscriptionResponse, int64, error) {
	users, count, err := s.userRepository.GetSubscriptions(ctx, userID, page, limit)
	if err != nil {
		return nil, 0, err
	}

	authorIDs := make([]uuid.UUID, 0, len(users))
	for _, author := range users {
		authorIDs = append(authorIDs, author.ID)
	}

	var recipeCounts map[uuid.UUID]int64
	if len(authorIDs) > 0 {
		recipeCounts, err = s.userRepository.RecipeCounts(ctx, authorIDs)
		if err != nil {
			return nil, 0, err
		}
	}

	// One flat annotation pass across every author's capped recipe preview.
	var flat []*entities.Recipe
	perUser := make([]int, len(users))
	for i, author := range users {
		recipes := author.Recipes
		if recipesLimit > 0 && len(recipes) > recipesLimit {
			recipes = recipes[:recipesLimit]
		}
		perUser[i] = len(recipes)
		flat = append(flat, recipes...)
	}

	annotated, err := s.recipeService.AnnotateRecipes(ctx, flat, userID)
	if err != nil {
		return nil, 0, err
	}

	res := make([]domain.SubscriptionResponse, 0, len(users))
	offset := 0
	for i, author := range users {
		sub := domain.SubscriptionResponse{
			UserResponse: toUserResponse(author, true),
			Recipes:      annotated[offset : offset+perUser[i]],
			RecipesCount: recipeCounts[author.ID],
		}
		if sub.Recipes == nil {
			sub.Recipes = []domain.RecipeResponse{}
		}
		offset += perUser[i]
		res = append(res, sub)
	}
	return res, count, nil
}

// AnnotateUsers attaches the viewer-relative subscription flag and the
// viewer-independent recipe count to a batch of users. The flag is resolved
// with a single edge-set query; an anonymous viewer short-circuits it to
// false while counts are still computed.
func (s *userService) AnnotateUsers(ctx context.Context, users []*entities.User, viewerID string) ([]domain.SubscriptionResponse, error) {
	if len(users) == 0 {
		return []domain.SubscriptionResponse{}, nil
	}

	userIDs := make([]uuid.UUID, 0, len(users))
	for _, user := range users {
		userIDs = append(userIDs, user.ID)
	}

	recipeCounts, err := s.userRepository.RecipeCounts(ctx, userIDs)
	if err != nil {
		return nil, err
	}

	var subscribed map[uuid.UUID]struct{}
	if viewerID != "" {
		subscribed, err = s.userRepository.SubscribedAuthorIDs(ctx, viewerID, userIDs)
		if err != nil {
			return nil, err
		}
	}

	res := make([]domain.SubscriptionResponse, 0, len(users))
	for _, user := range users {
		_, isSubscribed := subscribed[user.ID]
		res = append(res, domain.SubscriptionResponse{
			UserResponse: toUserResponse(user, isSubscribed),
			Recipes:      []domain.RecipeResponse{},
			RecipesCount: recipeCounts[user.ID],
		})
	}
	return res, nil
}

func toUserResponse(user *entities.User, isSubscribed bool) domain.UserResponse {
	return domain.UserResponse{
		ID:           user.ID.String(),
		Email:        user.Email,
		Username:     user.Username,
		FirstName:    user.FirstName,
		LastName:     user.LastName,
		IsSubscribed: isSubscribed,
	}
}
