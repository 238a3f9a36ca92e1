package domain

import (
	"errors"
)

var (
	MessageSuccessRegister         = "user registered successfully"
	MessageSuccessLogin            = "login success"
	MessageSuccessGetMe            = "success get current user"
	MessageSuccessUpdateUser       = "user updated successfully"
	MessageSuccessSendVerify       = "verification email sent"
	MessageSuccessVerifyEmail      = "email verified successfully"
	MessageSuccessSubscribe        = "subscribed successfully"
	MessageSuccessUnsubscribe      = "unsubscribed successfully"
	MessageSuccessGetSubscriptions = "success get subscriptions"
	MessageSuccessGetUsers         = "success get users"

	MessageFailedRegister         = "failed to register user"
	MessageFailedLogin            = "failed to login"
	MessageFailedGetMe            = "failed to get current user"
	MessageFailedUpdateUser       = "failed to update user"
	MessageFailedSendVerify       = "failed to send verification email"
	MessageFailedVerifyEmail      = "failed to verify email"
	MessageFailedSubscribe        = "failed to subscribe"
	MessageFailedUnsubscribe      = "failed to unsubscribe"
	MessageFailedGetSubscriptions = "failed to get subscriptions"
	MessageFailedGetUsers         = "failed to get users"

	ErrUserNotFound        = errors.New("user not found")
	ErrEmailAlreadyExists  = errors.New("email already registered")
	ErrUsernameTaken       = errors.New("username already taken")
	ErrCredentialsInvalid  = errors.New("invalid email or password")
	ErrUserNotVerified     = errors.New("email is not verified")
	ErrSelfFollow          = errors.New("cannot subscribe to yourself")
	ErrAlreadySubscribed   = errors.New("subscription already exists")
	ErrSubscriptionMissing = errors.New("subscription not found")
)

type (
	RegisterRequest struct {
		Email     string `json:"email" validate:"required,email"`
		Username  string `json:"username" validate:"required,min=3,max=32"`
		FirstName string `json:"first_name" validate:"required"`
		LastName  string `json:"last_name" validate:"required"`
		Password  string `json:"password" validate:"required,min=8"`
	}

	LoginRequest struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}

	LoginResponse struct {
		Token string       `json:"token"`
		User  UserResponse `json:"user"`
	}

	UpdateUserRequest struct {
		Username  string `json:"username" validate:"omitempty,min=3,max=32"`
		FirstName string `json:"first_name" validate:"omitempty"`
		LastName  string `json:"last_name" validate:"omitempty"`
		Password  string `json:"password" validate:"omitempty,min=8"`
	}

	SendVerifyRequest struct {
		Email string `json:"email" validate:"required,email"`
	}

	UserResponse struct {
		ID           string `json:"id"`
		Email        string `json:"email"`
		Username     string `json:"username"`
		FirstName    string `json:"first_name"`
		LastName     string `json:"last_name"`
		IsSubscribed bool   `json:"is_subscribed"`
	}

	// SubscriptionResponse is a followed author together with a capped
	// preview of their recipes and the full authored-recipe count.
	SubscriptionResponse struct {
		UserResponse
		Recipes      []RecipeResponse `json:"recipes"`
		RecipesCount int64            `json:"recipes_count"`
	}
)
