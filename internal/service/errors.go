package service

import "errors"

var (
	ErrValidation            = errors.New("validation failed")
	ErrAlreadyRegistered     = errors.New("user already registered")
	ErrUserNotFound          = errors.New("user not found")
	ErrBadCredentials        = errors.New("invalid credentials")
	ErrInvalidOrExpiredCode  = errors.New("invalid or expired otp")
	ErrInvalidOrExpiredToken = errors.New("invalid or expired reset token")
	ErrInvalidToken          = errors.New("invalid token")
	ErrDeliveryFailure       = errors.New("email delivery failed")
	ErrRateLimited           = errors.New("rate limited")
	ErrCategoryNotFound      = errors.New("category not found")
	ErrFoodNotFound          = errors.New("food not found")
)
