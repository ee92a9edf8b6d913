package errors

import "errors"

var (
	ErrInvalidToken = errors.New("token is malformed or its signature is invalid")

	ErrExpiredToken = errors.New("token has expired")

	ErrMissingSubject = errors.New("token has no subject")

	ErrUnauthorized = errors.New("could not validate credentials")

	ErrUserNotFound = errors.New("token subject has no matching user")

	ErrInvalidCredentials = errors.New("incorrect username or password")

	ErrUnknownProvider = errors.New("unknown oauth provider")

	ErrProviderError = errors.New("oauth provider returned an error")

	ErrMissingCode = errors.New("authorization code is missing")

	ErrTokenExchangeFailed = errors.New("failed to exchange authorization code")

	ErrUserInfoFailed = errors.New("failed to fetch user info")
)
