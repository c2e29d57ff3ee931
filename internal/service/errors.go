package service

import "errors"

// 领域错误，由 handler 映射为 HTTP 状态码
var (
	ErrFilmNotFound   = errors.New("film not found or invalid data")
	ErrNoFilms        = errors.New("no films found")
	ErrPosterNotFound = errors.New("poster not available")
	ErrInvalidWindow  = errors.New("failed to fetch records")
	ErrUnauthorized   = errors.New("invalid or missing api key")
)
