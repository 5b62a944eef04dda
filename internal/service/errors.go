package service

import "errors"

var (
	ErrInvalidAccount  = errors.New("account id is required")
	ErrInvalidDate     = errors.New("date must be YYYY-MM-DD")
	ErrInvalidWindow   = errors.New("risk window must be a non-negative number of days")
	ErrRecipeNotFound  = errors.New("recipe not found")
	ErrUploadTooLarge  = errors.New("upload exceeds the size limit")
	ErrNoForecastsDate = errors.New("no forecasts found for that date")
)
