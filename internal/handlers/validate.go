package handlers

import "github.com/go-playground/validator/v10"

// validate checks request payload struct tags before any service call.
var validate = validator.New()
