// Package response defines the JSON envelope used by every API endpoint,
// along with the fixed error responses the handlers return. Messages are
// deliberately generic: internal causes are logged, never echoed back.
package response

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

var EmptyRequestBodyResponse = Response{
	Status:  StatusError,
	Error:   "Empty Request Body",
	Message: "Request body is empty. Please provide necessary data.",
}

var BadRequestResponse = Response{
	Status:  StatusError,
	Error:   "Bad Request",
	Message: "The request could not be processed. Please check your input.",
}

var ResourceNotFoundResponse = Response{
	Status:  StatusError,
	Error:   "Resource Not Found",
	Message: "The requested resource was not found.",
}

var UnauthorizedResponse = Response{
	Status:  StatusError,
	Error:   "Unauthorized",
	Message: "You must be logged in to perform this action.",
}

var InvalidCredentialsResponse = Response{
	Status:  StatusError,
	Error:   "Invalid Credentials",
	Message: "The username or password is incorrect.",
}

var QuotaExceededResponse = Response{
	Status:  StatusError,
	Error:   "Quota Exceeded",
	Message: "The link creation limit for this account has been reached.",
}

var NotResourceOwnerResponse = Response{
	Status:  StatusError,
	Error:   "Forbidden",
	Message: "You don't have permission to modify this resource.",
}

var UsernameTakenResponse = Response{
	Status:  StatusError,
	Error:   "Username Taken",
	Message: "This username is already registered.",
}

var LinkConflictResponse = Response{
	Status:  StatusError,
	Error:   "Identifier Conflict",
	Message: "The generated link identifier is already in use.",
}

var ServerErrorResponse = Response{
	Status:  StatusError,
	Error:   "Server Error",
	Message: "An internal server error occurred. Please try again later.",
}

type Response struct {
	Status  string `json:"status"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message"`
	Details []any  `json:"details,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func SuccessResponse(msg string, data ...any) Response {
	resp := Response{
		Status:  StatusSuccess,
		Message: msg,
	}

	if len(data) > 0 && data[0] != nil {
		resp.Data = data[0]
	}

	return resp
}

type validationError struct {
	Field string `json:"field"`
	Value string `json:"value"`
	Issue string `json:"issue"`
}

func getValidationErrors(err error) []validationError {
	var vErrs validator.ValidationErrors
	if !errors.As(err, &vErrs) {
		return nil
	}

	errs := make([]validationError, 0, len(vErrs))
	for _, vErr := range vErrs {
		issue := fmt.Sprintf("Invalid %s.", vErr.Tag())

		switch vErr.Tag() {
		case "required":
			issue = "This field is required."
		case "min":
			issue = fmt.Sprintf("Must be at least %s characters long.", vErr.Param())
		case "max":
			issue = fmt.Sprintf("Must be at most %s characters long.", vErr.Param())
		}

		errs = append(errs, validationError{
			Field: vErr.Field(),
			Value: fmt.Sprintf("%v", vErr.Value()),
			Issue: issue,
		})
	}

	return errs
}

func ValidationErrorResponse(err error) Response {
	resp := Response{
		Status:  StatusError,
		Error:   "Validation Error",
		Message: "The request contains invalid fields.",
	}

	for _, vErr := range getValidationErrors(err) {
		resp.Details = append(resp.Details, vErr)
	}

	return resp
}
