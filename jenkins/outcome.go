package jenkins

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// previewLen limits how much of a malformed body ends up in an error message.
const previewLen = 200

// Outcome is the uniform result of one request. Status 0 means no HTTP exchange took place
// and Body then holds a locally built diagnostic.
type Outcome struct {
	Status int
	Body   string
}

// OK reports a 200 response.
func (o Outcome) OK() bool {
	return o.Status == http.StatusOK
}

// In reports whether the status is one of codes.
func (o Outcome) In(codes ...int) bool {
	for _, c := range codes {
		if o.Status == c {
			return true
		}
	}

	return false
}

// Err returns the outcome as a StatusError.
func (o Outcome) Err() *StatusError {
	return &StatusError{Status: o.Status, Body: o.Body}
}

// Category groups outcomes by where the failure originated.
type Category int

// Outcome categories.
const (
	CategoryOK Category = iota
	CategoryConnectivity
	CategoryAuthentication
	CategoryAuthorization
	CategoryResource
)

func (c Category) String() string {
	switch c {
	case CategoryOK:
		return "ok"
	case CategoryConnectivity:
		return "connectivity"
	case CategoryAuthentication:
		return "authentication"
	case CategoryAuthorization:
		return "authorization"
	default:
		return "resource"
	}
}

// Classify maps a status code to its category.
func Classify(status int) Category {
	switch status {
	case http.StatusOK:
		return CategoryOK
	case 0:
		return CategoryConnectivity
	case http.StatusUnauthorized:
		return CategoryAuthentication
	case http.StatusForbidden:
		return CategoryAuthorization
	default:
		return CategoryResource
	}
}

// StatusError is an outcome the caller could not accept.
type StatusError struct {
	Status int
	Body   string
}

// Category of the failure.
func (e *StatusError) Category() Category {
	return Classify(e.Status)
}

func (e *StatusError) Error() string {
	switch e.Category() {
	case CategoryConnectivity:
		return "cannot connect to Jenkins: " + e.Body
	case CategoryAuthentication:
		return "authentication required: set JENKINS_USER and JENKINS_TOKEN"
	case CategoryAuthorization:
		return "access forbidden: check your Jenkins credentials and permissions"
	default:
		return fmt.Sprintf("Error (%d): %s", e.Status, e.Body)
	}
}

// PayloadError reports a body that is not the JSON we asked for.
type PayloadError struct {
	Preview string
	Err     error
}

func (e *PayloadError) Error() string {
	return fmt.Sprintf("invalid JSON response: %s", e.Preview)
}

func (e *PayloadError) Unwrap() error {
	return e.Err
}

// Decode unmarshals the body of a successful outcome into v.
func Decode(o Outcome, v interface{}) error {
	if err := json.Unmarshal([]byte(o.Body), v); err != nil {
		return &PayloadError{Preview: preview(o.Body), Err: err}
	}

	return nil
}

// preview keeps the first previewLen runes of body.
func preview(body string) string {
	runes := []rune(body)
	if len(runes) <= previewLen {
		return body
	}

	return string(runes[:previewLen])
}
