package services

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_]{3,15}$`)
	websitePattern  = regexp.MustCompile(`^(https?://)?([\da-z.-]+)\.([a-z.]{2,6})([/\w .-]*)*/?$`)
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	rules := map[string]*regexp.Regexp{
		"handle":  usernamePattern,
		"website": websitePattern,
	}
	for tag, re := range rules {
		if err := v.RegisterValidation(tag, matches(re)); err != nil {
			panic(fmt.Sprintf("register %q validation: %v", tag, err))
		}
	}
	return v
}

func matches(re *regexp.Regexp) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return re.MatchString(fl.Field().String())
	}
}

// messages maps "Struct.Field.tag" to the text shown to the caller.
var messages = map[string]string{
	"registerInput.Username.required": "Username is required",
	"registerInput.Username.handle":   "Username must be 3-15 characters and can only contain letters, numbers, and underscores",
	"registerInput.Email.required":    "Email is required",
	"registerInput.Email.email":       "Please provide a valid email address",
	"registerInput.Password.required": "Password is required",
	"registerInput.Password.min":      "Password must be at least 6 characters",

	"loginInput.Login.required":    "Username or email is required",
	"loginInput.Password.required": "Password is required",

	"tweetInput.Content.max": "Tweet content cannot exceed 280 characters",
	"tweetInput.Media.max":   "Tweet cannot have more than 4 media items",

	"commentInput.Content.required": "Comment content is required",
	"commentInput.Content.max":      "Comment cannot exceed 280 characters",

	"profileInput.Bio.max":         "Bio cannot exceed 160 characters",
	"profileInput.Location.max":    "Location cannot exceed 30 characters",
	"profileInput.Website.website": "Please provide a valid URL",

	"pollInput.Question.required": "Poll question is required",
	"pollInput.Options.min":       "Poll needs at least 2 options",
	"pollInput.Options.max":       "Poll cannot have more than 10 options",
	"pollInput.Options.required":  "Poll options cannot be empty",
}

// check validates s and converts the first failure into an InvalidInput error.
func check(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return internal("validation failed", err)
	}
	fe := verrs[0]
	if msg, ok := messages[fe.StructNamespace()+"."+fe.Tag()]; ok {
		return newError(KindInvalidInput, msg)
	}
	if msg, ok := messages[stripIndex(fe.StructNamespace())+"."+fe.Tag()]; ok {
		return newError(KindInvalidInput, msg)
	}
	return newError(KindInvalidInput, fe.Field()+" is invalid")
}

// stripIndex turns "pollInput.Options[1]" into "pollInput.Options".
func stripIndex(ns string) string {
	if i := strings.IndexByte(ns, '['); i >= 0 {
		return ns[:i]
	}
	return ns
}
