// Package validation holds the declarative input schemas of the signup, login,
// password reset, profile and expense forms. A schema never fails for bad user
// input; it reports field errors instead. Only programmer mistakes (an unknown
// schema or the wrong input type) come back as an error.
package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/example/expense-tracker/internal/models"
)

// Name identifies a schema.
type Name string

const (
	SignUp        Name = "signup"
	Login         Name = "login"
	PasswordReset Name = "password_reset"
	Profile       Name = "profile"
	Expense       Name = "expense"
)

// ErrUnknownSchema is returned for a schema name that was never registered.
var ErrUnknownSchema = errors.New("unknown validation schema")

// Errors maps a field name to its messages in the order the checks ran.
type Errors map[string][]string

// Valid reports whether no field failed.
func (e Errors) Valid() bool { return len(e) == 0 }

// First returns the first message for field, or "".
func (e Errors) First(field string) string {
	if msgs := e[field]; len(msgs) > 0 {
		return msgs[0]
	}
	return ""
}

// Has reports whether msg is among the messages of field.
func (e Errors) Has(field, msg string) bool {
	for _, m := range e[field] {
		if m == msg {
			return true
		}
	}
	return false
}

func (e Errors) add(field, msg string) {
	e[field] = append(e[field], msg)
}

// Messages used by the schemas. Kept exported so callers and tests compare
// against the same text the user sees.
const (
	MsgEmailRequired      = "Email is required"
	MsgInvalidEmail       = "Invalid email"
	MsgInvalidEmailSignUp = "Invalid email address"
	MsgPasswordRequired   = "Password is required"
	MsgPasswordLength     = "Password must be at least 8 characters"
	MsgPasswordUpper      = "Password must contain at least one uppercase letter"
	MsgPasswordLower      = "Password must contain at least one lowercase letter"
	MsgPasswordNumber     = "Password must contain at least one number"
	MsgPasswordSpecial    = "Password must contain at least one special character"
	MsgConfirmRequired    = "Please confirm your password"
	MsgPasswordMismatch   = "Passwords don't match"
	MsgDisplayNameMissing = "Display name is required"
	MsgInvalidPhotoURL    = "Invalid photo URL"
	MsgInvalidPhone       = "Invalid phone number"
	MsgInvalidAmount      = "Enter a valid amount (> 0)"
	MsgDescriptionMissing = "Description is required"
	MsgSelectCategory     = "Select a category"
)

const minPasswordLength = 8

var (
	upperRe   = regexp.MustCompile(`[A-Z]`)
	lowerRe   = regexp.MustCompile(`[a-z]`)
	digitRe   = regexp.MustCompile(`[0-9]`)
	specialRe = regexp.MustCompile(`[^A-Za-z0-9]`)
	phoneRe   = regexp.MustCompile(`^[0-9+\-() ]{6,20}$`)
)

// validate is safe for concurrent use.
var validate = validator.New()

type schemaFunc func(input interface{}) (Errors, error)

var schemas = map[Name]schemaFunc{
	SignUp:        signUpSchema,
	Login:         loginSchema,
	PasswordReset: passwordResetSchema,
	Profile:       profileSchema,
	Expense:       expenseSchema,
}

// Validate runs the named schema against input. input may be the request
// struct or a pointer to it.
func Validate(name Name, input interface{}) (Errors, error) {
	fn, ok := schemas[name]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownSchema, "schema %q", name)
	}
	return fn(input)
}

func wrongInput(name Name, input interface{}) error {
	return fmt.Errorf("validation: schema %q cannot validate %T", name, input)
}

func isEmail(s string) bool {
	return validate.Var(s, "email") == nil
}

func isHTTPURL(s string) bool {
	return validate.Var(s, "http_url") == nil
}

func checkEmail(errs Errors, email, invalidMsg string) {
	if email == "" {
		errs.add("email", MsgEmailRequired)
		return
	}
	if !isEmail(email) {
		errs.add("email", invalidMsg)
	}
}

// PasswordChecks reports each password rule separately.
type PasswordChecks struct {
	Length  bool
	Upper   bool
	Lower   bool
	Number  bool
	Special bool
}

// CheckPassword evaluates the signup password policy.
func CheckPassword(password string) PasswordChecks {
	return PasswordChecks{
		Length:  len(password) >= minPasswordLength,
		Upper:   upperRe.MatchString(password),
		Lower:   lowerRe.MatchString(password),
		Number:  digitRe.MatchString(password),
		Special: specialRe.MatchString(password),
	}
}

func signUpSchema(input interface{}) (Errors, error) {
	var req models.SignUpRequest
	switch v := input.(type) {
	case models.SignUpRequest:
		req = v
	case *models.SignUpRequest:
		req = *v
	default:
		return nil, wrongInput(SignUp, input)
	}

	errs := Errors{}
	checkEmail(errs, req.Email, MsgInvalidEmailSignUp)

	checks := CheckPassword(req.Password)
	if !checks.Length {
		errs.add("password", MsgPasswordLength)
	}
	if !checks.Upper {
		errs.add("password", MsgPasswordUpper)
	}
	if !checks.Lower {
		errs.add("password", MsgPasswordLower)
	}
	if !checks.Number {
		errs.add("password", MsgPasswordNumber)
	}
	if !checks.Special {
		errs.add("password", MsgPasswordSpecial)
	}

	switch {
	case req.ConfirmPassword == "":
		errs.add("confirmPassword", MsgConfirmRequired)
	case req.ConfirmPassword != req.Password:
		errs.add("confirmPassword", MsgPasswordMismatch)
	}
	return errs, nil
}

func loginSchema(input interface{}) (Errors, error) {
	var req models.LoginRequest
	switch v := input.(type) {
	case models.LoginRequest:
		req = v
	case *models.LoginRequest:
		req = *v
	default:
		return nil, wrongInput(Login, input)
	}

	errs := Errors{}
	checkEmail(errs, req.Email, MsgInvalidEmail)
	if req.Password == "" {
		errs.add("password", MsgPasswordRequired)
	}
	return errs, nil
}

func passwordResetSchema(input interface{}) (Errors, error) {
	var req models.PasswordResetRequest
	switch v := input.(type) {
	case models.PasswordResetRequest:
		req = v
	case *models.PasswordResetRequest:
		req = *v
	default:
		return nil, wrongInput(PasswordReset, input)
	}

	errs := Errors{}
	checkEmail(errs, req.Email, MsgInvalidEmail)
	return errs, nil
}

func profileSchema(input interface{}) (Errors, error) {
	var req models.ProfileRequest
	switch v := input.(type) {
	case models.ProfileRequest:
		req = v
	case *models.ProfileRequest:
		req = *v
	default:
		return nil, wrongInput(Profile, input)
	}

	errs := Errors{}
	if strings.TrimSpace(req.DisplayName) == "" {
		errs.add("displayName", MsgDisplayNameMissing)
	}
	if req.PhotoURL != "" && !isHTTPURL(req.PhotoURL) {
		errs.add("photoUrl", MsgInvalidPhotoURL)
	}
	if req.Phone != "" && !phoneRe.MatchString(req.Phone) {
		errs.add("phone", MsgInvalidPhone)
	}
	return errs, nil
}

func expenseSchema(input interface{}) (Errors, error) {
	var req models.ExpenseRequest
	switch v := input.(type) {
	case models.ExpenseRequest:
		req = v
	case *models.ExpenseRequest:
		req = *v
	default:
		return nil, wrongInput(Expense, input)
	}
	_, errs := ParseExpense(req)
	return errs, nil
}

// ParseAmount strips thousands separators and parses a strictly positive
// amount rounded to two decimals.
func ParseAmount(raw string) (decimal.Decimal, bool) {
	cleaned := strings.TrimSpace(strings.ReplaceAll(raw, ",", ""))
	if cleaned == "" {
		return decimal.Zero, false
	}
	value, err := decimal.NewFromString(cleaned)
	if err != nil || !value.IsPositive() {
		return decimal.Zero, false
	}
	value = value.Round(2)
	if !value.IsPositive() {
		return decimal.Zero, false
	}
	return value, true
}

// ParseExpense validates an expense form and, when valid, returns the draft
// with a trimmed description and a two-decimal amount. The timestamp is left
// for the caller to stamp.
func ParseExpense(req models.ExpenseRequest) (models.ExpenseDraft, Errors) {
	errs := Errors{}
	amount, ok := ParseAmount(string(req.Amount))
	if !ok {
		errs.add("amount", MsgInvalidAmount)
	}
	description := strings.TrimSpace(req.Description)
	if description == "" {
		errs.add("description", MsgDescriptionMissing)
	}
	category := models.Category(req.Category)
	if !category.Valid() {
		errs.add("category", MsgSelectCategory)
	}
	return models.ExpenseDraft{
		Amount:      amount,
		Description: description,
		Category:    category,
	}, errs
}
