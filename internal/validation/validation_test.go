package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/expense-tracker/internal/models"
)

func Test_SignUp_WellFormedInputHasNoErrors(t *testing.T) {
	for _, pw := range []string{"Str0ng!pass", "Abcdef1$", "P@ssw0rdLonger123"} {
		errs, err := Validate(SignUp, models.SignUpRequest{
			Email:           "user@example.com",
			Password:        pw,
			ConfirmPassword: pw,
		})
		require.NoError(t, err)
		assert.True(t, errs.Valid(), "password %q: %v", pw, errs)
	}
}

func Test_SignUp_EachMissingClassReportsOnlyItsMessage(t *testing.T) {
	cases := map[string]struct {
		password string
		expected string
	}{
		"upper":   {"abcdef1$x", MsgPasswordUpper},
		"lower":   {"ABCDEF1$X", MsgPasswordLower},
		"number":  {"Abcdefg$x", MsgPasswordNumber},
		"special": {"Abcdefg1x", MsgPasswordSpecial},
		"length":  {"Ab1$x", MsgPasswordLength},
	}
	all := []string{MsgPasswordLength, MsgPasswordUpper, MsgPasswordLower, MsgPasswordNumber, MsgPasswordSpecial}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			errs, err := Validate(SignUp, &models.SignUpRequest{
				Email:           "user@example.com",
				Password:        tc.password,
				ConfirmPassword: tc.password,
			})
			require.NoError(t, err)
			assert.Equal(t, []string{tc.expected}, errs["password"])
			for _, msg := range all {
				if msg != tc.expected {
					assert.False(t, errs.Has("password", msg))
				}
			}
			assert.Empty(t, errs["email"])
			assert.Empty(t, errs["confirmPassword"])
		})
	}
}

func Test_SignUp_MismatchAttachesToConfirmation(t *testing.T) {
	errs, err := Validate(SignUp, models.SignUpRequest{
		Email:           "user@example.com",
		Password:        "Str0ng!pass",
		ConfirmPassword: "Str0ng!pasS",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{MsgPasswordMismatch}, errs["confirmPassword"])
	assert.Empty(t, errs["password"])
}

func Test_SignUp_EmptyConfirmation(t *testing.T) {
	errs, err := Validate(SignUp, models.SignUpRequest{Email: "user@example.com", Password: "Str0ng!pass"})
	require.NoError(t, err)
	assert.Equal(t, MsgConfirmRequired, errs.First("confirmPassword"))
}

func Test_Login_EmptyFields(t *testing.T) {
	errs, err := Validate(Login, models.LoginRequest{})
	require.NoError(t, err)
	assert.True(t, errs.Has("email", MsgEmailRequired))
	assert.True(t, errs.Has("password", MsgPasswordRequired))
}

func Test_Login_MalformedEmailOnly(t *testing.T) {
	errs, err := Validate(Login, models.LoginRequest{Email: "not-an-email", Password: "x"})
	require.NoError(t, err)
	assert.Equal(t, Errors{"email": {MsgInvalidEmail}}, errs)
}

func Test_PasswordReset(t *testing.T) {
	errs, err := Validate(PasswordReset, models.PasswordResetRequest{Email: "someone@example.com"})
	require.NoError(t, err)
	assert.True(t, errs.Valid())

	errs, err = Validate(PasswordReset, models.PasswordResetRequest{Email: "nope"})
	require.NoError(t, err)
	assert.Equal(t, MsgInvalidEmail, errs.First("email"))
}

func Test_Profile(t *testing.T) {
	errs, err := Validate(Profile, models.ProfileRequest{DisplayName: "Asha", Phone: "+91 (22) 555-0100", PhotoURL: "https://example.com/me.jpg"})
	require.NoError(t, err)
	assert.True(t, errs.Valid(), "%v", errs)

	errs, err = Validate(Profile, models.ProfileRequest{DisplayName: "  "})
	require.NoError(t, err)
	assert.Equal(t, Errors{"displayName": {MsgDisplayNameMissing}}, errs)

	errs, err = Validate(Profile, models.ProfileRequest{DisplayName: "Asha", Phone: "12a45", PhotoURL: "not a url"})
	require.NoError(t, err)
	assert.Equal(t, MsgInvalidPhone, errs.First("phone"))
	assert.Equal(t, MsgInvalidPhotoURL, errs.First("photoUrl"))

	errs, err = Validate(Profile, models.ProfileRequest{DisplayName: "Asha", Phone: "12345"})
	require.NoError(t, err)
	assert.Equal(t, MsgInvalidPhone, errs.First("phone"), "too short")
}

func Test_Expense_EmptyForm(t *testing.T) {
	errs, err := Validate(Expense, models.ExpenseRequest{})
	require.NoError(t, err)
	assert.Equal(t, Errors{
		"amount":      {MsgInvalidAmount},
		"description": {MsgDescriptionMissing},
		"category":    {MsgSelectCategory},
	}, errs)
}

func Test_Expense_ParseStripsSeparatorsAndTrims(t *testing.T) {
	draft, errs := ParseExpense(models.ExpenseRequest{Amount: "1,234.567", Description: "  Rent  ", Category: "Other"})
	require.True(t, errs.Valid())
	assert.Equal(t, "1234.57", draft.Amount.StringFixed(2))
	assert.Equal(t, "Rent", draft.Description)
	assert.Equal(t, models.CategoryOther, draft.Category)
}

func Test_Expense_RejectsNonPositiveAndUnknownCategory(t *testing.T) {
	for _, amount := range []string{"0", "-5", "abc", "0.001"} {
		_, errs := ParseExpense(models.ExpenseRequest{Amount: models.AmountInput(amount), Description: "x", Category: "Food"})
		assert.Equal(t, MsgInvalidAmount, errs.First("amount"), amount)
	}
	_, errs := ParseExpense(models.ExpenseRequest{Amount: "10", Description: "x", Category: "Transport"})
	assert.Equal(t, MsgSelectCategory, errs.First("category"))
}

func Test_UnknownSchemaIsProgrammerError(t *testing.T) {
	_, err := Validate(Name("nope"), models.LoginRequest{})
	assert.ErrorIs(t, err, ErrUnknownSchema)

	_, err = Validate(Login, models.SignUpRequest{})
	assert.Error(t, err)
}
