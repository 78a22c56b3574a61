//go:build e2e

package e2e

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleancity/bugbusters/pkg/checks"
	"github.com/cleancity/bugbusters/pkg/testutil"
)

// newSession launches a fresh browser pointed at the suite's base URL.
// The browser is closed when the test and its subtests finish, whatever
// their outcome.
func newSession(t *testing.T) *testutil.Session {
	t.Helper()
	return newSessionAt(t, suite.BaseURL)
}

func newSessionAt(t *testing.T, baseURL string) *testutil.Session {
	t.Helper()

	bc := testutil.BrowserConfigFrom(suite)
	bc.BaseURL = baseURL

	s, err := testutil.NewSession(bc)
	require.NoError(t, err, "failed to start browser session")

	t.Cleanup(func() {
		if err := s.ClearStorage(); err != nil {
			t.Logf("clear storage: %v", err)
		}
		if err := s.Close(); err != nil {
			t.Errorf("browser close error: %v", err)
		}
	})
	return s
}

// loginUser signs in through the login form and waits until the
// application navigates away from it.
func loginUser(t *testing.T, s *testutil.Session, email, password string) {
	t.Helper()

	require.NoError(t, s.Navigate("/login"))
	require.NoError(t, s.Fill("#email", email))
	require.NoError(t, s.Fill("#password", password))
	require.NoError(t, s.Submit())

	err := s.WaitURLChange(s.URLFor("/login"), s.ExplicitWait())
	require.NoError(t, err, "login as %s did not complete", email)
}

// defaultLogin signs in with the sample account.
func defaultLogin(t *testing.T, s *testutil.Session) {
	t.Helper()
	loginUser(t, s, suite.Login.Email, suite.Login.Password)
}

// submitForValidation submits the form and waits for the first validation
// message, shown on the page or in a dialog. When none appears within the
// explicit wait, processed decides whether the application accepted the
// form anyway.
func submitForValidation(t *testing.T, s *testutil.Session, processed func() (bool, error)) checks.Validation {
	t.Helper()

	mark := s.DialogCount()
	require.NoError(t, s.Submit())

	msg, err := s.WaitMessage(".error-message", mark, s.ExplicitWait())
	if err == nil {
		return checks.Validation{Message: msg, Shown: true}
	}
	require.True(t, testutil.IsTimeout(err), "waiting for validation message: %v", err)

	t.Logf("no validation message within %v, checking that the form was not processed", s.ExplicitWait())
	accepted, err := processed()
	require.NoError(t, err)
	return checks.Validation{Processed: accepted}
}

// expectValidation submits the form and fails the test unless a validation
// message mentioning one of words appears or, outside strict mode, the form
// is at least not processed.
func expectValidation(t *testing.T, s *testutil.Session, words []string, processed func() (bool, error)) {
	t.Helper()
	v := submitForValidation(t, s, processed)
	for _, problem := range v.Problems(suite.StrictValidation, words...) {
		t.Error(problem)
	}
}

// urlLacks reports whether the current URL no longer contains substr, i.e.
// the application navigated away from the form.
func urlLacks(s *testutil.Session, substr string) func() (bool, error) {
	return func() (bool, error) {
		url, err := s.URL()
		if err != nil {
			return false, err
		}
		return !strings.Contains(url, substr), nil
	}
}

// settle waits the fixed delay the application needs to finish client-side work.
func settle(s *testutil.Session) {
	s.Sleep(suite.SettleDelay)
}

// urlContains asserts the current URL contains substr.
func urlContains(t *testing.T, s *testutil.Session, substr, msg string) {
	t.Helper()
	url, err := s.URL()
	require.NoError(t, err)
	assert.Contains(t, url, substr, msg)
}

// waitShort bounds waits for things that are expected to already be there.
const waitShort = 5 * time.Second
