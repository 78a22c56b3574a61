package testutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleancity/bugbusters/pkg/config"
)

func TestDecodeStorage(t *testing.T) {
	got, err := DecodeStorage(`{"authToken":"abc","user":"{\"name\":\"Test User\",\"role\":\"resident\"}"}`)
	require.NoError(t, err)

	assert.Equal(t, "abc", got["authToken"])
	assert.Equal(t, `{"name":"Test User","role":"resident"}`, got["user"], "JSON values stay raw strings")
}

func TestDecodeStorage_Empty(t *testing.T) {
	for _, raw := range []string{"", "{}"} {
		got, err := DecodeStorage(raw)
		require.NoError(t, err)
		assert.Empty(t, got)
		assert.NotNil(t, got)
	}
}

func TestDecodeStorage_Malformed(t *testing.T) {
	_, err := DecodeStorage(`{"authToken":`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode storage snapshot")
}

func TestStorageSnapshot_UnknownArea(t *testing.T) {
	s := &Session{}
	_, err := s.StorageSnapshot("indexedDB")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown storage area")
}

func TestSessionWithoutPage(t *testing.T) {
	s := &Session{}

	_, err := s.URL()
	assert.ErrorIs(t, err, ErrNoPage)
	assert.ErrorIs(t, s.Navigate("/login"), ErrNoPage)
	_, err = s.Element("#email")
	assert.ErrorIs(t, err, ErrNoPage)
	_, err = s.Elements(".request-location")
	assert.ErrorIs(t, err, ErrNoPage)
	_, err = s.WaitMessage(".error-message", 0, time.Second)
	assert.ErrorIs(t, err, ErrNoPage)
	_, err = s.LocalStorage()
	assert.ErrorIs(t, err, ErrNoPage)
	assert.ErrorIs(t, s.ClearStorage(), ErrNoPage)
	assert.Empty(t, s.Dialogs())
	assert.Zero(t, s.DialogCount())
	assert.NoError(t, s.Close(), "closing an empty session is a no-op")
}

func TestURLFor(t *testing.T) {
	s := &Session{baseURL: "https://clean-city-bug-busters.netlify.app"}

	assert.Equal(t, "https://clean-city-bug-busters.netlify.app/login", s.URLFor("/login"))
	assert.Equal(t, "http://127.0.0.1:4000/admin", s.URLFor("http://127.0.0.1:4000/admin"))
	assert.Equal(t, "about:blank", s.URLFor("about:blank"))
}

func TestBrowserConfigFrom(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.BaseURL = "http://127.0.0.1:4000"
	cfg.Headless = false
	cfg.ImplicitWait = 3 * time.Second
	cfg.ExplicitWait = 5 * time.Second

	bc := BrowserConfigFrom(cfg)
	assert.Equal(t, "http://127.0.0.1:4000", bc.BaseURL)
	assert.False(t, bc.Headless)
	assert.Equal(t, 3*time.Second, bc.ImplicitWait)
	assert.Equal(t, 5*time.Second, bc.ExplicitWait)
	assert.Equal(t, DefaultBrowserConfig().PageLoad, bc.PageLoad)
}
