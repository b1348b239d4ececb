package browser

import (
	"strings"
	"testing"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joescharf/abacus/internal/session"
	"github.com/joescharf/abacus/internal/vaadin"
)

func TestCookieConversion(t *testing.T) {
	in := []session.Cookie{
		{Name: "JSESSIONID", Value: "abc", Domain: "erp.example.com", Path: "/", Expires: -1, HTTPOnly: true, Secure: true, SameSite: "Lax"},
		{Name: "FORTIADC", Value: "x", Domain: ".example.com", Path: "/", Expires: 1767225600},
	}
	params := toCookieParams(in)
	require.Len(t, params, 2)
	assert.Nil(t, params[0].Expires, "session cookie keeps no expiry")
	assert.Equal(t, network.CookieSameSiteLax, params[0].SameSite)
	require.NotNil(t, params[1].Expires)
	assert.Equal(t, int64(1767225600), time.Time(*params[1].Expires).Unix())

	back := fromNetworkCookies([]*network.Cookie{{
		Name: "JSESSIONID", Value: "abc", Domain: "erp.example.com", Path: "/",
		Expires: -1, HTTPOnly: true, Secure: true, SameSite: network.CookieSameSiteLax,
	}})
	assert.Equal(t, in[0], back[0])
}

func TestMergeOrigin(t *testing.T) {
	origins := []session.Origin{{Origin: "https://a", LocalStorage: []session.StorageItem{{Name: "k", Value: "1"}}}}

	origins = mergeOrigin(origins, session.Origin{Origin: "https://a", LocalStorage: []session.StorageItem{{Name: "k", Value: "2"}}})
	require.Len(t, origins, 1)
	assert.Equal(t, "2", origins[0].LocalStorage[0].Value)

	origins = mergeOrigin(origins, session.Origin{Origin: "https://b"})
	assert.Len(t, origins, 2)

	origins = mergeOrigin(origins, session.Origin{Origin: "null"})
	assert.Len(t, origins, 2)
}

func TestStorageRestoreScript(t *testing.T) {
	src, err := storageRestoreScript([]session.Origin{{Origin: "https://a", LocalStorage: []session.StorageItem{{Name: "k", Value: `"quoted"`}}}})
	require.NoError(t, err)
	assert.Contains(t, src, `"origin":"https://a"`)
	assert.Contains(t, src, `\"quoted\"`)
	assert.True(t, strings.HasSuffix(src, "})();"))
}

func TestScriptsAreTagged(t *testing.T) {
	assert.Equal(t, "query", vaadin.ScriptName(queryScript(`vaadin-button[movie-id="x"]`)))
	assert.Equal(t, "focus", vaadin.ScriptName(focusScript("#a", true)))
	assert.Contains(t, queryScript(`a[href^="proj_services"]`), `"a[href^=\"proj_services\"]"`)
}

func TestKeyCodesCoverAllKeys(t *testing.T) {
	for _, k := range []vaadin.Key{vaadin.KeyEnter, vaadin.KeyTab, vaadin.KeyBackspace, vaadin.KeyEscape} {
		_, ok := keyCodes[k]
		assert.True(t, ok, k)
	}
}
