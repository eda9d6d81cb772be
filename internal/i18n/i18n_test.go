package i18n

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranslationsFallBackToDefault(t *testing.T) {
	require.NoError(t, Initialize("en"))

	assert.Equal(t, "Patent not found", T("en", KeyPatentNotFound))
	assert.Equal(t, "找不到專利", T("zh_TW", KeyPatentNotFound))
	assert.Equal(t, "Invalid input", T("en", KeyValidationInvalid, "input"))

	// unknown language falls back to English, unknown key to the key
	assert.Equal(t, "Auction is already open", T("fr", KeyAuctionAlreadyOpen))
	assert.Equal(t, "missing.key", T("en", "missing.key"))
	assert.ElementsMatch(t, []string{"en", "zh_TW"}, GetSupportedLanguages())
}

func TestLocalesDefineTheSameKeys(t *testing.T) {
	require.NoError(t, Initialize("en"))

	instance.mu.RLock()
	defer instance.mu.RUnlock()
	en := instance.translations["en"]
	zh := instance.translations["zh_TW"]
	for key := range en {
		_, ok := zh[key]
		assert.True(t, ok, "zh_TW is missing %s", key)
	}
	assert.Len(t, zh, len(en))
}

func TestLoadTranslationsFromDirectory(t *testing.T) {
	fsys := fstest.MapFS{
		"msgs/en.json": {Data: []byte(`{"greeting": "Hello %s"}`)},
		"msgs/de.json": {Data: []byte(`{}`)},
	}

	tr := New("")
	require.NoError(t, tr.LoadTranslations(fsys, "msgs"))
	assert.Equal(t, []string{"de", "en"}, tr.Languages())
	assert.Equal(t, "Hello ledger", tr.T("de", "greeting", "ledger"))

	assert.Error(t, New("en").LoadTranslations(fsys, "missing"))
	assert.Error(t, New("en").LoadTranslations(fstest.MapFS{"bad/en.json": {Data: []byte("{")}}, "bad"))
}
