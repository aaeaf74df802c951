package cardview

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPage = `<html><head><style>.card { color: black; }</style></head>
<body class="card night_mode">
<div>Capital of <b>Japan</b>?</div>
<hr id=answer>
<div>Tokyo <img src="tokyo.png"></div>
</body></html>`

func TestSurface_Text(t *testing.T) {
	s := New()
	require.NoError(t, s.Load(testPage))

	assert.Equal(t, "Capital of Japan?\n---\nTokyo [image: tokyo.png]", s.Text())
	assert.True(t, s.page.night)
	assert.False(t, s.page.centered)
	assert.Equal(t, testPage, s.Markup())
}

func TestSurface_HiddenTypeAnswer(t *testing.T) {
	s := New()
	require.NoError(t, s.Load(`<body><div>Rome<span class="typeOff">secret</span></div></body>`))
	assert.Equal(t, "Rome", s.Text())
}

func TestSurface_ParagraphsAndBreaks(t *testing.T) {
	s := New()
	require.NoError(t, s.Load(`<body class="vertically_centered">one<br>two<p>three</p></body>`))
	assert.Equal(t, "one\ntwo\n\nthree", s.Text())
	assert.True(t, s.page.centered)
}

func TestSurface_ViewHiddenIsBlank(t *testing.T) {
	s := New()
	require.NoError(t, s.Load(testPage))
	assert.NotContains(t, s.View(40, 6), "Tokyo")

	s.SetVisible(true)
	assert.True(t, s.Visible())
	assert.Contains(t, s.View(40, 6), "Tokyo")
}

func TestSurface_Release(t *testing.T) {
	s := New()
	require.NoError(t, s.Load(testPage))
	s.SetVisible(true)

	s.Release()
	assert.True(t, s.Released())
	assert.False(t, s.Visible())
	assert.Empty(t, s.Markup())
	assert.ErrorIs(t, s.Load(testPage), ErrReleased)
}

func TestCollapseSpace(t *testing.T) {
	assert.Equal(t, "", collapseSpace(""))
	assert.Equal(t, " ", collapseSpace(" \n\t"))
	assert.Equal(t, " a b ", collapseSpace("  a \n b  "))
	assert.Equal(t, "a b", collapseSpace("a   b"))
}
