package deck

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const capitalsDeck = `
name: Capitals
media_dir: media
css: ".card { font-family: serif; }"
options:
  time_limit: 30s
note_types:
  - name: Basic
    fields:
      - name: Front
      - name: Back
        font: Arial
        size: 20
      - name: Extra
    templates:
      - name: Forward
        front: "{{Front}}{{type:Back}}"
        back: "{{FrontSide}}<hr id=answer>{{Back}}{{#Extra}}<br>{{Extra}}{{/Extra}}"
      - name: Reverse
        front: "{{#Extra}}{{Back}}{{/Extra}}"
        back: "{{Front}}"
  - name: Cloze
    kind: cloze
    fields:
      - name: Text
    templates:
      - name: Cloze
        front: "{{cloze:Text}}{{type:cloze:Text}}"
        back: "{{cloze:Text}}"
notes:
  - id: 1
    type: Basic
    fields: {Front: "Capital of Japan?", Back: "Tokyo", Extra: "[sound:tokyo.mp3]"}
  - id: 2
    type: Basic
    fields: {Front: "Capital of France?", Back: "Paris"}
  - type: Cloze
    fields: {Text: "{{c1::Rome}} is in {{c2::Italy::country}}"}
`

func parseCapitals(t *testing.T) *Collection {
	t.Helper()
	c, err := Parse([]byte(capitalsDeck), "/decks")
	require.NoError(t, err)
	return c
}

func cardIDs(cards []Card) []int64 {
	ids := make([]int64, len(cards))
	for i, c := range cards {
		ids[i] = c.ID
	}
	return ids
}

func TestParseGeneratesCards(t *testing.T) {
	c := parseCapitals(t)

	assert.Equal(t, "Capitals", c.Name())
	assert.Equal(t, []int64{1000, 1001, 2000, 3000, 3001}, cardIDs(c.Cards()))

	opts := c.Options()
	assert.Equal(t, 30*time.Second, opts.TimeLimit)
	assert.True(t, opts.Autoplay, "unset options keep their defaults")
	assert.Equal(t, 20, opts.NewPerSession)

	card, err := c.Card(3001)
	require.NoError(t, err)
	assert.Equal(t, int64(3), card.NoteID)
	assert.Equal(t, 1, card.Ord)
	assert.Equal(t, 30*time.Second, card.TimeLimit)
}

func TestCardNotFound(t *testing.T) {
	c := parseCapitals(t)
	_, err := c.Card(2001)
	assert.True(t, errors.Is(err, ErrCardNotFound))
}

func TestRenderStandardCard(t *testing.T) {
	c := parseCapitals(t)
	card, err := c.Card(1000)
	require.NoError(t, err)

	q, err := c.RenderQuestion(card)
	require.NoError(t, err)
	assert.Equal(t, "<style>.card { font-family: serif; }</style>Capital of Japan?[[type:Back]]", q)

	a, err := c.RenderAnswer(card)
	require.NoError(t, err)
	assert.Equal(t, "<style>.card { font-family: serif; }</style>Capital of Japan?<hr id=answer>Tokyo<br>[sound:tokyo.mp3]", a)

	assert.Contains(t, c.AnswerFormat(card), "{{FrontSide}}")
}

func TestRenderClozeCard(t *testing.T) {
	c := parseCapitals(t)

	first, _ := c.Card(3000)
	q, err := c.RenderQuestion(first)
	require.NoError(t, err)
	assert.Contains(t, q, "<span class=cloze>[...]</span> is in Italy[[type:cloze:Text]]")

	second, _ := c.Card(3001)
	q, err = c.RenderQuestion(second)
	require.NoError(t, err)
	assert.Contains(t, q, "Rome is in <span class=cloze>[country]</span>")

	a, err := c.RenderAnswer(second)
	require.NoError(t, err)
	assert.Contains(t, a, "Rome is in <span class=cloze>Italy</span>")
}

func TestField(t *testing.T) {
	c := parseCapitals(t)
	card, _ := c.Card(1000)

	f, ok := c.Field(card, "Back")
	require.True(t, ok)
	assert.Equal(t, "Tokyo", f.Value)
	assert.Equal(t, "Arial", f.Font)
	assert.Equal(t, 20, f.Size)

	_, ok = c.Field(card, "Missing")
	assert.False(t, ok)
}

func TestMediaDirResolvesAgainstDeck(t *testing.T) {
	c := parseCapitals(t)
	assert.Equal(t, filepath.Join("/decks", "media"), c.MediaDir())
}

func TestMediaRefs(t *testing.T) {
	c, err := Parse([]byte(`
name: Media
note_types:
  - name: Basic
    fields: [{name: Front}, {name: Back}]
    templates:
      - name: Card
        front: "{{Front}}"
        back: "{{FrontSide}}{{Back}}"
notes:
  - id: 1
    type: Basic
    fields: {Front: "<img src=\"a.png\">[sound:a.mp3]", Back: "[sound:b.mp3][sound:a.mp3]"}
`), "/decks")
	require.NoError(t, err)

	card, _ := c.Card(1000)
	refs, err := c.MediaRefs(card)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.mp3", "a.png", "b.mp3"}, refs)
}

func TestValidateReportsEveryProblem(t *testing.T) {
	_, err := Parse([]byte(`
name: Broken
note_types:
  - name: Basic
    fields: [{name: Front}]
    templates: [{name: Card, front: "{{Front}}", back: "{{Front}}"}]
notes:
  - id: 1
    type: Basic
    fields: {Front: "a", Nope: "b"}
  - id: 1
    type: Basic
    fields: {Front: "c"}
  - id: 2
    type: Missing
`), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `field "Nope" is not defined`)
	assert.Contains(t, err.Error(), "duplicate id 1")
	assert.Contains(t, err.Error(), `unknown note type "Missing"`)
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	_, err := Parse([]byte("name: X\ncolour: red\n"), "")
	require.Error(t, err)
}

func TestLoadErrorCarriesPath(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deck.yaml")
	require.NoError(t, os.WriteFile(path, []byte(capitalsDeck), 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, path, c.Path())
	require.Len(t, c.Cards(), 5)

	edited := capitalsDeck + `
  - id: 9
    type: Basic
    fields: {Front: "Capital of Peru?", Back: "Lima"}
`
	require.NoError(t, os.WriteFile(path, []byte(edited), 0o644))
	require.NoError(t, c.Reload())
	_, err = c.Card(9000)
	assert.NoError(t, err)
}

func TestCheckMedia(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "deck.yaml")
	require.NoError(t, os.WriteFile(path, []byte(capitalsDeck), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "media"), 0o755))

	c, err := Load(path)
	require.NoError(t, err)

	missing, err := c.CheckMedia(context.Background())
	require.NoError(t, err)
	require.Len(t, missing, 1)
	assert.Equal(t, "tokyo.mp3", missing[0].Name)
	assert.Equal(t, []int64{1000}, missing[0].CardIDs)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "media", "tokyo.mp3"), nil, 0o644))
	missing, err = c.CheckMedia(context.Background())
	require.NoError(t, err)
	assert.Empty(t, missing)
}

func TestTemplateSections(t *testing.T) {
	ctx := &renderContext{
		fields: map[string]string{"A": "x", "B": "", "C": "<img src=c.png>"},
		tags:   []string{"geo", "asia"},
		deck:   "D",
		card:   "K",
	}
	got, err := renderTemplate("{{#A}}a{{#A}}[{{A}}]{{/A}}{{/A}}{{^B}}no-b{{/B}}{{#B}}b{{/B}}{{#C}}c{{/C}}", ctx)
	require.NoError(t, err)
	assert.Equal(t, "a[x]no-bc", got)

	got, err = renderTemplate("{{Tags}}|{{Deck}}|{{Card}}|{{Z}}", ctx)
	require.NoError(t, err)
	assert.Equal(t, "geo asia|D|K|{unknown field Z}", got)

	_, err = renderTemplate("{{#A}}open", ctx)
	assert.Error(t, err)
	_, err = renderTemplate("{{/A}}", ctx)
	assert.Error(t, err)
}

func TestTemplateTextFilter(t *testing.T) {
	ctx := &renderContext{fields: map[string]string{"A": "<b>bold</b> move"}}
	got, err := renderTemplate("{{text:A}}", ctx)
	require.NoError(t, err)
	assert.Equal(t, "bold move", got)
}

func TestSetMediaDirSurvivesReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "deck.yaml")
	require.NoError(t, os.WriteFile(path, []byte(capitalsDeck), 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "media"), c.MediaDir())

	c.SetMediaDir("/srv/audio")
	require.NoError(t, c.Reload())
	assert.Equal(t, "/srv/audio", c.MediaDir())
}
