package deck

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"github.com/abhisek/reviewz/internal/markup"
	"github.com/abhisek/reviewz/internal/sound"
	"github.com/abhisek/reviewz/internal/typeans"
)

var imgSrcPattern = regexp.MustCompile(`(?i)<img[^>]*\ssrc\s*=\s*["']?([^"'>\s]+)`)

// Collection is a loaded deck. It is safe for concurrent use; Reload swaps
// its contents atomically.
type Collection struct {
	mu       sync.RWMutex
	path     string
	baseDir  string
	mediaDir string // overrides file.MediaDir when set
	file     File
	types    map[string]*NoteType
	notes    map[int64]*Note
	cards    []Card
	byID     map[int64]int
}

func newCollection(f File, baseDir string) (*Collection, error) {
	c := &Collection{baseDir: baseDir}
	if err := c.build(f); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Collection) build(f File) error {
	types := make(map[string]*NoteType, len(f.NoteTypes))
	for i := range f.NoteTypes {
		types[f.NoteTypes[i].Name] = &f.NoteTypes[i]
	}
	notes := make(map[int64]*Note, len(f.Notes))
	var cards []Card
	byID := make(map[int64]int)

	for i := range f.Notes {
		n := &f.Notes[i]
		notes[n.ID] = n
		nt := types[n.Type]

		var ords []int
		if nt.Kind == KindCloze {
			ords = clozeOrds(n)
		} else {
			for ord := range nt.Templates {
				ords = append(ords, ord)
			}
		}

		for _, ord := range ords {
			tmpl := nt.Templates[0]
			if nt.Kind != KindCloze {
				tmpl = nt.Templates[ord]
			}
			front, err := renderTemplate(tmpl.Front, c.contextFor(f, n, tmpl, ord, false))
			if err != nil {
				return fmt.Errorf("note %d template %q: %w", n.ID, tmpl.Name, err)
			}
			if _, err := renderTemplate(tmpl.Back, c.contextFor(f, n, tmpl, ord, true)); err != nil {
				return fmt.Errorf("note %d template %q: %w", n.ID, tmpl.Name, err)
			}
			if nt.Kind != KindCloze && isBlank(front) {
				continue
			}
			card := Card{
				ID:        CardID(n.ID, ord),
				NoteID:    n.ID,
				Ord:       ord,
				Template:  tmpl.Name,
				TimeLimit: f.Options.TimeLimit,
			}
			byID[card.ID] = len(cards)
			cards = append(cards, card)
		}
	}

	c.mu.Lock()
	c.file = f
	c.types = types
	c.notes = notes
	c.cards = cards
	c.byID = byID
	c.mu.Unlock()
	return nil
}

func (c *Collection) contextFor(f File, n *Note, tmpl Template, ord int, answer bool) *renderContext {
	nt := c.typeOf(f, n)
	fields := make(map[string]string, len(nt.Fields))
	for _, def := range nt.Fields {
		fields[def.Name] = n.Fields[def.Name]
	}
	return &renderContext{
		fields: fields,
		tags:   n.Tags,
		deck:   f.Name,
		card:   tmpl.Name,
		ord:    ord,
		answer: answer,
	}
}

func (c *Collection) typeOf(f File, n *Note) *NoteType {
	for i := range f.NoteTypes {
		if f.NoteTypes[i].Name == n.Type {
			return &f.NoteTypes[i]
		}
	}
	return &NoteType{}
}

func isBlank(content string) bool {
	return strings.TrimSpace(markup.StripHTMLMedia(typeans.StripMarker(content))) == ""
}

// Reload re-reads the deck file the collection was loaded from.
func (c *Collection) Reload() error {
	c.mu.RLock()
	path := c.path
	c.mu.RUnlock()
	if path == "" {
		return fmt.Errorf("reload deck: collection was not loaded from a file")
	}
	fresh, err := Load(path)
	if err != nil {
		return err
	}
	fresh.mu.RLock()
	f := fresh.file
	fresh.mu.RUnlock()
	return c.build(f)
}

// Name returns the deck name.
func (c *Collection) Name() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.file.Name
}

// Path returns the file the deck was loaded from, if any.
func (c *Collection) Path() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.path
}

// Options returns the deck's review options.
func (c *Collection) Options() Options {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.file.Options
}

// MediaDir is the directory media references resolve under.
func (c *Collection) MediaDir() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	dir := c.file.MediaDir
	if c.mediaDir != "" {
		dir = c.mediaDir
	}
	if dir == "" {
		return c.baseDir
	}
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(c.baseDir, dir)
}

// SetMediaDir overrides the deck's media_dir. It survives Reload.
func (c *Collection) SetMediaDir(dir string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mediaDir = dir
}

// Cards returns every card in deck order.
func (c *Collection) Cards() []Card {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Card, len(c.cards))
	copy(out, c.cards)
	return out
}

// Card looks up a card by id.
func (c *Collection) Card(id int64) (Card, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	i, ok := c.byID[id]
	if !ok {
		return Card{}, fmt.Errorf("card %d: %w", id, ErrCardNotFound)
	}
	return c.cards[i], nil
}

func (c *Collection) lookup(card Card) (*Note, *NoteType, Template, error) {
	n, ok := c.notes[card.NoteID]
	if !ok {
		return nil, nil, Template{}, fmt.Errorf("card %d: %w", card.ID, ErrCardNotFound)
	}
	nt := c.types[n.Type]
	if nt.Kind == KindCloze {
		return n, nt, nt.Templates[0], nil
	}
	if card.Ord < 0 || card.Ord >= len(nt.Templates) {
		return nil, nil, Template{}, fmt.Errorf("card %d: %w", card.ID, ErrCardNotFound)
	}
	return n, nt, nt.Templates[card.Ord], nil
}

func (c *Collection) styleFor(nt *NoteType) string {
	css := strings.TrimSpace(c.file.CSS + "\n" + nt.CSS)
	if css == "" {
		return ""
	}
	return "<style>" + css + "</style>"
}

// RenderQuestion returns the question markup of card.
func (c *Collection) RenderQuestion(card Card) (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	n, nt, tmpl, err := c.lookup(card)
	if err != nil {
		return "", err
	}
	front, err := renderTemplate(tmpl.Front, c.contextFor(c.file, n, tmpl, card.Ord, false))
	if err != nil {
		return "", err
	}
	return c.styleFor(nt) + front, nil
}

// RenderAnswer returns the answer markup of card. {{FrontSide}} expands to
// the question without its typed-answer marker.
func (c *Collection) RenderAnswer(card Card) (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	n, nt, tmpl, err := c.lookup(card)
	if err != nil {
		return "", err
	}
	front, err := renderTemplate(tmpl.Front, c.contextFor(c.file, n, tmpl, card.Ord, false))
	if err != nil {
		return "", err
	}
	ctx := c.contextFor(c.file, n, tmpl, card.Ord, true)
	ctx.frontSide = typeans.StripMarker(front)
	back, err := renderTemplate(tmpl.Back, ctx)
	if err != nil {
		return "", err
	}
	return c.styleFor(nt) + back, nil
}

// AnswerFormat returns the raw back template of card.
func (c *Collection) AnswerFormat(card Card) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, _, tmpl, err := c.lookup(card)
	if err != nil {
		return ""
	}
	return tmpl.Back
}

// Field resolves a field of card's note.
func (c *Collection) Field(card Card, name string) (typeans.Field, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	n, nt, _, err := c.lookup(card)
	if err != nil {
		return typeans.Field{}, false
	}
	def, ok := nt.field(name)
	if !ok {
		return typeans.Field{}, false
	}
	return typeans.Field{Name: name, Value: n.Fields[name], Font: def.Font, Size: def.Size}, true
}

// MediaRefs lists the sound and image files card references, in order of
// first appearance.
func (c *Collection) MediaRefs(card Card) ([]string, error) {
	q, err := c.RenderQuestion(card)
	if err != nil {
		return nil, err
	}
	a, err := c.RenderAnswer(card)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	var refs []string
	add := func(name string) {
		if name == "" || seen[name] {
			return
		}
		seen[name] = true
		refs = append(refs, name)
	}
	for _, content := range []string{q, a} {
		for _, name := range sound.ParseRefs(content) {
			add(name)
		}
		for _, m := range imgSrcPattern.FindAllStringSubmatch(content, -1) {
			add(m[1])
		}
	}
	return refs, nil
}
