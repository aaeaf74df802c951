package deck

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"
)

// maxMediaChecks bounds concurrent stat calls in CheckMedia.
const maxMediaChecks = 8

// MissingMedia is a referenced media file that does not exist.
type MissingMedia struct {
	Name    string
	Path    string
	CardIDs []int64
}

// CheckMedia stats every media file the deck references and returns the
// missing ones sorted by name. Render failures and unexpected stat errors
// abort the check.
func (c *Collection) CheckMedia(ctx context.Context) ([]MissingMedia, error) {
	dir := c.MediaDir()
	users := make(map[string][]int64)
	for _, card := range c.Cards() {
		refs, err := c.MediaRefs(card)
		if err != nil {
			return nil, fmt.Errorf("media refs of card %d: %w", card.ID, err)
		}
		for _, name := range refs {
			users[name] = append(users[name], card.ID)
		}
	}

	var (
		mu      sync.Mutex
		missing []MissingMedia
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxMediaChecks)
	for name, ids := range users {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			path := filepath.Join(dir, filepath.FromSlash(name))
			_, err := os.Stat(path)
			switch {
			case err == nil:
				return nil
			case errors.Is(err, fs.ErrNotExist):
				mu.Lock()
				missing = append(missing, MissingMedia{Name: name, Path: path, CardIDs: ids})
				mu.Unlock()
				return nil
			default:
				return fmt.Errorf("stat %s: %w", path, err)
			}
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(missing, func(i, j int) bool { return missing[i].Name < missing[j].Name })
	return missing, nil
}
