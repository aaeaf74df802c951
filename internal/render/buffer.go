package render

import "fmt"

// Surface is one displayable area that can hold card markup.
type Surface interface {
	Load(markup string) error
	SetVisible(visible bool)
	Visible() bool
	Markup() string
	// Release frees the surface. A released surface is never used again.
	Release()
}

// SurfaceFactory allocates a new, hidden, empty surface.
type SurfaceFactory func() Surface

// Buffer presents markup on a pair of surfaces so a card change is never
// seen half drawn. New content is loaded into the hidden standby surface,
// which is then shown while the old active surface is hidden and released.
//
// In quick mode a single surface is reloaded in place instead.
type Buffer struct {
	newSurface SurfaceFactory
	quick      bool
	active     Surface
	standby    Surface
}

// NewBuffer allocates the surfaces for a buffer. quick selects in-place
// replacement on a single surface.
func NewBuffer(factory SurfaceFactory, quick bool) *Buffer {
	b := &Buffer{newSurface: factory, quick: quick}
	b.active = factory()
	b.active.SetVisible(true)
	if !quick {
		b.standby = b.allocStandby()
	}
	return b
}

func (b *Buffer) allocStandby() Surface {
	s := b.newSurface()
	s.SetVisible(false)
	return s
}

// Present makes markup the visible content.
func (b *Buffer) Present(markup string) error {
	if b.quick {
		if err := b.active.Load(markup); err != nil {
			return fmt.Errorf("load surface: %w", err)
		}
		return nil
	}

	next := b.standby
	if err := next.Load(markup); err != nil {
		return fmt.Errorf("load standby surface: %w", err)
	}
	next.SetVisible(true)

	prev := b.active
	prev.SetVisible(false)
	prev.Release()

	b.active = next
	b.standby = b.allocStandby()
	return nil
}

// Active returns the visible surface.
func (b *Buffer) Active() Surface {
	return b.active
}

// Standby returns the hidden surface, or nil in quick mode.
func (b *Buffer) Standby() Surface {
	return b.standby
}

// Quick reports whether the buffer replaces content in place.
func (b *Buffer) Quick() bool {
	return b.quick
}

// Close releases every surface the buffer holds.
func (b *Buffer) Close() {
	if b.active != nil {
		b.active.Release()
		b.active = nil
	}
	if b.standby != nil {
		b.standby.Release()
		b.standby = nil
	}
}
