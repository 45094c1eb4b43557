package session

import (
	"context"
	"strings"

	"github.com/iliyamo/bus-reservation-portal/internal/model"
)

// Theme is the process-wide theme context.
type Theme struct {
	store Store
}

func NewTheme(store Store) *Theme { return &Theme{store: store} }

// Initial picks the theme for a session that never chose one: the
// Sec-CH-Prefers-Color-Scheme client hint when present, light otherwise.
func Initial(hint string) model.Theme {
	if strings.EqualFold(strings.Trim(hint, `" `), "dark") {
		return model.ThemeDark
	}
	return model.ThemeLight
}

// Mode returns the persisted theme, or the hint-derived default.
func (t *Theme) Mode(s *model.Session, hint string) model.Theme {
	if s != nil && s.Theme.Valid() {
		return s.Theme
	}
	return Initial(hint)
}

// Set persists theme.
func (t *Theme) Set(ctx context.Context, s *model.Session, theme model.Theme) error {
	if err := t.store.SetTheme(ctx, s.ID, theme); err != nil {
		return err
	}
	s.Theme = theme
	return nil
}

// Toggle flips the current mode and persists the result.
func (t *Theme) Toggle(ctx context.Context, s *model.Session, hint string) (model.Theme, error) {
	next := t.Mode(s, hint).Opposite()
	if err := t.Set(ctx, s, next); err != nil {
		return "", err
	}
	return next, nil
}
