package theme

import "github.com/charmbracelet/lipgloss"

// Role decides how a viewer's name is drawn in the transcript.
type Role int

const (
	RoleGrey Role = iota
	RoleTokens
	RoleTipped
	RoleFanClub
	RoleModerator
	RoleOwner
)

type Theme struct {
	Timestamp lipgloss.Style
	Routed    lipgloss.Style
	TipBadge  lipgloss.Style
	Names     map[Role]lipgloss.Style
	Fallback  lipgloss.Style
}

func DefaultTheme() Theme {
	name := lipgloss.NewStyle().Bold(true)
	return Theme{
		Timestamp: lipgloss.NewStyle().Foreground(lipgloss.Color("#867CC1")),
		Routed:    lipgloss.NewStyle().Foreground(lipgloss.Color("#A6A1BB")).Italic(true),
		TipBadge: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#1F1500")).
			Background(lipgloss.Color("#FFB61E")).
			Bold(true).
			Padding(0, 1),
		Names: map[Role]lipgloss.Style{
			RoleGrey:      name.Copy().Foreground(lipgloss.Color("#494949")),
			RoleTokens:    name.Copy().Foreground(lipgloss.Color("#84C6DC")),
			RoleTipped:    name.Copy().Foreground(lipgloss.Color("#009CB5")),
			RoleFanClub:   name.Copy().Foreground(lipgloss.Color("#33C481")),
			RoleModerator: name.Copy().Foreground(lipgloss.Color("#DC0000")),
			RoleOwner:     name.Copy().Foreground(lipgloss.Color("#DC5500")),
		},
		Fallback: name,
	}
}

func (t Theme) Name(r Role) lipgloss.Style {
	if st, ok := t.Names[r]; ok {
		return st
	}
	return t.Fallback
}

// Line builds the style for a message body with the given colors.
func (t Theme) Line(fg, bg string, bold bool) lipgloss.Style {
	st := lipgloss.NewStyle()
	if fg != "" {
		st = st.Foreground(lipgloss.Color(fg))
	}
	if bg != "" {
		st = st.Background(lipgloss.Color(bg))
	}
	return st.Bold(bold)
}

// RoleFor picks the highest ranking role that applies.
func RoleFor(owner, mod, fan, tipped, tokens bool) Role {
	switch {
	case owner:
		return RoleOwner
	case mod:
		return RoleModerator
	case fan:
		return RoleFanClub
	case tipped:
		return RoleTipped
	case tokens:
		return RoleTokens
	default:
		return RoleGrey
	}
}
