package store

import (
	"fmt"

	"github.com/vinizap/takenote/domain"
)

type ToggleDarkMode struct{}

// ToggleSidebar flips sidebar visibility for the current session only.
type ToggleSidebar struct{}

func (ToggleDarkMode) slice() Slice { return SliceUI }
func (ToggleSidebar) slice() Slice  { return SliceUI }

func reduceUI(s domain.UIState, in Intent) (domain.UIState, bool, error) {
	switch in.(type) {
	case ToggleDarkMode:
		s.DarkMode = !s.DarkMode
		return s, true, nil
	case ToggleSidebar:
		s.SidebarOpen = !s.SidebarOpen
		return s, false, nil
	}
	return s, false, fmt.Errorf("%w: %T is not a ui intent", ErrInvalid, in)
}
