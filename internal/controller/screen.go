package controller

import (
	"fmt"
	"strings"
)

// Screen is the navigation target shown by a client.
type Screen int

const (
	ScreenMain Screen = iota
	ScreenCalendar
	ScreenMasterManager
)

var screenNames = map[Screen]string{
	ScreenMain:          "main",
	ScreenCalendar:      "calendar",
	ScreenMasterManager: "master-manager",
}

func (s Screen) String() string {
	if name, ok := screenNames[s]; ok {
		return name
	}
	return fmt.Sprintf("screen(%d)", int(s))
}

func (s Screen) IsValid() bool {
	_, ok := screenNames[s]
	return ok
}

// ParseScreen maps a screen name back to its Screen.
func ParseScreen(name string) (Screen, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for s, n := range screenNames {
		if n == name {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown screen %q", name)
}

func (s Screen) MarshalText() ([]byte, error) {
	if !s.IsValid() {
		return nil, fmt.Errorf("unknown screen %d", int(s))
	}
	return []byte(s.String()), nil
}

func (s *Screen) UnmarshalText(b []byte) error {
	parsed, err := ParseScreen(string(b))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
