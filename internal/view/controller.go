// Package view decides which screen a client should show, from its session
// presence and the navigation events the screens emit.
package view

import (
	"errors"
	"fmt"
)

// Screen identifies a page of the app.
type Screen string

const (
	ScreenSignUp         Screen = "signup"
	ScreenLogin          Screen = "login"
	ScreenForgotPassword Screen = "forgot_password"
	ScreenHome           Screen = "home"
	ScreenProfile        Screen = "profile"
)

// Event is a navigation event emitted by a screen.
type Event string

const (
	EventLoginSucceeded  Event = "login_succeeded"
	EventSignUpSucceeded Event = "signup_succeeded"
	EventSwitchToSignUp  Event = "switch_to_signup"
	EventSwitchToLogin   Event = "switch_to_login"
	EventForgotPassword  Event = "forgot_password"
	EventBack            Event = "back"
	EventCompleteProfile Event = "complete_profile"
	EventProfileUpdated  Event = "profile_updated"
	EventLogout          Event = "logout"
)

var (
	ErrInvalidTransition = errors.New("view: invalid transition")
	ErrUnknownScreen     = errors.New("view: unknown screen")
)

var transitions = map[Screen]map[Event]Screen{
	ScreenSignUp: {
		EventSignUpSucceeded: ScreenHome,
		EventSwitchToLogin:   ScreenLogin,
	},
	ScreenLogin: {
		EventLoginSucceeded: ScreenHome,
		EventSwitchToSignUp: ScreenSignUp,
		EventForgotPassword: ScreenForgotPassword,
	},
	ScreenForgotPassword: {
		EventBack:          ScreenLogin,
		EventSwitchToLogin: ScreenLogin,
	},
	ScreenHome: {
		EventCompleteProfile: ScreenProfile,
		EventLogout:          ScreenLogin,
	},
	ScreenProfile: {
		EventProfileUpdated: ScreenHome,
		EventBack:           ScreenHome,
		EventLogout:         ScreenLogin,
	},
}

// Protected reports whether s needs a session.
func (s Screen) Protected() bool {
	return s == ScreenHome || s == ScreenProfile
}

// Known reports whether s is one of the app's screens.
func (s Screen) Known() bool {
	_, ok := transitions[s]
	return ok
}

// Controller resolves screens. The zero value is ready to use.
type Controller struct{}

// Initial is the first screen after the startup session check.
func (Controller) Initial(authenticated bool) Screen {
	if authenticated {
		return ScreenHome
	}
	return ScreenLogin
}

// Resolve returns s, or login when s needs a session the client lacks.
func (Controller) Resolve(s Screen, authenticated bool) Screen {
	if s.Protected() && !authenticated {
		return ScreenLogin
	}
	return s
}

// Navigate applies event to current. authenticated is the session presence
// after the event took effect, so login_succeeded is evaluated with a session
// and logout without one.
func (c Controller) Navigate(current Screen, event Event, authenticated bool) (Screen, error) {
	if !current.Known() {
		return "", fmt.Errorf("%w: %q", ErrUnknownScreen, current)
	}
	current = c.Resolve(current, authenticated)

	next, ok := transitions[current][event]
	if !ok {
		return current, fmt.Errorf("%w: %s on %s", ErrInvalidTransition, event, current)
	}
	return c.Resolve(next, authenticated), nil
}
