// Package demo declares a small service graph used by cmd/locator and the
// HTTP tests.
package demo

import (
	"fmt"
	"time"

	"github.com/skekre98/locator/core"
)

// Clock is a leaf service without dependencies.
type Clock struct {
	now func() time.Time
}

func NewClock() *Clock { return &Clock{now: time.Now} }

func (c *Clock) Now() time.Time { return c.now() }

// Greeter has one service parameter and one scalar with a default.
type Greeter struct {
	clock    *Clock
	greeting string
}

func NewGreeter(clock *Clock, greeting string) *Greeter {
	return &Greeter{clock: clock, greeting: greeting}
}

func (g *Greeter) Greet(name string) string {
	return fmt.Sprintf("%s, %s (%s)", g.greeting, name, g.clock.Now().UTC().Format(time.Kitchen))
}

// Mailer depends on Greeter, so resolving it builds the whole chain.
type Mailer struct {
	greeter *Greeter
	sender  string
	retries int
}

func NewMailer(g *Greeter, sender string, retries int) *Mailer {
	return &Mailer{greeter: g, sender: sender, retries: retries}
}

func (m *Mailer) Sender() string { return m.sender }
func (m *Mailer) Retries() int   { return m.retries }

func (m *Mailer) Compose(to string) string {
	return fmt.Sprintf("From: %s\nTo: %s\n\n%s", m.sender, to, m.greeter.Greet(to))
}

// Notifier is declared abstract: it can be named in definitions but never
// resolved.
type Notifier interface {
	Notify(msg string) error
}

// Template needs a path that has no default, so resolving it fails.
type Template struct {
	path string
}

func NewTemplate(path string) *Template { return &Template{path: path} }

// Declare registers the demo types in cat.
func Declare(cat *core.Catalog) error {
	if err := cat.Constructor(NewClock); err != nil {
		return err
	}
	if err := cat.Constructor(NewGreeter,
		core.Named(0, "clock"),
		core.Named(1, "greeting"), core.Default(1, "Hello"),
	); err != nil {
		return err
	}
	if err := cat.Constructor(NewMailer,
		core.Named(0, "greeter"),
		core.Named(1, "sender"), core.Default(1, "noreply@localhost"),
		core.Named(2, "retries"), core.Default(2, 3),
	); err != nil {
		return err
	}
	if err := cat.Constructor(NewTemplate, core.Named(0, "path")); err != nil {
		return err
	}
	return cat.Abstract(core.TypeOf[Notifier]())
}
