// Package presenter renders visible announcements into a page document and
// handles their dismissal.
//
// Banners move through absent -> rendering -> visible -> dismissing -> removed.
// The enter and exit transitions are timed through a Scheduler so the server
// can settle them at once while tests can step through them.
package presenter

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/hamed0406/announcer/internal/domain"
)

const (
	ContainerID = "announcements-container"
	DataIDAttr  = "data-announcement-id"

	classVisible   = "announcement-visible"
	classDismissed = "announcement-dismissed"

	EnterDelay = 100 * time.Millisecond
	ExitDelay  = 300 * time.Millisecond
)

type State int

const (
	StateAbsent State = iota
	StateRendering
	StateVisible
	StateDismissing
	StateRemoved
)

func (s State) String() string {
	switch s {
	case StateRendering:
		return "rendering"
	case StateVisible:
		return "visible"
	case StateDismissing:
		return "dismissing"
	case StateRemoved:
		return "removed"
	}
	return "absent"
}

// Scheduler runs fn after delay.
type Scheduler func(delay time.Duration, fn func())

// Immediate runs fn synchronously, skipping the delay.
func Immediate(_ time.Duration, fn func()) { fn() }

// Dismisser persists a dismissal. *dismissal.Store satisfies it.
type Dismisser interface {
	Dismiss(ctx context.Context, id string)
}

type banner struct {
	rec   domain.Announcement
	node  *html.Node
	state State
}

type Presenter struct {
	doc       *html.Node
	container *html.Node
	banners   map[string]*banner
	store     Dismisser
	schedule  Scheduler
	action    func(id string) string
	log       *zap.Logger
}

type Option func(*Presenter)

func WithScheduler(s Scheduler) Option {
	return func(p *Presenter) { p.schedule = s }
}

// WithDismissAction sets the URL the close control posts to.
func WithDismissAction(f func(id string) string) Option {
	return func(p *Presenter) { p.action = f }
}

func WithLogger(l *zap.Logger) Option {
	return func(p *Presenter) { p.log = l }
}

// DefaultDismissAction is the API route that dismisses id.
func DefaultDismissAction(id string) string {
	return "/api/announcements/" + url.PathEscape(id) + "/dismiss"
}

// New wraps doc. A nil doc gets an empty page.
func New(doc *html.Node, store Dismisser, opts ...Option) *Presenter {
	if doc == nil {
		doc, _ = html.Parse(strings.NewReader("<!DOCTYPE html><html><head></head><body></body></html>"))
	}
	p := &Presenter{
		doc:      doc,
		banners:  make(map[string]*banner),
		store:    store,
		schedule: Immediate,
		action:   DefaultDismissAction,
		log:      zap.NewNop(),
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Parse reads a page and wraps it.
func Parse(r io.Reader, store Dismisser, opts ...Option) (*Presenter, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}
	return New(doc, store, opts...), nil
}

// Render appends a banner for each record not already on the page.
// An empty set leaves the page untouched.
func (p *Presenter) Render(visible []domain.Announcement) {
	fresh := make([]domain.Announcement, 0, len(visible))
	for _, a := range visible {
		if _, seen := p.banners[a.ID]; !seen {
			fresh = append(fresh, a)
		}
	}
	if len(fresh) == 0 {
		return
	}
	c := p.ensureContainer()
	for _, a := range fresh {
		if _, seen := p.banners[a.ID]; seen {
			continue
		}
		b := &banner{rec: a, node: p.buildBanner(a), state: StateRendering}
		p.banners[a.ID] = b
		c.AppendChild(b.node)

		p.schedule(EnterDelay, func() {
			if b.state != StateRendering {
				return
			}
			addClass(b.node, classVisible)
			b.state = StateVisible
		})
	}
}

// Dismiss records the dismissal and plays the exit transition. It reports
// false when id has no dismissible banner on the page.
func (p *Presenter) Dismiss(ctx context.Context, id string) bool {
	b := p.banners[id]
	if b == nil || !b.rec.Dismissible {
		return false
	}
	if b.state == StateDismissing || b.state == StateRemoved {
		return false
	}
	if p.store != nil {
		p.store.Dismiss(ctx, id)
	}
	removeClass(b.node, classVisible)
	addClass(b.node, classDismissed)
	b.state = StateDismissing
	p.log.Info("announcement_dismissed", zap.String("announcement_id", id))

	p.schedule(ExitDelay, func() { p.remove(b) })
	return true
}

func (p *Presenter) remove(b *banner) {
	if b.state == StateRemoved {
		return
	}
	if b.node.Parent != nil {
		b.node.Parent.RemoveChild(b.node)
	}
	b.state = StateRemoved

	c := p.container
	if c == nil || hasElementChild(c) {
		return
	}
	if c.Parent != nil {
		c.Parent.RemoveChild(c)
	}
	p.container = nil
}

// State reports where the banner for id is in its lifecycle.
func (p *Presenter) State(id string) State {
	if b := p.banners[id]; b != nil {
		return b.state
	}
	return StateAbsent
}

// Remaining counts banners still attached to the page.
func (p *Presenter) Remaining() int {
	n := 0
	for _, b := range p.banners {
		if b.state != StateRemoved {
			n++
		}
	}
	return n
}

// hasContainer reports whether the container is attached.
func (p *Presenter) hasContainer() bool {
	return p.container != nil
}

// HTML serialises the whole document.
func (p *Presenter) HTML() (string, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, p.doc); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Fragment serialises only the container, or "" when there is none.
func (p *Presenter) Fragment() (string, error) {
	if !p.hasContainer() {
		return "", nil
	}
	var buf bytes.Buffer
	if err := html.Render(&buf, p.container); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// ensureContainer returns the container, adopting one already in the page or
// creating it right after <header> (top of <body> without one).
func (p *Presenter) ensureContainer() *html.Node {
	if p.container != nil {
		return p.container
	}
	if c := findElement(p.doc, func(n *html.Node) bool { return attr(n, "id") == ContainerID }); c != nil {
		p.container = c
		return c
	}

	c := element(atom.Div, "id", ContainerID, "class", "announcements-container")
	header := findElement(p.doc, func(n *html.Node) bool { return n.DataAtom == atom.Header })
	switch {
	case header != nil && header.Parent != nil:
		// InsertBefore with a nil sibling appends.
		header.Parent.InsertBefore(c, header.NextSibling)
	default:
		body := findElement(p.doc, func(n *html.Node) bool { return n.DataAtom == atom.Body })
		if body == nil {
			body = p.doc
		}
		body.InsertBefore(c, body.FirstChild)
	}
	p.container = c
	return c
}

func (p *Presenter) buildBanner(a domain.Announcement) *html.Node {
	b := element(atom.Div,
		"class", "announcement-banner announcement-"+string(a.Type.Normalize()),
		DataIDAttr, a.ID,
	)

	content := element(atom.Div, "class", "announcement-content")
	msg := element(atom.Span, "class", "announcement-message")
	msg.AppendChild(text(a.Message))
	content.AppendChild(msg)

	if a.HasLink() {
		link := element(atom.A, "href", a.Link.URL, "class", "announcement-link")
		label := a.Link.Text
		if label == "" {
			label = a.Link.URL
		}
		link.AppendChild(text(label))
		content.AppendChild(link)
	}
	b.AppendChild(content)

	if a.Dismissible {
		form := element(atom.Form, "method", "post", "action", p.action(a.ID), "class", "announcement-dismiss")
		btn := element(atom.Button, "type", "submit", "class", "announcement-close", "aria-label", "Close announcement")
		btn.AppendChild(text("×"))
		form.AppendChild(btn)
		b.AppendChild(form)
	}
	return b
}
