package content

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	ferrors "github.com/matzehuels/flexdock/pkg/errors"
	"github.com/matzehuels/flexdock/pkg/layout"
)

// Kind is the shape of resolved tab content.
type Kind string

const (
	KindHTML  Kind = "html"
	KindFrame Kind = "frame"
	KindImage Kind = "image"
)

// KeyText is the tab config key holding the content payload: markup for
// text tabs, a URL for everything else.
const KeyText = "text"

// Content is what a shell renders inside a tab.
type Content struct {
	Tab  layout.NodeID `json:"tab"`
	Kind Kind          `json:"kind"`
	// Body is inline markup for KindHTML.
	Body string `json:"body,omitempty"`
	// Source is the URL of a frame or image.
	Source string `json:"source,omitempty"`
	// Width and Height fix the rendered size in pixels; zero fills the tab.
	Width  int `json:"width,omitempty"`
	Height int `json:"height,omitempty"`
}

// Factory turns a tab into content.
type Factory func(tab layout.Node) (Content, error)

// Registry maps component descriptors to factories. It is safe for
// concurrent use.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Default returns a registry with the built-in components registered.
func Default() *Registry {
	r := NewRegistry()
	r.Register("text", Text)
	r.Register("pdf", PDF)
	r.Register("image", Image)
	r.Register("123check", Check)
	return r
}

// Register binds a component name to a factory, replacing any earlier one.
// Names are case-insensitive.
func (r *Registry) Register(component string, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[strings.ToLower(component)] = f
}

// Components lists the registered component names in sorted order.
func (r *Registry) Components() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolve renders tab with the factory registered for its component.
func (r *Registry) Resolve(tab layout.Node) (Content, error) {
	if !tab.IsTab() {
		return Content{}, ferrors.New(ferrors.ErrCodeInvalidTarget, "%s is a %s, not a tab", tab.ID, tab.Kind)
	}
	r.mu.RLock()
	f, ok := r.factories[strings.ToLower(tab.Component)]
	r.mu.RUnlock()
	if !ok {
		return Content{}, ferrors.New(ferrors.ErrCodeUnsupported, "no content for component %q of tab %s", tab.Component, tab.ID)
	}
	c, err := f(tab)
	if err != nil {
		return Content{}, fmt.Errorf("resolve %s: %w", tab.ID, err)
	}
	c.Tab = tab.ID
	return c, nil
}

// Text renders the "text" config value as inline markup.
func Text(tab layout.Node) (Content, error) {
	return Content{Kind: KindHTML, Body: text(tab)}, nil
}

// PDF embeds the document at the "text" URL in a frame.
func PDF(tab layout.Node) (Content, error) {
	src, err := source(tab)
	if err != nil {
		return Content{}, err
	}
	return Content{Kind: KindFrame, Source: src}, nil
}

// Image shows the image at the "text" URL, filling the tab.
func Image(tab layout.Node) (Content, error) {
	src, err := source(tab)
	if err != nil {
		return Content{}, err
	}
	return Content{Kind: KindImage, Source: src}, nil
}

// Check shows a scanned cheque image at its fixed print size.
func Check(tab layout.Node) (Content, error) {
	src, err := source(tab)
	if err != nil {
		return Content{}, err
	}
	return Content{Kind: KindImage, Source: src, Width: 1220, Height: 1000}, nil
}

func text(tab layout.Node) string {
	switch v := tab.Config[KeyText].(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

func source(tab layout.Node) (string, error) {
	src := strings.TrimSpace(text(tab))
	if src == "" {
		return "", ferrors.New(ferrors.ErrCodeInvalidInput, "tab %s has no %q url", tab.ID, KeyText)
	}
	return src, nil
}
