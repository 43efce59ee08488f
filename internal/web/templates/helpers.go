package templates

import (
	"context"
	"encoding/hex"
	"io"
	"net/url"

	"github.com/a-h/templ"
	"github.com/microcosm-cc/bluemonday"

	"github.com/emiliopalmerini/ocgbuilder/internal/util"
)

// Catalog descriptions come from the remote API and may carry markup.
var descriptionPolicy = func() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements("b", "i", "em", "strong", "br", "sup", "sub", "code")
	return p
}()

// SanitizeDescription keeps simple inline formatting and drops everything else.
func SanitizeDescription(s string) string {
	return descriptionPolicy.Sanitize(s)
}

// PlainText strips all markup.
func PlainText(s string) string {
	return bluemonday.StrictPolicy().Sanitize(s)
}

func truncateURL(s string) string {
	return util.Truncate(s, 96)
}

func statisticPath(key, action string) string {
	return "/statistics/" + url.PathEscape(key) + "/" + action
}

// nodeID hex-encodes the key so any key yields a valid id and CSS selector.
func nodeID(key string) string {
	return "stat-" + hex.EncodeToString([]byte(key))
}

// writer accumulates the first write error so components read top to bottom.
type writer struct {
	w   io.Writer
	err error
}

func (h *writer) raw(s string) {
	if h.err == nil {
		_, h.err = io.WriteString(h.w, s)
	}
}

func (h *writer) text(s string) {
	h.raw(templ.EscapeString(s))
}

// attr writes name="value" with the value escaped.
func (h *writer) attr(name, value string) {
	h.raw(" " + name + "=\"" + templ.EscapeString(value) + "\"")
}

func (h *writer) flag(name string, on bool) {
	if on {
		h.raw(" " + name)
	}
}

func (h *writer) render(ctx context.Context, c templ.Component) {
	if h.err == nil {
		h.err = c.Render(ctx, h.w)
	}
}

func component(fn func(ctx context.Context, h *writer)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &writer{w: w}
		fn(ctx, h)
		return h.err
	})
}
