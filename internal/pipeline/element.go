package pipeline

import "eventcal/internal/model"

// MapElement is an Element backed by a plain attribute map. The web layer
// and snapshot mode both use it; tests do too.
type MapElement struct {
	Attrs    map[string]string
	Content  string
	Rendered bool
}

func (m *MapElement) Attr(name string) string {
	return m.Attrs[name]
}

func (m *MapElement) SetContent(fragment string) {
	m.Content = fragment
	m.Rendered = true
}

// WidgetElement adapts a configured widget into an Element.
func WidgetElement(w model.Widget) *MapElement {
	return &MapElement{Attrs: map[string]string{
		"begin":      w.Begin,
		"end":        w.End,
		"count":      w.Count,
		"tags":       w.Tags,
		"categories": w.Categories,
		"show-year":  w.ShowYear,
	}}
}
