package documents

import (
	"fmt"
	"slices"
)

// Collection is an insertion-ordered sequence of documents. Duplicates are
// allowed; storage resolves them with last-write-wins.
type Collection []Document

// FilterBy returns the documents belonging to any of the given families,
// preserving order.
func (c Collection) FilterBy(families ...Family) Collection {
	out := Collection{}
	for _, d := range c {
		if slices.Contains(families, d.family) {
			out = append(out, d)
		}
	}
	return out
}

// GetByFamily returns the single document of the given family.
func (c Collection) GetByFamily(f Family) (Document, error) {
	return c.only(f.String(), func(d Document) bool { return d.family == f })
}

// GetByName returns the single document with the given file name.
func (c Collection) GetByName(name string) (Document, error) {
	return c.only(name, func(d Document) bool { return d.name == name })
}

func (c Collection) only(label string, match func(Document) bool) (Document, error) {
	var found []Document
	for _, d := range c {
		if match(d) {
			found = append(found, d)
		}
	}

	switch len(found) {
	case 1:
		return found[0], nil
	case 0:
		return Document{}, fmt.Errorf("%w: %w: %s", ErrLookup, ErrNoMatch, label)
	default:
		return Document{}, fmt.Errorf("%w: %w: %s matched %d documents", ErrLookup, ErrAmbiguous, label, len(found))
	}
}

// Extend returns a new collection holding c followed by docs. c is never
// modified.
func (c Collection) Extend(docs ...Document) Collection {
	return slices.Concat(c, docs)
}

// Names lists document names in collection order.
func (c Collection) Names() []string {
	names := make([]string, len(c))
	for i, d := range c {
		names[i] = d.name
	}
	return names
}
