// Package contacts holds the in-memory address book: validated fields,
// contact records, and the upcoming birthday query.
//
// Nothing here is safe for concurrent use. Callers sharing a Book across
// goroutines must serialize access themselves.
package contacts

import "slices"

// Book maps contact names to records and remembers insertion order.
type Book struct {
	records map[string]*Record
	order   []string
}

// NewBook returns an empty address book.
func NewBook() *Book {
	return &Book{records: make(map[string]*Record)}
}

// AddRecord stores r under its name. An existing record with the same name
// is replaced and the name keeps its original position.
func (b *Book) AddRecord(r *Record) {
	key := r.Name().String()
	if _, exists := b.records[key]; !exists {
		b.order = append(b.order, key)
	}
	b.records[key] = r
}

// Find looks up a record by exact name.
func (b *Book) Find(name string) (*Record, bool) {
	r, ok := b.records[name]
	return r, ok
}

// Delete removes the record for name. Deleting an absent name is a no-op.
func (b *Book) Delete(name string) {
	if _, ok := b.records[name]; !ok {
		return
	}
	delete(b.records, name)
	b.order = slices.DeleteFunc(b.order, func(n string) bool { return n == name })
}

// Records returns the records in insertion order.
func (b *Book) Records() []*Record {
	out := make([]*Record, 0, len(b.order))
	for _, name := range b.order {
		out = append(out, b.records[name])
	}
	return out
}

// Len reports the number of records.
func (b *Book) Len() int {
	return len(b.records)
}
