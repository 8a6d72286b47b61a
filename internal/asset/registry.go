package asset

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode"
)

// ID identifies a registered payload, e.g. "v0001".
type ID string

// Asset is a binary media payload as it was attached by the user.
type Asset struct {
	Name      string
	MediaType string
	Data      []byte
}

// Registry maps ids to payloads and issues ids that do not collide with
// anything registered or generated during the session.
type Registry struct {
	assets map[ID]Asset
	seq    int
}

func NewRegistry() *Registry {
	return &Registry{
		assets: make(map[ID]Asset),
		seq:    1,
	}
}

// Register stores a under id and advances the id counter past id's
// numeric suffix. Empty ids are ignored.
func (r *Registry) Register(id ID, a Asset) {
	if id == "" {
		return
	}
	r.assets[id] = a
	r.Observe(id)
}

// Observe advances the id counter past id without storing anything.
func (r *Registry) Observe(id ID) {
	n, ok := Suffix(id)
	if ok && n >= r.seq {
		r.seq = n + 1
	}
}

// GenerateID returns prefix followed by the counter padded to 4 digits.
func (r *Registry) GenerateID(prefix string) ID {
	if prefix == "" {
		prefix = "a"
	}
	id := ID(fmt.Sprintf("%s%04d", prefix, r.seq))
	r.seq++
	return id
}

// Attach registers a under a freshly generated id.
func (r *Registry) Attach(a Asset, prefix string) ID {
	id := r.GenerateID(prefix)
	r.assets[id] = a
	return id
}

// Release removes id. Missing ids are a no-op.
func (r *Registry) Release(id ID) {
	delete(r.assets, id)
}

func (r *Registry) Get(id ID) (Asset, bool) {
	a, ok := r.assets[id]
	return a, ok
}

func (r *Registry) Has(id ID) bool {
	_, ok := r.assets[id]
	return ok
}

func (r *Registry) Len() int {
	return len(r.assets)
}

// IDs returns the registered ids in lexical order.
func (r *Registry) IDs() []ID {
	ids := make([]ID, 0, len(r.assets))
	for id := range r.assets {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Size returns the total payload size in bytes.
func (r *Registry) Size() int64 {
	var total int64
	for _, a := range r.assets {
		total += int64(len(a.Data))
	}
	return total
}

// Reset drops every entry. The counter is kept so ids stay unique for the
// whole session.
func (r *Registry) Reset() {
	clear(r.assets)
}

// Suffix extracts the numeric part of an id: leading non-digits are
// skipped and the following run of digits is parsed.
func Suffix(id ID) (int, bool) {
	s := strings.TrimLeftFunc(string(id), func(c rune) bool { return !unicode.IsDigit(c) })
	end := strings.IndexFunc(s, func(c rune) bool { return c < '0' || c > '9' })
	if end >= 0 {
		s = s[:end]
	}
	if s == "" {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}
