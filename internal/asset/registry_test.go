package asset

import (
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSuffix(t *testing.T) {
	testCases := []struct {
		desc   string
		id     ID
		expect int
		ok     bool
	}{
		{desc: "video id", id: "v0001", expect: 1, ok: true},
		{desc: "audio id", id: "m0042", expect: 42, ok: true},
		{desc: "wide counter", id: "v12345", expect: 12345, ok: true},
		{desc: "trailing text", id: "v0007_copy", expect: 7, ok: true},
		{desc: "no digits", id: "video", ok: false},
		{desc: "empty", id: "", ok: false},
	}

	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			n, ok := Suffix(tC.id)
			assert.Equal(t, tC.ok, ok)
			assert.Equal(t, tC.expect, n)
		})
	}
}

func TestGenerateID(t *testing.T) {
	r := NewRegistry()

	assert.Equal(t, ID("v0001"), r.GenerateID("v"))
	assert.Equal(t, ID("m0002"), r.GenerateID("m"))
	assert.Equal(t, ID("a0003"), r.GenerateID(""))
}

func TestRegisterAdvancesCounter(t *testing.T) {
	r := NewRegistry()

	r.Register("v0010", Asset{Name: "a.png"})
	assert.Equal(t, ID("v0011"), r.GenerateID("v"))

	// a lower suffix does not move the counter back
	r.Register("v0003", Asset{Name: "b.png"})
	assert.Equal(t, ID("v0012"), r.GenerateID("v"))

	r.Register("", Asset{Name: "ignored"})
	assert.Equal(t, 2, r.Len())
}

func TestObserve(t *testing.T) {
	r := NewRegistry()

	r.Observe("v0005")
	assert.Equal(t, 0, r.Len())
	assert.Equal(t, ID("v0006"), r.GenerateID("v"))
}

func TestAttachRelease(t *testing.T) {
	r := NewRegistry()

	first := r.Attach(Asset{Name: "one.png", Data: []byte{1, 2}}, "v")
	second := r.Attach(Asset{Name: "two.png", Data: []byte{3}}, "v")
	require.NotEqual(t, first, second)
	assert.Equal(t, int64(3), r.Size())
	assert.Equal(t, []ID{first, second}, r.IDs())

	r.Release(first)
	assert.False(t, r.Has(first))
	assert.True(t, r.Has(second))

	// releasing twice is a no-op
	r.Release(first)
	assert.Equal(t, 1, r.Len())

	got, ok := r.Get(second)
	require.True(t, ok)
	assert.Equal(t, "two.png", got.Name)
}

func TestResetKeepsCounter(t *testing.T) {
	r := NewRegistry()
	r.Attach(Asset{Name: "x"}, "v")
	r.Attach(Asset{Name: "y"}, "v")

	r.Reset()
	assert.Equal(t, 0, r.Len())
	assert.Equal(t, ID("v0003"), r.GenerateID("v"))
}

func TestGeneratedIDsNeverCollide(t *testing.T) {
	faker := gofakeit.New(7)
	r := NewRegistry()
	seen := make(map[ID]bool)

	for i := 0; i < 500; i++ {
		switch faker.Number(0, 2) {
		case 0:
			id := r.Attach(Asset{Name: faker.Word()}, faker.RandomString([]string{"v", "m"}))
			require.False(t, seen[id], "duplicate id %s", id)
			seen[id] = true
		case 1:
			ids := r.IDs()
			if len(ids) > 0 {
				r.Release(ids[faker.Number(0, len(ids)-1)])
			}
		case 2:
			id := r.GenerateID("v")
			require.False(t, seen[id], "duplicate id %s", id)
			seen[id] = true
		}
	}
}
