package calculator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mmynk/splitopus/internal/models"
)

func TestResolveMaster(t *testing.T) {
	links := BuildLinkMap([]models.Account{
		{ID: "M"},
		{ID: "X", LinkedTo: "M"},
		{ID: "Y", LinkedTo: "M"},
	})

	assert.Equal(t, LinkMap{"X": "M", "Y": "M"}, links)
	assert.Equal(t, "M", ResolveMaster("X", links))
	assert.Equal(t, "M", ResolveMaster("M", links))
	assert.Equal(t, "nobody", ResolveMaster("nobody", links))
	assert.Equal(t, "A", ResolveMaster("A", nil))
}

func TestResolveMaster_Idempotent(t *testing.T) {
	links := LinkMap{"X": "M", "Y": "M", "Z": "N"}
	for _, id := range []string{"X", "Y", "Z", "M", "N", "Q"} {
		once := ResolveMaster(id, links)
		assert.Equal(t, once, ResolveMaster(once, links), id)
	}
}

func TestMasters(t *testing.T) {
	links := LinkMap{"x": "m"}

	assert.Equal(t, []string{"a", "m"}, Masters([]string{"x", "a", "m"}, links))
	assert.Equal(t, []string{"m"}, Masters([]string{"x"}, links))
	assert.Empty(t, Masters(nil, links))
}
