package helpers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTitleStem(t *testing.T) {
	assert.Equal(t, "LakersbeatCeltics", TitleStem("Lakers beat Celtics in overtime", 3))
	assert.Equal(t, "LeBronsReturn", TitleStem("LeBron's Return!", 3))
	assert.Equal(t, "image", TitleStem("  ", 3))
	assert.Equal(t, "image", TitleStem("— ...", 3))
}

func TestShortHash(t *testing.T) {
	assert.Len(t, ShortHash("a"), 8)
	assert.Equal(t, ShortHash("same"), ShortHash("same"))
	assert.NotEqual(t, ShortHash("one"), ShortHash("two"))
}

func TestImageExt(t *testing.T) {
	assert.Equal(t, ".png", ImageExt("https://static01.nyt.com/images/a.PNG?quality=75"))
	assert.Equal(t, ".jpg", ImageExt("https://static01.nyt.com/images/a.jpeg"))
	assert.Equal(t, ".webp", ImageExt("https://cdn.example.com/x/y.webp"))
	assert.Equal(t, ".jpg", ImageExt("https://cdn.example.com/image?id=1"))
	assert.Equal(t, ".jpg", ImageExt("://bad"))
}
