package cli

import (
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
)

func TestWrapPreservesExistingLineBreaks(t *testing.T) {
	in := "first line\nsecond line"
	assert.Equal(t, in, wrap(in, 40))
}

func TestWrapBreaksLongParagraphs(t *testing.T) {
	out := wrap("one two three four five", 9)
	assert.Equal(t, "one two\nthree\nfour five", out)
}

func TestWrapLeavesShortTextAlone(t *testing.T) {
	assert.Equal(t, "short", wrap("short", 40))
}

func TestFlagLabelWithAndWithoutShorthand(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.BoolP("verbose", "v", false, "")
	fs.Bool("all", false, "")

	assert.Equal(t, "-v, --verbose", flagLabel(fs.Lookup("verbose")))
	assert.Equal(t, "    --all", flagLabel(fs.Lookup("all")))
}
