package workspace

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
)

var adjectives = []string{
	"amber", "bold", "calm", "dark", "eager", "fair", "glad", "hazy", "icy", "jade",
	"keen", "lush", "mild", "neat", "opal", "pale", "quick", "rosy", "soft", "tidy",
	"vast", "warm", "zany", "aqua", "blue", "crisp", "dusty", "ember", "fresh", "gold",
	"happy", "ivory", "jolly", "kind", "lazy", "merry", "noble", "olive", "plum", "quiet",
	"rapid", "sage", "tall", "ultra", "vivid", "wise", "young", "zen", "agile", "brave",
}

var nouns = []string{
	"ant", "bat", "cat", "dog", "elk", "fox", "gnu", "hawk", "ibis", "jay",
	"koi", "lynx", "mole", "newt", "owl", "puma", "quail", "ram", "seal", "toad",
	"vole", "wolf", "yak", "crab", "dart", "eel", "frog", "goat", "hare", "inca",
	"koala", "lamb", "mink", "narwhal", "orca", "panda", "raven", "swan", "tiger", "urchin",
	"viper", "wren", "zebra", "bear", "crow", "dove", "egret", "finch", "gull", "heron",
}

// GenerateName returns a random adjective-noun workspace name.
func GenerateName() string {
	return fmt.Sprintf("%s-%s", adjectives[rand.Intn(len(adjectives))], nouns[rand.Intn(len(nouns))])
}

// GenerateUnique returns a random name that does not collide with an
// existing entry in dir.
func GenerateUnique(dir string) string {
	for {
		name := GenerateName()
		if _, err := os.Stat(filepath.Join(dir, name)); os.IsNotExist(err) {
			return name
		}
	}
}
