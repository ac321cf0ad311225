// Package words generates short two-word workspace slugs like "lazy-panda".
//
// No BIP-39 wordlist package is available, so the list below is a small
// hand-picked vocabulary rather than a fabricated dependency: it is data,
// not an algorithm, and any adjective/noun word list of reasonable size
// gives a two-word slug with low collision probability, retried on
// collision.
package words

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
)

var adjectives = []string{
	"lazy", "brave", "calm", "eager", "fuzzy", "gentle", "happy", "icy",
	"jolly", "keen", "lively", "mellow", "noble", "odd", "proud", "quiet",
	"rapid", "sly", "tidy", "upbeat", "vivid", "witty", "zesty", "bold",
	"crisp", "dapper", "earnest", "frosty", "grumpy", "humble", "inky",
	"jumpy", "kind", "loyal", "mighty", "nimble", "orderly", "plucky",
	"quick", "restless", "shiny", "trusty", "urban", "vast", "warm",
}

var nouns = []string{
	"panda", "otter", "falcon", "badger", "heron", "lynx", "marten", "newt",
	"osprey", "puffin", "quail", "raven", "seal", "tapir", "urchin", "viper",
	"walrus", "yak", "zebra", "beetle", "cobra", "dingo", "egret", "ferret",
	"gecko", "hare", "ibis", "jackal", "koala", "llama", "magpie", "narwhal",
	"ocelot", "pelican", "quokka", "robin", "shrew", "toucan", "vole",
	"wombat", "finch", "gull", "stoat", "iguana", "jaguar",
}

// Random returns a random "<adjective>-<noun>" slug. Collision handling
// (retry-on-existing) is the caller's responsibility, per the workspace
// lifecycle contract.
func Random() (string, error) {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "", fmt.Errorf("generate random slug: %w", err)
	}
	v := binary.LittleEndian.Uint64(buf[:])
	adj := adjectives[v%uint64(len(adjectives))]
	noun := nouns[(v/uint64(len(adjectives)))%uint64(len(nouns))]
	return fmt.Sprintf("%s-%s", adj, noun), nil
}
