package cwtest

import (
	"bytes"
	"fmt"
	"math/rand/v2"
)

// GenerateSave returns a synthetic gamestate with the given number of
// countries. The same seed always yields the same text. The output uses
// keyed, repeated and anonymous blocks, keyless items, comments and every
// scalar kind, so it exercises the parser the way real saves do.
func GenerateSave(seed uint64, countries int) []byte {
	r := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	var b bytes.Buffer

	fmt.Fprintf(&b, "version=\"v3.%d.%d\"\n", r.IntN(12), r.IntN(10))
	fmt.Fprintf(&b, "date=\"%d.%02d.%02d\"\n", 2200+r.IntN(300), 1+r.IntN(12), 1+r.IntN(28))
	b.WriteString("# generated save\n")
	b.WriteString("player=\n{\n")
	for i := range 1 + r.IntN(3) {
		fmt.Fprintf(&b, "\t{\n\t\tname=\"Player %d\"\n\t\tcountry=%d\n\t}\n", i, i)
	}
	b.WriteString("}\n")

	b.WriteString("country=\n{\n")
	for id := range countries {
		fmt.Fprintf(&b, "\t%d=\n\t{\n", id)
		fmt.Fprintf(&b, "\t\tname=\"Country \\\"%d\\\"\"\n", id)
		fmt.Fprintf(&b, "\t\tcapital=%d\n", r.IntN(5000))
		fmt.Fprintf(&b, "\t\ttype=%s\n", []string{"default", "fallen_empire", "primitive"}[r.IntN(3)])
		fmt.Fprintf(&b, "\t\tflag=%s\n", []string{"yes", "no"}[r.IntN(2)])
		b.WriteString("\t\tbudget=\n\t\t{\n")
		for _, res := range []string{"energy", "minerals", "food", "alloys"} {
			fmt.Fprintf(&b, "\t\t\t%s=%d.%d\n", res, r.IntN(2000)-1000, r.IntN(1000))
		}
		b.WriteString("\t\t}\n")
		for range r.IntN(4) {
			fmt.Fprintf(&b, "\t\ttimed_modifier=\n\t\t{\n\t\t\tmodifier=m_%d\n\t\t\tdays=%d\n\t\t}\n", r.IntN(50), r.IntN(720)-1)
		}
		fmt.Fprintf(&b, "\t\tcolor=\n\t\t{\n\t\t\t%d %d %d\n\t\t}\n", r.IntN(256), r.IntN(256), r.IntN(256))
		b.WriteString("\t\tmodules=\n\t\t{\n\t\t}\n")
		b.WriteString("\t}\n")
	}
	b.WriteString("}\n")

	b.WriteString("galaxy=\n{\n")
	fmt.Fprintf(&b, "\tname=\"Galaxy %d\"\n", r.IntN(1000))
	fmt.Fprintf(&b, "\tshape=%s\n", []string{"elliptical", "spiral_2", "ring"}[r.IntN(3)])
	b.WriteString("}\n")
	return b.Bytes()
}
