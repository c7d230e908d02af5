package taxon_test

import (
	"fmt"

	"github.com/matzehuels/taxotree/pkg/taxon"
)

func ExampleTree_Insert() {
	tree := taxon.NewTree(taxon.Options{})
	tree.Insert("q1", 0, "A; B; C;").
		Insert("q2", 10, "A; B; D;").
		Insert("q3", 20, "A; E;")

	tree.Root.Walk(func(n *taxon.Node, depth int) bool {
		fmt.Printf("%*s%s %d", depth*2, "", n.Name, n.Count)
		for _, q := range n.Queries {
			fmt.Printf(" %s@%d", q.ID, q.Offset)
		}
		fmt.Println()
		return true
	})
	// Output:
	// root 3
	//   A 3
	//     B 2
	//       C 1 q1@0
	//       D 1 q2@10
	//     E 1 q3@20
}

func ExampleNormalize() {
	for _, s := range taxon.Normalize("Bacteria (superkingdom); Foo (bar baz);") {
		fmt.Printf("%q %q\n", s.Name, s.Rank)
	}
	// Output:
	// "Bacteria" "superkingdom"
	// "Foo_bar_baz" ""
}

func ExampleWeight() {
	fmt.Println(taxon.Weight("readA_5", true))
	fmt.Println(taxon.Weight("readA_5", false))
	// Output:
	// 5
	// 1
}
