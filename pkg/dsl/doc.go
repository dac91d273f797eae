/*
Package dsl provides a fluent Go builder for logic flow graphs.

It produces the same domain.Graph the notation parser does, without going
through text. Nodes are addressed by title, exactly like branch targets in
the notation, and receive parser-style ids (node_1, node_2, ...) in the
order they were added.

Example usage:

	b := dsl.New().Title("Checkout")

	b.Input("Cart").Describe("Products and quantities").Go("In stock?")
	b.Decision("In stock?").Yes("Order placed").No("Sold out")
	b.Output("Order placed")
	b.Output("Sold out")

	g, err := b.Build()
*/
package dsl
