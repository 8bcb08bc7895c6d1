/*
Package dsl provides a Go DSL (Domain Specific Language) for programmatically constructing macros.

Nodes and inputs are addressed by names instead of list indexes; Build assigns indexes in
insertion order and types every socket from the palette of its node kind. This is useful for
generating macros in code, for unit tests, and for catching wiring mistakes at compile time.

Example usage:

	b := dsl.New("lift")
	b.Input("obj", domain.ValueTypeInt)

	b.Add("start").Kind("Start").Go("move")
	b.Add("move").Kind("SetPosition").
		FromInput("objectIndex", "obj").
		From("position", "up", "value")
	b.Add("up").Kind("Float3").
		Literal("x", "0").Literal("y", "1.5").Literal("z", "0")

	b.Phrase("move the first object up", `{"obj": "0"}`)

	macro, err := b.Build()
*/
package dsl
