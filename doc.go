/*
Package macrograph runs visual-programming macros against a 3D scene.

A macro is a graph of typed nodes. Action nodes form an eager chain of side effects
starting at a Start node; getter nodes compute values lazily when an action reads
them. Node inputs are literals, references to the macro's declared parameters, or
references to another node's output. The engine never touches the scene directly: it
calls a Host, which the embedding application implements.

# Usage

Create an Engine over a Host and a macro catalog, then run macros by name or
dispatch the command responses produced for free-text requests.

	scene := memory.NewScene(memory.NewObject(memory.ShapeBox))
	eng, err := macrograph.New(scene, macrograph.WithStore(store))
	if err != nil {
		log.Fatal(err)
	}

	// Explicit invocation
	if _, err := eng.Run(ctx, "lift", map[string]any{"obj": "0"}); err != nil {
		log.Fatal(err)
	}

	// Command response, e.g. from a language model
	outcomes, err := eng.Dispatch(ctx, `{"actions":[{"lift":{"obj":"0"}}]}`)

Graphs are exchanged in the JSON wire format of the schema package and stored through
a ports.MacroStore (memory, file, Redis or a Loam directory).
*/
package macrograph
