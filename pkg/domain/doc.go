/*
Package domain contains the core domain models of the macrograph engine.

It defines the serialized macro graph (node descriptors, value sockets and declared inputs),
the closed node-kind taxonomy, the value types flowing between nodes and the error taxonomy
shared by every layer. This package is kept pure and free of I/O, following Hexagonal
Architecture principles.

# Key Entities

  - Graph: the index-addressed arena of NodeDescriptors plus the declared MacroInputs.
  - NodeDescriptor: one node's kind tag, its input ValueSockets and the optional next action (OutFlow).
  - ValueSocket: a typed input slot bound to a Literal, an InputRef or a NodeRef.
  - NodeKind: the closed set of action and getter kinds, with their static port catalog.
  - Macro: a named, persisted Graph with the activation phrases used to invoke it from text.
*/
package domain
