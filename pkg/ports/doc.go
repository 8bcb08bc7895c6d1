/*
Package ports defines the driven ports (interfaces) of the macrograph engine.

These interfaces decouple the core interpreter from the host scene, the macro catalog
storage and the natural-language front end.

# Key Interfaces

  - Host: the capability boundary through which nodes read and mutate scene objects.
  - MacroStore: persists named macros (memory, file, Redis, Loam).
  - DistributedLocker: serializes macro executions against a shared scene across replicas.
  - Interpreter: turns free text into a command response naming macros and arguments.
*/
package ports
