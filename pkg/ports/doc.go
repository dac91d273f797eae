/*
Package ports defines the ports (interfaces) of the logicflow compiler.

These interfaces decouple the pure compiler pipeline from the collaborators
around it, so storage backends, the language model service and transports can
be swapped without touching parsing, validation or generation.

# Key Interfaces

  - Compiler: the driving port used by transports (HTTP, MCP).
  - Assistant: the external language model used by the refinement loop.
  - FlowStore: persistence of saved flows (memory, file, Redis, Postgres, Loam library).
  - ConversationStore: persistence of refinement chat sessions.
  - DistributedLocker: serializes chat turns of one session across replicas.
*/
package ports
