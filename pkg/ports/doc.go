/*
Package ports defines the driven ports (interfaces) around the knots core.

These interfaces decouple the engine facade from storage and coordination
backends so the same story can be served from memory, Redis or anything else.

# Key Interfaces

  - SessionStore: persists a runtime's Position between requests.
  - DistributedLocker: serializes access to a session across replicas.
  - Engine: the session-oriented API transports (HTTP, MCP) are written against.
*/
package ports
