/*
Package ports defines the driven ports (interfaces) for the canopy core.

These interfaces decouple the analysis core from external implementations,
allowing the surrounding layers to persist per-session specifications in
various backends without the core holding any ambient global state.

# Key Interfaces

  - SpecStore: Responsible for persisting and loading per-session
    Specifications (e.g., in memory or Redis).
*/
package ports
