/*
Package domain contains the core domain model for the attack tree analyzer.

It defines the fundamental entities (Node, Kind and Specification) along
with the error taxonomy shared by the decode, spec and analysis packages.
This package is kept pure and free of external dependencies like I/O or
persistence, following Hexagonal Architecture principles.

# Key Entities

  - Node: a single vertex (AND, OR or LEAF) of an attack tree.
  - Specification: a root id plus an ordered id-to-node mapping, the unit
    of parsing, evaluation and persistence.
*/
package domain
