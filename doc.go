// Package goneogm provides an object-graph mapper (OGM) for Neo4j.
//
// Declare node and relationship kinds as validated schemas, then query them
// through a chainable, lazily-compiled builder instead of hand-written Cypher.
// Statements are always parameterized; results hydrate back into typed entity
// instances with dirty tracking.
//
// The module is organized into five packages:
//
//   - [github.com/CaliLuke/go-neogm/cypher]: Cypher AST nodes and the parameterizing compiler
//   - [github.com/CaliLuke/go-neogm/ogm]: schema registry, property types, query builder, unit of work, hydration
//   - [github.com/CaliLuke/go-neogm/bolt]: driver adapter over the official neo4j-go-driver (Bolt)
//   - [github.com/CaliLuke/go-neogm/sdl]: schema definition language parser
//   - [github.com/CaliLuke/go-neogm/cmd/neogm]: label/constraint installation CLI
//
// The cypher, ogm, and sdl packages compile and test without a running
// database. Only the bolt package talks to a Neo4j server.
package goneogm
