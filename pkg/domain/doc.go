/*
Package domain contains the core model of the logic graph compiler.

It defines the graph itself (Nodes, Edges, Branches), the results produced
over it (validation Issues and Reports, parser Diagnostics) and the shapes
exchanged with collaborators outside the core (editor Views, saved Flows,
refinement Conversations). The package is pure: no I/O, no persistence.

# Key Entities

  - Graph: ordered nodes plus a multiset of edges. Invariants are reported by
    the validator, never enforced here, so odd-but-representable graphs
    (dangling edges, half-branched decisions) can still be rendered.
  - Node: one of Input, Process, Decision or Output. Start/End exist only as
    synthetic parser anchors and never reach rendered text.
  - Report: the ordered issue list of a validation run.
  - View: the editor boundary, carrying coordinates the core never reads.
*/
package domain
