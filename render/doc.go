// Package render defines the contract between resolved obligations and the
// collaborators that actually draw them, plus the bookkeeping those
// collaborators need.
//
// Drawing itself (charts, diagrams, syntax highlighting) lives behind the
// Renderer, CodeRenderer, DiagramEngine and ChartEngine interfaces. This
// package supplies:
//
//   - Render: route an obligation to the matching Renderer method and turn a
//     renderer error into an inline *Failure scoped to that one region.
//   - CodeBlocks: the document code-block handler (mermaid, chart, table,
//     everything else).
//   - Diagrams: an ensure-initialized diagram engine with process-unique
//     render identifiers and last-write-wins per render target (Tracker).
//   - ChartRegions: one chart engine instance per mounted region, disposed on
//     unmount and before re-initialization.
//
// Failures never propagate past the region that produced them: callers get
// the *Failure back for logging or metrics, and the renderer has already been
// asked to show it via RenderFailure.
package render
