// Package report implements the core of the emission report pipeline: the
// request/input types, the metrics calculator, the stacked chart renderer,
// the document builder and the appendix workbook.
//
// Data flows strictly one way: a Request is normalized into an Input once,
// Compute derives an immutable Metrics bundle from it, and the renderers
// consume both without mutating either. Metrics computation is the only stage
// that can reject input (empty primary table, missing required column or
// grand-total row); everything downstream degrades instead of failing.
package report
