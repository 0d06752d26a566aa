// Package art defines the composition model shared by the generator, the
// renderer, the metadata codec and the editing operations.
//
// A [Composition] is an ordered list of [Shape] values on a fixed-size
// canvas. Order is significant: shapes are painted in slice order, so later
// shapes sit on top of earlier ones.
//
// Each shape carries a [Form], a tagged variant over the three geometric
// kinds:
//
//   - [Rect]: a square of edge Size centered on (X, Y)
//   - [Circle]: a circle of diameter Size centered on (X, Y)
//   - [Stamp]: a vector path in its own local coordinate space, scaled so
//     its larger local dimension equals Size
//
// Only stamps carry extra geometry, so the variant keeps rectangles and
// circles free of path fields.
//
// # Layers
//
// Generated shapes live on the numeric layers 1 through 5. Hand-placed stamps
// live on [StampLayer], which bulk regeneration never touches.
package art
