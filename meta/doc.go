// Package meta defines the unit tags that partition operations attach
// to frames and that reconstruction reads back.
//
// Tags travel as JSON strings inside frame properties, so they survive
// any processing stage that preserves properties, including stages that
// resize or re-encode pixel data. Reconstruction never trusts a tag
// blindly: geometry is re-derived from it and checked against what the
// frames actually contain.
package meta
