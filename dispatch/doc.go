// Package dispatch maps a component.Descriptor to the rendering obligation a
// presentation layer must fulfil.
//
// Obligation is a closed set of variants: *Chart, *Table, *Images, *File and
// *Unknown. Descriptor data is decoded leniently into the variant's concrete
// fields; anything that does not fit (a missing table header list, an image
// without a url, an unrecognized layout) is reported in the obligation's
// Problems rather than as an error, so a renderer can degrade one region
// without failing the whole message.
//
// Types the dispatcher does not know, including "custom", resolve to
// *Unknown carrying the original descriptor for diagnostic display.
//
//	ob, ok := dispatch.Resolve(d)
//	if !ok {
//	    return // nothing to draw (an image set without images)
//	}
//	switch ob := ob.(type) {
//	case *dispatch.Table:
//	    drawTable(ob.Headers, ob.Rows)
//	case *dispatch.Unknown:
//	    drawDiagnostic(ob.Descriptor)
//	}
package dispatch
