// Package component extracts a normalized renderable-component descriptor
// from a chat-agent message.
//
// Agent messages carry component instructions in several inconsistent shapes:
// a descriptor nested in the message metadata, a flat type/data pair in the
// same metadata, a chart tool invocation, or a fenced ```chart / ```table
// block inside plain text content. Extract applies a fixed precedence order
// and returns at most one Descriptor per message.
//
// # Precedence
//
//  1. StrategyNested:   additional_kwargs[component] = {type, data, metadata?}
//  2. StrategyFlat:     additional_kwargs.type + additional_kwargs.data
//  3. StrategyToolCall: first render_chart / create_visualization invocation
//  4. StrategyFence:    first ```chart block, then first ```table block
//
// The first strategy that yields a descriptor wins; later strategies are not
// consulted. A message without any component yields ok == false, which callers
// treat as "render the message without a special component".
//
// # Failure model
//
// Nothing in this package returns an error for message data. A fenced block
// whose body is not valid JSON is logged as a warning and treated as absent.
// Extraction reads the message and never mutates it, so an Extractor may be
// shared by any number of goroutines.
//
// Example:
//
//	d, ok := component.Extract(msg)
//	if !ok {
//	    // plain message
//	}
//	ob, ok := dispatch.Resolve(d)
package component
