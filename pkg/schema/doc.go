// Package schema describes and validates the parameters carried by automation nodes.
//
// A Schema maps parameter names to a Type. Validation only inspects the parameters
// that are present: absent parameters are legal, so a freshly dropped node with no
// configuration is still a valid node. Parameters the schema does not declare are
// ignored, which lets graphs written by newer editors load in older ones.
//
//	days := schema.Schema{"days": schema.NonNegativeInt()}
//	if err := schema.Validate(days, map[string]any{"days": 5}); err != nil {
//	    // handle
//	}
//
// Numeric values arrive in many shapes (int from Go callers, float64 from
// encoding/json, json.Number from strict decoders). AsInt folds them into an int.
package schema
