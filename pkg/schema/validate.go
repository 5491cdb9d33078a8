package schema

import "sort"

// Schema is a map of parameter names to their expected types.
// Example: {"days": NonNegativeInt(), "expression": Expression()}
type Schema map[string]Type

// Validate checks the parameters present in data against the schema.
// Absent parameters and parameters unknown to the schema are accepted.
// Returns an *AggregateError listing every failure, ordered by key.
func Validate(schema Schema, data map[string]any) error {
	if len(schema) == 0 || len(data) == 0 {
		return nil
	}

	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var errs []error
	for _, key := range keys {
		fieldType, declared := schema[key]
		if !declared {
			continue
		}
		value := data[key]
		if err := fieldType.Validate(value); err != nil {
			errs = append(errs, &ValidationError{
				Key:    key,
				Reason: err.Error(),
				Value:  value,
			})
		}
	}

	if len(errs) > 0 {
		return &AggregateError{Errors: errs}
	}
	return nil
}

// Normalize returns a copy of data in which every parameter declared as an
// integer type is converted to a plain int. Values that do not convert are
// left untouched for Validate to report.
func Normalize(schema Schema, data map[string]any) map[string]any {
	if data == nil {
		return nil
	}
	out := make(map[string]any, len(data))
	for k, v := range data {
		out[k] = v
		if _, isInt := schema[k].(*IntType); isInt {
			if i, ok := AsInt(v); ok {
				out[k] = i
			}
		}
	}
	return out
}
