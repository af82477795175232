package vectorstore

import (
	"github.com/qdrant/go-client/qdrant"
)

// toPayload converts document metadata into the value types the Qdrant client
// accepts. Slices of strings become []any and small integer types widen to
// int64.
func toPayload(metadata map[string]any) map[string]any {
	payload := make(map[string]any, len(metadata))
	for key, value := range metadata {
		switch v := value.(type) {
		case []string:
			items := make([]any, len(v))
			for i, item := range v {
				items[i] = item
			}
			payload[key] = items
		case int:
			payload[key] = int64(v)
		case int32:
			payload[key] = int64(v)
		case uint:
			payload[key] = int64(v)
		case float32:
			payload[key] = float64(v)
		default:
			payload[key] = value
		}
	}
	return payload
}

// fromPayload converts a Qdrant payload back into plain Go values.
func fromPayload(payload map[string]*qdrant.Value) map[string]any {
	metadata := make(map[string]any, len(payload))
	for key, value := range payload {
		metadata[key] = fromValue(value)
	}
	return metadata
}

func fromValue(value *qdrant.Value) any {
	switch kind := value.GetKind().(type) {
	case *qdrant.Value_StringValue:
		return kind.StringValue
	case *qdrant.Value_IntegerValue:
		return kind.IntegerValue
	case *qdrant.Value_DoubleValue:
		return kind.DoubleValue
	case *qdrant.Value_BoolValue:
		return kind.BoolValue
	case *qdrant.Value_ListValue:
		items := make([]any, 0, len(kind.ListValue.GetValues()))
		for _, item := range kind.ListValue.GetValues() {
			items = append(items, fromValue(item))
		}
		return items
	case *qdrant.Value_StructValue:
		fields := make(map[string]any, len(kind.StructValue.GetFields()))
		for name, field := range kind.StructValue.GetFields() {
			fields[name] = fromValue(field)
		}
		return fields
	default:
		return nil
	}
}
