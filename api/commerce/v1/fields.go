package commercev1

import (
	"google.golang.org/protobuf/types/known/structpb"
)

// String returns the string field key of s, or "" when absent or not a string.
func String(s *structpb.Struct, key string) string {
	if s == nil {
		return ""
	}
	v, ok := s.GetFields()[key]
	if !ok {
		return ""
	}
	return v.GetStringValue()
}

// StringMap returns the nested struct key of s as a map of its string fields.
// Non-string values are skipped.
func StringMap(s *structpb.Struct, key string) map[string]string {
	out := map[string]string{}
	if s == nil {
		return out
	}
	nested := s.GetFields()[key].GetStructValue()
	for k, v := range nested.GetFields() {
		if sv, ok := v.GetKind().(*structpb.Value_StringValue); ok {
			out[k] = sv.StringValue
		}
	}
	return out
}
