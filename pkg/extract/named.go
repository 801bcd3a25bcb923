package extract

// Name resolves a state/territory/division value that may arrive in any of
// the shapes the web CMS emits:
//
//	"Texas"                              plain string
//	{name: "Texas"} or {text: "Texas"}   named object
//	{data: {name: "Texas"}}              data-wrapped object
//	{data: [{name: "Texas"}, ...]}       data-wrapped list
//
// The first usable string found by that precedence order is returned;
// nil means no form resolved.
func Name(v any) *string {
	switch val := v.(type) {
	case nil:
		return nil
	case string:
		if val == "" {
			return nil
		}
		return &val
	case map[string]any:
		if s := stringField(val, "name"); s != nil {
			return s
		}
		if s := stringField(val, "text"); s != nil {
			return s
		}
		data, ok := val["data"]
		if !ok {
			return nil
		}
		switch wrapped := data.(type) {
		case map[string]any:
			return stringField(wrapped, "name")
		case []any:
			if len(wrapped) == 0 {
				return nil
			}
			if first, ok := wrapped[0].(map[string]any); ok {
				return stringField(first, "name")
			}
		}
	}
	return nil
}

// NameOr resolves like Name but returns fallback instead of nil.
func NameOr(v any, fallback string) string {
	if s := Name(v); s != nil {
		return *s
	}
	return fallback
}

func stringField(m map[string]any, key string) *string {
	if s, ok := m[key].(string); ok && s != "" {
		return &s
	}
	return nil
}
