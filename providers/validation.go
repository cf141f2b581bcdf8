package providers

import (
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

// JSON schemas for per-provider session parameters. The schemas describe the
// auth material each provider contract requires; presentation-only calls
// skip this validation entirely because no auth is needed there.
var providerParamSchemas = map[Provider]map[string]interface{}{
	Wise: {
		"type": "object",
		"properties": map[string]interface{}{
			"resource_id":  map[string]interface{}{"type": "string", "minLength": 1},
			"profile_id":   map[string]interface{}{"type": "string", "minLength": 1},
			"cookie":       map[string]interface{}{"type": "string", "minLength": 1},
			"access_token": map[string]interface{}{"type": "string", "minLength": 1},
		},
		"required": []string{"resource_id", "profile_id", "cookie", "access_token"},
	},
	PayPal: {
		"type": "object",
		"properties": map[string]interface{}{
			"resource_id":  map[string]interface{}{"type": "string", "minLength": 1},
			"cookie":       map[string]interface{}{"type": "string", "minLength": 1},
			"access_token": map[string]interface{}{"type": "string", "minLength": 1},
		},
		"required": []string{"resource_id", "cookie", "access_token"},
	},
}

// Cache of compiled schemas per provider
var (
	paramValidatorMap = make(map[Provider]*gojsonschema.Schema)
	validatorMutex    sync.RWMutex
)

func compiledSchema(p Provider) (*gojsonschema.Schema, error) {
	validatorMutex.RLock()
	compiled, exists := paramValidatorMap[p]
	validatorMutex.RUnlock()
	if exists {
		return compiled, nil
	}

	raw, ok := providerParamSchemas[p]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedProvider, p)
	}
	schema, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema for %s: %w", p, err)
	}

	validatorMutex.Lock()
	paramValidatorMap[p] = schema
	validatorMutex.Unlock()
	return schema, nil
}

// ValidateParams checks the session parameters against the provider's
// schema. Error messages name fields only, never field values, so auth
// material cannot leak through the error channel.
func ValidateParams(p Provider, params *RequestParams) error {
	schema, err := compiledSchema(p)
	if err != nil {
		return err
	}

	doc := map[string]interface{}{}
	put := func(key, value string) {
		if value != "" {
			doc[key] = value
		}
	}
	put("resource_id", params.ResourceID)
	put("profile_id", params.ProfileID)
	put("cookie", params.Cookie)
	put("access_token", params.AccessToken)

	result, err := schema.Validate(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return fmt.Errorf("params validation failed: %w", err)
	}
	if !result.Valid() {
		var b strings.Builder
		for _, e := range result.Errors() {
			if b.Len() > 0 {
				b.WriteString("; ")
			}
			// Field and constraint only; values stay out of the message.
			b.WriteString(e.Field())
			b.WriteString(": ")
			b.WriteString(e.Type())
		}
		return fmt.Errorf("params validation failed: %s", b.String())
	}
	return nil
}
