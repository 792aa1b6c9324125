package core

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	goerrors "github.com/goliatone/go-errors"
)

// Envelope is the JSON request body of one operation.
type Envelope map[string]any

var credentialKeys = []string{"client_id", "secret", "public_key"}

// attachCredentials stamps the credential pair for mode onto the envelope
// and strips the pair of the other mode.
func attachCredentials(envelope Envelope, mode AuthMode, cfg Config) {
	if envelope == nil {
		return
	}
	for _, key := range credentialKeys {
		delete(envelope, key)
	}
	switch mode {
	case AuthClientSecret:
		envelope["client_id"] = cfg.ClientID
		envelope["secret"] = cfg.Secret
	case AuthPublicKey:
		envelope["public_key"] = cfg.PublicKey
	}
}

// prune drops nil members recursively. Nested objects left empty by pruning
// are dropped too, so an options object with nothing set never goes out.
func prune(envelope Envelope) Envelope {
	if envelope == nil {
		return nil
	}
	out := make(Envelope, len(envelope))
	for key, value := range envelope {
		if kept, ok := pruneValue(value); ok {
			out[key] = kept
		}
	}
	return out
}

func pruneValue(value any) (any, bool) {
	switch typed := value.(type) {
	case nil:
		return nil, false
	case Envelope:
		nested := prune(typed)
		if len(nested) == 0 {
			return nil, false
		}
		return map[string]any(nested), true
	case map[string]any:
		nested := prune(Envelope(typed))
		if len(nested) == 0 {
			return nil, false
		}
		return map[string]any(nested), true
	case *string:
		if typed == nil {
			return nil, false
		}
		return *typed, true
	default:
		return value, true
	}
}

// optionalString is nil for blank values so prune drops the member.
func optionalString(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}

func optionalStrings(values []string) any {
	if len(values) == 0 {
		return nil
	}
	return values
}

// validateArgs checks required members and the operation's extra rules.
func validateArgs(op Operation, args Args) error {
	rules := make([]*validation.KeyRules, 0, len(op.Required)+len(op.Checks))
	for _, key := range op.Required {
		rules = append(rules, validation.Key(key, validation.Required))
	}
	rules = append(rules, op.Checks...)
	if len(rules) == 0 {
		return nil
	}
	source := map[string]any(args)
	if source == nil {
		source = map[string]any{}
	}
	err := validation.Validate(source, validation.Map(rules...).AllowExtraKeys())
	if err == nil {
		return nil
	}
	var fieldErrors validation.Errors
	if !errors.As(err, &fieldErrors) {
		return badInputError("core: "+op.Name+" arguments are invalid", map[string]any{
			"operation": op.Name,
			"error":     err.Error(),
		})
	}
	return validationError(op.Name, toFieldErrors(fieldErrors))
}

func toFieldErrors(errs validation.Errors) []goerrors.FieldError {
	keys := make([]string, 0, len(errs))
	for key := range errs {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	out := make([]goerrors.FieldError, 0, len(keys))
	for _, key := range keys {
		out = append(out, goerrors.FieldError{
			Field:   key,
			Message: errs[key].Error(),
		})
	}
	return out
}

// intAtLeast is a validation rule for integer members that may arrive as
// JSON numbers.
func intAtLeast(minimum int) validation.Rule {
	return validation.By(func(value any) error {
		if value == nil {
			return nil
		}
		parsed, ok := toInt(value)
		if !ok {
			return fmt.Errorf("must be an integer")
		}
		if parsed < minimum {
			return fmt.Errorf("must be no less than %d", minimum)
		}
		return nil
	})
}
