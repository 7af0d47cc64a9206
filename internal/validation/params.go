package validation

import (
	"net/url"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/input-output-hk/catalyst-forge-libs/aws/simples3/errors"
)

// maxSafeNameLength is the longest URL-encoded object name kept portable
// across S3 tooling.
const maxSafeNameLength = 221

var validate = validator.New()

// RequiredParams checks that every key is present in params with a non-zero value.
// The returned error wraps ErrInvalidParams and lists the missing keys.
func RequiredParams(params map[string]any, keys ...string) error {
	missing := MissingParams(params, keys...)
	if len(missing) == 0 {
		return nil
	}
	return errors.NewError("validateParams", errors.ErrInvalidParams).
		WithMessage("missing required params: " + strings.Join(missing, ", "))
}

// MissingParams returns the sorted subset of keys absent or empty in params.
func MissingParams(params map[string]any, keys ...string) []string {
	if len(keys) == 0 {
		return nil
	}

	rules := make(map[string]any, len(keys))
	for _, k := range keys {
		rules[k] = "required"
	}

	if params == nil {
		params = map[string]any{}
	}

	failed := validate.ValidateMap(params, rules)
	if len(failed) == 0 {
		return nil
	}

	missing := make([]string, 0, len(failed))
	for k := range failed {
		missing = append(missing, k)
	}
	sort.Strings(missing)
	return missing
}

// SafeObjectNameProblems lists why name is not a safe object name.
// A safe name does not start with a dot and its URL-encoded form fits in 221 bytes.
// An empty result means the name is safe.
func SafeObjectNameProblems(name string) []string {
	var problems []string

	if strings.HasPrefix(name, ".") {
		problems = append(problems, "the name cannot start with .")
	}

	if len(url.QueryEscape(name)) > maxSafeNameLength {
		problems = append(problems, "the name is too long (max length of urlencoded string is 221 bytes)")
	}

	return problems
}

// ValidateSafeObjectName returns ErrInvalidObjectKey when name is not a safe object name.
func ValidateSafeObjectName(name string) error {
	problems := SafeObjectNameProblems(name)
	if len(problems) == 0 {
		return nil
	}
	return errors.NewError("validateSafeObjectName", errors.ErrInvalidObjectKey).
		WithKey(name).
		WithMessage(strings.Join(problems, "; "))
}
