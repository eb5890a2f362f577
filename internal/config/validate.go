package config

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func structValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Struct validates any of the configuration types by their struct tags and
// flattens the field errors into one readable message.
func Struct(v any) error {
	err := structValidator().Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s: must satisfy %s=%s (got %v)", fe.Namespace(), fe.Tag(), fe.Param(), fe.Value()))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s: failed %s", fe.Namespace(), fe.Tag()))
		}
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
}

// RouteAssignments checks that every route assignment names a known
// aircraft type and that no reference keys collide once case is ignored.
func (r Reference) RouteAssignments() error {
	_, err := r.Normalized()
	return err
}

// Normalized returns a copy of the reference tables keyed for lookup.
// Aircraft names are trimmed, route and airport keys are upper-cased and
// route assignments are resolved to the configured aircraft spelling.
// Matching is case-insensitive, so keys that differ only by case are
// rejected.
func (r Reference) Normalized() (Reference, error) {
	out := Reference{
		Aircraft: make(map[string]AircraftSpec, len(r.Aircraft)),
		Routes:   make(map[string]string, len(r.Routes)),
		Airports: make(map[string]Airport, len(r.Airports)),
	}

	canonical := make(map[string]string, len(r.Aircraft))
	for _, name := range slices.Sorted(maps.Keys(r.Aircraft)) {
		trimmed := strings.TrimSpace(name)
		key := strings.ToUpper(trimmed)
		if prev, ok := canonical[key]; ok {
			return Reference{}, fmt.Errorf("invalid configuration: aircraft types %q and %q differ only by case", prev, name)
		}
		canonical[key] = trimmed
		out.Aircraft[trimmed] = r.Aircraft[name]
	}

	for _, route := range slices.Sorted(maps.Keys(r.Routes)) {
		key := strings.ToUpper(strings.TrimSpace(route))
		if _, ok := out.Routes[key]; ok {
			return Reference{}, fmt.Errorf("invalid configuration: route %s assigned more than once", key)
		}
		aircraft := r.Routes[route]
		name, ok := canonical[strings.ToUpper(strings.TrimSpace(aircraft))]
		if !ok {
			return Reference{}, fmt.Errorf("invalid configuration: route %s assigned unknown aircraft type %q", route, aircraft)
		}
		out.Routes[key] = name
	}

	for _, code := range slices.Sorted(maps.Keys(r.Airports)) {
		key := strings.ToUpper(strings.TrimSpace(code))
		if _, ok := out.Airports[key]; ok {
			return Reference{}, fmt.Errorf("invalid configuration: airport %s defined more than once", key)
		}
		out.Airports[key] = r.Airports[code]
	}
	return out, nil
}
