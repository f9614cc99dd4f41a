package core

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/bnastase-alt/rider-onboarding/internal/domain/onboarding"
	"github.com/bnastase-alt/rider-onboarding/internal/http/uiutil"
)

// Deps holds optional dependencies for constructing the core template func map.
type Deps struct {
	Template           **template.Template
	ContentTemplateFor func(string) string
}

// Funcs returns a template.FuncMap containing helpers that are broadly useful across templates.
func Funcs(deps Deps) template.FuncMap {
	funcs := template.FuncMap{
		"sectionTmpl":  deps.ContentTemplateFor,
		"friendlyTime": createFriendlyTimeFunc(),
		"timeTag":      createTimeTagFunc(),
		"add":          func(a, b int) int { return a + b },
		"sub":          func(a, b int) int { return a - b },
		"contains":     strings.Contains,
		"dict":         Dict,
		"optionLabel":  OptionLabel,
	}

	addRenderFuncs(funcs, deps)
	return funcs
}

func addRenderFuncs(funcs template.FuncMap, deps Deps) {
	funcs["renderSection"] = func(page string, data any) (template.HTML, error) {
		if deps.Template == nil || *deps.Template == nil {
			return "", errors.New("template not initialized")
		}
		var buf bytes.Buffer
		if err := (*deps.Template).ExecuteTemplate(&buf, deps.ContentTemplateFor(page), data); err != nil {
			return "", err
		}
		// #nosec G203 - rendered by our own html/template set; values were escaped during ExecuteTemplate.
		return template.HTML(buf.String()), nil
	}

	funcs["toJSON"] = func(v any) (string, error) {
		b, err := json.Marshal(v)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
}

// Dict builds a map from alternating key/value arguments so templates can pass
// several values to a nested template.
func Dict(pairs ...any) (map[string]any, error) {
	if len(pairs)%2 != 0 {
		return nil, errors.New("dict requires an even number of arguments")
	}
	m := make(map[string]any, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		key, ok := pairs[i].(string)
		if !ok {
			return nil, fmt.Errorf("dict key at position %d is not a string", i)
		}
		m[key] = pairs[i+1]
	}
	return m, nil
}

// OptionLabel returns the label of the option whose value matches, or the value itself.
func OptionLabel(opts []onboarding.Option, value string) string {
	for _, o := range opts {
		if o.Value == value {
			return o.Label
		}
	}
	return value
}

func toTime(ts any) time.Time {
	switch v := ts.(type) {
	case time.Time:
		return v
	case *time.Time:
		if v != nil {
			return *v
		}
	}
	return time.Time{}
}

func createFriendlyTimeFunc() func(any) string {
	return func(ts any) string {
		return uiutil.FormatFriendlyDateTime(toTime(ts))
	}
}

func createTimeTagFunc() func(any) template.HTML {
	return func(ts any) template.HTML {
		t0 := toTime(ts)
		if t0.IsZero() {
			return ""
		}
		// #nosec G203 - constructed from escaped values only
		return template.HTML(fmt.Sprintf(
			"<time datetime=\"%s\" title=\"%s\">%s</time>",
			t0.UTC().Format(time.RFC3339),
			template.HTMLEscapeString(t0.Local().Format(time.RFC1123)),
			template.HTMLEscapeString(uiutil.FormatFriendlyDateTime(t0)),
		))
	}
}
