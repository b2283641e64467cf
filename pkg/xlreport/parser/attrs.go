package parser

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Attribute sets of the structure elements. Fields are filled from the
// attribute named by the attr tag; booleans and integers stay text until the
// validator has accepted them.

type reportAttrs struct {
	ID               string `attr:"id" validate:"required"`
	Title            string `attr:"title"`
	User             string `attr:"user"`
	Password         string `attr:"password"`
	PreserveTemplate string `attr:"preserveTemplate" validate:"omitempty,boolean"`
}

type sheetAttrs struct {
	ID           string `attr:"id" validate:"required"`
	Title        string `attr:"title"`
	Hidden       string `attr:"hidden" validate:"omitempty,boolean"`
	Rendered     string `attr:"rendered" validate:"omitempty,boolean"`
	Protected    string `attr:"protected" validate:"omitempty,boolean"`
	Zoom         string `attr:"zoom" validate:"omitempty,number"`
	GroupColumns string `attr:"group-columns"`
}

type sectionAttrs struct {
	ID            string `attr:"id" validate:"required"`
	Collapsible   string `attr:"collapsible" validate:"omitempty,boolean"`
	Collapsed     string `attr:"collapsed" validate:"omitempty,boolean"`
	Hidden        string `attr:"hidden" validate:"omitempty,boolean"`
	Rendered      string `attr:"rendered" validate:"omitempty,boolean"`
	Provider      string `attr:"provider"`
	Height        string `attr:"height" validate:"omitempty,number"`
	RowHeight     string `attr:"rowHeight" validate:"omitempty,number"`
	IndentColumns string `attr:"indentColumns"`
	ProviderUsage string `attr:"provider-usage"`
}

type groupAttrs struct {
	DiscriminatorField string `attr:"discriminatorField"`
	LevelField         string `attr:"levelField"`
	Collapsible        string `attr:"collapsible" validate:"omitempty,boolean"`
	Collapsed          string `attr:"collapsed" validate:"omitempty,boolean"`
	Hidden             string `attr:"hidden" validate:"omitempty,boolean"`
	SkipEmptyGroups    string `attr:"skipEmptyGroups" validate:"omitempty,boolean"`
	Height             string `attr:"height" validate:"omitempty,number"`
}

type groupStyleAttrs struct {
	Level   string `attr:"level" validate:"omitempty,number"`
	Default string `attr:"default" validate:"omitempty,boolean"`
}

type filteredProviderAttrs struct {
	ID        string `attr:"id" validate:"required"`
	Predicate string `attr:"predicate" validate:"required"`
}

type listProviderAttrs struct {
	ID   string `attr:"id" validate:"required"`
	Data string `attr:"data" validate:"required"`
}

type sqlProviderAttrs struct {
	ID         string `attr:"id" validate:"required"`
	DataSource string `attr:"datasource" validate:"required"`
	Processor  string `attr:"processor" validate:"required"`
}

type classProviderAttrs struct {
	ID     string `attr:"id" validate:"required"`
	Object string `attr:"object" validate:"required"`
	Method string `attr:"method" validate:"required"`
}

type paramAttrs struct {
	Name  string `attr:"name" validate:"required"`
	Value string `attr:"value"`
}

type listenerAttrs struct {
	Class    string `attr:"class" validate:"required_without=Instance"`
	Instance string `attr:"instance"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return f.Tag.Get("attr")
	})
	return v
}

// bindAttrs copies the element's trimmed attributes into the attr-tagged
// fields of dst and validates them.
func bindAttrs(n *Node, dst any) error {
	v := reflect.ValueOf(dst).Elem()
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		name := t.Field(i).Tag.Get("attr")
		if name == "" {
			continue
		}
		v.Field(i).SetString(n.Attr(name))
	}

	err := validate.Struct(dst)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return fmt.Errorf("%w: %s", ErrMissingAttribute, fe.Field())
	case "required_without":
		return fmt.Errorf("%w: listener's class or instance must be specified", ErrMissingAttribute)
	default:
		return fmt.Errorf("%w: %s=%q", ErrInvalidAttribute, fe.Field(), fe.Value())
	}
}

// boolOr converts a validated boolean attribute, using def when empty.
func boolOr(s string, def bool) bool {
	if s == "" {
		return def
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return def
	}
	return b
}

// intOr converts a validated non-negative integer attribute, using def when
// empty.
func intOr(s string, def int) (int, error) {
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAttribute, s)
	}
	return n, nil
}

// splitList splits a comma separated attribute, dropping blank items.
func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
