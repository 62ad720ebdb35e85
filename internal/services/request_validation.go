package services

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// fieldRule turns a failed struct tag into a FieldError. Rules are looked up
// by "<json field>.<tag>" first, then by "<json field>". A message containing
// %d receives the 1-based index of the slice element that failed.
type fieldRule struct {
	field   string
	code    string
	message string
}

// checkStruct runs the validate tags of req and records every failure in verr.
func checkStruct(req any, rules map[string]fieldRule, verr *ValidationError) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	for _, fe := range fieldErrs {
		key, index := fieldKey(fe.Namespace())

		rule, ok := rules[fe.Field()+"."+fe.Tag()]
		if !ok {
			rule, ok = rules[fe.Field()]
		}
		if !ok {
			verr.Add(key, fe.Tag(), fe.Error())
			continue
		}

		if rule.field != "" {
			key = rule.field
		}
		message := rule.message
		if index >= 0 && strings.Contains(message, "%d") {
			message = fmt.Sprintf(message, index+1)
		}
		verr.Add(key, rule.code, message)
	}
	return nil
}

// fieldKey turns a validator namespace such as "CreateOrderRequest.items[2].name"
// into "item.2.name" and returns the element index, or -1.
func fieldKey(namespace string) (string, int) {
	if i := strings.IndexByte(namespace, '.'); i >= 0 {
		namespace = namespace[i+1:]
	}

	open := strings.IndexByte(namespace, '[')
	if open < 0 {
		return namespace, -1
	}
	end := strings.IndexByte(namespace, ']')
	if end < open {
		return namespace, -1
	}

	index, err := strconv.Atoi(namespace[open+1 : end])
	if err != nil {
		return namespace, -1
	}
	parent := strings.TrimSuffix(namespace[:open], "s")
	return parent + "." + strconv.Itoa(index) + namespace[end+1:], index
}
