package config

import (
	"fmt"
	"reflect"
)

type Config interface {
	Validate() error
}

// ValidateConfig validates every non-nil sub-config field of the given
// struct pointer.
func ValidateConfig[T any](cfg any) error {
	return rangeField(cfg, func(c Config) error {
		return c.Validate()
	})
}

// rangeField iterates over the fields of a struct and calls the given
// function on those implementing T, skipping nil pointers.
func rangeField[T any](ptr any, fn func(T) error) error {
	v := reflect.ValueOf(ptr).Elem()
	for i := 0; i < v.NumField(); i++ {
		f := v.Field(i)
		if f.Kind() == reflect.Pointer && f.IsNil() {
			continue
		}
		iface := f.Interface()
		if opts, ok := iface.(T); ok {
			if err := fn(opts); err != nil {
				return fmt.Errorf("failed validate config: %v, key: %s", err, v.Type().Field(i).Name)
			}
		}
	}
	return nil
}
